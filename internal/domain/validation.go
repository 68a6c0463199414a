package domain

import (
	"sort"
	"strings"

	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
)

// ValidationFailure lists every offending field of a step. Fields maps the
// field name to the reason.
type ValidationFailure struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationFailure) Error() string { return e.Message }

// FieldErrors exposes per-field reasons to the response writer.
func (e *ValidationFailure) FieldErrors() map[string]string { return e.Fields }

func (e *ValidationFailure) Unwrap() error { return apperrors.ErrValidation }

// ValidateBase checks the base step: every required field is present, every
// positive number parses above zero, and enums and lengths hold.
func ValidateBase(d Draft) error {
	var missing, notPositive, invalid []string
	fields := make(map[string]string)

	for _, f := range baseFields {
		if !d.Has(f.Name) {
			if f.Required {
				missing = append(missing, f.Label)
				fields[f.Name] = "is required"
			}
			continue
		}

		switch {
		case f.Positive:
			if v, ok := d.Number(f.Name); !ok || v <= 0 {
				notPositive = append(notPositive, f.Label)
				fields[f.Name] = "must be greater than 0"
			}
		case len(f.Enum) > 0:
			if !oneOf(d.String(f.Name), f.Enum) {
				invalid = append(invalid, f.Label)
				fields[f.Name] = "must be one of: " + strings.Join(f.Enum, ", ")
			}
		case f.MaxLen > 0:
			if len([]rune(strings.TrimSpace(d.String(f.Name)))) > f.MaxLen {
				invalid = append(invalid, f.Label)
				fields[f.Name] = "is too long"
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(missing, ", "))
	}
	if len(notPositive) > 0 {
		parts = append(parts, "Must be greater than 0: "+strings.Join(notPositive, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "Invalid values: "+strings.Join(invalid, ", "))
	}
	return &ValidationFailure{Message: strings.Join(parts, ". "), Fields: fields}
}

// SubmitRequiredFields is the fixed list checked when the metadata step is
// submitted.
var SubmitRequiredFields = []string{
	"name", "sku", "slug", "newCategoryId", "structureId", "contentId",
	"gsm", "oz", "cm", "inch", "quantity", "um", "currency", "finishId",
	"designId", "colorId", "css", "motifsizeId", "suitableforId", "vendorId",
	"groupcodeId", "purchasePrice", "salesPrice", "locationCode",
	"productIdentifier", "title", "description", "keywords", "ogTitle",
	"ogDescription", "ogUrl",
}

// ValidateSubmit checks the merged record before it is submitted. The name
// is checked first and on its own.
func ValidateSubmit(d Draft) error {
	if strings.TrimSpace(d.String("name")) == "" {
		return &ValidationFailure{
			Message: "Product name is required.",
			Fields:  map[string]string{"name": "is required"},
		}
	}

	var missing []string
	fields := make(map[string]string)
	for _, name := range SubmitRequiredFields {
		if !d.Has(name) {
			missing = append(missing, name)
			fields[name] = "is required"
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationFailure{
		Message: "Missing required fields: " + strings.Join(missing, ", "),
		Fields:  fields,
	}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// FieldNames returns the offending field names in sorted order.
func (e *ValidationFailure) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
