package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/storage"
)

//go:embed schema/product.json
var productSchema []byte

// seoKeys are the metadata-step keys carried into the payload.
var seoKeys = domain.DefaultSEO("").Draft()

// Payload is an encoded multipart request body.
type Payload struct {
	ContentType string
	Body        []byte
}

// Assembler turns a merged draft plus staged media into the product payload
// sent to the catalog backend.
type Assembler struct {
	schema *gojsonschema.Schema
	media  storage.Storage
}

// NewAssembler compiles the payload schema.
func NewAssembler(media storage.Storage) (*Assembler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(productSchema))
	if err != nil {
		return nil, fmt.Errorf("compile product schema: %w", err)
	}
	return &Assembler{schema: schema, media: media}, nil
}

// metadataBaseKeys are the base fields the metadata step may edit.
var metadataBaseKeys = []string{"name"}

// Merge combines the base step with the metadata step. Only metadata keys
// and the product name are taken from meta; the product description always
// comes from base.
func Merge(base, meta domain.Draft) domain.Draft {
	out := base.Without("description")
	for k := range seoKeys {
		if v, ok := meta[k]; ok {
			out[k] = v
		}
	}
	for _, k := range metadataBaseKeys {
		if v, ok := meta[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Coerce keeps the declared fields of d and gives each its wire type.
// Applying it to its own output returns an equal draft.
func Coerce(d domain.Draft) domain.Draft {
	out := make(domain.Draft)

	for _, f := range domain.BaseFields() {
		switch f.Kind {
		case domain.KindMedia:
			if s := d.String(f.Name); isRemoteURL(s) {
				out[f.Name] = s
			}
			continue
		case domain.KindFlag:
			out[f.Name] = domain.NormalizeFlag(d[f.Name])
			continue
		}

		if !d.Has(f.Name) {
			switch {
			case f.Nullable:
				out[f.Name] = nil
			case f.Kind == domain.KindNumber:
				out[f.Name] = float64(0)
			default:
				out[f.Name] = ""
			}
			continue
		}

		switch f.Kind {
		case domain.KindNumber:
			if n, ok := d.Number(f.Name); ok {
				out[f.Name] = n
			} else {
				out[f.Name] = d.String(f.Name)
			}
		case domain.KindOption:
			out[f.Name] = domain.ResolveID(d[f.Name])
		default:
			out[f.Name] = d.String(f.Name)
		}
	}

	for k, def := range seoKeys {
		if _, isBool := def.(bool); isBool {
			out[k] = domain.NormalizeFlag(d[k]) == "yes"
			continue
		}
		out[k] = d.String(k)
	}
	return out
}

// Validate checks a coerced payload against the product schema.
func (a *Assembler) Validate(payload domain.Draft) error {
	result, err := a.schema.Validate(gojsonschema.NewGoLoader(map[string]any(payload)))
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	if result.Valid() {
		return nil
	}

	fields := make(map[string]string)
	for _, desc := range result.Errors() {
		field := desc.Field()
		if prop, ok := desc.Details()["property"].(string); ok && field == gojsonschema.STRING_CONTEXT_ROOT {
			field = prop
		}
		if _, seen := fields[field]; !seen {
			fields[field] = desc.Description()
		}
	}

	failure := &domain.ValidationFailure{Fields: fields}
	labels := make([]string, 0, len(fields))
	for _, name := range failure.FieldNames() {
		labels = append(labels, domain.Label(name))
	}
	failure.Message = "Invalid values: " + strings.Join(labels, ", ")
	return failure
}

// Encode writes payload as multipart form data, fields in name order, and
// attaches the staged file of each media slot in place of its field.
func (a *Assembler) Encode(ctx context.Context, owner, scope string, payload domain.Draft, media map[string]domain.MediaHandle) (Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, staged := media[k]; staged {
			continue
		}
		if err := w.WriteField(k, formValue(payload[k])); err != nil {
			return Payload{}, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, slot := range domain.MediaSlots {
		h, ok := media[slot]
		if !ok {
			continue
		}
		if err := a.attach(ctx, w, domain.MediaKey(owner, scope, h), h); err != nil {
			return Payload{}, err
		}
	}

	if err := w.Close(); err != nil {
		return Payload{}, fmt.Errorf("close multipart writer: %w", err)
	}
	return Payload{ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}

func (a *Assembler) attach(ctx context.Context, w *multipart.Writer, key string, h domain.MediaHandle) error {
	rc, err := a.media.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("open staged %s: %w", h.Slot, err)
	}
	defer rc.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, h.Slot, h.Filename))
	header.Set("Content-Type", h.ContentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create %s part: %w", h.Slot, err)
	}
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("copy staged %s: %w", h.Slot, err)
	}
	return nil
}

func formValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
