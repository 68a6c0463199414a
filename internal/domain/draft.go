package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Draft is an in-progress product record keyed by backend field name. Values
// are whatever JSON decoding produced: strings, numbers, booleans, nil, or
// embedded documents for option references loaded in edit mode.
type Draft map[string]any

// Clone returns a shallow copy. A nil draft clones to an empty one.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge returns a copy of d with every key of partial written over it.
func (d Draft) Merge(partial Draft) Draft {
	out := d.Clone()
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// Without returns a copy of d without the given keys.
func (d Draft) Without(keys ...string) Draft {
	out := d.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// String renders a value as text. nil and missing values are "".
func (d Draft) String(field string) string {
	return stringify(d[field])
}

// Has reports whether field holds a non-blank value.
func (d Draft) Has(field string) bool {
	switch v := d[field].(type) {
	case nil:
		return false
	case bool:
		return v
	case map[string]any:
		return ResolveID(v) != ""
	default:
		return strings.TrimSpace(stringify(v)) != ""
	}
}

// Number parses field as a float. The second result is false for blank or
// non-numeric values.
func (d Draft) Number(field string) (float64, bool) {
	switch v := d[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		return ResolveID(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, " ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// MediaMarkers replaces every media slot value with its marker: the slot
// name when a file was chosen, nil otherwise. Binary payloads never live in
// a draft.
func (d Draft) MediaMarkers(staged map[string]MediaHandle) Draft {
	out := d.Clone()
	for _, slot := range MediaSlots {
		if _, ok := staged[slot]; ok {
			out[slot] = slot
		} else {
			out[slot] = nil
		}
	}
	return out
}

// NormalizeRecord turns a product loaded from the backend into a draft:
// option references become bare ids and flags become "yes"/"no".
func NormalizeRecord(rec map[string]any) Draft {
	d := Draft(rec).Clone()
	for _, field := range OptionFields() {
		if _, ok := d[field]; ok {
			d[field] = ResolveID(d[field])
		}
	}
	for _, flag := range FlagFields {
		d[flag] = NormalizeFlag(d[flag])
	}
	if desc, ok := d["productdescription"].([]any); ok {
		d["productdescription"] = stringify(desc)
	}
	return d
}

// NormalizeFlag maps any flag representation onto "yes" or "no".
func NormalizeFlag(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "yes"
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "true", "on", "1":
			return "yes"
		}
	}
	return "no"
}
