package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Option is one selectable value of a catalog attribute. ParentID is set only
// for sub-options.
type Option struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// ResolveID normalizes a reference that the backend may send either as a bare
// id or as an embedded document. Anything else resolves to "".
func ResolveID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case map[string]any:
		for _, key := range []string{"_id", "id", "$oid"} {
			if id := ResolveID(t[key]); id != "" {
				return id
			}
		}
	}
	return ""
}

// resolveName returns a display name. Localized names are objects keyed by
// language; English wins, otherwise the first language in key order.
func resolveName(rec map[string]any) string {
	for _, key := range []string{"name", "title", "code"} {
		switch t := rec[key].(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case map[string]any:
			if s, ok := t["en"].(string); ok && s != "" {
				return s
			}
			langs := make([]string, 0, len(t))
			for lang := range t {
				langs = append(langs, lang)
			}
			sort.Strings(langs)
			for _, lang := range langs {
				if s, ok := t[lang].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// DecodeOption builds an Option from a raw backend record. parentKey names
// the field holding the parent reference and may be empty. The second result
// is false when the record carries no usable id.
func DecodeOption(rec map[string]any, parentKey string) (Option, bool) {
	id := ResolveID(rec)
	if id == "" {
		return Option{}, false
	}
	opt := Option{ID: id, Name: resolveName(rec)}
	if opt.Name == "" {
		opt.Name = id
	}
	if parentKey != "" {
		opt.ParentID = ResolveID(rec[parentKey])
	}
	return opt, true
}

// DecodeOptions decodes every record with a usable id, preserving order.
func DecodeOptions(records []map[string]any, parentKey string) []Option {
	out := make([]Option, 0, len(records))
	for _, rec := range records {
		if opt, ok := DecodeOption(rec, parentKey); ok {
			out = append(out, opt)
		}
	}
	return out
}

// ContainsOption reports whether id is present in opts.
func ContainsOption(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
