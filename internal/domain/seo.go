package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SEOMetadata is the metadata step of the wizard.
type SEOMetadata struct {
	Charset                string `json:"charset" validate:"omitempty,max=20"`
	XUACompatible          string `json:"xUaCompatible" validate:"omitempty,max=50"`
	Viewport               string `json:"viewport" validate:"omitempty,max=200"`
	Title                  string `json:"title" validate:"max=60"`
	Description            string `json:"description" validate:"max=160"`
	Keywords               string `json:"keywords" validate:"max=500"`
	Robots                 string `json:"robots"`
	ContentLanguage        string `json:"contentLanguage" validate:"max=10"`
	GoogleSiteVerification string `json:"googleSiteVerification" validate:"max=100"`
	MsValidate             string `json:"msValidate" validate:"max=100"`
	ThemeColor             string `json:"themeColor" validate:"omitempty,hexcolor"`
	MobileWebAppCapable    bool   `json:"mobileWebAppCapable"`
	AppleStatusBarStyle    string `json:"appleStatusBarStyle" validate:"omitempty,oneof=default black black-translucent"`
	FormatDetection        string `json:"formatDetection"`
	OgLocale               string `json:"ogLocale" validate:"max=10"`
	OgTitle                string `json:"ogTitle" validate:"max=60"`
	OgDescription          string `json:"ogDescription" validate:"max=160"`
	OgType                 string `json:"ogType" validate:"max=30"`
	OgURL                  string `json:"ogUrl" validate:"omitempty,url,max=2048"`
	OgSiteName             string `json:"ogSiteName" validate:"max=100"`
	TwitterCard            string `json:"twitterCard" validate:"omitempty,oneof=summary summary_large_image app player"`
	TwitterSite            string `json:"twitterSite" validate:"max=25"`
	TwitterTitle           string `json:"twitterTitle" validate:"max=60"`
	TwitterDescription     string `json:"twitterDescription" validate:"max=160"`
	Hreflang               string `json:"hreflang" validate:"max=10"`
	XDefault               string `json:"x_default" validate:"max=10"`
	AuthorName             string `json:"author_name" validate:"max=100"`
}

// RobotsDirectives are the accepted robots values.
var RobotsDirectives = []string{"index, follow", "noindex, nofollow", "index, nofollow", "noindex, follow"}

var formatDetections = []string{"telephone=no", "telephone=yes"}

var seoFieldLabels = map[string]string{
	"title":         "Title",
	"description":   "Description",
	"keywords":      "Keywords",
	"robots":        "Robots",
	"ogTitle":       "OG Title",
	"ogDescription": "OG Description",
	"ogUrl":         "OG URL",
	"twitterCard":   "Twitter Card",
}

// DefaultSEO returns the values the metadata step opens with.
func DefaultSEO(name string) SEOMetadata {
	return SEOMetadata{
		Charset:             "UTF-8",
		XUACompatible:       "IE=edge",
		Viewport:            "width=device-width, initial-scale=1.0",
		Title:               name,
		Robots:              "index, follow",
		ContentLanguage:     "en",
		ThemeColor:          "#ffffff",
		MobileWebAppCapable: true,
		AppleStatusBarStyle: "default",
		FormatDetection:     "telephone=no",
		OgLocale:            "en_US",
		OgTitle:             name,
		OgType:              "product",
		TwitterCard:         "summary_large_image",
	}
}

// ApplySEODefaults fills every blank metadata key of d with its default,
// keeping values already present. The base record is preserved.
func ApplySEODefaults(d Draft) Draft {
	defaults := DefaultSEO(strings.TrimSpace(d.String("name"))).Draft()
	out := d.Clone()
	for k, v := range defaults {
		if _, isBool := v.(bool); isBool {
			if _, present := out[k]; !present {
				out[k] = v
			}
			continue
		}
		if !out.Has(k) {
			out[k] = v
		}
	}
	return out
}

// Draft renders the metadata as draft keys.
func (m SEOMetadata) Draft() Draft {
	b, _ := json.Marshal(m)
	var d Draft
	_ = json.Unmarshal(b, &d)
	return d
}

// SEOFromDraft extracts the metadata keys of d. A description held as a list
// of lines is joined with spaces first.
func SEOFromDraft(d Draft) (SEOMetadata, error) {
	src := d.Clone()
	if _, ok := src["description"].([]any); ok {
		src["description"] = stringify(src["description"])
	}
	for _, k := range seoStringKeys {
		if v, ok := src[k]; ok {
			src[k] = stringify(v)
		}
	}
	if v, ok := src["mobileWebAppCapable"].(string); ok {
		src["mobileWebAppCapable"] = v == "true" || v == "yes"
	}

	b, err := json.Marshal(src)
	if err != nil {
		return SEOMetadata{}, fmt.Errorf("encode metadata: %w", err)
	}
	var m SEOMetadata
	if err := json.Unmarshal(b, &m); err != nil {
		return SEOMetadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

var seoStringKeys = func() []string {
	var keys []string
	for k, v := range DefaultSEO("").Draft() {
		if _, isBool := v.(bool); !isBool {
			keys = append(keys, k)
		}
	}
	return keys
}()

// CheckEnums validates the values whose allowed set contains separators the
// struct tag syntax cannot express.
func (m SEOMetadata) CheckEnums() map[string]string {
	fields := make(map[string]string)
	if m.Robots != "" && !oneOf(m.Robots, RobotsDirectives) {
		fields["robots"] = "must be one of: " + strings.Join(RobotsDirectives, " | ")
	}
	if m.FormatDetection != "" && !oneOf(m.FormatDetection, formatDetections) {
		fields["formatDetection"] = "must be one of: " + strings.Join(formatDetections, " | ")
	}
	return fields
}
