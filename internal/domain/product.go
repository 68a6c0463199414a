package domain

import "strings"

// MaxRelatedProducts caps the related products list.
const MaxRelatedProducts = 6

// ProductSummary is the listing view of a backend product.
type ProductSummary struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	SKU               string  `json:"sku"`
	Slug              string  `json:"slug,omitempty"`
	ProductIdentifier string  `json:"productIdentifier,omitempty"`
	LocationCode      string  `json:"locationCode,omitempty"`
	CategoryID        string  `json:"categoryId,omitempty"`
	CategoryName      string  `json:"categoryName,omitempty"`
	GroupCodeID       string  `json:"groupcodeId,omitempty"`
	SalesPrice        float64 `json:"salesPrice"`
	Currency          string  `json:"currency,omitempty"`
	GSM               float64 `json:"gsm,omitempty"`
	Oz                float64 `json:"oz,omitempty"`
	Image             string  `json:"image,omitempty"`
}

// SummarizeProduct extracts the listing view of a raw backend record.
func SummarizeProduct(rec map[string]any) ProductSummary {
	d := Draft(rec)
	p := ProductSummary{
		ID:                ResolveID(rec),
		Name:              d.String("name"),
		SKU:               d.String("sku"),
		Slug:              d.String("slug"),
		ProductIdentifier: d.String("productIdentifier"),
		LocationCode:      d.String("locationCode"),
		CategoryID:        ResolveID(rec["newCategoryId"]),
		GroupCodeID:       ResolveID(rec["groupcodeId"]),
		Currency:          d.String("currency"),
		Image:             d.String("image"),
	}
	if cat, ok := rec["newCategoryId"].(map[string]any); ok {
		p.CategoryName = resolveName(cat)
	}
	p.SalesPrice, _ = d.Number("salesPrice")
	p.GSM, _ = d.Number("gsm")
	p.Oz, _ = d.Number("oz")
	return p
}

// Matches reports whether the product matches a case-insensitive query on
// name, sku, identifier, location code or category. A blank query matches.
func (p ProductSummary) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, v := range []string{p.Name, p.SKU, p.ProductIdentifier, p.LocationCode, p.CategoryID, p.CategoryName} {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// DashboardSummary backs the dashboard cards.
type DashboardSummary struct {
	ProductCount int               `json:"productCount"`
	OptionCounts map[string]int    `json:"optionCounts"`
	Errors       map[string]string `json:"errors,omitempty"`
}
