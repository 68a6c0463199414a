package domain

// FilterDefinition describes where an option list is fetched and which draft
// field it binds to. ParentField is set for sub-filters.
type FilterDefinition struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	APIPath     string `json:"apiPath"`
	ParentField string `json:"parentField,omitempty"`
}

// IsSub reports whether the definition depends on a parent selection.
func (f FilterDefinition) IsSub() bool {
	return f.ParentField != ""
}

var topLevelFilters = []FilterDefinition{
	{Name: "newCategoryId", Label: "Category", APIPath: "/api/newcategory/view"},
	{Name: "structureId", Label: "Structure", APIPath: "/api/structure/view"},
	{Name: "contentId", Label: "Content", APIPath: "/api/content/view"},
	{Name: "finishId", Label: "Finish", APIPath: "/api/finish/view"},
	{Name: "designId", Label: "Design", APIPath: "/api/design/view"},
	{Name: "colorId", Label: "Color", APIPath: "/api/color/view"},
	{Name: "motifsizeId", Label: "Motif Size", APIPath: "/api/motif/view"},
	{Name: "suitableforId", Label: "Suitable For", APIPath: "/api/suitablefor/view"},
	{Name: "vendorId", Label: "Vendor", APIPath: "/api/vendor/view"},
	{Name: "groupcodeId", Label: "Group Code", APIPath: "/api/groupcode/view"},
}

var subFilters = []FilterDefinition{
	{Name: "subStructureId", Label: "Sub Structure", APIPath: "/api/substructure/view", ParentField: "structureId"},
	{Name: "subFinishId", Label: "Sub Finish", APIPath: "/api/subfinish/view", ParentField: "finishId"},
	{Name: "subSuitableId", Label: "Sub Suitable For", APIPath: "/api/subsuitable/view", ParentField: "suitableforId"},
}

// TopLevelFilters returns a copy of the independent filter table.
func TopLevelFilters() []FilterDefinition {
	return append([]FilterDefinition(nil), topLevelFilters...)
}

// SubFilters returns a copy of the dependent filter table.
func SubFilters() []FilterDefinition {
	return append([]FilterDefinition(nil), subFilters...)
}

// LookupFilter finds a definition in either table by field name.
func LookupFilter(name string) (FilterDefinition, bool) {
	for _, def := range topLevelFilters {
		if def.Name == name {
			return def, true
		}
	}
	for _, def := range subFilters {
		if def.Name == name {
			return def, true
		}
	}
	return FilterDefinition{}, false
}

// SubFiltersAffectedBy returns the sub-filters to re-resolve when field
// changes: the sub-filter itself, or the sub-filters whose parent it is.
func SubFiltersAffectedBy(field string) []FilterDefinition {
	var out []FilterDefinition
	for _, def := range subFilters {
		if def.Name == field || def.ParentField == field {
			out = append(out, def)
		}
	}
	return out
}

// OptionFields lists every draft field holding an option reference.
func OptionFields() []string {
	out := make([]string, 0, len(topLevelFilters)+len(subFilters))
	for _, def := range topLevelFilters {
		out = append(out, def.Name)
	}
	for _, def := range subFilters {
		out = append(out, def.Name)
	}
	return out
}

// Filter is a loaded option list for one definition.
type Filter struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Options []Option `json:"options"`
}

// FilterSet is the result of loading every top-level definition. A failed
// definition keeps an empty option list and an entry in Errors.
type FilterSet struct {
	Filters   []Filter          `json:"filters"`
	IsLoading bool              `json:"isLoading"`
	Errors    map[string]string `json:"errors"`
}

// Options returns the option list loaded for name.
func (s FilterSet) Options(name string) []Option {
	for _, f := range s.Filters {
		if f.Name == name {
			return f.Options
		}
	}
	return nil
}
