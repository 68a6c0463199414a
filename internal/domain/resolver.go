package domain

// Resolution is the outcome of resolving one dependent filter against its
// parent selection.
type Resolution struct {
	Filter   string   `json:"filter"`
	Parent   string   `json:"parent"`
	Visible  []Option `json:"visibleOptions"`
	Selected string   `json:"selected"`
	Cleared  bool     `json:"cleared"`
}

// ResolveSubOptions keeps the sub-options whose parent equals parent. A
// selection outside that set stays visible when it still exists in all and
// is cleared when it does not. An empty parent shows nothing and clears.
func ResolveSubOptions(parent string, all []Option, selected string) Resolution {
	res := Resolution{Parent: parent, Visible: []Option{}, Selected: selected}

	if parent == "" {
		res.Selected = ""
		res.Cleared = selected != ""
		return res
	}

	for _, opt := range all {
		if opt.ParentID == parent {
			res.Visible = append(res.Visible, opt)
		}
	}

	if selected == "" || ContainsOption(res.Visible, selected) {
		return res
	}

	for _, opt := range all {
		if opt.ID == selected {
			res.Visible = append(res.Visible, opt)
			return res
		}
	}

	res.Selected = ""
	res.Cleared = true
	return res
}

// ReconcileDraft resolves def against the draft's current parent and
// selection and writes the reconciled selection back into a copy.
func ReconcileDraft(d Draft, def FilterDefinition, all []Option) (Draft, Resolution) {
	res := ResolveSubOptions(ResolveID(d[def.ParentField]), all, ResolveID(d[def.Name]))
	res.Filter = def.Name

	out := d.Clone()
	if _, present := d[def.Name]; present || res.Cleared {
		out[def.Name] = res.Selected
	}
	return out, res
}
