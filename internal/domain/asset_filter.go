package domain

// AssetFilter represents repository-level filtering options for listing
// assets. Interactive per-view filtering happens in the tabular engine; this
// filter narrows what gets loaded from storage in the first place.
type AssetFilter struct {
	AssetType       AssetType
	System          string
	PropertyFilters []PropertyFilter
	TextSearch      string
}

// PropertyFilter represents a property-level filter.
type PropertyFilter struct {
	Key    string
	Value  string
	Exists *bool
}

// Empty reports whether no clause is set.
func (f *AssetFilter) Empty() bool {
	if f == nil {
		return true
	}
	return f.AssetType == "" && f.System == "" && len(f.PropertyFilters) == 0 && f.TextSearch == ""
}
