package model

// FilterType is the guest-visible filter kind code. Aidoku sources expect
// these exact numeric codes regardless of which variants the host actually
// implements end-to-end (§9 Design Notes: "Filter extensibility").
type FilterType int

const (
	FilterTypeBase      FilterType = 0
	FilterTypeGroup     FilterType = 1
	FilterTypeText      FilterType = 2
	FilterTypeCheckbox  FilterType = 3
	FilterTypeSelect    FilterType = 5
	FilterTypeSort      FilterType = 6
	FilterTypeSortOption FilterType = 7
	FilterTypeTitle     FilterType = 8
	FilterTypeAuthor    FilterType = 9
	FilterTypeGenre     FilterType = 10
)

// SearchFilter is the typed Filter wrapper a search query is encoded as
// before being handed to a source's get_manga_list export. Title is the
// only variant wired end-to-end; the rest exist so object_get's projection
// never traps on a filter type a guest happens to introspect.
type SearchFilter struct {
	Type  FilterType
	Name  string
	Value string
}

// TitleFilter builds the one filter kind rakuyomi's search path actually
// uses.
func TitleFilter(query string) SearchFilter {
	return SearchFilter{Type: FilterTypeTitle, Name: "Title", Value: query}
}
