package pagination

// Page is one window over an ordered result set, together with the totals a
// client needs to walk the remaining pages. Pages are 1-based.
type Page[T any] struct {
	Items        []T
	PageSize     int
	PageNumber   int
	TotalRecords int
	TotalPages   int
}

func NewPage[T any](items []T, pageSize, pageNumber, totalRecords int) Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return Page[T]{
		Items:        items,
		PageSize:     pageSize,
		PageNumber:   pageNumber,
		TotalRecords: totalRecords,
		TotalPages:   TotalPages(totalRecords, pageSize),
	}
}

// TotalPages is ceil(totalRecords/pageSize); 0 when there are no records.
func TotalPages(totalRecords, pageSize int) int {
	if totalRecords == 0 {
		return 0
	}
	return (totalRecords + pageSize - 1) / pageSize
}

// Offset converts a 1-based page number into the number of records to skip.
func Offset(pageNumber, pageSize int) int {
	return (pageNumber - 1) * pageSize
}
