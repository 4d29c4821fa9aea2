package response

// ListResponse is the standard wrapper for unpaginated list endpoints.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewListResponse is a helper to quickly create a response
func NewListResponse[T any](items []T) ListResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	return ListResponse[T]{
		Items: items,
		Total: len(items),
	}
}
