package dto

// Page defaults applied when query parameters are missing or invalid.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListFilter is the common shape of the paginated list endpoints.
// Status is ignored by endpoints that have no status column.
type ListFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// Offset returns the number of rows to skip for the current page.
func (f ListFilter) Offset() int { return (f.Page - 1) * f.PageSize }

// TotalPages is ceil(total / pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// MessageResponse is returned by endpoints with no body of their own.
type MessageResponse struct {
	Message string `json:"message"`
}
