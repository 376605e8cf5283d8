package record

// DefaultPageSize is the number of rows shown on one page of the table.
const DefaultPageSize = 5

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64 // Total number of records
	Page       int64 // Current page number (1-based)
	Limit      int64 // Number of records per page
	TotalPages int64 // Total number of pages
}

// NewPagination creates a new Pagination instance with calculated total pages.
func NewPagination(total, page, limit int64) *Pagination {
	return &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages returns ceil(total/limit). A non-positive limit yields zero pages.
func TotalPages(total, limit int64) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// PageBounds returns the [start, end) slice bounds of page within a list of total items.
// Pages beyond the end of the list yield an empty range.
func PageBounds(total, page, limit int64) (start, end int64) {
	if total <= 0 || limit <= 0 {
		return 0, 0
	}
	if page < 1 {
		page = 1
	}
	// Checked before multiplying so huge page numbers cannot overflow.
	if page-1 >= TotalPages(total, limit) {
		return total, total
	}
	start = (page - 1) * limit
	end = start + limit
	if end > total {
		end = total
	}
	return start, end
}

// ClampPage moves page back onto the last non-empty page after the list shrank.
func ClampPage(page, total, limit int64) int64 {
	totalPages := TotalPages(total, limit)
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}
