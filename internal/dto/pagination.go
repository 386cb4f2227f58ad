package dto

// PaginationMetadata describes one page of a listing. It is sent in the X-Pagination header.
type PaginationMetadata struct {
	TotalItemCount int `json:"totalItemCount"`
	PageSize       int `json:"pageSize"`
	CurrentPage    int `json:"currentPage"`
	TotalPageCount int `json:"totalPageCount"`
}

// NewPaginationMetadata computes the page count as ceil(total / pageSize)
func NewPaginationMetadata(totalItemCount, pageSize, currentPage int) PaginationMetadata {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItemCount + pageSize - 1) / pageSize
	}
	return PaginationMetadata{
		TotalItemCount: totalItemCount,
		PageSize:       pageSize,
		CurrentPage:    currentPage,
		TotalPageCount: totalPages,
	}
}

// PageBounds returns the [start, end) slice indexes of page pageNumber over total items.
// Pages past the end yield an empty range.
func PageBounds(total, pageNumber, pageSize int) (int, int) {
	if pageNumber < 1 || pageSize < 1 {
		return 0, 0
	}
	// Compare page indexes before multiplying so huge page numbers cannot overflow
	if total <= 0 || pageNumber-1 > (total-1)/pageSize {
		return total, total
	}
	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
