package httputil

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination defaults and bounds for list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps the row offset of any accepted page within an int32.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Page is a validated page request.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip. Pages whose offset would not fit
// in an int32 are clamped to math.MaxInt32, which reads as an empty page.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt32/p.Size {
		return math.MaxInt32
	}
	return (p.Number - 1) * p.Size
}

// PageResponse is the envelope returned by paginated list endpoints.
type PageResponse[T any] struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	Data     []T   `json:"data"`
}

// NewPageResponse wraps data in a PageResponse. A nil slice is encoded as [].
func NewPageResponse[T any](page Page, total int64, data []T) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Page:     page.Number,
		PageSize: page.Size,
		Total:    total,
		Data:     data,
	}
}

// ParsePage parses the page and pageSize query parameters.
// page must be between 1 and MaxPage and pageSize between 1 and MaxPageSize.
func ParsePage(c *gin.Context) (Page, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil || page < 1 {
		return Page{}, fmt.Errorf("invalid page parameter: must be an integer greater than or equal to 1")
	}
	if page > MaxPage {
		return Page{}, fmt.Errorf("invalid page parameter: must not exceed %d", MaxPage)
	}

	size, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(DefaultPageSize)))
	if err != nil || size < 1 || size > MaxPageSize {
		return Page{}, fmt.Errorf("invalid pageSize parameter: must be between 1 and %d", MaxPageSize)
	}

	return Page{Number: page, Size: size}, nil
}
