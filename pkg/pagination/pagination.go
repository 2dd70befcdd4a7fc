package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page     int
	PageSize int
}

// FromContext extracts pagination parameters from the echo context.
// Out-of-range values are clamped rather than rejected.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = DefaultPage
	}

	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return Params{Page: page, PageSize: size}
}

// Limit returns the SQL LIMIT for the current page.
func (p Params) Limit() int {
	return p.PageSize
}

// Offset returns the SQL OFFSET for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Meta describes the position of a page within the full result set.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Response wraps a paginated API response.
type Response struct {
	Items interface{} `json:"items"`
	Meta  Meta        `json:"meta"`
}

func NewResponse(items interface{}, total int, p Params) *Response {
	totalPages := total / p.PageSize
	if total%p.PageSize != 0 {
		totalPages++
	}
	return &Response{
		Items: items,
		Meta: Meta{
			Total:      total,
			Page:       p.Page,
			PageSize:   p.PageSize,
			TotalPages: totalPages,
		},
	}
}
