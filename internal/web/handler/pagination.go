package handler

import "github.com/gofiber/fiber/v2"

// DefaultPageSize is the number of rows of a page listing.
const DefaultPageSize = 25

// Page is the pagination state of a rendered listing.
type Page struct {
	CurrentPage int
	PageSize    int
	TotalItems  int64
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
}

// Offset is the row offset of the current page.
func (p Page) Offset() int {
	return (p.CurrentPage - 1) * p.PageSize
}

// PageQuery reads the page and pageSize query parameters.
func PageQuery(c *fiber.Ctx, maxSize int) Page {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > maxSize {
		pageSize = DefaultPageSize
	}

	return Page{CurrentPage: page, PageSize: pageSize}
}

// WithTotal completes p once the total row count is known.
func (p Page) WithTotal(total int64) Page {
	p.TotalItems = total

	p.TotalPages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}

	p.HasPrevPage = p.CurrentPage > 1
	p.HasNextPage = p.CurrentPage < p.TotalPages
	p.PrevPage = p.CurrentPage - 1
	p.NextPage = p.CurrentPage + 1

	return p
}
