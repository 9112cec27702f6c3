package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// NextOffset returns the offset of the following page, or -1 on the last page.
func (p Pagination) NextOffset() int {
	if p.Offset+p.Limit < p.Total {
		return p.Offset + p.Limit
	}
	return -1
}

// SetLinkHeaders adds RFC 8288 Link headers (first, prev, next, last) for a page.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, c.Path(), offset, p.Limit, rel)
	}

	// first
	links := []string{link(0, "first")}
	// prev
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	// next
	if next := p.NextOffset(); next >= 0 {
		links = append(links, link(next, "next"))
	}
	// last
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set(fiber.HeaderLink, strings.Join(links, ", "))
	c.Set("X-Total-Count", fmt.Sprint(p.Total))
}
