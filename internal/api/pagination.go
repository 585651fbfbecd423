package api

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type pageParams struct {
	Page  int
	Limit int
}

func (p pageParams) offset() int { return (p.Page - 1) * p.Limit }

// parsePageParams reads page and limit from the query string. Bounds:
// page >= 1, 1 <= limit <= 100. Violations come back as field errors.
func parsePageParams(c echo.Context, fields map[string]string) pageParams {
	p := pageParams{Page: defaultPage, Limit: defaultLimit}

	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fields["page"] = "must be an integer >= 1"
		} else {
			p.Page = n
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			fields["limit"] = "must be an integer between 1 and 100"
		} else {
			p.Limit = n
		}
	}
	return p
}

type pageMeta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func newPageMeta(p pageParams, total int64) pageMeta {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return pageMeta{
		CurrentPage: p.Page,
		TotalPages:  pages,
		TotalCount:  total,
		Limit:       p.Limit,
		HasNextPage: p.Page < pages,
		HasPrevPage: p.Page > 1 && total > 0,
	}
}
