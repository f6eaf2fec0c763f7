package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jisort/user-task-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page    int
	PerPage int
	Offset  int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationResponse builds pagination metadata from a total row count.
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	totalPages := int(total) / params.PerPage
	if int(total)%params.PerPage > 0 {
		totalPages++
	}
	return PaginationResponse{
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// GetPaginationParams extracts and validates pagination parameters from the
// request. per_page is capped server-side.
func GetPaginationParams(c *gin.Context, defaultPerPage, maxPerPage int) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))

	if page < constants.MinPage {
		page = constants.MinPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	offset := (page - 1) * perPage

	return PaginationParams{
		Page:    page,
		PerPage: perPage,
		Offset:  offset,
	}
}

// GetSortParams extracts sort_by/sort_order, restricted to a column whitelist.
// Returns false when sort_by names a column outside the whitelist.
func GetSortParams(c *gin.Context, allowed []string, defaultColumn string) (string, string, bool) {
	sortBy := c.DefaultQuery("sort_by", defaultColumn)
	sortOrder := strings.ToLower(c.DefaultQuery("sort_order", "desc"))

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	for _, col := range allowed {
		if sortBy == col {
			return sortBy, sortOrder, true
		}
	}
	return "", "", false
}
