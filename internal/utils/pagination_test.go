package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/users"+query, nil)
	return c
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := GetPaginationParams(contextWithQuery(""), 15, 100)

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 15, params.PerPage)
	assert.Equal(t, 0, params.Offset)
}

func TestGetPaginationParamsOffset(t *testing.T) {
	params := GetPaginationParams(contextWithQuery("?page=3&per_page=20"), 15, 100)

	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 20, params.PerPage)
	assert.Equal(t, 40, params.Offset)
}

func TestGetPaginationParamsCapsPerPage(t *testing.T) {
	params := GetPaginationParams(contextWithQuery("?per_page=500"), 15, 100)
	assert.Equal(t, 100, params.PerPage)
}

func TestGetPaginationParamsRejectsGarbage(t *testing.T) {
	params := GetPaginationParams(contextWithQuery("?page=-2&per_page=abc"), 15, 100)

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 15, params.PerPage)
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(PaginationParams{Page: 2, PerPage: 15}, 31)

	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, int64(31), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
}

func TestGetSortParams(t *testing.T) {
	allowed := []string{"id", "username", "created_at"}

	sortBy, sortOrder, ok := GetSortParams(contextWithQuery(""), allowed, "created_at")
	assert.True(t, ok)
	assert.Equal(t, "created_at", sortBy)
	assert.Equal(t, "desc", sortOrder)

	sortBy, sortOrder, ok = GetSortParams(contextWithQuery("?sort_by=username&sort_order=ASC"), allowed, "created_at")
	assert.True(t, ok)
	assert.Equal(t, "username", sortBy)
	assert.Equal(t, "asc", sortOrder)

	_, _, ok = GetSortParams(contextWithQuery("?sort_by=password_hash"), allowed, "created_at")
	assert.False(t, ok)
}
