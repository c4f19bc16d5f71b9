package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestParseListQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		url         string
		page        int
		perPage     int
		search      string
		sortBy      string
		preselected uint
	}{
		{
			name: "Defaults", url: "/items",
			page: 1, perPage: 20,
		},
		{
			name: "Explicit values",
			url:  "/items?page=3&pageSize=50&search=sol&orderBy=created_at&orderDirection=desc&preselectedId=7",
			page: 3, perPage: 50, search: "sol", sortBy: "created_at", preselected: 7,
		},
		{
			name: "Page size capped at 100", url: "/items?pageSize=500",
			page: 1, perPage: 100,
		},
		{
			name: "Invalid page and size ignored", url: "/items?page=-2&pageSize=0",
			page: 1, perPage: 20,
		},
		{
			name: "Unsafe orderBy discarded", url: "/items?orderBy=price,name",
			page: 1, perPage: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest("GET", tt.url, nil)

			query := parseListQuery(c)
			assert.Equal(t, tt.page, query.Page)
			assert.Equal(t, tt.perPage, query.PerPage)
			assert.Equal(t, tt.search, query.Search)
			assert.Equal(t, tt.sortBy, query.SortBy)
			assert.Equal(t, tt.preselected, query.PreselectedID)
		})
	}
}

func TestPaginatedEnvelope(t *testing.T) {
	query := &repository.ListQuery{Page: 2, PerPage: 10}
	body := paginated([]string{"a"}, query, 35)

	meta := body["meta"].(gin.H)
	assert.Equal(t, int64(35), meta["total"])
	assert.Equal(t, 2, meta["page"])
	assert.Equal(t, 10, meta["pageSize"])
	assert.Equal(t, int64(4), meta["totalPages"])
	assert.Equal(t, true, meta["hasNext"])
	assert.Equal(t, true, meta["hasPrevious"])

	last := paginated(nil, &repository.ListQuery{Page: 4, PerPage: 10}, 35)
	assert.Equal(t, false, last["meta"].(gin.H)["hasNext"])
}
