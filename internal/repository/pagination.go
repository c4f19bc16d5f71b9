package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ListQuery represents common query parameters
type ListQuery struct {
	Page          int
	PerPage       int
	Search        string
	SortBy        string
	SortDir       string
	PreselectedID uint
	Filters       map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// excludePreselected drops the pinned record from pages after the first,
// so a typeahead re-displaying a chosen item never shows it twice.
// Must be applied after counting so the total stays page-independent.
func excludePreselected(db *gorm.DB, query *ListQuery, idColumn string) *gorm.DB {
	if query.PreselectedID > 0 && query.Page > 1 {
		db = db.Where(idColumn+" <> ?", query.PreselectedID)
	}
	return db
}

// applyListOptions applies preselected pinning, sorting and pagination.
// The pinning order goes first so the preselected record leads page 1
// regardless of the requested sort.
func applyListOptions(db *gorm.DB, query *ListQuery, idColumn, defaultOrder string) *gorm.DB {
	if query.PreselectedID > 0 && query.Page <= 1 {
		db = db.Order(fmt.Sprintf("CASE WHEN %s = %d THEN 0 ELSE 1 END ASC", idColumn, query.PreselectedID))
	}

	if query.SortBy != "" {
		order := query.SortBy
		if strings.ToLower(query.SortDir) == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else if defaultOrder != "" {
		db = db.Order(defaultOrder)
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	return db
}
