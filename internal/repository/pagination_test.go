package repository

import (
	"strings"
	"testing"

	"github.com/solterra/solterra-api/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB builds a gorm handle that renders SQL without touching a
// database, so the generated clauses can be asserted directly.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=solterra dbname=solterra_test"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func buildListSQL(t *testing.T, query *ListQuery) string {
	t.Helper()
	db := dryRunDB(t)

	tx := db.Model(&models.Project{})
	tx = excludePreselected(tx, query, "projects.id")
	tx = applyListOptions(tx, query, "projects.id", "created_at DESC")

	var projects []models.Project
	return tx.Find(&projects).Statement.SQL.String()
}

func TestApplyListOptions_PreselectedLeadsFirstPage(t *testing.T) {
	query := NewListQuery()
	query.PreselectedID = 7
	query.SortBy = "name"
	query.SortDir = "desc"

	sql := buildListSQL(t, query)

	// The pin must come before the requested sort so the preselected
	// record leads page 1 regardless of ordering
	pinIdx := strings.Index(sql, "CASE WHEN projects.id = 7 THEN 0 ELSE 1 END")
	sortIdx := strings.Index(sql, "name DESC")
	assert.GreaterOrEqual(t, pinIdx, 0)
	assert.Greater(t, sortIdx, pinIdx)

	// Page 1 never filters the preselected record out
	assert.NotContains(t, sql, "projects.id <>")
}

func TestExcludePreselected_DropsRecordAfterFirstPage(t *testing.T) {
	query := NewListQuery()
	query.PreselectedID = 7
	query.Page = 2

	sql := buildListSQL(t, query)

	assert.Contains(t, sql, "projects.id <>")
	assert.NotContains(t, sql, "CASE WHEN")
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
}

func TestApplyListOptions_NoPreselected(t *testing.T) {
	sql := buildListSQL(t, NewListQuery())

	assert.NotContains(t, sql, "CASE WHEN")
	assert.NotContains(t, sql, "projects.id <>")
	assert.Contains(t, sql, "created_at DESC")
}
