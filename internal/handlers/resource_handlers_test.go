package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/solterra/solterra-api/internal/models"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/solterra/solterra-api/internal/services"
	"github.com/stretchr/testify/assert"
)

type mockLotRepo struct {
	repository.LotRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Lot, error)
	mockUpdate   func(ctx context.Context, lot *models.Lot) error
}

func (m *mockLotRepo) FindByID(ctx context.Context, id uint) (*models.Lot, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockLotRepo) Update(ctx context.Context, lot *models.Lot) error {
	return m.mockUpdate(ctx, lot)
}

type mockBlockRepo struct {
	repository.BlockRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Block, error)
	mockUpdate   func(ctx context.Context, block *models.Block) error
}

func (m *mockBlockRepo) FindByID(ctx context.Context, id uint) (*models.Block, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockBlockRepo) Update(ctx context.Context, block *models.Block) error {
	return m.mockUpdate(ctx, block)
}

func toggleRequest(handler func(*gin.Context), paramKey, paramValue, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: paramKey, Value: paramValue}}
	c.Request, _ = http.NewRequest("PUT", "/toggle_active", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestLotHandler_SetActive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	lot := &models.Lot{ID: 4, Number: "A-1", Area: 120, Price: 50000, Status: models.LotStatusAvailable, Active: true}
	var saved *models.Lot
	mockRepo := &mockLotRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lot, error) { return lot, nil },
		mockUpdate:   func(ctx context.Context, l *models.Lot) error { saved = l; return nil },
	}
	handler := NewLotHandler(services.NewLotService(mockRepo, nil, services.NewAuditService(nil)))

	w := toggleRequest(handler.SetActive, "lot_id", "4", `{"active": false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, saved)
	assert.False(t, saved.Active)

	// Repeating the toggle with the same flag is a plain 200
	w = toggleRequest(handler.SetActive, "lot_id", "4", `{"active": false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, saved.Active)

	w = toggleRequest(handler.SetActive, "lot_id", "4", `{"active": true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, saved.Active)
}

func TestBlockHandler_SetActive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	block := &models.Block{ID: 2, ProjectID: 1, Name: "A", Active: true}
	var saved *models.Block
	mockRepo := &mockBlockRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Block, error) { return block, nil },
		mockUpdate:   func(ctx context.Context, b *models.Block) error { saved = b; return nil },
	}
	handler := NewBlockHandler(services.NewBlockService(mockRepo, nil, services.NewAuditService(nil)))

	w := toggleRequest(handler.SetActive, "block_id", "2", `{"active": false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, saved)
	assert.False(t, saved.Active)
	assert.Contains(t, w.Body.String(), `"active":false`)
}
