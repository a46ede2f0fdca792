package list

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-payments/internal/http/response"
	"github.com/magabrotheeeer/subscription-payments/internal/models"
)

type staticCatalog struct{}

func (staticCatalog) List() []models.Plan {
	return []models.Plan{
		{ID: 1, Name: "Basic Plan", Price: 500, Duration: "monthly"},
		{ID: 2, Name: "Premium Plan", Price: 1000, Duration: "monthly"},
	}
}

func TestListHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	handler := New(logger, staticCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, response.StatusOK, resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	plans, ok := data["plans"].([]any)
	require.True(t, ok)
	assert.Len(t, plans, 2)
}
