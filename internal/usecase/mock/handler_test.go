package mock

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func TestHandler_ServesMatchedMock(t *testing.T) {
	tbl, err := NewTable([]domain.RouteMock{{
		Pattern: "**/api/admin/login",
		Method:  domain.MethodPost,
		Body:    domain.BodySpec{Type: domain.BodyJSON, JSON: map[string]any{"success": true}},
	}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "http://localhost:3900/api/admin/login",
		strings.NewReader(`{"username":"admin"}`))
	rec := httptest.NewRecorder()
	tbl.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	hits := tbl.Results()[0].Hits
	require.Len(t, hits, 1)
	assert.Equal(t, `{"username":"admin"}`, hits[0].Body)
	assert.Equal(t, "http://localhost:3900/api/admin/login", hits[0].URL)
}

func TestHandler_UnmatchedIs404(t *testing.T) {
	tbl, err := NewTable(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	tbl.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost:3900/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_DelayAndStatus(t *testing.T) {
	tbl, err := NewTable([]domain.RouteMock{{
		Pattern: "**/slow",
		Status:  503,
		DelayMS: 30,
		Body:    domain.BodySpec{Type: domain.BodyRaw, Raw: "busy"},
	}})
	require.NoError(t, err)

	start := time.Now()
	rec := httptest.NewRecorder()
	tbl.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://h/slow", nil))

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 503, rec.Code)
	assert.Equal(t, "busy", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}
