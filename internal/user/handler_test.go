package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewHandlerRegistersRoleRule(t *testing.T) {
	var h *Handler
	require.NotPanics(t, func() { h = NewHandler(NewDirectory(NewMemoryRepo(), zaptest.NewLogger(t)), zaptest.NewLogger(t)) })

	assert.NoError(t, h.validator.Struct(updateRoleRequest{Role: "tour guide"}))
	assert.Error(t, h.validator.Struct(updateRoleRequest{Role: "superuser"}))
	assert.Error(t, h.validator.Struct(updateRoleRequest{}))
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	dir, _ := newTestDirectory(t)
	h := NewHandler(dir, zaptest.NewLogger(t))
	r := chi.NewRouter()
	r.Patch("/admin/updateRole/{id}", h.UpdateRole)

	req := httptest.NewRequest(http.MethodPatch, "/admin/updateRole/abc", strings.NewReader(`{"role":"superuser"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failed")
}
