package httputil_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"student-management/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/students/5", nil)
	w := httptest.NewRecorder()

	httputil.RespondWithError(w, req, http.StatusNotFound, "Student not found with id: 5")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var e httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&e))
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, "Not Found", e.Error)
	assert.Equal(t, "Student not found with id: 5", e.Message)
	assert.Equal(t, "/api/students/5", e.Path)
	assert.False(t, e.Timestamp.IsZero())
	assert.Nil(t, e.FieldErrors)
}

func TestRespondWithValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/students", nil)
	w := httptest.NewRecorder()

	httputil.RespondWithValidationError(w, req, map[string]string{
		"name":  "Name is required",
		"email": "Email should be valid",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var e httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&e))
	assert.Equal(t, "Validation failed", e.Message)
	assert.Equal(t, "Name is required", e.FieldErrors["name"])
	assert.Equal(t, "Email should be valid", e.FieldErrors["email"])
}

func TestFieldErrorsOmittedWhenEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	w := httptest.NewRecorder()

	httputil.RespondWithError(w, req, http.StatusInternalServerError, "Internal server error")

	assert.NotContains(t, w.Body.String(), "fieldErrors")
}
