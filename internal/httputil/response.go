package httputil

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorResponse is the envelope returned for every API error.
// FieldErrors is only present for validation failures.
type ErrorResponse struct {
	Timestamp   time.Time         `json:"timestamp"`
	Status      int               `json:"status"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Path        string            `json:"path"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes the standard error envelope
func RespondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    code,
		Error:     http.StatusText(code),
		Message:   message,
		Path:      r.URL.Path,
	})
}

// RespondWithValidationError writes a 400 envelope carrying per-field messages
func RespondWithValidationError(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
		Timestamp:   time.Now().UTC(),
		Status:      http.StatusBadRequest,
		Error:       http.StatusText(http.StatusBadRequest),
		Message:     "Validation failed",
		Path:        r.URL.Path,
		FieldErrors: fieldErrors,
	})
}
