package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorResponse is the uniform error envelope written at the HTTP boundary.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Method     string `json:"method"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// WriteError writes err as the uniform error envelope. The message comes from
// the structured error's outward-facing Message; wrapped detail stays server
// side.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorCodeToHTTPStatus(GetCode(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       r.URL.Path,
		Method:     r.Method,
		Message:    GetMessage(err),
		Error:      http.StatusText(status),
	})
}
