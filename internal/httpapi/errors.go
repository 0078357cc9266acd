package httpapi

import (
	"encoding/json"
	"net/http"
)

// APIError is the error member of the response envelope.
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

type envelope struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

// writeError renders e; data may be nil or carry a partial result.
func writeError(w http.ResponseWriter, e *APIError, data any) {
	writeJSON(w, e.Status, envelope{Data: data, Error: e})
}

func errInvalidParams(details map[string]string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_parameters",
		Message: "Invalid query parameters",
		Details: details,
	}
}
