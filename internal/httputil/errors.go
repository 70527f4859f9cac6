package httputil

import (
	"encoding/json"
	"net/http"
)

// APIError is the error body returned by the inference proxy.
type APIError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes an {"status":"ERROR"} body. detail is omitted when empty.
func WriteError(w http.ResponseWriter, requestID string, statusCode int, message, detail string) {
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	WriteJSON(w, statusCode, APIError{
		Status:  "ERROR",
		Message: message,
		Error:   detail,
	})
}

func WriteBadRequestError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusBadRequest, message, "")
}

func WriteInternalError(w http.ResponseWriter, requestID, message, detail string) {
	WriteError(w, requestID, http.StatusInternalServerError, message, detail)
}

func WriteRateLimitError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusTooManyRequests, message, "")
}

func WriteContentBlockedError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusBadRequest, message, "content_blocked")
}

// WriteMethodNotAllowed writes the {"error": ...} body the fulfillment endpoints
// answer non-POST requests with.
func WriteMethodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", http.MethodPost)
	WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Méthode non autorisée"})
}
