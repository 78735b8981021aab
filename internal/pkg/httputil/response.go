// Package httputil provides HTTP response helpers, the domain error
// mapper, and the request middleware stack.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// JSON writes a raw JSON response.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Error writes a JSON error response with {"code": ..., "message": ...} body.
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// ValidationError writes a 400 response for request body validation failures.
// validator.ValidationErrors are flattened to a "field: tag" list in the message.
func ValidationError(w http.ResponseWriter, err error) {
	var message string
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		parts := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			parts = append(parts, e.Field()+": "+e.Tag())
		}
		message = "validation error: " + strings.Join(parts, ", ")
	} else {
		message = "validation error: " + err.Error()
	}

	Error(w, http.StatusBadRequest, CodeInvalidArguments, message)
}
