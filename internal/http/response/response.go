// Package response writes the bookshelf JSON envelopes for handlers that run
// outside huma, such as router fallbacks and middleware rejections.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Envelope is the outer shape of every API response.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Success writes a success envelope carrying data.
func Success(w http.ResponseWriter, status int, message string, data any, logger *slog.Logger) {
	JSON(w, status, Envelope{Status: StatusSuccess, Message: message, Data: data}, logger)
}

// Fail writes a fail envelope.
func Fail(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	JSON(w, status, Envelope{Status: StatusFail, Message: message}, logger)
}

// NotFound writes a 404 fail envelope.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Fail(w, http.StatusNotFound, message, logger)
}

// TooManyRequests writes a 429 fail envelope.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Fail(w, http.StatusTooManyRequests, message, logger)
}

// HandleError writes a fail envelope for err. Domain errors keep their status
// and message, anything else becomes a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		Fail(w, domainErr.HTTPStatus(), domainErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Fail(w, http.StatusInternalServerError, "internal server error", logger)
}
