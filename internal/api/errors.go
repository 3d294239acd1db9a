package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/http/response"
	"github.com/listenupapp/bookshelf-server/internal/i18n"
)

// APIError is a custom error type that implements huma.StatusError.
// Every failure leaves the API as a fail envelope.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Status  string `json:"status" enum:"fail" doc:"Always fail"`
	Message string `json:"message" doc:"Human-readable error message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

func newAPIError(status int, message string) *APIError {
	return &APIError{status: status, Status: response.StatusFail, Message: message}
}

// RegisterErrorHandler configures huma to render domain errors and its own
// request errors as fail envelopes. Request errors use the localized
// payload message when the request carries a catalog (see withMessages).
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = newError
	huma.NewErrorWithContext = func(ctx huma.Context, status int, message string, errs ...error) huma.StatusError {
		if ctx != nil && (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) {
			if msgs := messagesFromContext(ctx.Context()); msgs != nil {
				message = msgs.Get(i18n.InvalidPayload)
			}
		}
		return huma.NewError(status, message, errs...)
	}
}

func newError(status int, message string, errs ...error) huma.StatusError {
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return fromDomainError(domainErr)
		}
	}

	// Schema and parse failures are client errors.
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}
	if status == http.StatusBadRequest && len(errs) > 0 {
		message = message + ": " + errs[0].Error()
	}

	return newAPIError(status, message)
}

// apiError converts an error returned by the service into an APIError.
func apiError(err error) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return fromDomainError(domainErr)
	}
	return newAPIError(http.StatusInternalServerError, "internal server error")
}

func fromDomainError(err *domainerrors.Error) *APIError {
	status := err.HTTPStatus()
	if status >= http.StatusInternalServerError {
		return newAPIError(status, "internal server error")
	}
	return newAPIError(status, err.Message)
}
