package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/contact-form-service/internal/model"
	"gitlab.com/dirk.krummacker/contact-form-service/internal/store"
	api "gitlab.com/dirk.krummacker/contact-form-service/pkg/model"
)

const internalErrorMessage = "Internal server error"

// classify maps an error to the status code and body the client sees.
// Unknown errors become INTERNAL SERVER ERROR with the given fallback
// message; their text never reaches the client.
func classify(err error, fallback string) (int, api.Failure) {
	if fallback == "" {
		fallback = internalErrorMessage
	}

	var fieldErr *model.FieldError
	var validationErr *store.ValidationError
	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, api.Failure{Message: "Invalid request body"}
	case errors.Is(err, model.ErrMissingField) && errors.As(err, &fieldErr):
		return http.StatusBadRequest, api.Failure{
			Message: "All fields are required",
			Errors:  fieldErr.Messages(),
		}
	case errors.Is(err, model.ErrInvalidEmail) && errors.As(err, &fieldErr):
		return http.StatusBadRequest, api.Failure{
			Message: "Please provide a valid email address",
			Errors:  fieldErr.Messages(),
		}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, api.Failure{
			Message: "Validation error",
			Errors:  validationErr.Messages,
		}
	case errors.Is(err, store.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, api.Failure{
			Message: "Database connection not available. Please try again later.",
		}
	case errors.Is(err, store.ErrSaveTimeout):
		return http.StatusServiceUnavailable, api.Failure{
			Message: "Database operation timed out. Please check your connection and try again.",
		}
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		return http.StatusNotFound, api.Failure{Message: "Contact not found"}
	default:
		return http.StatusInternalServerError, api.Failure{Message: fallback}
	}
}

// fail logs err and aborts the request with the matching error response.
func fail(c *gin.Context, err error, fallback string) {
	status, body := classify(err, fallback)
	logger := requestLogger(c).With("status", status, "err", err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed")
	} else {
		logger.Warn("request rejected")
	}
	c.AbortWithStatusJSON(status, body)
}

// requestLogger returns the default logger annotated with the request's
// route and id.
func requestLogger(c *gin.Context) *slog.Logger {
	return slog.With(
		"request_id", c.GetString(requestIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}
