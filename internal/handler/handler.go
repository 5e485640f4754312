package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"froid-storefront/internal/backend"
	"froid-storefront/internal/checkout"
	"froid-storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code. The
// status is already sent when encoding fails, so the error is only
// logged.
func writeJSON(w http.ResponseWriter, status int, data any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message}, logger)
}

// writeServiceError maps an error returned by a service to a response.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var (
		verr *checkout.ValidationError
		serr *checkout.SubmitError
		derr *model.DomainError
	)

	switch {
	case errors.As(err, &verr):
		fields := verr.Fields
		message := "Please correct the highlighted fields"
		if verr.Cart != "" {
			message = verr.Cart
			fields = make(map[string]string, len(verr.Fields)+1)
			for k, v := range verr.Fields {
				fields[k] = v
			}
			fields["cart"] = verr.Cart
		}
		logger.Debug().Interface("fields", fields).Msg("validation failed")
		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: message,
			Fields:  fields,
		}, logger)

	case errors.As(err, &serr):
		switch serr.Status {
		case http.StatusUnauthorized:
			writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, serr.Message, logger)
		case http.StatusForbidden:
			writeError(w, http.StatusForbidden, model.ErrCodeForbidden, serr.Message, logger)
		default:
			writeError(w, http.StatusBadGateway, model.ErrCodeOrderSubmissionFailed, serr.Message, logger)
		}

	case errors.As(err, &derr):
		writeError(w, domainStatus(derr.Code), derr.Code, derr.Message, logger)

	case errors.Is(err, context.Canceled):
		// Client went away; nobody is left to read a response.
		logger.Debug().Err(err).Msg("request canceled")

	case isBackendError(err):
		logger.Warn().Err(err).Msg("backend unavailable")
		writeError(w, http.StatusBadGateway, model.ErrCodeBackendUnavailable,
			"The service is temporarily unavailable. Please try again.", logger)

	default:
		logger.Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
	}
}

func domainStatus(code string) int {
	switch code {
	case model.ErrCodeProductNotFound, model.ErrCodeNotFound, model.ErrCodeLineNotFound, model.ErrCodeFeatureDisabled:
		return http.StatusNotFound
	case model.ErrCodeProductUnavailable, model.ErrCodeSubmissionInProgress, model.ErrCodeListingNotActive:
		return http.StatusConflict
	case model.ErrCodeGuestCheckoutDisabled, model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

func isBackendError(err error) bool {
	var se *backend.StatusError
	var ue *url.Error
	return errors.As(err, &se) || errors.As(err, &ue) || errors.Is(err, context.DeadlineExceeded)
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger zerolog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// pathID parses the int64 URL parameter name.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid "+name, logger)
		return 0, false
	}
	return id, true
}
