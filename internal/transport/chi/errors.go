package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/jobsearch/internal/domain"
)

// errorCode is the machine-readable error code in error responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidation       errorCode = "validation_failed"
	codeUnauthorized     errorCode = "unauthorized"
	codeStoreUnavailable errorCode = "store_unavailable"
	codeTimeout          errorCode = "timeout"
	codeInternal         errorCode = "internal_error"
)

// statusClientClosedRequest is written when the caller went away before the response.
const statusClientClosedRequest = 499

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		clientGoneHandler,
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, codeTimeout, "search timed out"),
		invalidQueryHandler,
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable,
			"job search is temporarily unavailable"),
	}
}

func sentinelHandler(sentinel error, status int, code errorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidQueryHandler echoes the message; ErrInvalidQuery errors are built from user input.
func invalidQueryHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	return true
}

func clientGoneHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, context.Canceled) {
		return false
	}
	w.WriteHeader(statusClientClosedRequest)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// validationMessage reports the first failing field.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		if fe.Param() != "" {
			return fmt.Sprintf("validation error: %s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("validation error: %s is %s", fe.Field(), fe.Tag())
	}
	return "validation error: invalid request"
}
