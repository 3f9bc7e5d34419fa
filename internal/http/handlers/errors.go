// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, while
// the message is for display. Generic codes mirror HTTP status semantics;
// the cellar-specific ones drive the client screens (setup, login,
// confirmation dialogs, write alerts).
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "confirmation_required",
//	  "message": "Remove this vintage from your collection?"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/tbourn/go-cellar-backend/internal/assistant"
	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/identity"
	"github.com/tbourn/go-cellar-backend/internal/services"
	"github.com/tbourn/go-cellar-backend/internal/session"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeTooLarge         = "payload_too_large"
	ErrCodeUnsupportedMedia = "unsupported_media_type"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Cellar-specific:
	ErrCodeSetupRequired          = "setup_required"
	ErrCodeLoginRequired          = "login_required"
	ErrCodeConnection             = "connection_error"
	ErrCodeStoreUnavailable       = "store_unavailable"
	ErrCodeValidation             = "validation_failed"
	ErrCodeWriteFailed            = "write_failed"
	ErrCodeConfirmationRequired   = "confirmation_required"
	ErrCodeChoiceRequired         = "choice_required"
	ErrCodeAssistantNotConfigured = "assistant_not_configured"
	ErrCodeScanFailed             = "scan_failed"
)

// classify maps service and identity errors onto a status, code and
// user-facing message. Unknown errors become 500 internal_error.
func classify(err error) (int, string, string) {
	var (
		idErr *identity.Error
		wErr  *services.WriteError
	)
	switch {
	case errors.Is(err, services.ErrNoUser):
		return http.StatusUnauthorized, ErrCodeLoginRequired, "sign in with LINE to continue"
	case errors.Is(err, services.ErrWineNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "wine not found"
	case errors.Is(err, services.ErrConfirmationRequired):
		return http.StatusPreconditionRequired, ErrCodeConfirmationRequired, services.PromptConfirmDelete
	case errors.Is(err, services.ErrChoiceRequired):
		return http.StatusConflict, ErrCodeChoiceRequired, services.PromptZeroQuantity
	case errors.Is(err, services.ErrEmptyQuery):
		return http.StatusBadRequest, ErrCodeBadRequest, "query is required"
	case errors.Is(err, services.ErrEmptyPatch):
		return http.StatusBadRequest, ErrCodeBadRequest, "nothing to update"
	case errors.Is(err, domain.ErrInvalidField):
		return http.StatusUnprocessableEntity, ErrCodeValidation, err.Error()
	case errors.Is(err, assistant.ErrNotConfigured):
		return http.StatusServiceUnavailable, ErrCodeAssistantNotConfigured, assistant.NotConfiguredReply
	case errors.Is(err, assistant.ErrMalformedLabel):
		return http.StatusUnprocessableEntity, ErrCodeScanFailed, "could not read the label, try another photo or fill the form by hand"
	case errors.Is(err, assistant.ErrProvider):
		return http.StatusBadGateway, ErrCodeConnection, "the sommelier could not be reached, please try again"
	case errors.Is(err, session.ErrClosed):
		return http.StatusUnauthorized, ErrCodeLoginRequired, "session ended, sign in again"
	case errors.As(err, &wErr):
		return http.StatusBadGateway, ErrCodeWriteFailed, "Could not save your changes. Please try again."
	case errors.As(err, &idErr):
		return identityStatus(idErr)
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "internal error"
	}
}

func identityStatus(e *identity.Error) (int, string, string) {
	msg := e.Message
	if e.Remediation != "" {
		msg += ". " + e.Remediation
	}
	switch e.Kind {
	case identity.KindLoginRequired:
		return http.StatusUnauthorized, ErrCodeLoginRequired, msg
	case identity.KindSetup:
		return http.StatusServiceUnavailable, ErrCodeSetupRequired, msg
	default:
		return http.StatusBadGateway, ErrCodeConnection, msg
	}
}
