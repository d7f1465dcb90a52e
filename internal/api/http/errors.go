package httpapi

import (
	"errors"
	"net/http"

	"github.com/pairplay/pairplay/internal/domain/apperror"
	"github.com/pairplay/pairplay/internal/domain/challenge"
	"github.com/pairplay/pairplay/internal/domain/credit"
)

// respondServiceError translates the service error taxonomy to transport
// status codes. Services never see HTTP; this is the only place the
// mapping lives.
func respondServiceError(w http.ResponseWriter, err error) {
	var validation *apperror.ValidationError
	var authorization *apperror.AuthorizationError
	var notFound *apperror.NotFoundError
	var transition *challenge.InvalidTransitionError
	var funds *credit.InsufficientFundsError
	var invariant *apperror.InvariantViolationError

	switch {
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	case errors.As(err, &authorization):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &transition):
		respondError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.As(err, &funds):
		respondError(w, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", err.Error())
	case errors.As(err, &invariant):
		respondError(w, http.StatusInternalServerError, "INVARIANT_VIOLATION", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
