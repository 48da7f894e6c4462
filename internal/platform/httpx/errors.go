package httpx

import (
	"errors"
	"net/http"

	"github.com/faraway-yachting/backoffice/internal/ledger/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrEntryNotFound), errors.Is(err, shared.ErrAccountNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrAlreadyPosted):
		Problem(w, http.StatusConflict, "Already Posted", err.Error())
	case errors.Is(err, shared.ErrPeriodClosed):
		Problem(w, http.StatusConflict, "Period Closed", err.Error())
	case errors.Is(err, shared.ErrReferenceConflict), errors.Is(err, shared.ErrDuplicateSource):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrUnbalanced), errors.Is(err, shared.ErrTooFewLines), errors.Is(err, shared.ErrAccountInactive):
		Problem(w, http.StatusUnprocessableEntity, "Invalid Entry", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
