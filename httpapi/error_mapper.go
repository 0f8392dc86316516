package httpapi

import (
	"errors"
	"net/http"

	"github.com/ragalabs/loan-ledger-go/catalog"
	"github.com/ragalabs/loan-ledger-go/ledger"
	"github.com/ragalabs/loan-ledger-go/lending"
)

const problemTypeBase = "https://loan-ledger.ragalabs.io/errors/"

// MapServiceError converts a workflow error to a ProblemDetails response.
// Centralizing the mapping keeps status codes consistent across all
// handlers.
func MapServiceError(err error) *ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// not found -> 404
	case errors.Is(err, catalog.ErrBookNotFound),
		errors.Is(err, catalog.ErrPatronNotFound),
		errors.Is(err, ledger.ErrNoOpenLoanFound):
		return &ProblemDetails{
			Type:   problemTypeBase + "not-found",
			Title:  "Not Found",
			Status: http.StatusNotFound,
			Detail: err.Error(),
		}

	// invariant conflicts and duplicates -> 409
	case errors.Is(err, ledger.ErrOpenLoanExists),
		errors.Is(err, lending.ErrOpenLoansExist),
		errors.Is(err, catalog.ErrDuplicateEntry):
		return &ProblemDetails{
			Type:   problemTypeBase + "conflict",
			Title:  "Conflict",
			Status: http.StatusConflict,
			Detail: err.Error(),
		}

	// validation -> 400
	case errors.Is(err, catalog.ErrTitleTooShort),
		errors.Is(err, catalog.ErrAuthorTooShort),
		errors.Is(err, catalog.ErrPublicationYearOutOfRange),
		errors.Is(err, catalog.ErrInvalidISBN),
		errors.Is(err, catalog.ErrNameTooShort),
		errors.Is(err, catalog.ErrContactTooShort):
		return &ProblemDetails{
			Type:   problemTypeBase + "validation",
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
		}

	// overload -> 503
	case errors.Is(err, ledger.ErrTransientStorageFailure):
		return &ProblemDetails{
			Type:   problemTypeBase + "storage-unavailable",
			Title:  "Storage Temporarily Unavailable",
			Status: http.StatusServiceUnavailable,
			Detail: "the request could not be completed, please retry",
		}

	// broken storage consistency -> 500, details stay in the logs
	case errors.Is(err, ledger.ErrMultipleOpenLoans):
		return internalProblem()

	default:
		return internalProblem()
	}
}

// NewBadRequestProblem builds a 400 response for malformed requests, such as
// unparseable ids or bodies.
func NewBadRequestProblem(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + "bad-request",
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Detail: detail,
	}
}

func internalProblem() *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + "internal",
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
}
