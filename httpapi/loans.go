package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ragalabs/loan-ledger-go/ledger"
)

func (h *Handler) borrowBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(r, "bookID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid book id"))

		return
	}

	patronID, ok := pathID(r, "patronID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid patron id"))

		return
	}

	record, err := h.service.BorrowBook(r.Context(), bookID, patronID)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusCreated, loanRecordResponseFrom(record))
}

func (h *Handler) returnBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(r, "bookID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid book id"))

		return
	}

	patronID, ok := pathID(r, "patronID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid patron id"))

		return
	}

	record, err := h.service.ReturnBook(r.Context(), bookID, patronID)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusOK, loanRecordResponseFrom(record))
}

// listLoanRecords serves GET /library/api/borrowingRecords with optional
// query parameters: bookId, patronId, open, borrowedFrom, borrowedUntil.
// The listing tolerates replica lag, so reads may be served eventually
// consistent.
func (h *Handler) listLoanRecords(w http.ResponseWriter, r *http.Request) {
	filter, problem := loanFilterFromQuery(r)
	if problem != nil {
		WriteError(w, problem)

		return
	}

	ctx := ledger.WithEventualConsistency(r.Context())

	records, err := h.service.LoanRecords(ctx, filter)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusOK, loanRecordResponsesFrom(records))
}

func loanFilterFromQuery(r *http.Request) (ledger.LoanFilter, *ProblemDetails) {
	var empty ledger.LoanFilter

	query := r.URL.Query()

	bookID := uuid.Nil
	if raw := query.Get("bookId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return empty, NewBadRequestProblem("invalid bookId query parameter")
		}

		bookID = parsed
	}

	patronID := uuid.Nil
	if raw := query.Get("patronId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return empty, NewBadRequestProblem("invalid patronId query parameter")
		}

		patronID = parsed
	}

	builder := ledger.BuildLoanFilter().ForPair(bookID, patronID)

	if query.Get("open") == "true" {
		builder = builder.OnlyOpen()
	}

	if raw := query.Get("borrowedFrom"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return empty, NewBadRequestProblem("invalid borrowedFrom query parameter, expected RFC 3339")
		}

		builder = builder.BorrowedFrom(from)
	}

	if raw := query.Get("borrowedUntil"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return empty, NewBadRequestProblem("invalid borrowedUntil query parameter, expected RFC 3339")
		}

		builder = builder.BorrowedUntil(until)
	}

	return builder.Finalize(), nil
}
