package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ragalabs/loan-ledger-go/ledger"
	"github.com/ragalabs/loan-ledger-go/lending"
)

// Handler serves the lending HTTP API.
type Handler struct {
	service *lending.LendingService
	logger  ledger.Logger
}

// HandlerOption defines a functional option for configuring the Handler.
type HandlerOption func(*Handler)

// WithLogger sets a logger for request-level error reporting.
func WithLogger(logger ledger.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a Handler serving the given lending service.
func NewHandler(service *lending.LendingService, options ...HandlerOption) *Handler {
	h := &Handler{service: service}

	for _, option := range options {
		option(h)
	}

	return h
}

// Register adds all API routes to the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /library/api/books", h.createBook)
	mux.HandleFunc("GET /library/api/books", h.listBooks)
	mux.HandleFunc("GET /library/api/books/{bookID}", h.getBook)
	mux.HandleFunc("PUT /library/api/books/{bookID}", h.updateBook)
	mux.HandleFunc("DELETE /library/api/books/{bookID}", h.deleteBook)

	mux.HandleFunc("POST /library/api/patrons", h.createPatron)
	mux.HandleFunc("GET /library/api/patrons", h.listPatrons)
	mux.HandleFunc("GET /library/api/patrons/{patronID}", h.getPatron)
	mux.HandleFunc("PUT /library/api/patrons/{patronID}", h.updatePatron)
	mux.HandleFunc("DELETE /library/api/patrons/{patronID}", h.deletePatron)

	mux.HandleFunc("POST /library/api/borrow/{bookID}/patron/{patronID}", h.borrowBook)
	mux.HandleFunc("PUT /library/api/return/{bookID}/patron/{patronID}", h.returnBook)
	mux.HandleFunc("GET /library/api/borrowingRecords", h.listLoanRecords)
}

// Router returns a mux with all API routes registered.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux)

	return mux
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	problem := MapServiceError(err)

	if problem.Status >= http.StatusInternalServerError && h.logger != nil {
		h.logger.Error("request failed", "error", err.Error())
	}

	WriteError(w, problem)
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
