package httpapi

import (
	"net/http"

	"github.com/ragalabs/loan-ledger-go/ledger"
)

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var request BookRequest
	if err := DecodeJSON(r, &request); err != nil {
		WriteError(w, NewBadRequestProblem("invalid request body"))

		return
	}

	book, err := h.service.AddBook(r.Context(), request.Title, request.Author, request.PublicationYear, request.ISBN)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusCreated, bookResponseFrom(book))
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	ctx := ledger.WithEventualConsistency(r.Context())

	books, err := h.service.Books(ctx)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusOK, bookResponsesFrom(books))
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(r, "bookID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid book id"))

		return
	}

	book, err := h.service.Book(r.Context(), bookID)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusOK, bookResponseFrom(book))
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(r, "bookID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid book id"))

		return
	}

	var request BookRequest
	if err := DecodeJSON(r, &request); err != nil {
		WriteError(w, NewBadRequestProblem("invalid request body"))

		return
	}

	book, err := h.service.UpdateBook(r.Context(), bookID, request.Title, request.Author, request.PublicationYear, request.ISBN)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusOK, bookResponseFrom(book))
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(r, "bookID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid book id"))

		return
	}

	if err := h.service.RemoveBook(r.Context(), bookID); err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteNoContent(w)
}
