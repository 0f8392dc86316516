package httpapi

import (
	"net/http"

	"github.com/ragalabs/loan-ledger-go/ledger"
)

func (h *Handler) createPatron(w http.ResponseWriter, r *http.Request) {
	var request PatronRequest
	if err := DecodeJSON(r, &request); err != nil {
		WriteError(w, NewBadRequestProblem("invalid request body"))

		return
	}

	patron, err := h.service.AddPatron(r.Context(), request.Name, request.ContactInformation)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusCreated, patronResponseFrom(patron))
}

func (h *Handler) listPatrons(w http.ResponseWriter, r *http.Request) {
	ctx := ledger.WithEventualConsistency(r.Context())

	patrons, err := h.service.Patrons(ctx)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusOK, patronResponsesFrom(patrons))
}

func (h *Handler) getPatron(w http.ResponseWriter, r *http.Request) {
	patronID, ok := pathID(r, "patronID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid patron id"))

		return
	}

	patron, err := h.service.Patron(r.Context(), patronID)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusOK, patronResponseFrom(patron))
}

func (h *Handler) updatePatron(w http.ResponseWriter, r *http.Request) {
	patronID, ok := pathID(r, "patronID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid patron id"))

		return
	}

	var request PatronRequest
	if err := DecodeJSON(r, &request); err != nil {
		WriteError(w, NewBadRequestProblem("invalid request body"))

		return
	}

	patron, err := h.service.UpdatePatron(r.Context(), patronID, request.Name, request.ContactInformation)
	if err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteJSON(w, http.StatusOK, patronResponseFrom(patron))
}

func (h *Handler) deletePatron(w http.ResponseWriter, r *http.Request) {
	patronID, ok := pathID(r, "patronID")
	if !ok {
		WriteError(w, NewBadRequestProblem("invalid patron id"))

		return
	}

	if err := h.service.RemovePatron(r.Context(), patronID); err != nil {
		h.writeServiceError(w, err)

		return
	}

	WriteNoContent(w)
}
