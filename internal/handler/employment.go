package handler

import (
	"net/http"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/ctxkeys"
	"github.com/mariaangelps/490-The-Team/internal/service"
)

type EmploymentHandler struct {
	employmentService *service.EmploymentService
}

func NewEmploymentHandler(employmentService *service.EmploymentService) *EmploymentHandler {
	return &EmploymentHandler{
		employmentService: employmentService,
	}
}

func (h *EmploymentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	entries, err := h.employmentService.List(r.Context(), identity.ID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"entries": nonNil(entries)})
}

func (h *EmploymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var in service.EmploymentInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	entry, err := h.employmentService.Create(r.Context(), identity.ID, in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, envelope{"entry": entry})
}

func (h *EmploymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var in service.EmploymentInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	entry, err := h.employmentService.Update(r.Context(), identity.ID, r.PathValue("id"), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"entry": entry})
}

// Delete refuses to remove the last remaining entry.
func (h *EmploymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	id := r.PathValue("id")

	if err := h.employmentService.Delete(r.Context(), identity.ID, id); err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"deletedId": id})
}
