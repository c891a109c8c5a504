package handler

import (
	"net/http"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/ctxkeys"
	"github.com/mariaangelps/490-The-Team/internal/service"
)

type EducationHandler struct {
	educationService *service.EducationService
}

func NewEducationHandler(educationService *service.EducationService) *EducationHandler {
	return &EducationHandler{
		educationService: educationService,
	}
}

func (h *EducationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	entries, err := h.educationService.List(r.Context(), identity.ID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"entries": nonNil(entries)})
}

func (h *EducationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var in service.EducationInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	entry, err := h.educationService.Create(r.Context(), identity.ID, in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, envelope{"entry": entry})
}

func (h *EducationHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var in service.EducationInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	entry, err := h.educationService.Update(r.Context(), identity.ID, r.PathValue("id"), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"entry": entry})
}

func (h *EducationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	id := r.PathValue("id")

	if err := h.educationService.Delete(r.Context(), identity.ID, id); err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"deletedId": id})
}
