package handler

import (
	"net/http"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/ctxkeys"
	"github.com/mariaangelps/490-The-Team/internal/service"
)

type SkillHandler struct {
	skillService *service.SkillService
}

func NewSkillHandler(skillService *service.SkillService) *SkillHandler {
	return &SkillHandler{
		skillService: skillService,
	}
}

// List also returns the accepted categories and proficiencies.
func (h *SkillHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	skills, err := h.skillService.List(r.Context(), identity.ID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"skills": nonNil(skills), "meta": h.skillService.Meta()})
}

func (h *SkillHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var in service.SkillInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	skill, err := h.skillService.Create(r.Context(), identity.ID, in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, envelope{"skill": skill})
}

// Update changes category and proficiency; renaming is a delete and create.
func (h *SkillHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var in service.SkillUpdateInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	skill, err := h.skillService.Update(r.Context(), identity.ID, r.PathValue("id"), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"skill": skill})
}

func (h *SkillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	id := r.PathValue("id")

	if err := h.skillService.Delete(r.Context(), identity.ID, id); err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"deletedId": id})
}
