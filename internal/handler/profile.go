package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/ctxkeys"
	"github.com/mariaangelps/490-The-Team/internal/service"
)

// AvatarFormLimit bounds the multipart form held in memory.
const AvatarFormLimit = 6 << 20

type ProfileHandler struct {
	profileService *service.ProfileService
	fileService    *service.FileService
}

func NewProfileHandler(profileService *service.ProfileService, fileService *service.FileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		fileService:    fileService,
	}
}

// Show returns null until the first save.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	profile, err := h.profileService.ByUserID(r.Context(), identity.ID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"profile": profile})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var in service.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		apperr.Write(w, r, err)
		return
	}

	profile, err := h.profileService.Save(r.Context(), identity.ID, in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	slog.Info("profile updated", "user_id", identity.ID)
	apperr.WriteJSON(w, http.StatusOK, envelope{"profile": profile})
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	if err := r.ParseMultipartForm(AvatarFormLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apperr.Write(w, r, apperr.Field("avatar", "File too large"))
			return
		}
		apperr.Write(w, r, apperr.Field("avatar", "Upload must be multipart form data"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	_, header, err := r.FormFile("avatar")
	if err != nil {
		apperr.Write(w, r, apperr.Field("avatar", "No file selected"))
		return
	}

	file, err := h.fileService.UploadAvatar(r.Context(), identity.ID, header)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	slog.Info("avatar uploaded", "user_id", identity.ID, "key", file.Key, "size", file.Size)
	apperr.WriteJSON(w, http.StatusOK, envelope{"url": file.URL})
}

func (h *ProfileHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	if err := h.fileService.DeleteAvatar(r.Context(), identity.ID); err != nil {
		apperr.Write(w, r, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"message": "Avatar removed"})
}
