package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/model"
	"github.com/mariaangelps/490-The-Team/internal/repository"
	"github.com/mariaangelps/490-The-Team/internal/storage"
	"github.com/mariaangelps/490-The-Team/internal/validation"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const avatarSize = 256

type FileService struct {
	userRepository repository.UserRepository
	storage        storage.Storage
	now            func() time.Time
}

func NewFileService(userRepository repository.UserRepository, storage storage.Storage) *FileService {
	return &FileService{
		userRepository: userRepository,
		storage:        storage,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// UploadAvatar normalizes the image to a square PNG, stores it and points the
// user's picture at it. A previous uploaded avatar is removed.
func (s *FileService) UploadAvatar(ctx context.Context, userID string, header *multipart.FileHeader) (*model.File, error) {
	mimeType, err := validation.ValidateFile(header, validation.AvatarConstraints)
	if err != nil {
		return nil, apperr.Field("avatar", err.Error())
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	src, _, err := image.Decode(file)
	if err != nil {
		slog.Debug("avatar decode failed", "error", err, "mime", mimeType)
		return nil, apperr.Field("avatar", "Could not read image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, squareThumbnail(src, avatarSize)); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	user, err := s.userRepository.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	key := fmt.Sprintf("avatars/%s-%s.png", userID, uuid.NewString()[:8])
	size := int64(buf.Len())
	if err := s.storage.Save(ctx, key, &buf); err != nil {
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	url := s.storage.URL(key)
	if err := s.userRepository.UpdatePicture(ctx, userID, url, s.now()); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			slog.Error("failed to delete avatar during cleanup", "error", delErr, "key", key)
		}
		return nil, fmt.Errorf("failed to update picture: %w", err)
	}

	s.deleteStored(ctx, user.Picture)

	return &model.File{
		Type:        model.FileTypeAvatar,
		OwnerID:     userID,
		Key:         key,
		URL:         url,
		ContentType: "image/png",
		Size:        size,
	}, nil
}

// DeleteAvatar clears the user's picture, including one set by an OAuth provider.
func (s *FileService) DeleteAvatar(ctx context.Context, userID string) error {
	user, err := s.userRepository.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperr.NotFound("User")
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.Picture == "" {
		return nil
	}

	if err := s.userRepository.UpdatePicture(ctx, userID, "", s.now()); err != nil {
		return fmt.Errorf("failed to clear picture: %w", err)
	}
	s.deleteStored(ctx, user.Picture)
	return nil
}

// deleteStored removes the object behind url when this app stored it.
// Best effort: an orphaned file is preferable to a failed request.
func (s *FileService) deleteStored(ctx context.Context, url string) {
	key, ok := s.storage.Key(url)
	if !ok {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete stored file", "error", err, "key", key)
	}
}

// squareThumbnail center-crops src to a square and scales it to size x size.
func squareThumbnail(src image.Image, size int) image.Image {
	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}
