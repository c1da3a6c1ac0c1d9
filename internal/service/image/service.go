package image

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dentika/clinic-api/internal/model"
	"github.com/dentika/clinic-api/internal/repository"
	"github.com/dentika/clinic-api/internal/service/event"
	"github.com/dentika/clinic-api/internal/storage"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/logger"
)

// presignExpiry bounds how long a handed-out download link stays valid.
const presignExpiry = 15 * time.Minute

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ImageServicer manages treatment photos: bytes in object storage,
// metadata in the database. The record points at the stored object via
// Filename; the two are written together and removed together.
type ImageServicer interface {
	UploadImage(ctx context.Context, req *model.CreateImageRequest, file io.Reader, size int64) (*model.Image, error)
	GetImage(ctx context.Context, id int64) (*model.Image, error)
	GetImageURL(ctx context.Context, id int64) (string, error)
	DownloadImage(ctx context.Context, id int64) (io.ReadCloser, string, error)
	UpdateImage(ctx context.Context, id int64, req *model.UpdateImageRequest) (*model.Image, error)
	DeleteImage(ctx context.Context, id int64) error
	ListImages(ctx context.Context, filter *model.ImageFilter) ([]*model.Image, error)
}

type Service struct {
	repo   repository.ImageRepository
	store  storage.ObjectStore
	events event.Emitter
	logger *logger.Logger
}

func NewService(repo repository.ImageRepository, store storage.ObjectStore, events event.Emitter, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		events: events,
		logger: logger,
	}
}

// UploadImage stores the bytes under req.Filename, then the metadata
// record. A record that fails to insert takes its stored object down
// with it, so the bucket never holds orphans the database cannot see.
func (s *Service) UploadImage(ctx context.Context, req *model.CreateImageRequest, file io.Reader, size int64) (*model.Image, error) {
	if !allowedTypes[req.Type] {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("type must be one of: %s", strings.Join(allowedTypeList(), ", ")), nil)
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	if err := s.store.Put(ctx, req.Filename, file, size, req.Type); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img := &model.Image{
		PatientID:    req.PatientID,
		TreatmentID:  req.TreatmentID,
		Filename:     req.Filename,
		OriginalName: req.OriginalName,
		Type:         req.Type,
		Category:     req.Category,
		UploadedByID: req.UploadedByID,
		IsVisible:    visible,
		Notes:        req.Notes,
	}

	if err := s.repo.Create(ctx, img); err != nil {
		if rmErr := s.store.Delete(ctx, req.Filename); rmErr != nil {
			s.logger.Error(rmErr, "orphaned object left in storage", "object", req.Filename)
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	s.emit(ctx, model.EventImageUploaded, img)
	return img, nil
}

func (s *Service) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	img, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return img, nil
}

// GetImageURL hands out a short-lived presigned link to the stored
// object.
func (s *Service) GetImageURL(ctx context.Context, id int64) (string, error) {
	img, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get image: %w", err)
	}

	url, err := s.store.PresignedURL(ctx, img.Filename, presignExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign image url: %w", err)
	}
	return url, nil
}

// DownloadImage streams the stored bytes. The caller owns the reader.
func (s *Service) DownloadImage(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	img, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get image: %w", err)
	}

	rc, err := s.store.Get(ctx, img.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image object: %w", err)
	}
	return rc, img.Type, nil
}

// UpdateImage rewrites the gallery-facing metadata. An omitted
// is_visible keeps the stored flag; the file reference never changes.
func (s *Service) UpdateImage(ctx context.Context, id int64, req *model.UpdateImageRequest) (*model.Image, error) {
	img, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	img.TreatmentID = req.TreatmentID
	img.Category = req.Category
	img.Notes = req.Notes
	if req.IsVisible != nil {
		img.IsVisible = *req.IsVisible
	}

	if err := s.repo.Update(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to update image: %w", err)
	}

	s.emit(ctx, model.EventImageUpdated, img)
	return img, nil
}

// DeleteImage removes the record first, then the object. A leftover
// object is logged and harmless; a record without bytes would not be.
func (s *Service) DeleteImage(ctx context.Context, id int64) error {
	img, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get image: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if err := s.store.Delete(ctx, img.Filename); err != nil {
		s.logger.Error(err, "orphaned object left in storage", "object", img.Filename)
	}

	s.emit(ctx, model.EventImageDeleted, img)
	return nil
}

func (s *Service) ListImages(ctx context.Context, filter *model.ImageFilter) ([]*model.Image, error) {
	images, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

func allowedTypeList() []string {
	types := make([]string, 0, len(allowedTypes))
	for t := range allowedTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to record event", "event_type", eventType)
	}
}
