package photo

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/appventus/appointment-backend/internal/pkg/storage"
)

// UploadInput bundles the parameters of a photo upload.
type UploadInput struct {
	FileHeader    *multipart.FileHeader
	AppointmentID string
	UploaderID    string
	MaxSizeBytes  int64 // 0 = no limit
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*Photo, error)
	Get(ctx context.Context, id string) (*Photo, error)
	ListByAppointment(ctx context.Context, appointmentID string) ([]*Photo, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error)

	// ZipArchive packages every photo of an appointment into one ZIP
	// stream for bulk download.
	ZipArchive(ctx context.Context, appointmentID string) (io.Reader, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*Photo, error) {
	if in.MaxSizeBytes > 0 && in.FileHeader.Size > in.MaxSizeBytes {
		return nil, ErrTooLarge
	}

	contentType := in.FileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}

	src, err := in.FileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Buffer the content: it is read twice (original save + thumbnail).
	// Photos are small enough that this is fine.
	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(in.FileHeader.Filename))

	photoID := uuid.New().String()

	// Sharding path: photos/ab/UUID.ext
	shard := photoID[:2]
	storagePath := fmt.Sprintf("photos/%s/%s%s", shard, photoID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(fileBytes)); err != nil {
		return nil, fmt.Errorf("failed to save photo to storage: %w", err)
	}

	var thumbnailPath *string
	thumbReader, err := s.imgProc.GenerateThumbnail(bytes.NewReader(fileBytes), 200, 200)
	if err == nil {
		tPath := fmt.Sprintf("photos/%s/%s_thumb.jpg", shard, photoID)
		if err := s.storage.Save(ctx, tPath, thumbReader); err == nil {
			thumbnailPath = &tPath
		}
	}
	// A failed thumbnail does not fail the upload.

	p := &Photo{
		ID:            photoID,
		AppointmentID: in.AppointmentID,
		UploaderID:    in.UploaderID,
		Filename:      in.FileHeader.Filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          in.FileHeader.Size,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// Cleanup storage if db fails
		_ = s.storage.Delete(ctx, storagePath)
		if thumbnailPath != nil {
			_ = s.storage.Delete(ctx, *thumbnailPath)
		}
		return nil, err
	}

	return p, nil
}

func (s *service) Get(ctx context.Context, id string) (*Photo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByAppointment(ctx context.Context, appointmentID string) ([]*Photo, error) {
	return s.repo.ListByAppointment(ctx, appointmentID)
}

func (s *service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Best-effort storage cleanup; the DB record is the source of truth.
	_ = s.storage.Delete(ctx, p.StoragePath)
	if p.ThumbnailPath != nil {
		_ = s.storage.Delete(ctx, *p.ThumbnailPath)
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, p.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve photo from storage: %w", err)
	}

	return stream, p, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if p.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.storage.Get(ctx, *p.ThumbnailPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}

	return stream, p, nil
}

func (s *service) ZipArchive(ctx context.Context, appointmentID string) (io.Reader, error) {
	photos, err := s.repo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, ErrNoPhotos
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	for i, p := range photos {
		stream, err := s.storage.Get(ctx, p.StoragePath)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to read photo %s: %w", p.ID, err)
		}

		// Prefix with an index so duplicate filenames cannot clash.
		entry, err := zw.Create(fmt.Sprintf("%02d_%s", i+1, p.Filename))
		if err != nil {
			stream.Close()
			zw.Close()
			return nil, fmt.Errorf("failed to add zip entry: %w", err)
		}
		if _, err := io.Copy(entry, stream); err != nil {
			stream.Close()
			zw.Close()
			return nil, fmt.Errorf("failed to write zip entry: %w", err)
		}
		stream.Close()
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}
	return buf, nil
}
