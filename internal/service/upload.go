package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docspace/internal/model"
	"docspace/internal/repository"
	"docspace/internal/storage"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("upload not found")
	ErrReaderNil        = errors.New("reader is nil")
	ErrFilenameRequired = errors.New("filename is required")
)

// UploadPrefix is the object key prefix of every stored upload.
const UploadPrefix = "uploads"

// UploadListResult is one page of uploads.
type UploadListResult struct {
	Items []model.Upload `json:"data"`
	Total int            `json:"total"`
}

// UploadService is the server side of the upload notification contract.
type UploadService interface {
	// Upload streams the body to object storage and records its metadata.
	// The stored object is removed again when the record cannot be saved.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Upload, error)

	List(ctx context.Context, limit, offset int) (*UploadListResult, error)

	Get(ctx context.Context, id string) (*model.Upload, error)

	// Open streams an upload's stored body. The caller closes the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.Upload, error)

	// DownloadURL returns a presigned link to the stored body, valid for expiry.
	DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error)

	// Delete removes the object first and the record second.
	Delete(ctx context.Context, id string) error
}

type uploadService struct {
	store storage.Storage
	repo  repository.UploadRepository
	now   func() time.Time
}

func NewUploadService(store storage.Storage, repo repository.UploadRepository) UploadService {
	return &uploadService{store: store, repo: repo, now: time.Now}
}

func (s *uploadService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Upload, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if strings.TrimSpace(originalFilename) == "" {
		return nil, ErrFilenameRequired
	}

	id := uuid.NewString()
	name := id + strings.ToLower(filepath.Ext(originalFilename))
	key := path.Join(UploadPrefix, name)

	info, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	stored, err := s.repo.Create(ctx, &model.Upload{
		ID:           id,
		Filename:     name,
		OriginalName: originalFilename,
		StoragePath:  info.Key,
		Size:         info.Size,
		ContentType:  contentType,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *uploadService) List(ctx context.Context, limit, offset int) (*UploadListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UploadListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *uploadService) Get(ctx context.Context, id string) (*model.Upload, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *uploadService) Open(ctx context.Context, id string) (io.ReadCloser, *model.Upload, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, u.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("read storage: %w", err)
	}
	return rc, u, nil
}

func (s *uploadService) DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	link, err := s.store.PresignGet(ctx, u.StoragePath, expiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return link, nil
}

func (s *uploadService) Delete(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Keep the row when the object survives, so the key is not lost.
	if err := s.store.Delete(ctx, u.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
