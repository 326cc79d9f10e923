package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docspace/internal/model"
	"docspace/internal/repository"
	repoMocks "docspace/internal/repository/mocks"
	"docspace/internal/storage"
	storeMocks "docspace/internal/storage/mocks"
)

func TestUploadService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		originalFilename string
		contentType      string
		size             int64
		setupMocks       func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) io.Reader
		wantErr          error
		wantErrMsg       string
	}{
		{
			name:             "happy path",
			originalFilename: "Notes.TXT",
			contentType:      "text/plain",
			size:             11,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) io.Reader {
				r := strings.NewReader("hello world")
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "uploads/") && strings.HasSuffix(key, ".txt")
				}), r, storage.PutObjectOptions{
					Size:        11,
					ContentType: "text/plain",
					Metadata:    map[string]string{"original-filename": "Notes.TXT"},
				}).Return(storage.ObjectInfo{
					Key:         "uploads/uuid.txt",
					Size:        11,
					ContentType: "text/plain",
				}, nil)

				mRepo.On("Create", ctx, mock.MatchedBy(func(u *model.Upload) bool {
					return u.Filename == u.ID+".txt" &&
						u.OriginalName == "Notes.TXT" &&
						u.StoragePath == "uploads/uuid.txt" &&
						u.ContentType == "text/plain"
				})).Return(&model.Upload{ID: "gen-id"}, nil)

				return r
			},
			wantErr: nil,
		},
		{
			name:             "validation error - nil reader",
			originalFilename: "test.txt",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:             "validation error - blank filename",
			originalFilename: "  ",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) io.Reader {
				return strings.NewReader("x")
			},
			wantErr: ErrFilenameRequired,
		},
		{
			name:             "storage error",
			originalFilename: "test.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return r
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:             "repository error with successful rollback",
			originalFilename: "test.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:             "repository error with failed rollback",
			originalFilename: "test.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
				return r
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockUploadRepository)
			svc := NewUploadService(mStore, mRepo)

			r := tt.setupMocks(mStore, mRepo)

			u, err := svc.Upload(ctx, r, tt.originalFilename, tt.contentType, tt.size)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, u)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUploadService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockUploadRepository)
		wantErr    error
		checkRes   func(t *testing.T, res *UploadListResult)
	}{
		{
			name:   "happy path",
			limit:  10,
			offset: 0,
			setupMocks: func(mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Upload]{
						Items: []model.Upload{{ID: "1"}, {ID: "2"}},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *UploadListResult) {
				assert.Equal(t, 2, len(res.Items))
				assert.Equal(t, 2, res.Total)
			},
		},
		{
			name:   "pagination boundary - zero limit uses default",
			limit:  0,
			offset: -1,
			setupMocks: func(mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Upload]{Items: []model.Upload{}, Total: 0}, nil)
			},
		},
		{
			name:  "repository error",
			limit: 10,
			setupMocks: func(mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUploadRepository)
			svc := NewUploadService(nil, mRepo)

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.limit, tt.offset)

			if tt.wantErr != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUploadService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockUploadRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(&model.Upload{ID: "valid-id"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockUploadRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing-id",
			setupMocks: func(mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   "error-id",
			setupMocks: func(mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("FindByID", ctx, "error-id").Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUploadRepository)
			svc := NewUploadService(nil, mRepo)

			tt.setupMocks(mRepo)

			u, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, u)
				assert.Equal(t, tt.id, u.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUploadService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(&model.Upload{ID: "valid-id", StoragePath: "uploads/valid-id.pdf"}, nil)
				mStore.On("Delete", ctx, "uploads/valid-id.pdf").Return(nil)
				mRepo.On("Delete", ctx, "valid-id").Return(nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "missing-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "storage delete error",
			id:   "storage-fail-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("FindByID", ctx, "storage-fail-id").Return(&model.Upload{ID: "id", StoragePath: "path"}, nil)
				mStore.On("Delete", ctx, "path").Return(errors.New("storage fail"))
			},
			wantErr: errors.New("delete storage: storage fail"),
		},
		{
			name: "repository delete error",
			id:   "repo-fail-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUploadRepository) {
				mRepo.On("FindByID", ctx, "repo-fail-id").Return(&model.Upload{ID: "id", StoragePath: "path"}, nil)
				mStore.On("Delete", ctx, "path").Return(nil)
				mRepo.On("Delete", ctx, "repo-fail-id").Return(errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockUploadRepository)
			svc := NewUploadService(mStore, mRepo)

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUploadService_Open(t *testing.T) {
	ctx := context.Background()
	rec := &model.Upload{ID: "u1", StoragePath: "uploads/u1.pdf", ContentType: "application/pdf"}

	t.Run("streams the stored body", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockUploadRepository)
		body := io.NopCloser(strings.NewReader("%PDF"))
		mRepo.On("FindByID", ctx, "u1").Return(rec, nil)
		mStore.On("Get", ctx, "uploads/u1.pdf").Return(body, storage.ObjectInfo{Key: "uploads/u1.pdf"}, nil)

		rc, u, err := NewUploadService(mStore, mRepo).Open(ctx, "u1")

		assert.NoError(t, err)
		assert.Equal(t, rec, u)
		b, _ := io.ReadAll(rc)
		assert.Equal(t, "%PDF", string(b))
	})

	t.Run("missing object is not found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockUploadRepository)
		mRepo.On("FindByID", ctx, "u1").Return(rec, nil)
		mStore.On("Get", ctx, "uploads/u1.pdf").Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)

		_, _, err := NewUploadService(mStore, mRepo).Open(ctx, "u1")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing record never touches storage", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockUploadRepository)
		mRepo.On("FindByID", ctx, "u2").Return(nil, sql.ErrNoRows)

		_, _, err := NewUploadService(mStore, mRepo).Open(ctx, "u2")

		assert.ErrorIs(t, err, ErrNotFound)
		mStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestUploadService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	rec := &model.Upload{ID: "u1", StoragePath: "uploads/u1.png"}

	t.Run("presigns the storage key", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockUploadRepository)
		mRepo.On("FindByID", ctx, "u1").Return(rec, nil)
		mStore.On("PresignGet", ctx, "uploads/u1.png", 15*time.Minute).Return("https://minio/uploads/u1.png?sig", nil)

		link, err := NewUploadService(mStore, mRepo).DownloadURL(ctx, "u1", 15*time.Minute)

		assert.NoError(t, err)
		assert.Equal(t, "https://minio/uploads/u1.png?sig", link)
	})

	t.Run("presign failure is wrapped", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockUploadRepository)
		mRepo.On("FindByID", ctx, "u1").Return(rec, nil)
		mStore.On("PresignGet", ctx, "uploads/u1.png", time.Minute).Return("", errors.New("no credentials"))

		_, err := NewUploadService(mStore, mRepo).DownloadURL(ctx, "u1", time.Minute)

		assert.EqualError(t, err, "presign: no credentials")
	})
}
