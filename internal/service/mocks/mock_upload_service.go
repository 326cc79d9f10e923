package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"docspace/internal/model"
	"docspace/internal/service"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Upload, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Upload), args.Error(1)
}

func (m *MockUploadService) List(ctx context.Context, limit, offset int) (*service.UploadListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadListResult), args.Error(1)
}

func (m *MockUploadService) Get(ctx context.Context, id string) (*model.Upload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Upload), args.Error(1)
}

func (m *MockUploadService) Open(ctx context.Context, id string) (io.ReadCloser, *model.Upload, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	u, _ := args.Get(1).(*model.Upload)
	return rc, u, args.Error(2)
}

func (m *MockUploadService) DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockUploadService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var _ service.UploadService = (*MockUploadService)(nil)
