package notifier

import (
	"context"
	"fmt"
	"io"

	"docspace/internal/ingest"
	"docspace/internal/model"
)

// Uploader is the subset of the upload service the in-process notifier needs.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Upload, error)
}

// Service hands files to an upload service running in the same process.
type Service struct {
	uploader Uploader
}

func NewService(u Uploader) *Service {
	return &Service{uploader: u}
}

var _ ingest.Notifier = (*Service)(nil)

// Notify uploads f. A failure of the upload service is reported as a rejection.
func (n *Service) Notify(ctx context.Context, f model.RawFile) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name(), err)
	}
	defer rc.Close()

	ct := f.MediaType()
	if ct == "" {
		ct = "application/octet-stream"
	}
	if _, err := n.uploader.Upload(ctx, rc, f.Name(), ct, f.Size()); err != nil {
		return fmt.Errorf("%w: %w", ingest.ErrUploadRejected, err)
	}
	return nil
}
