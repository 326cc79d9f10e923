// Package notifier contains the upload notifier adapters used by the ingestion pipeline.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docspace/internal/ingest"
	"docspace/internal/model"
)

// FormField is the multipart field carrying the file.
const FormField = "file"

// HTTP posts every file to a remote upload endpoint as multipart/form-data.
// The endpoint answers with the JSON literal true on success; any other answer is a rejection.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP returns a notifier posting to url, each request bounded by timeout.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	return &HTTP{
		url: url,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

var _ ingest.Notifier = (*HTTP)(nil)

// Notify streams f to the endpoint.
func (n *HTTP) Notify(ctx context.Context, f model.RawFile) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeFile(mw, f))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, pr)
	if err != nil {
		pr.Close()
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ingest.ErrUploadRejected, resp.StatusCode)
	}

	var accepted bool
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return fmt.Errorf("decode upload response: %w", err)
	}
	if !accepted {
		return ingest.ErrUploadRejected
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(mw *multipart.Writer, f model.RawFile) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(FormField), quoteEscaper.Replace(f.Name())))
	ct := f.MediaType()
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return err
	}
	return mw.Close()
}
