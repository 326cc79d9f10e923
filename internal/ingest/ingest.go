// Package ingest turns a batch of raw files into workspace documents.
//
// Each file is classified and decoded independently, with bounded concurrency. Files
// may finish in any order, but the result always lists documents in input order. A
// file that fails to decode contributes a FileError instead of a document and never
// affects its siblings. Every file is also handed to the upload notifier in the
// background; that call never blocks or fails ingestion.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"docspace/internal/classify"
	"docspace/internal/metrics"
	"docspace/internal/model"
)

var (
	// ErrDecode marks a file whose text content could not be read.
	ErrDecode = errors.New("decode failed")
	// ErrReference marks a file for which no object reference could be allocated.
	ErrReference = errors.New("object reference unavailable")
	// ErrNilFile marks a nil entry in a batch.
	ErrNilFile = errors.New("raw file is nil")
	// ErrUploadRejected is returned by notifiers when the upload service answered but refused the file.
	ErrUploadRejected = errors.New("upload rejected")
)

const (
	defaultConcurrency   = 4
	defaultNotifyTimeout = 30 * time.Second
)

// Acquirer allocates object references for binary files.
type Acquirer interface {
	Acquire(f model.RawFile) (model.Handle, error)
}

// Notifier forwards a raw file to the external upload service.
type Notifier interface {
	Notify(ctx context.Context, f model.RawFile) error
}

// NoticeHandler receives the outcome of every upload notification.
type NoticeHandler func(model.Notice)

// Pipeline ingests batches of raw files. It never mutates a workspace itself.
type Pipeline struct {
	refs          Acquirer
	notifier      Notifier
	onNotice      NoticeHandler
	ids           *IDGenerator
	concurrency   int
	notifyTimeout time.Duration

	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.Workspace

	inflight sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNotifier sets the upload notifier. Without one, no upload is attempted.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithNoticeHandler sets the receiver of upload outcomes.
func WithNoticeHandler(h NoticeHandler) Option {
	return func(p *Pipeline) { p.onNotice = h }
}

// WithConcurrency bounds how many files of one batch decode at the same time.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithNotifyTimeout bounds each background upload notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.notifyTimeout = d
		}
	}
}

// WithIDGenerator replaces the document ID source.
func WithIDGenerator(g *IDGenerator) Option {
	return func(p *Pipeline) { p.ids = g }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

func WithMetrics(m *metrics.Workspace) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New returns a Pipeline that allocates references through refs.
func New(refs Acquirer, opts ...Option) *Pipeline {
	p := &Pipeline{
		refs:          refs,
		ids:           NewIDGenerator(nil),
		concurrency:   defaultConcurrency,
		notifyTimeout: defaultNotifyTimeout,
		logger:        zap.NewNop(),
		tracer:        otel.Tracer("docspace/ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type outcome struct {
	doc model.Document
	err error
}

// Ingest decodes files and returns the resulting documents in input order together
// with one FileError per file that produced nothing. It waits for every decode to
// finish; ctx is used for tracing and as the parent of upload notifications, and does
// not cancel decodes already started.
func (p *Pipeline) Ingest(ctx context.Context, files []model.RawFile) model.IngestResult {
	ctx, span := p.tracer.Start(ctx, "ingest.batch",
		trace.WithAttributes(attribute.Int("batch.size", len(files))),
	)
	defer span.End()

	stamp := p.ids.Next()

	for _, f := range files {
		p.notify(ctx, f)
	}

	outcomes := make([]outcome, len(files))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, f := range files {
		id := FormatID(stamp, i)
		g.Go(func() error {
			doc, err := p.decode(ctx, f, id)
			outcomes[i] = outcome{doc: doc, err: err}
			return nil
		})
	}
	_ = g.Wait()

	res := model.IngestResult{Documents: make([]model.Document, 0, len(files))}
	for i, o := range outcomes {
		if o.err != nil {
			name := ""
			if files[i] != nil {
				name = files[i].Name()
			}
			res.Errors = append(res.Errors, model.FileError{Filename: name, Err: o.err})
			p.metrics.IngestOutcome(false)
			p.logger.Warn("file ingestion failed", zap.String("file", name), zap.Error(o.err))
			continue
		}
		res.Documents = append(res.Documents, o.doc)
		p.metrics.IngestOutcome(true)
	}

	span.SetAttributes(
		attribute.Int("batch.documents", len(res.Documents)),
		attribute.Int("batch.errors", len(res.Errors)),
	)
	p.logger.Info("batch ingested",
		zap.Int("files", len(files)),
		zap.Int("documents", len(res.Documents)),
		zap.Int("errors", len(res.Errors)),
	)
	return res
}

// Wait blocks until every background upload notification has returned.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

func (p *Pipeline) decode(ctx context.Context, f model.RawFile, id string) (model.Document, error) {
	if f == nil {
		return model.Document{}, ErrNilFile
	}

	_, span := p.tracer.Start(ctx, "ingest.decode", trace.WithAttributes(
		attribute.String("file.name", f.Name()),
		attribute.String("file.type", f.MediaType()),
		attribute.Int64("file.size", f.Size()),
	))
	defer span.End()

	class := classify.Classify(f.MediaType())
	doc := model.Document{
		ID:        id,
		Name:      f.Name(),
		Size:      f.Size(),
		MediaType: f.MediaType(),
		Category:  class.Category,
	}

	switch class.Strategy {
	case classify.DecodeAsText:
		text, err := readText(f)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode failed")
			return model.Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		doc.Content = text
	default:
		h, err := p.refs.Acquire(f)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reference unavailable")
			return model.Document{}, fmt.Errorf("%w: %w", ErrReference, err)
		}
		doc.Handle = h
		doc.Content = h.URL()
	}
	return doc, nil
}

// readText reads the whole file as UTF-8, dropping a leading byte order mark and
// replacing invalid sequences with U+FFFD.
func readText(f model.RawFile) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(transform.NewReader(rc, unicode.UTF8BOM.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *Pipeline) notify(ctx context.Context, f model.RawFile) {
	if p.notifier == nil || f == nil {
		return
	}

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.notifyTimeout)
		defer cancel()

		err := p.notifier.Notify(nctx, f)
		n := model.Notice{Filename: f.Name(), OK: err == nil, At: time.Now().UTC()}
		switch {
		case err == nil:
			n.Message = fmt.Sprintf("File %q uploaded successfully", f.Name())
		case errors.Is(err, ErrUploadRejected):
			n.Message = fmt.Sprintf("Failed to upload %q", f.Name())
		default:
			n.Message = fmt.Sprintf("Error uploading %q", f.Name())
		}

		p.metrics.UploadNotice(n.OK)
		if err != nil {
			p.logger.Warn("upload notification failed", zap.String("file", f.Name()), zap.Error(err))
		}
		if p.onNotice != nil {
			p.onNotice(n)
		}
	}()
}
