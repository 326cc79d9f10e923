package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docspace/internal/blobref"
	"docspace/internal/dragdrop"
	"docspace/internal/ingest"
	"docspace/internal/model"
	"docspace/internal/workspace"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrBlobNotFound     = errors.New("object reference not found")
)

// WorkspaceService is the single entry point for everything that mutates or reads
// the document workspace: picker uploads, drag and drop, selection and preview.
type WorkspaceService interface {
	// Ingest decodes files and appends the resulting documents as one batch.
	Ingest(ctx context.Context, files []model.RawFile) model.IngestResult

	Snapshot() model.Snapshot
	Document(id string) (model.Document, error)
	// Remove reports whether id named a document. Unknown ids are a no-op.
	Remove(id string) bool
	// SetActive opens id in preview; an empty or unknown id closes the preview.
	SetActive(id string) model.Snapshot
	// ToggleSelection flips id in the selection; a stale id changes nothing.
	ToggleSelection(id string) model.Snapshot
	SelectAll() model.Snapshot
	DeselectAll() model.Snapshot
	ToggleAll() model.Snapshot
	// Sources returns the selected documents in workspace order.
	Sources() []model.Document

	// Blob resolves an object reference to the file it was issued for.
	Blob(handle model.Handle) (model.RawFile, error)

	Drag(ctx context.Context, ev dragdrop.Event) dragdrop.Outcome
	DragState() dragdrop.State

	// Close releases every live reference and waits for pending upload notices.
	Close()
}

type workspaceService struct {
	refs     *blobref.Manager
	pipeline *ingest.Pipeline
	store    *workspace.Store
	drops    *dragdrop.Coordinator
	logger   *zap.Logger
}

// NewWorkspaceService wires the pipeline, the store and a drag and drop coordinator
// whose drops are ingested through this service.
func NewWorkspaceService(refs *blobref.Manager, pipeline *ingest.Pipeline, store *workspace.Store, logger *zap.Logger, dropOpts ...dragdrop.Option) WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &workspaceService{
		refs:     refs,
		pipeline: pipeline,
		store:    store,
		logger:   logger,
	}
	s.drops = dragdrop.New(dragdrop.IngesterFunc(s.Ingest), dropOpts...)
	return s
}

func (s *workspaceService) Ingest(ctx context.Context, files []model.RawFile) model.IngestResult {
	res := s.pipeline.Ingest(ctx, files)
	if len(res.Documents) == 0 {
		return res
	}

	if err := s.store.AddDocuments(res.Documents); err != nil {
		// Nothing from this batch reached the workspace, so nothing else owns its handles.
		s.logger.Error("batch rejected by workspace", zap.Int("documents", len(res.Documents)), zap.Error(err))
		for _, d := range res.Documents {
			if d.HasReference() {
				s.refs.Release(d.Handle)
			}
			res.Errors = append(res.Errors, model.FileError{Filename: d.Name, Err: err})
		}
		res.Documents = nil
	}
	return res
}

func (s *workspaceService) Snapshot() model.Snapshot {
	return s.store.Snapshot()
}

func (s *workspaceService) Document(id string) (model.Document, error) {
	d, ok := s.store.Document(id)
	if !ok {
		return model.Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return d, nil
}

func (s *workspaceService) Remove(id string) bool {
	return s.store.RemoveDocument(id)
}

func (s *workspaceService) SetActive(id string) model.Snapshot {
	s.store.SetActiveView(id)
	return s.store.Snapshot()
}

func (s *workspaceService) ToggleSelection(id string) model.Snapshot {
	s.store.ToggleSelection(id)
	return s.store.Snapshot()
}

func (s *workspaceService) SelectAll() model.Snapshot {
	s.store.SelectAll()
	return s.store.Snapshot()
}

func (s *workspaceService) DeselectAll() model.Snapshot {
	s.store.DeselectAll()
	return s.store.Snapshot()
}

func (s *workspaceService) ToggleAll() model.Snapshot {
	s.store.ToggleAll()
	return s.store.Snapshot()
}

func (s *workspaceService) Sources() []model.Document {
	return s.store.Selected()
}

func (s *workspaceService) Blob(handle model.Handle) (model.RawFile, error) {
	handle = model.Handle(strings.TrimPrefix(string(handle), "blob:"))
	f, ok := s.refs.Resolve(handle)
	if !ok {
		return nil, ErrBlobNotFound
	}
	return f, nil
}

func (s *workspaceService) Drag(ctx context.Context, ev dragdrop.Event) dragdrop.Outcome {
	return s.drops.Dispatch(ctx, ev)
}

func (s *workspaceService) DragState() dragdrop.State {
	return s.drops.State()
}

func (s *workspaceService) Close() {
	s.pipeline.Wait()
	s.store.Close()
	s.logger.Info("workspace service closed", zap.Int("live_references", s.refs.Live()))
}
