// Package workspace holds the single mutable state of a document session: the ordered
// documents, the selected source IDs and the document open in single-file preview.
//
// Every mutation is serialized and keeps three invariants: document IDs are unique,
// the selection only names present documents, and the active view is empty or names a
// present document. Removing a document releases its object reference exactly once.
package workspace

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"docspace/internal/metrics"
	"docspace/internal/model"
)

var (
	// ErrDuplicateID is returned by AddDocuments when a batch reuses an ID.
	ErrDuplicateID = errors.New("document id already in workspace")
	// ErrEmptyID is returned by AddDocuments for a document without an ID.
	ErrEmptyID = errors.New("document id is empty")
)

// Releaser revokes object references. *blobref.Manager satisfies it.
type Releaser interface {
	Release(h model.Handle)
}

// Observer is told about every state change, after the change is applied.
// Snapshots may reach an observer out of order under concurrent mutation;
// Revision orders them.
type Observer interface {
	WorkspaceChanged(s model.Snapshot)
}

// Store is the workspace state container. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	docs     []model.Document
	selected map[string]struct{}
	active   string
	revision uint64

	refs      Releaser
	observers []Observer
	logger    *zap.Logger
	metrics   *metrics.Workspace
}

// Option configures a Store.
type Option func(*Store)

// WithObserver registers o for change notifications.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Workspace) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore returns an empty workspace releasing references through refs.
func NewStore(refs Releaser, opts ...Option) *Store {
	s := &Store{
		selected: make(map[string]struct{}),
		refs:     refs,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddDocuments appends batch in order. The batch is rejected as a whole if any ID is
// empty or already present; selection and active view are left untouched.
func (s *Store) AddDocuments(batch []model.Document) error {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	seen := make(map[string]struct{}, len(s.docs)+len(batch))
	for _, d := range s.docs {
		seen[d.ID] = struct{}{}
	}
	for _, d := range batch {
		if d.ID == "" {
			s.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrEmptyID, d.Name)
		}
		if _, dup := seen[d.ID]; dup {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	s.docs = append(s.docs, batch...)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Debug("documents added", zap.Int("added", len(batch)), zap.Int("count", snap.Count))
	s.notify(snap)
	return nil
}

// RemoveDocument removes the document with id, releases its reference, drops it from
// the selection and clears the active view if it pointed at it. It reports whether a
// document was removed; an unknown id is a no-op.
func (s *Store) RemoveDocument(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	doc := s.docs[i]
	s.docs = slices.Delete(s.docs, i, i+1)
	delete(s.selected, id)
	if s.active == id {
		s.active = ""
	}
	if doc.HasReference() {
		s.refs.Release(doc.Handle)
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Debug("document removed", zap.String("id", id), zap.Bool("reference", doc.HasReference()))
	s.notify(snap)
	return true
}

// SetActiveView opens id in single-file preview. An empty or unknown id clears the view.
func (s *Store) SetActiveView(id string) {
	s.mu.Lock()
	next := ""
	if s.indexLocked(id) >= 0 {
		next = id
	}
	if next == s.active {
		s.mu.Unlock()
		return
	}
	s.active = next
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// ToggleSelection flips id's membership in the selection. Unknown ids are ignored.
func (s *Store) ToggleSelection(id string) {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SelectAll selects every current document.
func (s *Store) SelectAll() {
	s.mu.Lock()
	if len(s.selected) == len(s.docs) {
		s.mu.Unlock()
		return
	}
	for _, d := range s.docs {
		s.selected[d.ID] = struct{}{}
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// DeselectAll empties the selection.
func (s *Store) DeselectAll() {
	s.mu.Lock()
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return
	}
	clear(s.selected)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// ToggleAll deselects everything when all documents are selected, and selects
// everything otherwise. The decision and the change happen atomically.
func (s *Store) ToggleAll() {
	s.mu.Lock()
	if s.allSelectedLocked() {
		clear(s.selected)
	} else if len(s.docs) > 0 {
		for _, d := range s.docs {
			s.selected[d.ID] = struct{}{}
		}
	} else {
		s.mu.Unlock()
		return
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Close tears the workspace down: every document is removed and every reference
// released exactly once. The store stays usable afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	if len(s.docs) == 0 && len(s.selected) == 0 && s.active == "" {
		s.mu.Unlock()
		return
	}
	released := 0
	for _, d := range s.docs {
		if d.HasReference() {
			s.refs.Release(d.Handle)
			released++
		}
	}
	s.docs = nil
	clear(s.selected)
	s.active = ""
	snap := s.commitLocked()
	s.mu.Unlock()

	s.logger.Info("workspace closed", zap.Int("released_references", released))
	s.notify(snap)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Document returns the document with id.
func (s *Store) Document(id string) (model.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.docs[i], true
	}
	return model.Document{}, false
}

// ActiveDocument returns the document open in preview, if any.
func (s *Store) ActiveDocument() (model.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(s.active); i >= 0 {
		return s.docs[i], true
	}
	return model.Document{}, false
}

// Selected returns the selected documents in workspace order.
func (s *Store) Selected() []model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Document, 0, len(s.selected))
	for _, d := range s.docs {
		if _, ok := s.selected[d.ID]; ok {
			out = append(out, d)
		}
	}
	return out
}

// AllSelected reports whether the workspace is non-empty and every document is selected.
func (s *Store) AllSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allSelectedLocked()
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.docs, func(d model.Document) bool { return d.ID == id })
}

func (s *Store) allSelectedLocked() bool {
	return len(s.docs) > 0 && len(s.selected) == len(s.docs)
}

func (s *Store) commitLocked() model.Snapshot {
	s.revision++
	s.metrics.ObserveState(len(s.docs), len(s.selected))
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Snapshot {
	snap := model.Snapshot{
		Revision:     s.revision,
		Documents:    slices.Clone(s.docs),
		SelectedIDs:  make([]string, 0, len(s.selected)),
		ActiveViewID: s.active,
		AllSelected:  s.allSelectedLocked(),
		Count:        len(s.docs),
	}
	if snap.Documents == nil {
		snap.Documents = []model.Document{}
	}
	for _, d := range s.docs {
		if _, ok := s.selected[d.ID]; ok {
			snap.SelectedIDs = append(snap.SelectedIDs, d.ID)
		}
	}
	return snap
}

func (s *Store) notify(snap model.Snapshot) {
	for _, o := range s.observers {
		o.WorkspaceChanged(snap)
	}
}
