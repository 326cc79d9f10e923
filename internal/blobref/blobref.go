// Package blobref manages ephemeral object references for binary document content.
//
// A reference binds a handle to a raw file's bytes without copying them. Every
// successful Acquire must be matched by exactly one Release; releasing an unknown or
// already-released handle is a no-op. The number of live handles is the leak detector:
// it must always equal the number of workspace documents that hold a reference.
package blobref

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docspace/internal/metrics"
	"docspace/internal/model"
)

var (
	// ErrExhausted is returned by Acquire when the configured handle limit is reached.
	ErrExhausted = errors.New("object references exhausted")
	// ErrNilFile is returned by Acquire when no file is given.
	ErrNilFile = errors.New("raw file is nil")
)

// Manager issues and revokes object references. It is safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	live  map[model.Handle]model.RawFile
	limit int

	logger  *zap.Logger
	metrics *metrics.Workspace
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the number of simultaneously live handles. Zero or less means unlimited.
func WithLimit(n int) Option {
	return func(m *Manager) { m.limit = n }
}

// WithLogger sets the logger used for acquire/release debug events.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics publishes the live handle count.
func WithMetrics(w *metrics.Workspace) Option {
	return func(m *Manager) { m.metrics = w }
}

// New returns an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		live:   make(map[model.Handle]model.RawFile),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire allocates a new handle bound to f. The caller becomes its sole owner.
func (m *Manager) Acquire(f model.RawFile) (model.Handle, error) {
	if f == nil {
		return "", ErrNilFile
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.limit > 0 && len(m.live) >= m.limit {
		return "", ErrExhausted
	}
	h := model.Handle(uuid.NewString())
	m.live[h] = f
	m.metrics.SetLiveReferences(len(m.live))

	m.logger.Debug("object reference acquired",
		zap.String("handle", string(h)),
		zap.String("file", f.Name()),
		zap.Int("live", len(m.live)),
	)
	return h, nil
}

// Release revokes h. Unknown and already-released handles are ignored.
func (m *Manager) Release(h model.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live[h]; !ok {
		return
	}
	delete(m.live, h)
	m.metrics.SetLiveReferences(len(m.live))

	m.logger.Debug("object reference released",
		zap.String("handle", string(h)),
		zap.Int("live", len(m.live)),
	)
}

// Resolve returns the file bound to h, or false once h has been released.
func (m *Manager) Resolve(h model.Handle) (model.RawFile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.live[h]
	return f, ok
}

// Live returns the number of acquired, unreleased handles.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
