// Package dragdrop reconciles page-level and drop-target drag events.
//
// The Coordinator owns both listener registrations. Events dispatched at the local
// drop target bubble to the page listener unless a listener stops propagation, as a
// browser would. Each drop gesture is claimed at most once: the first listener to claim
// its ID hands the files to the ingester, and any later delivery of the same gesture is
// reported as a duplicate and ignored.
package dragdrop

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"docspace/internal/metrics"
	"docspace/internal/model"
)

// Target is where an event was fired.
type Target string

const (
	TargetLocal Target = "local"
	TargetPage  Target = "page"
)

// Kind is the drag event type.
type Kind string

const (
	KindDragOver  Kind = "dragover"
	KindDragLeave Kind = "dragleave"
	KindDrop      Kind = "drop"
)

const defaultClaimTTL = time.Minute

// Event is one drag event. ID identifies the user gesture; it is generated when empty.
// FromChild marks a page dragleave whose pointer is still inside the page.
type Event struct {
	ID        string
	Kind      Kind
	Target    Target
	FromChild bool
	Files     []model.RawFile
}

// Ingester receives a dropped batch.
type Ingester interface {
	IngestBatch(ctx context.Context, files []model.RawFile) model.IngestResult
}

// IngesterFunc adapts a function to Ingester.
type IngesterFunc func(ctx context.Context, files []model.RawFile) model.IngestResult

func (f IngesterFunc) IngestBatch(ctx context.Context, files []model.RawFile) model.IngestResult {
	return f(ctx, files)
}

// State is the drag affordance state. Overlay is the union of both flags.
type State struct {
	LocalActive  bool `json:"local_active"`
	GlobalActive bool `json:"global_active"`
	Overlay      bool `json:"overlay"`
}

// Outcome describes what a dispatched event did.
type Outcome struct {
	// Handled is true when the event's files were handed to the ingester.
	Handled bool
	// Duplicate is true when the drop gesture had already been claimed.
	Duplicate bool
	// Listener is the listener that claimed the drop.
	Listener Target
	Result   model.IngestResult
}

type listener func(c *Coordinator, d *delivery)

type delivery struct {
	ev      Event
	stopped bool
	claimed bool
	dup     bool
	by      Target
}

// Coordinator tracks drag state and routes drops to the ingester. Safe for concurrent use.
type Coordinator struct {
	mu           sync.Mutex
	localActive  bool
	globalActive bool

	claims    *cache.Cache
	claimTTL  time.Duration
	ingester  Ingester
	listeners map[Target]listener

	logger  *zap.Logger
	metrics *metrics.Workspace
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClaimTTL sets how long a claimed gesture ID is remembered.
func WithClaimTTL(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.claimTTL = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Workspace) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New returns a Coordinator with the local and page listeners registered.
func New(ingester Ingester, opts ...Option) *Coordinator {
	c := &Coordinator{
		claimTTL: defaultClaimTTL,
		ingester: ingester,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.claims = cache.New(c.claimTTL, 2*c.claimTTL)
	c.listeners = map[Target]listener{
		TargetLocal: (*Coordinator).onLocal,
		TargetPage:  (*Coordinator).onPage,
	}
	return c
}

// Dispatch delivers ev along its propagation path and, for a drop carrying files that
// no listener has claimed before, ingests the files exactly once.
func (c *Coordinator) Dispatch(ctx context.Context, ev Event) Outcome {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	path := []Target{TargetPage}
	if ev.Target == TargetLocal {
		path = []Target{TargetLocal, TargetPage}
	}

	d := &delivery{ev: ev}
	c.mu.Lock()
	for _, t := range path {
		c.listeners[t](c, d)
		if d.stopped {
			break
		}
	}
	c.mu.Unlock()

	switch {
	case d.dup:
		c.metrics.Drop("duplicate")
		c.logger.Debug("duplicate drop ignored", zap.String("gesture", ev.ID))
		return Outcome{Duplicate: true}
	case !d.claimed:
		return Outcome{}
	}

	c.metrics.Drop(string(d.by))
	c.logger.Info("drop claimed",
		zap.String("gesture", ev.ID),
		zap.String("listener", string(d.by)),
		zap.Int("files", len(ev.Files)),
	)
	res := c.ingester.IngestBatch(ctx, ev.Files)
	return Outcome{Handled: true, Listener: d.by, Result: res}
}

// State returns the current drag affordance state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		LocalActive:  c.localActive,
		GlobalActive: c.globalActive,
		Overlay:      c.localActive || c.globalActive,
	}
}

func (c *Coordinator) onLocal(d *delivery) {
	switch d.ev.Kind {
	case KindDragOver:
		c.localActive = true
	case KindDragLeave:
		c.localActive = false
	case KindDrop:
		c.localActive = false
		c.globalActive = false
		c.claim(d, TargetLocal)
		d.stopped = true
	}
}

func (c *Coordinator) onPage(d *delivery) {
	switch d.ev.Kind {
	case KindDragOver:
		c.globalActive = true
	case KindDragLeave:
		// A leave bubbling up from the drop target, or one that stays inside the
		// page, is not the pointer leaving the page.
		if d.ev.Target == TargetPage && !d.ev.FromChild {
			c.globalActive = false
		}
	case KindDrop:
		c.localActive = false
		c.globalActive = false
		c.claim(d, TargetPage)
	}
}

func (c *Coordinator) claim(d *delivery, by Target) {
	if d.claimed || d.dup || len(d.ev.Files) == 0 {
		return
	}
	if err := c.claims.Add(d.ev.ID, string(by), cache.DefaultExpiration); err != nil {
		d.dup = true
		return
	}
	d.claimed = true
	d.by = by
}
