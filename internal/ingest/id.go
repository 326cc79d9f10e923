package ingest

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator issues strictly increasing millisecond stamps, one per batch.
// Combined with the index inside the batch, a stamp yields session-unique document IDs
// even when two batches start within the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator reading the clock from now, or time.Now if nil.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a stamp greater than every stamp returned before.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	stamp := g.now().UnixMilli()
	if stamp <= g.last {
		stamp = g.last + 1
	}
	g.last = stamp
	return stamp
}

// FormatID builds the document ID for the file at index in the batch stamped stamp.
func FormatID(stamp int64, index int) string {
	return strconv.FormatInt(stamp, 10) + "-" + strconv.Itoa(index)
}
