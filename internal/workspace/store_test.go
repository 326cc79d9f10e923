package workspace

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docspace/internal/blobref"
	"docspace/internal/model"
)

// countingReleaser wraps a real manager and counts releases per handle.
type countingReleaser struct {
	*blobref.Manager
	mu       sync.Mutex
	released map[model.Handle]int
}

func newCountingReleaser() *countingReleaser {
	return &countingReleaser{Manager: blobref.New(), released: map[model.Handle]int{}}
}

func (c *countingReleaser) Release(h model.Handle) {
	c.mu.Lock()
	c.released[h]++
	c.mu.Unlock()
	c.Manager.Release(h)
}

func (c *countingReleaser) count(h model.Handle) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released[h]
}

type recordingObserver struct {
	mu    sync.Mutex
	snaps []model.Snapshot
}

func (r *recordingObserver) WorkspaceChanged(s model.Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func (r *recordingObserver) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func textDoc(id string) model.Document {
	return model.Document{ID: id, Name: id + ".txt", MediaType: "text/plain", Category: model.CategoryText, Content: "text " + id}
}

func refDoc(t *testing.T, refs *countingReleaser, id string) model.Document {
	t.Helper()
	h, err := refs.Acquire(model.NewMemoryFile(id+".png", "image/png", nil))
	require.NoError(t, err)
	return model.Document{ID: id, Name: id + ".png", MediaType: "image/png", Category: model.CategoryImage, Content: h.URL(), Handle: h}
}

func ids(docs []model.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestStore_AddDocumentsAppendsInOrder(t *testing.T) {
	s := NewStore(newCountingReleaser())

	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a"), textDoc("b")}))
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("c")}))
	require.NoError(t, s.AddDocuments(nil))

	snap := s.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, ids(snap.Documents))
	assert.Equal(t, 3, snap.Count)
	assert.Empty(t, snap.SelectedIDs)
	assert.Empty(t, snap.ActiveViewID)
	assert.False(t, snap.AllSelected)
}

func TestStore_AddDocumentsDoesNotTouchSelectionOrActiveView(t *testing.T) {
	s := NewStore(newCountingReleaser())
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a")}))
	s.SelectAll()
	s.SetActiveView("a")

	require.NoError(t, s.AddDocuments([]model.Document{textDoc("b")}))

	snap := s.Snapshot()
	assert.Equal(t, []string{"a"}, snap.SelectedIDs)
	assert.Equal(t, "a", snap.ActiveViewID)
	assert.False(t, snap.AllSelected, "the new document is not selected")
}

func TestStore_AddDocumentsRejectsDuplicates(t *testing.T) {
	s := NewStore(newCountingReleaser())
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a")}))

	err := s.AddDocuments([]model.Document{textDoc("b"), textDoc("a")})
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = s.AddDocuments([]model.Document{textDoc("c"), textDoc("c")})
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = s.AddDocuments([]model.Document{{Name: "anonymous"}})
	assert.ErrorIs(t, err, ErrEmptyID)

	assert.Equal(t, []string{"a"}, ids(s.Snapshot().Documents), "rejected batches leave no trace")
}

func TestStore_RemoveDocumentClearsDependentState(t *testing.T) {
	refs := newCountingReleaser()
	s := NewStore(refs)
	x := refDoc(t, refs, "x")
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a"), x}))
	s.ToggleSelection("x")
	s.ToggleSelection("a")
	s.SetActiveView("x")
	require.Equal(t, 1, refs.Live())

	assert.True(t, s.RemoveDocument("x"))

	snap := s.Snapshot()
	assert.Equal(t, []string{"a"}, ids(snap.Documents))
	assert.Equal(t, []string{"a"}, snap.SelectedIDs)
	assert.Empty(t, snap.ActiveViewID)
	assert.Equal(t, 1, refs.count(x.Handle))
	assert.Equal(t, 0, refs.Live())

	// Second removal is a no-op and never releases again.
	assert.False(t, s.RemoveDocument("x"))
	assert.Equal(t, 1, refs.count(x.Handle))
}

func TestStore_RemoveDocumentKeepsUnrelatedActiveView(t *testing.T) {
	s := NewStore(newCountingReleaser())
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a"), textDoc("b")}))
	s.SetActiveView("a")

	s.RemoveDocument("b")
	assert.Equal(t, "a", s.Snapshot().ActiveViewID)
}

func TestStore_RemoveTextDocumentReleasesNothing(t *testing.T) {
	refs := newCountingReleaser()
	s := NewStore(refs)
	x := refDoc(t, refs, "x")
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a"), x}))

	s.RemoveDocument("a")
	assert.Equal(t, 1, refs.Live())
	assert.Equal(t, 0, refs.count(x.Handle))
}

func TestStore_RemoveUnknownLeavesReferencesUnchanged(t *testing.T) {
	refs := newCountingReleaser()
	s := NewStore(refs)
	require.NoError(t, s.AddDocuments([]model.Document{refDoc(t, refs, "x")}))

	assert.False(t, s.RemoveDocument("missing"))
	assert.False(t, s.RemoveDocument(""))
	assert.Equal(t, 1, refs.Live())
}

func TestStore_SetActiveView(t *testing.T) {
	s := NewStore(newCountingReleaser())
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a"), textDoc("b")}))

	s.SetActiveView("b")
	doc, ok := s.ActiveDocument()
	require.True(t, ok)
	assert.Equal(t, "b", doc.ID)

	s.SetActiveView("stale")
	assert.Empty(t, s.Snapshot().ActiveViewID, "stale id clears the view")

	s.SetActiveView("a")
	s.SetActiveView("")
	_, ok = s.ActiveDocument()
	assert.False(t, ok)
}

func TestStore_ToggleSelection(t *testing.T) {
	s := NewStore(newCountingReleaser())
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a"), textDoc("b")}))

	s.ToggleSelection("b")
	s.ToggleSelection("a")
	assert.Equal(t, []string{"a", "b"}, s.Snapshot().SelectedIDs, "selection reported in document order")
	assert.True(t, s.AllSelected())

	s.ToggleSelection("a")
	assert.Equal(t, []string{"b"}, s.Snapshot().SelectedIDs)

	s.ToggleSelection("ghost")
	assert.Equal(t, []string{"b"}, s.Snapshot().SelectedIDs)
	assert.Equal(t, []string{"b"}, ids(s.Selected()))
}

func TestStore_SelectAllDeselectAllIdempotent(t *testing.T) {
	obs := &recordingObserver{}
	s := NewStore(newCountingReleaser(), WithObserver(obs))

	s.DeselectAll()
	s.SelectAll()
	assert.Equal(t, 0, obs.len(), "no-ops on an empty workspace publish nothing")
	assert.False(t, s.AllSelected(), "an empty workspace is never all-selected")

	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a"), textDoc("b")}))
	s.SelectAll()
	once := s.Snapshot()
	s.SelectAll()
	twice := s.Snapshot()
	assert.Equal(t, once.SelectedIDs, twice.SelectedIDs)
	assert.Equal(t, once.Revision, twice.Revision, "repeated SelectAll is a no-op")
	assert.True(t, twice.AllSelected)

	s.DeselectAll()
	rev := s.Snapshot().Revision
	s.DeselectAll()
	assert.Equal(t, rev, s.Snapshot().Revision)
	assert.Empty(t, s.Snapshot().SelectedIDs)
}

func TestStore_ToggleAll(t *testing.T) {
	s := NewStore(newCountingReleaser())
	s.ToggleAll()
	assert.Empty(t, s.Snapshot().SelectedIDs)

	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a"), textDoc("b")}))
	s.ToggleSelection("a")

	s.ToggleAll()
	assert.Equal(t, []string{"a", "b"}, s.Snapshot().SelectedIDs)

	s.ToggleAll()
	assert.Empty(t, s.Snapshot().SelectedIDs)
}

func TestStore_CloseReleasesEverythingOnce(t *testing.T) {
	refs := newCountingReleaser()
	s := NewStore(refs)
	x := refDoc(t, refs, "x")
	y := refDoc(t, refs, "y")
	require.NoError(t, s.AddDocuments([]model.Document{x, textDoc("a"), y}))
	s.SelectAll()
	s.SetActiveView("y")

	s.Close()
	s.Close()

	snap := s.Snapshot()
	assert.Empty(t, snap.Documents)
	assert.Empty(t, snap.SelectedIDs)
	assert.Empty(t, snap.ActiveViewID)
	assert.Equal(t, 0, refs.Live())
	assert.Equal(t, 1, refs.count(x.Handle))
	assert.Equal(t, 1, refs.count(y.Handle))
}

func TestStore_ObserverSeesEveryChange(t *testing.T) {
	obs := &recordingObserver{}
	s := NewStore(newCountingReleaser(), WithObserver(obs))

	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a")}))
	s.ToggleSelection("a")
	s.SetActiveView("a")
	s.SetActiveView("a")
	s.RemoveDocument("a")

	require.Equal(t, 4, obs.len())
	for i, snap := range obs.snaps {
		assert.Equal(t, uint64(i+1), snap.Revision)
	}
	last := obs.snaps[3]
	assert.Empty(t, last.Documents)
	assert.Empty(t, last.SelectedIDs)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore(newCountingReleaser())
	require.NoError(t, s.AddDocuments([]model.Document{textDoc("a")}))

	snap := s.Snapshot()
	snap.Documents[0].Name = "mutated"

	doc, _ := s.Document("a")
	assert.Equal(t, "a.txt", doc.Name)
}

// TestStore_InvariantsUnderRandomOperations drives the store with random operations and
// checks every invariant after each step.
func TestStore_InvariantsUnderRandomOperations(t *testing.T) {
	refs := newCountingReleaser()
	s := NewStore(refs)
	rng := rand.New(rand.NewPCG(7, 11))
	next := 0
	known := []string{"never-added"}

	for step := 0; step < 2000; step++ {
		pick := func() string { return known[rng.IntN(len(known))] }

		switch rng.IntN(8) {
		case 0:
			var batch []model.Document
			for n := rng.IntN(3); n >= 0; n-- {
				id := fmt.Sprintf("doc-%d", next)
				next++
				known = append(known, id)
				if rng.IntN(2) == 0 {
					batch = append(batch, refDoc(t, refs, id))
				} else {
					batch = append(batch, textDoc(id))
				}
			}
			require.NoError(t, s.AddDocuments(batch))
		case 1:
			s.RemoveDocument(pick())
		case 2:
			s.SetActiveView(pick())
		case 3, 4:
			s.ToggleSelection(pick())
		case 5:
			s.SelectAll()
		case 6:
			s.DeselectAll()
		case 7:
			s.ToggleAll()
		}

		snap := s.Snapshot()
		present := map[string]bool{}
		withRef := 0
		for _, d := range snap.Documents {
			require.False(t, present[d.ID], "duplicate id %s", d.ID)
			present[d.ID] = true
			if d.HasReference() {
				withRef++
			}
		}
		for _, id := range snap.SelectedIDs {
			require.True(t, present[id], "selected id %s not present", id)
		}
		if snap.ActiveViewID != "" {
			require.True(t, present[snap.ActiveViewID], "active id %s not present", snap.ActiveViewID)
		}
		require.Equal(t, withRef, refs.Live(), "reference accounting drifted at step %d", step)
		require.Equal(t, len(snap.SelectedIDs) == len(snap.Documents) && len(snap.Documents) > 0, snap.AllSelected)
	}

	s.Close()
	assert.Equal(t, 0, refs.Live())
}

func TestStore_ConcurrentMutations(t *testing.T) {
	refs := newCountingReleaser()
	s := NewStore(refs)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				h, err := refs.Acquire(model.NewMemoryFile(id, "image/png", nil))
				if err != nil {
					return
				}
				_ = s.AddDocuments([]model.Document{{ID: id, Name: id, Content: h.URL(), Handle: h}})
				s.ToggleSelection(id)
				s.SetActiveView(id)
				if i%2 == 0 {
					s.RemoveDocument(id)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*25, s.Len())
	assert.Equal(t, s.Len(), refs.Live())
	assert.Len(t, s.Snapshot().SelectedIDs, 8*25)
}
