package dragdrop

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docspace/internal/model"
)

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) IngestBatch(ctx context.Context, files []model.RawFile) model.IngestResult {
	args := m.Called(ctx, files)
	return args.Get(0).(model.IngestResult)
}

func twoFiles() []model.RawFile {
	return []model.RawFile{
		model.NewMemoryFile("a.txt", "text/plain", []byte("a")),
		model.NewMemoryFile("b.png", "image/png", []byte("b")),
	}
}

func TestCoordinator_DragOverSetsFlags(t *testing.T) {
	c := New(new(mockIngester))

	c.Dispatch(context.Background(), Event{Kind: KindDragOver, Target: TargetPage})
	assert.Equal(t, State{GlobalActive: true, Overlay: true}, c.State())

	c.Dispatch(context.Background(), Event{Kind: KindDragOver, Target: TargetLocal})
	c.Dispatch(context.Background(), Event{Kind: KindDragOver, Target: TargetLocal})
	assert.Equal(t, State{LocalActive: true, GlobalActive: true, Overlay: true}, c.State())
}

func TestCoordinator_DragLeave(t *testing.T) {
	c := New(new(mockIngester))
	ctx := context.Background()
	c.Dispatch(ctx, Event{Kind: KindDragOver, Target: TargetLocal})

	// Leaving the drop target bubbles to the page as a child leave.
	c.Dispatch(ctx, Event{Kind: KindDragLeave, Target: TargetLocal})
	assert.Equal(t, State{GlobalActive: true, Overlay: true}, c.State())

	// Moving between children of the page keeps the overlay.
	c.Dispatch(ctx, Event{Kind: KindDragLeave, Target: TargetPage, FromChild: true})
	assert.True(t, c.State().GlobalActive)

	c.Dispatch(ctx, Event{Kind: KindDragLeave, Target: TargetPage})
	assert.Equal(t, State{}, c.State())
}

func TestCoordinator_DropOnLocalTargetIngestsOnce(t *testing.T) {
	ing := new(mockIngester)
	files := twoFiles()
	ing.On("IngestBatch", mock.Anything, mock.MatchedBy(func(fs []model.RawFile) bool { return len(fs) == 2 })).
		Return(model.IngestResult{Documents: []model.Document{{ID: "1"}, {ID: "2"}}}).Once()

	c := New(ing)
	ctx := context.Background()
	c.Dispatch(ctx, Event{Kind: KindDragOver, Target: TargetLocal})

	out := c.Dispatch(ctx, Event{ID: "g1", Kind: KindDrop, Target: TargetLocal, Files: files})

	assert.True(t, out.Handled)
	assert.Equal(t, TargetLocal, out.Listener)
	assert.Len(t, out.Result.Documents, 2)
	assert.Equal(t, State{}, c.State())
	ing.AssertNumberOfCalls(t, "IngestBatch", 1)
	ing.AssertExpectations(t)
}

func TestCoordinator_DropOnPageIngestsOnce(t *testing.T) {
	ing := new(mockIngester)
	ing.On("IngestBatch", mock.Anything, mock.Anything).Return(model.IngestResult{}).Once()

	c := New(ing)
	out := c.Dispatch(context.Background(), Event{Kind: KindDrop, Target: TargetPage, Files: twoFiles()})

	assert.True(t, out.Handled)
	assert.Equal(t, TargetPage, out.Listener)
	ing.AssertNumberOfCalls(t, "IngestBatch", 1)
	files := ing.Calls[0].Arguments.Get(1).([]model.RawFile)
	assert.Len(t, files, 2)
}

func TestCoordinator_RedeliveredGestureIsIgnored(t *testing.T) {
	ing := new(mockIngester)
	ing.On("IngestBatch", mock.Anything, mock.Anything).Return(model.IngestResult{}).Once()

	c := New(ing)
	ctx := context.Background()
	first := c.Dispatch(ctx, Event{ID: "same", Kind: KindDrop, Target: TargetLocal, Files: twoFiles()})
	second := c.Dispatch(ctx, Event{ID: "same", Kind: KindDrop, Target: TargetPage, Files: twoFiles()})

	assert.True(t, first.Handled)
	assert.False(t, second.Handled)
	assert.True(t, second.Duplicate)
	ing.AssertNumberOfCalls(t, "IngestBatch", 1)
}

func TestCoordinator_ConcurrentDeliveryOfOneGesture(t *testing.T) {
	ing := new(mockIngester)
	ing.On("IngestBatch", mock.Anything, mock.Anything).Return(model.IngestResult{})

	c := New(ing)
	var wg sync.WaitGroup
	for _, target := range []Target{TargetLocal, TargetPage, TargetLocal, TargetPage} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Dispatch(context.Background(), Event{ID: "race", Kind: KindDrop, Target: target, Files: twoFiles()})
		}()
	}
	wg.Wait()

	ing.AssertNumberOfCalls(t, "IngestBatch", 1)
}

func TestCoordinator_DropWithoutFiles(t *testing.T) {
	ing := new(mockIngester)
	c := New(ing)
	ctx := context.Background()
	c.Dispatch(ctx, Event{Kind: KindDragOver, Target: TargetLocal})

	out := c.Dispatch(ctx, Event{ID: "empty", Kind: KindDrop, Target: TargetLocal})

	assert.False(t, out.Handled)
	assert.False(t, out.Duplicate)
	assert.Equal(t, State{}, c.State())
	ing.AssertNotCalled(t, "IngestBatch", mock.Anything, mock.Anything)

	// The empty drop did not claim the gesture.
	ing.On("IngestBatch", mock.Anything, mock.Anything).Return(model.IngestResult{}).Once()
	out = c.Dispatch(ctx, Event{ID: "empty", Kind: KindDrop, Target: TargetLocal, Files: twoFiles()})
	assert.True(t, out.Handled)
}

func TestCoordinator_DistinctGesturesWithoutIDs(t *testing.T) {
	ing := new(mockIngester)
	ing.On("IngestBatch", mock.Anything, mock.Anything).Return(model.IngestResult{})

	c := New(ing)
	for i := 0; i < 3; i++ {
		out := c.Dispatch(context.Background(), Event{Kind: KindDrop, Target: TargetPage, Files: twoFiles()})
		require.True(t, out.Handled)
	}
	ing.AssertNumberOfCalls(t, "IngestBatch", 3)
}

func TestIngesterFunc(t *testing.T) {
	var got int
	f := IngesterFunc(func(_ context.Context, files []model.RawFile) model.IngestResult {
		got = len(files)
		return model.IngestResult{}
	})
	c := New(f)
	c.Dispatch(context.Background(), Event{Kind: KindDrop, Target: TargetLocal, Files: twoFiles()})
	assert.Equal(t, 2, got)
}
