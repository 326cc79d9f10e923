package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docspace/internal/dragdrop"
	"docspace/internal/model"
	"docspace/internal/service"
)

type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) Ingest(ctx context.Context, files []model.RawFile) model.IngestResult {
	return m.Called(ctx, files).Get(0).(model.IngestResult)
}

func (m *MockWorkspaceService) Snapshot() model.Snapshot {
	return m.Called().Get(0).(model.Snapshot)
}

func (m *MockWorkspaceService) Document(id string) (model.Document, error) {
	args := m.Called(id)
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *MockWorkspaceService) Remove(id string) bool {
	return m.Called(id).Bool(0)
}

func (m *MockWorkspaceService) SetActive(id string) model.Snapshot {
	return m.Called(id).Get(0).(model.Snapshot)
}

func (m *MockWorkspaceService) ToggleSelection(id string) model.Snapshot {
	return m.Called(id).Get(0).(model.Snapshot)
}

func (m *MockWorkspaceService) SelectAll() model.Snapshot {
	return m.Called().Get(0).(model.Snapshot)
}

func (m *MockWorkspaceService) DeselectAll() model.Snapshot {
	return m.Called().Get(0).(model.Snapshot)
}

func (m *MockWorkspaceService) ToggleAll() model.Snapshot {
	return m.Called().Get(0).(model.Snapshot)
}

func (m *MockWorkspaceService) Sources() []model.Document {
	docs, _ := m.Called().Get(0).([]model.Document)
	return docs
}

func (m *MockWorkspaceService) Blob(handle model.Handle) (model.RawFile, error) {
	args := m.Called(handle)
	f, _ := args.Get(0).(model.RawFile)
	return f, args.Error(1)
}

func (m *MockWorkspaceService) Drag(ctx context.Context, ev dragdrop.Event) dragdrop.Outcome {
	return m.Called(ctx, ev).Get(0).(dragdrop.Outcome)
}

func (m *MockWorkspaceService) DragState() dragdrop.State {
	return m.Called().Get(0).(dragdrop.State)
}

func (m *MockWorkspaceService) Close() {
	m.Called()
}

var _ service.WorkspaceService = (*MockWorkspaceService)(nil)
