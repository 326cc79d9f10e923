package events

import (
	"encoding/json"

	"docspace/internal/model"
)

// wireDocument carries the handle model.Document keeps out of its JSON form.
type wireDocument struct {
	model.Document
	Handle model.Handle `json:"handle,omitempty"`
}

// wireSnapshot is the TopicWorkspace payload; its documents shadow the embedded ones.
type wireSnapshot struct {
	model.Snapshot
	Documents []wireDocument `json:"documents"`
}

func newWireSnapshot(s model.Snapshot) wireSnapshot {
	docs := make([]wireDocument, len(s.Documents))
	for i, d := range s.Documents {
		docs[i] = wireDocument{Document: d, Handle: d.Handle}
	}
	return wireSnapshot{Snapshot: s, Documents: docs}
}

// DecodeSnapshot restores a snapshot published on TopicWorkspace, handles included.
func DecodeSnapshot(payload []byte) (model.Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(payload, &w); err != nil {
		return model.Snapshot{}, err
	}
	s := w.Snapshot
	s.Documents = make([]model.Document, len(w.Documents))
	for i, d := range w.Documents {
		doc := d.Document
		doc.Handle = d.Handle
		s.Documents[i] = doc
	}
	return s, nil
}
