package handler

import (
	"docspace/internal/classify"
	"docspace/internal/dragdrop"
	"docspace/internal/model"
)

// documentView is a document as the renderer lists it.
type documentView struct {
	model.Document
	SizeLabel string `json:"size_label"`
	// BlobURL is where a referenced document's bytes can be fetched for preview.
	BlobURL string `json:"blob_url,omitempty"`
}

type snapshotView struct {
	Revision     uint64         `json:"revision"`
	Documents    []documentView `json:"documents"`
	SelectedIDs  []string       `json:"selected_ids"`
	ActiveViewID string         `json:"active_view_id,omitempty"`
	AllSelected  bool           `json:"all_selected"`
	Count        int            `json:"count"`
}

type fileErrorView struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type ingestView struct {
	Documents []documentView  `json:"documents"`
	Errors    []fileErrorView `json:"errors"`
}

type dropView struct {
	Handled   bool            `json:"handled"`
	Duplicate bool            `json:"duplicate"`
	Listener  dragdrop.Target `json:"listener,omitempty"`
	ingestView
	State dragdrop.State `json:"state"`
}

func newDocumentView(d model.Document) documentView {
	v := documentView{Document: d, SizeLabel: classify.FormatSize(d.Size)}
	if d.HasReference() {
		v.BlobURL = "/workspace/blobs/" + string(d.Handle)
	}
	return v
}

func newDocumentViews(docs []model.Document) []documentView {
	out := make([]documentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentView(d))
	}
	return out
}

func newSnapshotView(s model.Snapshot) snapshotView {
	ids := s.SelectedIDs
	if ids == nil {
		ids = []string{}
	}
	return snapshotView{
		Revision:     s.Revision,
		Documents:    newDocumentViews(s.Documents),
		SelectedIDs:  ids,
		ActiveViewID: s.ActiveViewID,
		AllSelected:  s.AllSelected,
		Count:        s.Count,
	}
}

func newIngestView(r model.IngestResult) ingestView {
	errs := make([]fileErrorView, 0, len(r.Errors))
	for _, e := range r.Errors {
		msg := ""
		if e.Err != nil {
			msg = e.Err.Error()
		}
		errs = append(errs, fileErrorView{Filename: e.Filename, Error: msg})
	}
	return ingestView{Documents: newDocumentViews(r.Documents), Errors: errs}
}
