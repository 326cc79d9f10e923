package model

import (
	"fmt"
	"time"
)

// FileError reports a file that contributed no document to its batch.
type FileError struct {
	Filename string `json:"filename"`
	Err      error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// IngestResult is the outcome of one batch: documents in input order, plus per-file errors.
type IngestResult struct {
	Documents []Document
	Errors    []FileError
}

// Snapshot is a consistent, copied view of the workspace at one revision.
type Snapshot struct {
	Revision     uint64     `json:"revision"`
	Documents    []Document `json:"documents"`
	SelectedIDs  []string   `json:"selected_ids"`
	ActiveViewID string     `json:"active_view_id,omitempty"`
	AllSelected  bool       `json:"all_selected"`
	Count        int        `json:"count"`
}

// Notice is a transient, user-visible message about an upload outcome.
type Notice struct {
	Filename string    `json:"filename"`
	OK       bool      `json:"ok"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}
