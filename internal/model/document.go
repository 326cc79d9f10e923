package model

// Category is the display category of a document, consumed by the renderer for iconography.
type Category string

const (
	CategoryImage        Category = "image"
	CategoryPDF          Category = "pdf"
	CategoryWordDocument Category = "word_document"
	CategoryText         Category = "text"
	CategoryGeneric      Category = "generic"
)

// Handle identifies one ephemeral object reference issued by the reference manager.
// The zero value means "no reference".
type Handle string

// URL returns the reference string stored as a document's content.
func (h Handle) URL() string {
	if h == "" {
		return ""
	}
	return "blob:" + string(h)
}

// Document is the in-memory record of one ingested file.
// Documents are immutable once built; exactly one of IsText and HasReference holds.
type Document struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Size      int64    `json:"size"`
	MediaType string   `json:"type"`
	Category  Category `json:"category"`
	// Content is the decoded text, or Handle.URL() for referenced files.
	Content string `json:"content"`
	Handle  Handle `json:"-"`
}

// IsText reports whether Content holds decoded text.
func (d Document) IsText() bool { return d.Handle == "" }

// HasReference reports whether the document owns an object reference.
func (d Document) HasReference() bool { return d.Handle != "" }
