// Package classify maps declared media types to a decoding strategy and a display category.
package classify

import (
	"strings"

	"docspace/internal/model"
)

// Strategy is how the ingestion pipeline turns a file into document content.
type Strategy int

const (
	// DecodeAsReference binds the file's bytes to an object reference.
	DecodeAsReference Strategy = iota
	// DecodeAsText reads the file's bytes as text.
	DecodeAsText
)

func (s Strategy) String() string {
	if s == DecodeAsText {
		return "text"
	}
	return "reference"
}

const (
	MediaTypePDF          = "application/pdf"
	MediaTypeWordDocument = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Class is the result of classifying one media type.
type Class struct {
	Strategy Strategy
	Category model.Category
}

// Classify returns the class of a declared media type. The first matching rule wins:
// text/* or anything mentioning json is text; image/* is an image; the PDF and
// word-processing types are themselves; everything else, including "", is generic.
// Matching ignores case, surrounding space and media-type parameters.
func Classify(mediaType string) Class {
	mt := normalize(mediaType)
	switch {
	case strings.HasPrefix(mt, "text/"), strings.Contains(mt, "json"):
		return Class{Strategy: DecodeAsText, Category: model.CategoryText}
	case strings.HasPrefix(mt, "image/"):
		return Class{Strategy: DecodeAsReference, Category: model.CategoryImage}
	case mt == MediaTypePDF:
		return Class{Strategy: DecodeAsReference, Category: model.CategoryPDF}
	case mt == MediaTypeWordDocument:
		return Class{Strategy: DecodeAsReference, Category: model.CategoryWordDocument}
	default:
		return Class{Strategy: DecodeAsReference, Category: model.CategoryGeneric}
	}
}

func normalize(mediaType string) string {
	mt, _, _ := strings.Cut(mediaType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
