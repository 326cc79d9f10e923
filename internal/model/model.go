package model

// Package model contains the domain types shared across layers.
// Keep it free of business logic and of infrastructure dependencies.

import (
	"bytes"
	"io"
	"os"
)

// RawFile is a file handle supplied by a picker or a drop gesture, before ingestion.
// Name, Size and MediaType are the values declared by the source; Open may be called
// more than once and every call returns a fresh reader over the full content.
type RawFile interface {
	Name() string
	Size() int64
	MediaType() string
	Open() (io.ReadCloser, error)
}

type memoryFile struct {
	name      string
	mediaType string
	data      []byte
}

// NewMemoryFile returns a RawFile backed by an in-memory byte slice.
// The slice is retained, not copied.
func NewMemoryFile(name, mediaType string, data []byte) RawFile {
	return &memoryFile{name: name, mediaType: mediaType, data: data}
}

func (f *memoryFile) Name() string      { return f.name }
func (f *memoryFile) Size() int64       { return int64(len(f.data)) }
func (f *memoryFile) MediaType() string { return f.mediaType }

func (f *memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type localFile struct {
	path      string
	name      string
	size      int64
	mediaType string
}

// NewLocalFile returns a RawFile reading from path on every Open.
// The size is captured once, at construction.
func NewLocalFile(path, name, mediaType string) (RawFile, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &localFile{path: path, name: name, size: st.Size(), mediaType: mediaType}, nil
}

func (f *localFile) Name() string      { return f.name }
func (f *localFile) Size() int64       { return f.size }
func (f *localFile) MediaType() string { return f.mediaType }

func (f *localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
