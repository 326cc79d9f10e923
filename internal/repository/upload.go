// Package repository holds persistence abstractions for upload records.
// Implementations live in subpackages.
package repository

import (
	"context"

	"docspace/internal/model"
)

// UploadRepository persists upload metadata. No business logic here.
type UploadRepository interface {
	// Create inserts an upload and returns the stored row.
	Create(ctx context.Context, u *model.Upload) (*model.Upload, error)

	// FindByID returns sql.ErrNoRows when the id is unknown.
	FindByID(ctx context.Context, id string) (*model.Upload, error)

	// List returns one page, newest first, with the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Upload], error)

	// Delete removes an upload by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
