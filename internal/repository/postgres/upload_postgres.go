package postgres

import (
	"context"
	"database/sql"

	"docspace/internal/model"
	"docspace/internal/repository"
)

const uploadColumns = `id, filename, original_name, storage_path, size, content_type, created_at`

// UploadPostgres is the PostgreSQL implementation of repository.UploadRepository.
type UploadPostgres struct {
	db *sql.DB
}

func NewUploadPostgres(db *sql.DB) *UploadPostgres {
	return &UploadPostgres{db: db}
}

var _ repository.UploadRepository = (*UploadPostgres)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*model.Upload, error) {
	var u model.Upload
	if err := s.Scan(
		&u.ID,
		&u.Filename,
		&u.OriginalName,
		&u.StoragePath,
		&u.Size,
		&u.ContentType,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UploadPostgres) Create(ctx context.Context, u *model.Upload) (*model.Upload, error) {
	const q = `
		INSERT INTO uploads (` + uploadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + uploadColumns
	return scanUpload(r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Filename,
		u.OriginalName,
		u.StoragePath,
		u.Size,
		u.ContentType,
		u.CreatedAt,
	))
}

func (r *UploadPostgres) FindByID(ctx context.Context, id string) (*model.Upload, error) {
	const q = `SELECT ` + uploadColumns + ` FROM uploads WHERE id = $1`
	return scanUpload(r.db.QueryRowContext(ctx, q, id))
}

func (r *UploadPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Upload], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT ` + uploadColumns + `
		FROM uploads
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Upload, 0)
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Upload]{Items: items, Total: total}, nil
}

// Delete ignores missing rows.
func (r *UploadPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	return err
}
