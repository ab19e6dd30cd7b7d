package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    mime_type,
    size_bytes,
    storage_provider,
    storage_key,
    consent,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	storageProvider := doc.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		storageProvider,
		doc.StorageKey,
		doc.Consent,
		doc.CreatedAt,
	)
	return err
}

const selectColumns = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key, consent, created_at
FROM documents`

// GetCurrentByUser returns the latest document for a user.
func (r *PGRepo) GetCurrentByUser(ctx context.Context, userID string) (Document, error) {
	const query = selectColumns + `
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

// GetByID returns a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	const query = selectColumns + `
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID, documentID))
}

// ListByUser returns documents for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = selectColumns + `
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		var provider sql.NullString
		var storageKey sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.FileName,
			&doc.MimeType,
			&doc.SizeBytes,
			&provider,
			&storageKey,
			&doc.Consent,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		doc.StorageProvider = provider.String
		doc.StorageKey = storageKey.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListAll returns retained documents across all users, newest first.
func (r *PGRepo) ListAll(ctx context.Context, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	const query = selectColumns + `
WHERE deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		var provider sql.NullString
		var storageKey sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.FileName,
			&doc.MimeType,
			&doc.SizeBytes,
			&provider,
			&storageKey,
			&doc.Consent,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		doc.StorageProvider = provider.String
		doc.StorageKey = storageKey.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete soft-deletes a document for a user.
func (r *PGRepo) Delete(ctx context.Context, userID, documentID string) error {
	const query = `
UPDATE documents SET deleted_at = NOW()
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, userID, documentID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimGuest reassigns documents owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE documents SET user_id = $1
WHERE user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (r *PGRepo) scanOne(row *sql.Row) (Document, error) {
	var doc Document
	var provider sql.NullString
	var storageKey sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&provider,
		&storageKey,
		&doc.Consent,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	doc.StorageProvider = provider.String
	doc.StorageKey = storageKey.String
	return doc, nil
}
