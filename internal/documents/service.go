package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"cvmatch-backend/internal/extract"
	"cvmatch-backend/internal/shared/storage/object"
)

// Service contains business logic for retained CVs.
type Service struct {
	Store           object.ObjectStore
	Repo            DocumentsRepo
	StorageProvider string
}

// Upload saves the file to object storage and records the document. Files
// are only retained with explicit consent.
func (s *Service) Upload(ctx context.Context, userID, fileName string, consent bool, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if !consent {
		return Document{}, fmt.Errorf("%w: consent is required to retain a cv", ErrInvalidInput)
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userID,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StorageProvider,
		StorageKey:      storageKey,
		Consent:         consent,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Current returns the most recent document for a user.
func (s *Service) Current(ctx context.Context, userID string) (Document, error) {
	if userID == "" {
		return Document{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetCurrentByUser(ctx, userID)
}

// List returns the user's documents newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes a retained document.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	return s.Repo.Delete(ctx, userID, documentID)
}

// Text loads a stored document and extracts its plain text, so a retained
// CV can feed an analysis without re-uploading.
func (s *Service) Text(ctx context.Context, userID, documentID string) (string, error) {
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return "", err
	}
	return extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
}
