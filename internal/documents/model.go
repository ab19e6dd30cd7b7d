package documents

import "time"

// Document represents a retained CV owned by a user.
type Document struct {
	ID              string
	UserID          string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	Consent         bool
	CreatedAt       time.Time
}
