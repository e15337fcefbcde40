// Package storage persists indexed documents (SQLite) and shared cache
// entries (Redis).
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/predictimed/internal/models"
)

// ErrDocumentNotFound is returned when a document id is not in the store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrKeyNotFound is returned by key/value stores for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// DocumentStore holds the documents backing a similarity index. It is written
// once at build time and read-only afterwards.
type DocumentStore interface {
	InsertDocuments(ctx context.Context, docs []models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetDocuments(ctx context.Context, ids []string) ([]models.Document, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]models.Document, error)
	CountDocuments(ctx context.Context) (int64, error)
	Close() error
}
