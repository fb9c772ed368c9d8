package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvapi/internal/config"
)

// ErrDuplicateISBN is returned by Create when the ISBN is already stored.
var ErrDuplicateISBN = errors.New("a book with this ISBN already exists")

// ErrUnsupportedURL is returned by Open for database URLs it cannot route.
var ErrUnsupportedURL = errors.New("unsupported database URL")

// Repository persists books.
type Repository interface {
	// List returns every book in insertion order.
	List(ctx context.Context) ([]Book, error)

	// ListByISBN returns the books with the given ISBN; empty when none match.
	ListByISBN(ctx context.Context, isbn string) ([]Book, error)

	// Create validates and stores b. Returns ErrDuplicateISBN on conflict.
	Create(ctx context.Context, b Book) (Book, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Open connects to the backend named by cfg.URL and bootstraps the schema.
//
//	postgres://... or postgresql://...  PostgreSQL via pgxpool
//	sqlite:<path>                       SQLite file at path
//	file:<path>[?query]                 SQLite URI passed to the driver as is
func Open(ctx context.Context, cfg config.DatabaseConfig) (Repository, error) {
	url := cfg.URL
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(ctx, cfg)
	case strings.HasPrefix(url, "sqlite:"):
		return OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite:"))
	case strings.HasPrefix(url, "file:"):
		return OpenSQLite(ctx, url)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, redact(url))
	}
}

// redact keeps only the scheme of a URL for error messages.
func redact(url string) string {
	if i := strings.Index(url, ":"); i >= 0 {
		return url[:i] + ":..."
	}
	return "..."
}
