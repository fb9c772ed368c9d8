package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattn/go-sqlite3"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

// SQLiteRepository stores books in a SQLite database file.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and creates the books
// table if needed. path may be a plain file name or a file: URI.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	slog.Info("connected to database", "driver", "sqlite3", "path", path)
	return &SQLiteRepository{db: db}, nil
}

// List implements Repository.
func (r *SQLiteRepository) List(ctx context.Context) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT isbn, title, author, published_date FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return scanSQLiteBooks(rows)
}

// ListByISBN implements Repository.
func (r *SQLiteRepository) ListByISBN(ctx context.Context, isbn string) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT isbn, title, author, published_date FROM books WHERE isbn = ? ORDER BY id`, isbn)
	if err != nil {
		return nil, fmt.Errorf("list books by isbn: %w", err)
	}
	return scanSQLiteBooks(rows)
}

// Create implements Repository.
func (r *SQLiteRepository) Create(ctx context.Context, b Book) (Book, error) {
	if err := b.Validate(); err != nil {
		return Book{}, err
	}

	var published sql.NullString
	if b.PublishedDate != nil {
		published = sql.NullString{String: b.PublishedDate.String(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (isbn, title, author, published_date) VALUES (?, ?, ?, ?)`,
		b.ISBN, b.Title, b.Author, published)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return Book{}, ErrDuplicateISBN
		}
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

// Ping implements Repository.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close implements Repository.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func scanSQLiteBooks(rows *sql.Rows) ([]Book, error) {
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var (
			b         Book
			published sql.NullString
		)
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &published); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		if published.Valid {
			d, err := ParseDate(published.String)
			if err != nil {
				return nil, fmt.Errorf("scan book %s: %w", b.ISBN, err)
			}
			b.PublishedDate = &d
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}
