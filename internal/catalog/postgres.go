package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/csvapi/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/postgres.sql
var postgresSchema string

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository stores books in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
	db   DBTX
}

// OpenPostgres connects a pool sized from cfg, verifies it and creates the
// books table if needed.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "driver", "postgres", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PostgresRepository{pool: pool, db: pool}, nil
}

// List implements Repository.
func (r *PostgresRepository) List(ctx context.Context) ([]Book, error) {
	rows, err := r.db.Query(ctx,
		`SELECT isbn, title, author, published_date FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return collectPgBooks(rows)
}

// ListByISBN implements Repository.
func (r *PostgresRepository) ListByISBN(ctx context.Context, isbn string) ([]Book, error) {
	rows, err := r.db.Query(ctx,
		`SELECT isbn, title, author, published_date FROM books WHERE isbn = $1 ORDER BY id`, isbn)
	if err != nil {
		return nil, fmt.Errorf("list books by isbn: %w", err)
	}
	return collectPgBooks(rows)
}

// Create implements Repository.
func (r *PostgresRepository) Create(ctx context.Context, b Book) (Book, error) {
	if err := b.Validate(); err != nil {
		return Book{}, err
	}

	var published pgtype.Date
	if b.PublishedDate != nil {
		published = pgtype.Date{Time: b.PublishedDate.Time, Valid: true}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO books (isbn, title, author, published_date) VALUES ($1, $2, $3, $4)`,
		b.ISBN, b.Title, b.Author, published)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Book{}, ErrDuplicateISBN
		}
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

// Ping implements Repository.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close implements Repository.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func collectPgBooks(rows pgx.Rows) ([]Book, error) {
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Book, error) {
		var (
			b         Book
			published pgtype.Date
		)
		if err := row.Scan(&b.ISBN, &b.Title, &b.Author, &published); err != nil {
			return Book{}, err
		}
		if published.Valid {
			d := Date{published.Time}
			b.PublishedDate = &d
		}
		return b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan books: %w", err)
	}
	return books, nil
}
