package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvapi/internal/catalog"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody caps catalog request bodies.
const maxJSONBody = 1 << 20

// CatalogRoutes serves the greeting, text and book endpoints.
type CatalogRoutes struct {
	repo catalog.Repository
}

// NewCatalogRoutes creates the catalog route set over repo.
func NewCatalogRoutes(repo catalog.Repository) *CatalogRoutes {
	return &CatalogRoutes{repo: repo}
}

// Mount implements Routes.
func (c *CatalogRoutes) Mount(r chi.Router) {
	r.Get("/", c.handleHello("Hello, World!"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", c.handleHello("Hello, RESTFull API!"))
		r.Get("/text", c.handleGetText)
		r.Post("/text", c.handlePostText)

		r.Get("/books", c.handleListBooks)
		r.Get("/books/{isbn}", c.handleGetBooks)
		r.Post("/books/{isbn}", c.handleCreateBook)
	})
}

// Check implements HealthChecker.
func (c *CatalogRoutes) Check(ctx context.Context) error {
	return c.repo.Ping(ctx)
}

func (c *CatalogRoutes) handleHello(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, messageResponse{Message: message})
	}
}

func (c *CatalogRoutes) handleGetText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("This is the GET Endpoint of flask API."))
}

// textRequest is the body of POST /api/text.
type textRequest struct {
	Text *string `json:"text"`
}

func (c *CatalogRoutes) handlePostText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Text == nil {
		respondError(w, r, fmt.Errorf(`%w: missing "text" field`, errBadJSON))
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{
		"CAP-TEXT": strings.ToUpper(*req.Text),
	})
}

func (c *CatalogRoutes) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := c.repo.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, books)
}

func (c *CatalogRoutes) handleGetBooks(w http.ResponseWriter, r *http.Request) {
	books, err := c.repo.ListByISBN(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, books)
}

// handleCreateBook stores the book in the request body. The path ISBN fills
// in a missing body ISBN; a body ISBN that disagrees with the path is
// rejected.
func (c *CatalogRoutes) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var book catalog.Book
	if err := decodeJSON(w, r, &book); err != nil {
		respondError(w, r, err)
		return
	}

	pathISBN := chi.URLParam(r, "isbn")
	switch {
	case book.ISBN == "":
		book.ISBN = pathISBN
	case book.ISBN != pathISBN:
		respondError(w, r, fmt.Errorf("%w: isbn %q does not match path %q", errBadJSON, book.ISBN, pathISBN))
		return
	}

	created, err := c.repo.Create(r.Context(), book)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}
