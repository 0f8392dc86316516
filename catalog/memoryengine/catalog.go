// Package memoryengine provides an in-memory catalog of books and patrons
// with the same semantics as the Postgres engine, intended for tests and
// infrastructure-free runs.
package memoryengine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ragalabs/loan-ledger-go/catalog"
)

// Catalog is the in-memory implementation of the book and patron catalog.
type Catalog struct {
	mu      sync.RWMutex
	books   map[uuid.UUID]catalog.Book
	patrons map[uuid.UUID]catalog.Patron
}

// NewCatalog creates an empty in-memory Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		books:   make(map[uuid.UUID]catalog.Book),
		patrons: make(map[uuid.UUID]catalog.Patron),
	}
}

// AddBook persists a new book.
func (c *Catalog) AddBook(ctx context.Context, book catalog.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.books[book.ID]; exists {
		return catalog.ErrDuplicateEntry
	}

	c.books[book.ID] = book

	return nil
}

// BookByID retrieves a single book.
func (c *Catalog) BookByID(ctx context.Context, bookID uuid.UUID) (catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Book{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	book, exists := c.books[bookID]
	if !exists {
		return catalog.Book{}, fmt.Errorf("%w: %s", catalog.ErrBookNotFound, bookID)
	}

	return book, nil
}

// AllBooks retrieves all books ordered by title.
func (c *Catalog) AllBooks(ctx context.Context) (catalog.Books, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	books := make(catalog.Books, 0, len(c.books))
	for _, book := range c.books {
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool {
		return books[i].Title < books[j].Title
	})

	return books, nil
}

// UpdateBook persists changed attributes of an existing book.
func (c *Catalog) UpdateBook(ctx context.Context, book catalog.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.books[book.ID]; !exists {
		return fmt.Errorf("%w: %s", catalog.ErrBookNotFound, book.ID)
	}

	c.books[book.ID] = book

	return nil
}

// RemoveBook deletes a book. The caller is responsible for checking the
// ledger for open loans first, see the lending service.
func (c *Catalog) RemoveBook(ctx context.Context, bookID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.books[bookID]; !exists {
		return fmt.Errorf("%w: %s", catalog.ErrBookNotFound, bookID)
	}

	delete(c.books, bookID)

	return nil
}

// AddPatron persists a new patron.
func (c *Catalog) AddPatron(ctx context.Context, patron catalog.Patron) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.patrons[patron.ID]; exists {
		return catalog.ErrDuplicateEntry
	}

	c.patrons[patron.ID] = patron

	return nil
}

// PatronByID retrieves a single patron.
func (c *Catalog) PatronByID(ctx context.Context, patronID uuid.UUID) (catalog.Patron, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Patron{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	patron, exists := c.patrons[patronID]
	if !exists {
		return catalog.Patron{}, fmt.Errorf("%w: %s", catalog.ErrPatronNotFound, patronID)
	}

	return patron, nil
}

// AllPatrons retrieves all patrons ordered by name.
func (c *Catalog) AllPatrons(ctx context.Context) (catalog.Patrons, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	patrons := make(catalog.Patrons, 0, len(c.patrons))
	for _, patron := range c.patrons {
		patrons = append(patrons, patron)
	}

	sort.Slice(patrons, func(i, j int) bool {
		return patrons[i].Name < patrons[j].Name
	})

	return patrons, nil
}

// UpdatePatron persists changed attributes of an existing patron.
func (c *Catalog) UpdatePatron(ctx context.Context, patron catalog.Patron) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.patrons[patron.ID]; !exists {
		return fmt.Errorf("%w: %s", catalog.ErrPatronNotFound, patron.ID)
	}

	c.patrons[patron.ID] = patron

	return nil
}

// RemovePatron deletes a patron. The caller is responsible for checking the
// ledger for open loans first, see the lending service.
func (c *Catalog) RemovePatron(ctx context.Context, patronID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.patrons[patronID]; !exists {
		return fmt.Errorf("%w: %s", catalog.ErrPatronNotFound, patronID)
	}

	delete(c.patrons, patronID)

	return nil
}
