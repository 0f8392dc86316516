package catalog

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minTitleLength     = 2
	minAuthorLength    = 3
	minPublicationYear = 1000
	isbnLength         = 13
)

// Book is a catalog entry for a book owned by the library.
//
// While its properties are exported, it should only be constructed with
// BuildBook so the validation rules hold.
type Book struct {
	ID              uuid.UUID
	Title           string
	Author          string
	PublicationYear int
	ISBN            string
}

// Books is an alias type for a slice of Book.
type Books = []Book

// BuildBook is a factory method for a valid Book with a fresh identifier.
func BuildBook(title string, author string, publicationYear int, isbn string) (Book, error) {
	if err := validateBookAttributes(title, author, publicationYear, isbn); err != nil {
		return Book{}, err
	}

	return Book{
		ID:              uuid.New(),
		Title:           title,
		Author:          author,
		PublicationYear: publicationYear,
		ISBN:            isbn,
	}, nil
}

// Update returns a copy of the book with the given attributes, validating
// them first.
func (b Book) Update(title string, author string, publicationYear int, isbn string) (Book, error) {
	if err := validateBookAttributes(title, author, publicationYear, isbn); err != nil {
		return Book{}, err
	}

	updated := b
	updated.Title = title
	updated.Author = author
	updated.PublicationYear = publicationYear
	updated.ISBN = isbn

	return updated, nil
}

func validateBookAttributes(title string, author string, publicationYear int, isbn string) error {
	// length rules count characters, not bytes
	if utf8.RuneCountInString(title) < minTitleLength {
		return ErrTitleTooShort
	}

	if utf8.RuneCountInString(author) < minAuthorLength {
		return ErrAuthorTooShort
	}

	if publicationYear < minPublicationYear || publicationYear > maxPublicationYear() {
		return ErrPublicationYearOutOfRange
	}

	if !isValidISBN(isbn) {
		return ErrInvalidISBN
	}

	return nil
}

func maxPublicationYear() int {
	return time.Now().Year()
}

func isValidISBN(isbn string) bool {
	if len(isbn) != isbnLength {
		return false
	}

	for _, r := range isbn {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
