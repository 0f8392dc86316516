package httpapi

import (
	"time"

	"github.com/ragalabs/loan-ledger-go/catalog"
	"github.com/ragalabs/loan-ledger-go/ledger"
)

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publicationYear"`
	ISBN            string `json:"isbn"`
}

// BookResponse is the response body for a single book.
type BookResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publicationYear"`
	ISBN            string `json:"isbn"`
}

// PatronRequest is the request body for creating or updating a patron.
type PatronRequest struct {
	Name               string `json:"name"`
	ContactInformation string `json:"contactInformation"`
}

// PatronResponse is the response body for a single patron.
type PatronResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	ContactInformation string `json:"contactInformation"`
}

// LoanRecordResponse is the response body for a single loan record.
type LoanRecordResponse struct {
	ID         string     `json:"id"`
	BookID     string     `json:"bookId"`
	PatronID   string     `json:"patronId"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

func bookResponseFrom(book catalog.Book) BookResponse {
	return BookResponse{
		ID:              book.ID.String(),
		Title:           book.Title,
		Author:          book.Author,
		PublicationYear: book.PublicationYear,
		ISBN:            book.ISBN,
	}
}

func bookResponsesFrom(books catalog.Books) []BookResponse {
	responses := make([]BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, bookResponseFrom(book))
	}

	return responses
}

func patronResponseFrom(patron catalog.Patron) PatronResponse {
	return PatronResponse{
		ID:                 patron.ID.String(),
		Name:               patron.Name,
		ContactInformation: patron.ContactInformation,
	}
}

func patronResponsesFrom(patrons catalog.Patrons) []PatronResponse {
	responses := make([]PatronResponse, 0, len(patrons))
	for _, patron := range patrons {
		responses = append(responses, patronResponseFrom(patron))
	}

	return responses
}

func loanRecordResponseFrom(record ledger.LoanRecord) LoanRecordResponse {
	return LoanRecordResponse{
		ID:         record.ID.String(),
		BookID:     record.BookID.String(),
		PatronID:   record.PatronID.String(),
		BorrowedAt: record.BorrowedAt,
		ReturnedAt: record.ReturnedAt,
	}
}

func loanRecordResponsesFrom(records ledger.LoanRecords) []LoanRecordResponse {
	responses := make([]LoanRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, loanRecordResponseFrom(record))
	}

	return responses
}
