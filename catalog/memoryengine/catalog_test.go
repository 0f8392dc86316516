package memoryengine_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragalabs/loan-ledger-go/catalog"
	"github.com/ragalabs/loan-ledger-go/catalog/memoryengine"
)

func givenBook(t *testing.T, title string) catalog.Book {
	t.Helper()

	book, err := catalog.BuildBook(title, "Some Author", 2015, "9780134190440")
	require.NoError(t, err)

	return book
}

func givenPatron(t *testing.T, name string) catalog.Patron {
	t.Helper()

	patron, err := catalog.BuildPatron(name, "patron@example.org")
	require.NoError(t, err)

	return patron
}

func Test_AddBook_And_BookByID(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	book := givenBook(t, "Some Title")

	// act
	err := cat.AddBook(context.Background(), book)

	// assert
	require.NoError(t, err)

	found, err := cat.BookByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, book, found)
}

func Test_AddBook_When_TheBookAlreadyExists(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	book := givenBook(t, "Some Title")
	require.NoError(t, cat.AddBook(context.Background(), book))

	// act
	err := cat.AddBook(context.Background(), book)

	// assert
	assert.ErrorIs(t, err, catalog.ErrDuplicateEntry)
}

func Test_BookByID_When_TheBookDoesNotExist(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	unknownID := uuid.New()

	// act
	_, err := cat.BookByID(context.Background(), unknownID)

	// assert
	require.ErrorIs(t, err, catalog.ErrBookNotFound)
	assert.ErrorContains(t, err, unknownID.String(), "the error should name the id that failed to resolve")
}

func Test_AllBooks_OrdersByTitle(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	require.NoError(t, cat.AddBook(context.Background(), givenBook(t, "Zebra Stripes")))
	require.NoError(t, cat.AddBook(context.Background(), givenBook(t, "Aardvark Habits")))
	require.NoError(t, cat.AddBook(context.Background(), givenBook(t, "Middle Ground")))

	// act
	books, err := cat.AllBooks(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Aardvark Habits", books[0].Title)
	assert.Equal(t, "Middle Ground", books[1].Title)
	assert.Equal(t, "Zebra Stripes", books[2].Title)
}

func Test_UpdateBook_PersistsChangedAttributes(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	book := givenBook(t, "Old Title")
	require.NoError(t, cat.AddBook(context.Background(), book))

	updated, err := book.Update("New Title", book.Author, book.PublicationYear, book.ISBN)
	require.NoError(t, err)

	// act
	err = cat.UpdateBook(context.Background(), updated)

	// assert
	require.NoError(t, err)

	found, err := cat.BookByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", found.Title)
}

func Test_UpdateBook_When_TheBookDoesNotExist(t *testing.T) {
	cat := memoryengine.NewCatalog()

	err := cat.UpdateBook(context.Background(), givenBook(t, "Some Title"))

	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func Test_RemoveBook_DeletesTheBook(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	book := givenBook(t, "Some Title")
	require.NoError(t, cat.AddBook(context.Background(), book))

	// act
	err := cat.RemoveBook(context.Background(), book.ID)

	// assert
	require.NoError(t, err)

	_, err = cat.BookByID(context.Background(), book.ID)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func Test_RemoveBook_When_TheBookDoesNotExist(t *testing.T) {
	cat := memoryengine.NewCatalog()

	err := cat.RemoveBook(context.Background(), uuid.New())

	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func Test_AddPatron_And_PatronByID(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	patron := givenPatron(t, "Ada Lovelace")

	// act
	err := cat.AddPatron(context.Background(), patron)

	// assert
	require.NoError(t, err)

	found, err := cat.PatronByID(context.Background(), patron.ID)
	require.NoError(t, err)
	assert.Equal(t, patron, found)
}

func Test_PatronByID_When_ThePatronDoesNotExist(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	unknownID := uuid.New()

	// act
	_, err := cat.PatronByID(context.Background(), unknownID)

	// assert
	require.ErrorIs(t, err, catalog.ErrPatronNotFound)
	assert.ErrorContains(t, err, unknownID.String(), "the error should name the id that failed to resolve")
}

func Test_AllPatrons_OrdersByName(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	require.NoError(t, cat.AddPatron(context.Background(), givenPatron(t, "Grace Hopper")))
	require.NoError(t, cat.AddPatron(context.Background(), givenPatron(t, "Ada Lovelace")))

	// act
	patrons, err := cat.AllPatrons(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, patrons, 2)
	assert.Equal(t, "Ada Lovelace", patrons[0].Name)
	assert.Equal(t, "Grace Hopper", patrons[1].Name)
}

func Test_UpdatePatron_PersistsChangedAttributes(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	patron := givenPatron(t, "Ada Lovelace")
	require.NoError(t, cat.AddPatron(context.Background(), patron))

	updated, err := patron.Update("Ada King", patron.ContactInformation)
	require.NoError(t, err)

	// act
	err = cat.UpdatePatron(context.Background(), updated)

	// assert
	require.NoError(t, err)

	found, err := cat.PatronByID(context.Background(), patron.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", found.Name)
}

func Test_RemovePatron_DeletesThePatron(t *testing.T) {
	// arrange
	cat := memoryengine.NewCatalog()
	patron := givenPatron(t, "Ada Lovelace")
	require.NoError(t, cat.AddPatron(context.Background(), patron))

	// act
	err := cat.RemovePatron(context.Background(), patron.ID)

	// assert
	require.NoError(t, err)

	_, err = cat.PatronByID(context.Background(), patron.ID)
	assert.ErrorIs(t, err, catalog.ErrPatronNotFound)
}

func Test_RemovePatron_When_ThePatronDoesNotExist(t *testing.T) {
	cat := memoryengine.NewCatalog()

	err := cat.RemovePatron(context.Background(), uuid.New())

	assert.ErrorIs(t, err, catalog.ErrPatronNotFound)
}
