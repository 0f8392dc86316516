package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragalabs/loan-ledger-go/catalog"
	"github.com/ragalabs/loan-ledger-go/catalog/postgresengine"
	"github.com/ragalabs/loan-ledger-go/testutil/postgresledger"
)

// The tests in this file run against a live Postgres instance with the
// schema from the package documentation applied. The adapter under test is
// selected via ADAPTER_TYPE, see testutil/postgresledger.

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
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	book := givenBook(t, "Some Title")

	// act
	err := cat.AddBook(ctxWithTimeout, book)

	// assert
	require.NoError(t, err, "error in adding the book")

	found, err := cat.BookByID(ctxWithTimeout, book.ID)
	require.NoError(t, err, "error in querying the book")
	assert.Equal(t, book, found)
}

func Test_AddBook_When_TheBookAlreadyExists(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	book := givenBook(t, "Some Title")
	require.NoError(t, cat.AddBook(ctxWithTimeout, book))

	// act
	err := cat.AddBook(ctxWithTimeout, book)

	// assert
	assert.ErrorIs(t, err, catalog.ErrDuplicateEntry)
}

func Test_BookByID_When_TheBookDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	unknownID := uuid.New()

	// act
	_, err := cat.BookByID(ctxWithTimeout, unknownID)

	// assert
	require.ErrorIs(t, err, catalog.ErrBookNotFound)
	assert.ErrorContains(t, err, unknownID.String(), "the error should name the id that failed to resolve")
}

func Test_AllBooks_OrdersByTitle(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	require.NoError(t, cat.AddBook(ctxWithTimeout, givenBook(t, "Zebra Stripes")))
	require.NoError(t, cat.AddBook(ctxWithTimeout, givenBook(t, "Aardvark Habits")))

	// act
	books, err := cat.AllBooks(ctxWithTimeout)

	// assert
	require.NoError(t, err, "error in querying all books")
	require.Len(t, books, 2)
	assert.Equal(t, "Aardvark Habits", books[0].Title)
	assert.Equal(t, "Zebra Stripes", books[1].Title)
}

func Test_UpdateBook_PersistsChangedAttributes(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	book := givenBook(t, "Old Title")
	require.NoError(t, cat.AddBook(ctxWithTimeout, book))

	updated, err := book.Update("New Title", book.Author, book.PublicationYear, book.ISBN)
	require.NoError(t, err)

	// act
	err = cat.UpdateBook(ctxWithTimeout, updated)

	// assert
	require.NoError(t, err, "error in updating the book")

	found, err := cat.BookByID(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", found.Title)
}

func Test_UpdateBook_When_TheBookDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)

	// act
	err := cat.UpdateBook(ctxWithTimeout, givenBook(t, "Some Title"))

	// assert
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func Test_RemoveBook_DeletesTheBook(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	book := givenBook(t, "Some Title")
	require.NoError(t, cat.AddBook(ctxWithTimeout, book))

	// act
	err := cat.RemoveBook(ctxWithTimeout, book.ID)

	// assert
	require.NoError(t, err, "error in removing the book")

	_, err = cat.BookByID(ctxWithTimeout, book.ID)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func Test_RemoveBook_When_TheBookDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)

	// act
	err := cat.RemoveBook(ctxWithTimeout, uuid.New())

	// assert
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func Test_AddPatron_And_PatronByID(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	patron := givenPatron(t, "Ada Lovelace")

	// act
	err := cat.AddPatron(ctxWithTimeout, patron)

	// assert
	require.NoError(t, err, "error in adding the patron")

	found, err := cat.PatronByID(ctxWithTimeout, patron.ID)
	require.NoError(t, err, "error in querying the patron")
	assert.Equal(t, patron, found)
}

func Test_AllPatrons_OrdersByName(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	require.NoError(t, cat.AddPatron(ctxWithTimeout, givenPatron(t, "Grace Hopper")))
	require.NoError(t, cat.AddPatron(ctxWithTimeout, givenPatron(t, "Ada Lovelace")))

	// act
	patrons, err := cat.AllPatrons(ctxWithTimeout)

	// assert
	require.NoError(t, err, "error in querying all patrons")
	require.Len(t, patrons, 2)
	assert.Equal(t, "Ada Lovelace", patrons[0].Name)
	assert.Equal(t, "Grace Hopper", patrons[1].Name)
}

func Test_UpdatePatron_PersistsChangedAttributes(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	patron := givenPatron(t, "Ada Lovelace")
	require.NoError(t, cat.AddPatron(ctxWithTimeout, patron))

	updated, err := patron.Update("Ada King", patron.ContactInformation)
	require.NoError(t, err)

	// act
	err = cat.UpdatePatron(ctxWithTimeout, updated)

	// assert
	require.NoError(t, err, "error in updating the patron")

	found, err := cat.PatronByID(ctxWithTimeout, patron.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", found.Name)
}

func Test_RemovePatron_DeletesThePatron(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := postgresledger.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	cat := wrapper.GetCatalog()

	// arrange
	postgresledger.CleanUp(t, wrapper)
	patron := givenPatron(t, "Ada Lovelace")
	require.NoError(t, cat.AddPatron(ctxWithTimeout, patron))

	// act
	err := cat.RemovePatron(ctxWithTimeout, patron.ID)

	// assert
	require.NoError(t, err, "error in removing the patron")

	_, err = cat.PatronByID(ctxWithTimeout, patron.ID)
	assert.ErrorIs(t, err, catalog.ErrPatronNotFound)
}

func Test_CatalogFactoryFunctions_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	testCases := []struct {
		name        string
		factoryFunc func() (*postgresengine.Catalog, error)
	}{
		{
			name: "NewCatalogFromPGXPool with nil",
			factoryFunc: func() (*postgresengine.Catalog, error) {
				return postgresengine.NewCatalogFromPGXPool(nil)
			},
		},
		{
			name: "NewCatalogFromSQLDB with nil",
			factoryFunc: func() (*postgresengine.Catalog, error) {
				return postgresengine.NewCatalogFromSQLDB(nil)
			},
		},
		{
			name: "NewCatalogFromSQLX with nil",
			factoryFunc: func() (*postgresengine.Catalog, error) {
				return postgresengine.NewCatalogFromSQLX(nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := tc.factoryFunc()

			// assert
			assert.Error(t, err)
		})
	}
}
