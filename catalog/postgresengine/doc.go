// Package postgresengine provides the Postgres-backed catalog of books and
// patrons.
//
// Expected schema:
//
//	CREATE TABLE books (
//	    book_id          UUID PRIMARY KEY,
//	    title            TEXT NOT NULL,
//	    author           TEXT NOT NULL,
//	    publication_year INTEGER NOT NULL,
//	    isbn             TEXT NOT NULL
//	);
//
//	CREATE TABLE patrons (
//	    patron_id           UUID PRIMARY KEY,
//	    name                TEXT NOT NULL,
//	    contact_information TEXT NOT NULL
//	);
package postgresengine
