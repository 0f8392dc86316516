package catalog

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minNameLength    = 3
	minContactLength = 9
)

// Patron is a catalog entry for a registered library patron.
//
// While its properties are exported, it should only be constructed with
// BuildPatron so the validation rules hold.
type Patron struct {
	ID                 uuid.UUID
	Name               string
	ContactInformation string
}

// Patrons is an alias type for a slice of Patron.
type Patrons = []Patron

// BuildPatron is a factory method for a valid Patron with a fresh identifier.
func BuildPatron(name string, contactInformation string) (Patron, error) {
	if err := validatePatronAttributes(name, contactInformation); err != nil {
		return Patron{}, err
	}

	return Patron{
		ID:                 uuid.New(),
		Name:               name,
		ContactInformation: contactInformation,
	}, nil
}

// Update returns a copy of the patron with the given attributes, validating
// them first.
func (p Patron) Update(name string, contactInformation string) (Patron, error) {
	if err := validatePatronAttributes(name, contactInformation); err != nil {
		return Patron{}, err
	}

	updated := p
	updated.Name = name
	updated.ContactInformation = contactInformation

	return updated, nil
}

func validatePatronAttributes(name string, contactInformation string) error {
	// length rules count characters, not bytes
	if utf8.RuneCountInString(name) < minNameLength {
		return ErrNameTooShort
	}

	if utf8.RuneCountInString(contactInformation) < minContactLength {
		return ErrContactTooShort
	}

	return nil
}
