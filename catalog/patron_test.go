package catalog_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragalabs/loan-ledger-go/catalog"
)

func Test_BuildPatron_WithValidAttributes(t *testing.T) {
	// act
	patron, err := catalog.BuildPatron("Ada Lovelace", "ada@example.org")

	// assert
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, patron.ID, "the factory should assign a fresh patron id")
	assert.Equal(t, "Ada Lovelace", patron.Name)
	assert.Equal(t, "ada@example.org", patron.ContactInformation)
}

func Test_BuildPatron_ValidatesAttributes(t *testing.T) {
	tests := []struct {
		name        string
		patronName  string
		contact     string
		expectedErr error
	}{
		{
			name:        "name_too_short",
			patronName:  "Al",
			contact:     "al@example.org",
			expectedErr: catalog.ErrNameTooShort,
		},
		{
			name:        "two_multibyte_character_name_too_short",
			patronName:  "夏目",
			contact:     "al@example.org",
			expectedErr: catalog.ErrNameTooShort,
		},
		{
			name:        "contact_too_short",
			patronName:  "Ada Lovelace",
			contact:     "12345678",
			expectedErr: catalog.ErrContactTooShort,
		},
		{
			name:        "multibyte_contact_too_short",
			patronName:  "Ada Lovelace",
			contact:     "電話番号なし",
			expectedErr: catalog.ErrContactTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.BuildPatron(tt.patronName, tt.contact)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_Patron_Update_ReplacesAttributes(t *testing.T) {
	// arrange
	patron, err := catalog.BuildPatron("Ada Lovelace", "ada@example.org")
	require.NoError(t, err)

	// act
	updated, err := patron.Update("Grace Hopper", "grace@example.org")

	// assert
	require.NoError(t, err)
	assert.Equal(t, patron.ID, updated.ID, "the identifier must survive an update")
	assert.Equal(t, "Grace Hopper", updated.Name)
	assert.Equal(t, "grace@example.org", updated.ContactInformation)
	assert.Equal(t, "Ada Lovelace", patron.Name, "the original patron should stay unchanged")
}

func Test_Patron_Update_ValidatesAttributes(t *testing.T) {
	patron, err := catalog.BuildPatron("Ada Lovelace", "ada@example.org")
	require.NoError(t, err)

	_, err = patron.Update("Al", "al@example.org")

	assert.ErrorIs(t, err, catalog.ErrNameTooShort)
}
