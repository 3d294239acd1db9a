package validation_test

import (
	"net/http"
	"testing"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidBook(t *testing.T) {
	v := validation.New()

	err := v.Validate(domain.BookInput{Name: "A", PageCount: 100, ReadPage: 100})
	assert.NoError(t, err)
}

func TestValidator_BookErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name       string
		in         domain.BookInput
		wantFields []string
	}{
		{
			name:       "missing name",
			in:         domain.BookInput{PageCount: 10, ReadPage: 1},
			wantFields: []string{"name"},
		},
		{
			name:       "read page beyond page count",
			in:         domain.BookInput{Name: "A", PageCount: 100, ReadPage: 150},
			wantFields: []string{"readPage"},
		},
		{
			name:       "both",
			in:         domain.BookInput{PageCount: 1, ReadPage: 2},
			wantFields: []string{"name", "readPage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			fields := validation.Fields(err)
			assert.Len(t, fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.True(t, fields.Has(f), "expected %s to fail", f)
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(domain.BookInput{Name: "A", PageCount: 1, ReadPage: 2})
	require.Error(t, err)

	// Should use JSON tag name "readPage", not struct field name "ReadPage".
	assert.Contains(t, err.Error(), "readPage")
	assert.NotContains(t, err.Error(), "ReadPage")
	assert.Contains(t, err.Error(), "pageCount")
}

func TestFields_NonValidationError(t *testing.T) {
	assert.Nil(t, validation.Fields(assert.AnError))
	assert.Nil(t, validation.Fields(domainerrors.NotFound("x")))
}
