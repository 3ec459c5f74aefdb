package retcode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		StorageFailure:  http.StatusInternalServerError,
		MissingFile:     http.StatusBadRequest,
		EmptyFilename:   http.StatusBadRequest,
		UnsupportedType: http.StatusBadRequest,
		TooLarge:        http.StatusRequestEntityTooLarge,
		NotFound:        http.StatusNotFound,
		Kind(99):        http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, k.HTTPStatus(), k.String())
	}
}

func TestStorageKeepsCauseText(t *testing.T) {
	cause := errors.New("NOT NULL constraint failed: users.email")
	err := Storage(cause)
	assert.Equal(t, cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Nil(t, Storage(nil))
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("upload: %w", New(UnsupportedType, "File type not allowed"))
	assert.Equal(t, UnsupportedType, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrUnsupportedType)
	assert.Equal(t, StorageFailure, KindOf(errors.New("boom")))
}
