package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := Clone(ErrNotFound, "event not found")
	wrapped := fmt.Errorf("delete: %w", err)

	got := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "event not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, got, "internal server error: boom")
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesClonesByCode(t *testing.T) {
	err := Wrap(errors.New("pq: duplicate"), ErrConflict.Code, ErrConflict.Status, "username already exists")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}
