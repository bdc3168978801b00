package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAccessError(t *testing.T) {
	cause := fmt.Errorf("node /x: %w", ErrNotFound)

	err := NewAccessError("read values", cause)
	assert.True(t, IsAccessError(err))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "repository access failed: read values: node /x: item not found", err.Error())

	var ae *AccessError
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, "read values", ae.Op)

	// wrapping twice keeps the first access error
	again := NewAccessError("outer", fmt.Errorf("context: %w", err))
	assert.True(t, errors.As(again, &ae))
	assert.Equal(t, "read values", ae.Op)

	assert.Nil(t, NewAccessError("noop", nil))
	assert.False(t, IsAccessError(cause))
}
