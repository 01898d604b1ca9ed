package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	_ SchemaRegistry = (*FileSystemRegistry)(nil)
	_ HealthChecker  = (*FileSystemRegistry)(nil)
)

func TestSentinelErrorsWrap(t *testing.T) {
	err := fmt.Errorf("collection posts: %w", ErrNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))

	err = fmt.Errorf("delete batch of 501: %w", ErrBatchTooLarge)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}
