package errors_test

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	sfserr "github.com/EduardoPagotto/SimpleFS/errors"
)

func TestNewDriverErrorWithMessage(t *testing.T) {
	err := sfserr.NewDriverErrorWithMessage(syscall.ENOSPC, "no free blocks in data region")
	assert.Contains(t, err.Error(), "no free blocks in data region")
	assert.ErrorIs(t, err, sfserr.ErrNoSpace)
	assert.ErrorIs(t, err, syscall.ENOSPC)
}

func TestDriverErrorWrapError(t *testing.T) {
	original := errors.New("seek failed")
	wrapped := sfserr.ErrIOFailure.WrapError(original)

	assert.Contains(t, wrapped.Error(), "seek failed")
	assert.ErrorIs(t, wrapped, sfserr.ErrIOFailure, "wrapped error keeps the original errno code")
}

func TestDriverErrorIsMatchesErrnoAndSentinel(t *testing.T) {
	err := sfserr.NewDriverError(syscall.EACCES)

	assert.True(t, err.Is(syscall.EACCES))
	assert.False(t, err.Is(syscall.ENOENT))
	assert.True(t, err.Is(sfserr.ErrAuthFailure))
	assert.False(t, err.Is(sfserr.ErrNotFound))
}
