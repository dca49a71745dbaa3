package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := errors.New("connection refused")
	inner := Wrap(base, CodeUnavailable, "store unreachable")
	outer := Wrap(inner, CodeInternal, "assessment failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeUnavailable))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.False(t, HasCode(base, CodeInternal))
	assert.ErrorIs(t, outer, base)
}

func TestCodeOfAndMessage(t *testing.T) {
	err := New(CodeNotFound, "Verification not found")
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, "Verification not found", MessageOf(err))

	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Empty(t, MessageOf(errors.New("plain")))
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}
