package redact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessagesAndUnwrap(t *testing.T) {
	assert.Contains(t, (&InputMalformedError{Reason: "bad"}).Error(), "bad")
	assert.Contains(t, (&UnsupportedEncodingError{Reason: "nope"}).Error(), "nope")
	assert.Contains(t, (&IncompatibleError{Reason: "mismatch"}).Error(), "mismatch")
	assert.Contains(t, (&SourceOffsetsInconsistentError{Reason: "len"}).Error(), "len")
	assert.Contains(t, (&SameInputOutputError{Path: "/x.tif"}).Error(), "/x.tif")

	inner := errors.New("disk full")
	wrapped := &IoFailureError{Op: "write", Err: inner}
	assert.Contains(t, wrapped.Error(), "disk full")
	assert.ErrorIs(t, wrapped, inner)
}

func TestIncompatibleErrorIsRecoverable(t *testing.T) {
	var err error = &IncompatibleError{Reason: "quality differs"}
	var target *IncompatibleError
	assert.True(t, errors.As(err, &target))
}
