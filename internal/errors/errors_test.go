package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := UnknownSchema("Option_Z")
	wrapped := Wrap(base, "lookup failed")

	assert.Equal(t, CodeUnknownSchema, GetCode(wrapped))
	assert.True(t, IsUnknownSchema(wrapped))
	assert.False(t, IsMalformedTable(wrapped))
	assert.Contains(t, wrapped.Error(), "Option_Z")
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(io.ErrUnexpectedEOF, "read failed")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestHasCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("decode upload: %w", MalformedTable("not a workbook", io.EOF))

	assert.True(t, IsMalformedTable(err))
	assert.Equal(t, CodeMalformedTable, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(io.EOF))
}

func TestUploadTooLargeMessage(t *testing.T) {
	err := UploadTooLarge(60*1024*1024, 50*1024*1024)
	assert.Equal(t, "file size (60.0 MB) exceeds the 50 MB limit", err.Error())
}
