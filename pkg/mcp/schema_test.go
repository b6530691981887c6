package mcp

import (
	"testing"

	// Packages
	assert "github.com/stretchr/testify/assert"
)

func Test_schema_001(t *testing.T) {
	assert := assert.New(t)

	err := NewError(ErrorCodeMethodNotFound, "method not found", "tools/frobnicate")
	assert.Equal("-32601: method not found (tools/frobnicate)", err.Error())

	err = NewError(ErrorCodeInternalError, "boom")
	assert.Equal("-32603: boom", err.Error())
}

func Test_schema_002(t *testing.T) {
	assert := assert.New(t)

	result := &ResponseToolCall{Content: []*Content{
		{Type: "text", Text: "first"},
		{Type: "image", Data: "...", MimeType: "image/png"},
		{Type: "text", Text: "second"},
	}}
	assert.Equal("first\nsecond", result.Text())

	empty := &ResponseToolCall{}
	assert.Equal("", empty.Text())
}
