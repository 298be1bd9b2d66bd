package slogx

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	attr := Error(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

func TestLoggerName(t *testing.T) {
	attr := LoggerName("hookstack")
	assert.Equal(t, KeyLoggerName, attr.Key)
	assert.Equal(t, slog.KindString, attr.Value.Kind())
	assert.Equal(t, "hookstack", attr.Value.String())
}
