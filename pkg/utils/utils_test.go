package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("a", 450)

	assert.Equal(t, strings.Repeat("a", 300), TruncateRunes(long, 300))
	assert.Equal(t, "short", TruncateRunes("short", 300))
	assert.Equal(t, "", TruncateRunes("", 300))
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "", TruncateRunes("abc", -1))
}

func TestRunTimestamp(t *testing.T) {
	ts := time.Date(2025, time.March, 4, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, "20250304_090507", RunTimestamp(ts))
}

func TestRecoverError(t *testing.T) {
	base := errors.New("boom")
	err := RecoverError(base)
	assert.ErrorIs(t, err, base)

	err = RecoverError("plain")
	assert.EqualError(t, err, "panic: plain")
}

func TestToPointer(t *testing.T) {
	p := ToPointer(0.1)
	assert.Equal(t, 0.1, *p)
}
