package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeParam(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got, ok := parseTimeParam("2026-03-01T10:30:00Z", false)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), got)
	})

	t.Run("bare from-date starts at midnight", func(t *testing.T) {
		got, ok := parseTimeParam("2026-03-01", false)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("bare to-date spans the whole day", func(t *testing.T) {
		got, ok := parseTimeParam("2026-03-01", true)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC), got)
	})

	t.Run("rejects empty and malformed", func(t *testing.T) {
		for _, s := range []string{"", "yesterday", "03/01/2026"} {
			_, ok := parseTimeParam(s, false)
			assert.False(t, ok, s)
		}
	})
}
