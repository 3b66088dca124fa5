package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePickupDate(t *testing.T) {
	t.Run("RFC 3339", func(t *testing.T) {
		got, err := parsePickupDate("2026-09-15T10:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC), got)
	})

	t.Run("plain date", func(t *testing.T) {
		got, err := parsePickupDate("2026-09-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parsePickupDate("next tuesday")
		assert.Error(t, err)
	})
}
