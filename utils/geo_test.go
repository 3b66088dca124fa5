package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.InDelta(t, 0, Distance(40.0, -73.0, 40.0, -73.0), 1e-9)
	})

	t.Run("London to Paris", func(t *testing.T) {
		d := Distance(51.5074, -0.1278, 48.8566, 2.3522)
		assert.InDelta(t, 344, d, 2)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Distance(32.0853, 34.7818, 31.7683, 35.2137)
		b := Distance(31.7683, 35.2137, 32.0853, 34.7818)
		assert.InDelta(t, a, b, 1e-9)
	})
}
