package controllers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBToHex(t *testing.T) {
	assert.Equal(t, "#000000", RGBToHex(0, 0, 0))
	assert.Equal(t, "#ffffff", RGBToHex(255, 255, 255))
	assert.Equal(t, "#4287f5", RGBToHex(66, 135, 245))
	// Vision returns float channels; values round to the nearest int.
	assert.Equal(t, "#808080", RGBToHex(127.6, 127.6, 127.6))
}

func TestStripDataURL(t *testing.T) {
	assert.Equal(t, "abc123", StripDataURL("data:image/jpeg;base64,abc123"))
	assert.Equal(t, "abc123", StripDataURL("abc123"))
}

func TestDominantColorsFromVision(t *testing.T) {
	payload := `{
		"responses": [{
			"imagePropertiesAnnotation": {
				"dominantColors": {
					"colors": [
						{"color": {"red": 10, "green": 20, "blue": 30}, "pixelFraction": 0.1},
						{"color": {"red": 200, "green": 0, "blue": 0}, "pixelFraction": 0.6},
						{"color": {"red": 0, "green": 200, "blue": 0}, "pixelFraction": 0.2},
						{"color": {"red": 0, "green": 0, "blue": 200}, "pixelFraction": 0.05}
					]
				}
			}
		}]
	}`
	var resp visionResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	colors := DominantColorsFromVision(resp)
	require.Len(t, colors, 3)

	// Sorted by pixel fraction descending, capped at three.
	assert.Equal(t, "#c80000", colors[0].Hex)
	assert.InDelta(t, 0.6, colors[0].Score, 1e-9)
	assert.Equal(t, "#00c800", colors[1].Hex)
	assert.Equal(t, "#0a141e", colors[2].Hex)
}

func TestDominantColorsFromVisionEmpty(t *testing.T) {
	assert.Nil(t, DominantColorsFromVision(visionResponse{}))

	var resp visionResponse
	require.NoError(t, json.Unmarshal([]byte(`{"responses":[{}]}`), &resp))
	assert.Nil(t, DominantColorsFromVision(resp))
}

func TestGeminiText(t *testing.T) {
	payload := `{
		"candidates": [{
			"content": {
				"parts": [{"text": "Red cotton "}, {"text": "t-shirt\n"}]
			}
		}]
	}`
	var resp geminiResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	assert.Equal(t, "Red cotton t-shirt", GeminiText(resp))

	assert.Equal(t, "", GeminiText(geminiResponse{}))
}

func TestDefaultDominantColors(t *testing.T) {
	colors := defaultDominantColors()
	require.Len(t, colors, 3)
	total := 0.0
	for _, c := range colors {
		total += c.Score
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}
