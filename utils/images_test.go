package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessProfileImage(t *testing.T) {
	out, err := ProcessProfileImage(pngBytes(t, 640, 480))
	require.NoError(t, err)

	decoded, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Equal(t, ProfileImageSize, bounds.Dx())
	assert.Equal(t, ProfileImageSize, bounds.Dy())
}

func TestProcessProfileImageRejectsGarbage(t *testing.T) {
	_, err := ProcessProfileImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestShrinkForAnalysis(t *testing.T) {
	out, err := ShrinkForAnalysis(pngBytes(t, 1200, 600))
	require.NoError(t, err)

	decoded, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), ProfileImageSize)
	assert.LessOrEqual(t, bounds.Dy(), ProfileImageSize)
}
