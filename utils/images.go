package utils

import (
	"bytes"

	"github.com/disintegration/imaging"
)

// ProfileImageSize is the square edge length of stored profile images.
const ProfileImageSize = 300

// ProcessProfileImage decodes an uploaded image, center-crops it to a
// 300x300 square, and re-encodes it as a progressive-quality JPEG.
func ProcessProfileImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	img = imaging.Fill(img, ProfileImageSize, ProfileImageSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ShrinkForAnalysis downscales an image to fit within 300x300 before it
// is sent to the Vision API, keeping the request payload small.
func ShrinkForAnalysis(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	img = imaging.Fit(img, ProfileImageSize, ProfileImageSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
