package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
)

const (
	MimeTypeBMP  = "image/bmp"
	MimeTypePNG  = "image/png"
	MimeTypeJPEG = "image/jpeg"
)

// EncodeBitmap は画像を BMP 形式にエンコードします。
func EncodeBitmap(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bmp.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("bmp encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG は画像を PNG 形式にエンコードします。
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode は画像データ（BMP, PNG, GIF, JPEG）をデコードし、形式名とともに返します。
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image data is empty")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("image decode: %w", err)
	}
	return img, format, nil
}

// CompressToJPEG は画像データ（BMP, PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
