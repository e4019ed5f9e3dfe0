// Package imageio loads and saves raster images for the capture, barcode
// and OCR stages.
//
// Loading goes through disintegration/imaging, which applies EXIF orientation
// and understands every format registered with the image package. Besides the
// standard PNG, JPEG and GIF decoders this package registers BMP, TIFF and
// WebP from golang.org/x/image. HEIC photos are decoded with gen2brain/heic and
// PDFs are rendered (first page only) with gen2brain/go-fitz.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Load decodes the image at path.
func Load(path string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		return loadHEIC(path)
	case ".pdf":
		return loadPDF(path)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img to path as PNG, creating or truncating the file.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Convert loads the image at src and rewrites it as a PNG at dst.
func Convert(src, dst string) error {
	img, err := Load(src)
	if err != nil {
		return err
	}
	return SavePNG(img, dst)
}

func loadHEIC(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := heic.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding HEIC %s: %w", path, err)
	}
	return img, nil
}

func loadPDF(path string) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF %s has no pages", path)
	}
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}
