package barcode

import (
	"image"
	"log"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"spectacle-ocr/src/config"
	"spectacle-ocr/src/imageio"
	"spectacle-ocr/src/result"
)

const (
	msgLoadFailed  = "Failed to load image for QR detection"
	msgNotDetected = "Failed to detect valid QR code"
)

// Detector decodes a single barcode symbology from an image file.
type Detector struct {
	format     gozxing.BarcodeFormat
	newReader  func() gozxing.Reader
	tryHarder  bool
	tryRotated bool
	load       func(path string) (image.Image, error)
}

// New returns a detector for one of the config.Barcode* symbologies with
// try-harder and rotated attempts enabled. Unknown names fall back to QR.
func New(symbology string) *Detector {
	d := &Detector{
		tryHarder:  true,
		tryRotated: true,
		load:       imageio.Load,
	}
	switch symbology {
	case config.BarcodeDataMatrix:
		d.format, d.newReader = gozxing.BarcodeFormat_DATA_MATRIX, newDataMatrixReader
	case config.BarcodeCode128:
		d.format, d.newReader = gozxing.BarcodeFormat_CODE_128, oned.NewCode128Reader
	case config.BarcodeEAN13:
		d.format, d.newReader = gozxing.BarcodeFormat_EAN_13, oned.NewEAN13Reader
	default:
		d.format, d.newReader = gozxing.BarcodeFormat_QR_CODE, qrcode.NewQRCodeReader
	}
	return d
}

func newDataMatrixReader() gozxing.Reader {
	return datamatrix.NewDataMatrixReader()
}

// Detect loads the image at path and tries to decode one barcode from it.
// A missing code and an unreadable image both yield a failed outcome.
func (d *Detector) Detect(path string) result.Outcome {
	img, err := d.load(path)
	if err != nil {
		log.Printf("Barcode: %v", err)
		return result.Failure(msgLoadFailed)
	}

	text, ok := d.decode(normalize(img))
	if !ok {
		return result.Failure(msgNotDetected)
	}
	log.Printf("Barcode: decoded format %v payload (%d chars)", d.format, len(text))
	return result.Barcode(text)
}

func (d *Detector) decode(img image.Image) (string, bool) {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_POSSIBLE_FORMATS: []gozxing.BarcodeFormat{d.format},
	}
	if d.tryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	candidates := []image.Image{img}
	if d.tryRotated {
		candidates = append(candidates, imaging.Rotate90(img), imaging.Rotate180(img), imaging.Rotate270(img))
	}

	for _, candidate := range candidates {
		bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(luminanceSource(candidate)))
		if err != nil {
			continue
		}
		res, err := d.newReader().Decode(bmp, hints)
		if err == nil && res != nil {
			return res.GetText(), true
		}
	}
	return "", false
}

// normalize keeps the two accepted 32-bit layouts and converts anything else
// to NRGBA.
func normalize(img image.Image) image.Image {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		return img
	default:
		return imaging.Clone(img)
	}
}

// luminanceSource packs the raw pixel buffer into ARGB ints, walking rows by
// the image stride.
func luminanceSource(img image.Image) gozxing.LuminanceSource {
	var (
		pix    []uint8
		stride int
		rect   image.Rectangle
	)
	switch m := img.(type) {
	case *image.RGBA:
		pix, stride, rect = m.Pix, m.Stride, m.Rect
	case *image.NRGBA:
		pix, stride, rect = m.Pix, m.Stride, m.Rect
	default:
		c := imaging.Clone(img)
		pix, stride, rect = c.Pix, c.Stride, c.Rect
	}

	w, h := rect.Dx(), rect.Dy()
	argb := make([]int, w*h)
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			argb[y*w+x] = int(p[3])<<24 | int(p[0])<<16 | int(p[1])<<8 | int(p[2])
		}
	}
	return gozxing.NewRGBLuminanceSource(w, h, argb)
}
