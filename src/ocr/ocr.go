// Package ocr extracts text from image files with Tesseract.
package ocr

import (
	"image"
	"log"

	"spectacle-ocr/src/imageio"
	"spectacle-ocr/src/logutil"
	"spectacle-ocr/src/result"
)

// Engine is one OCR engine instance. A Recognizer creates a fresh engine for
// every call and always closes it.
type Engine interface {
	// Init prepares the engine for a "+"-joined language tag such as "eng+hin".
	Init(language string) error
	SetImage(img image.Image) error
	// Text runs full-page recognition and returns UTF-8 text.
	Text() (string, error)
	Close() error
}

// Recognizer turns an image file into text.
type Recognizer struct {
	newEngine func() Engine
	load      func(path string) (image.Image, error)
}

// NewRecognizer returns a Tesseract-backed recognizer. tessdataPrefix may be
// empty to use Tesseract's default data directory.
func NewRecognizer(tessdataPrefix string) *Recognizer {
	return NewRecognizerWithEngine(func() Engine { return NewTesseractEngine(tessdataPrefix) })
}

// NewRecognizerWithEngine builds a recognizer around a custom engine factory.
func NewRecognizerWithEngine(newEngine func() Engine) *Recognizer {
	return &Recognizer{newEngine: newEngine, load: imageio.Load}
}

// Recognize extracts text from the image at path. Engine initialisation and
// image loading failures are reported as distinct failed outcomes; a
// successful run is always marked successful even if no text was found.
func (r *Recognizer) Recognize(path, language string) result.Outcome {
	engine := r.newEngine()
	defer func() {
		if err := engine.Close(); err != nil {
			log.Printf("OCR: closing engine: %v", err)
		}
	}()

	if err := engine.Init(language); err != nil {
		log.Printf("OCR: init for %q failed: %v", language, err)
		return result.Failure(initFailedMessage(language))
	}

	img, err := r.load(path)
	if err != nil {
		log.Printf("OCR: %v", err)
		return result.Failure("Failed to load image")
	}
	if err := engine.SetImage(img); err != nil {
		log.Printf("OCR: set image: %v", err)
		return result.Failure("Failed to load image")
	}

	text, err := engine.Text()
	if err != nil {
		// Tesseract initialises lazily, so data problems surface here.
		log.Printf("OCR: recognition failed: %v", err)
		return result.Failure(initFailedMessage(language))
	}

	log.Printf("OCR extracted text (%d chars): %q", len(text), logutil.Sanitize(text))
	return result.Text(text)
}

func initFailedMessage(language string) string {
	return "Error initializing Tesseract OCR for language: " + language
}
