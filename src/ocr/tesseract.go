package ocr

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"

	"spectacle-ocr/src/config"
	"spectacle-ocr/src/imageio"
)

// ErrLanguageUnavailable means no traineddata file exists for a requested language.
var ErrLanguageUnavailable = errors.New("language data not installed")

// TesseractEngine implements Engine on top of a gosseract client.
type TesseractEngine struct {
	client         *gosseract.Client
	tessdataPrefix string
	available      func(prefix string) ([]string, error)
}

// NewTesseractEngine constructs an engine with a new gosseract client.
func NewTesseractEngine(tessdataPrefix string) *TesseractEngine {
	return &TesseractEngine{
		client:         gosseract.NewClient(),
		tessdataPrefix: tessdataPrefix,
		available:      AvailableLanguages,
	}
}

func (e *TesseractEngine) Init(language string) error {
	langs := config.SplitLanguages(language)
	if len(langs) == 0 {
		return fmt.Errorf("no language given")
	}
	if err := CheckLanguages(e.available, e.tessdataPrefix, langs); err != nil {
		return err
	}
	if e.tessdataPrefix != "" {
		if err := e.client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := e.client.SetLanguage(langs...); err != nil {
		return fmt.Errorf("set languages: %w", err)
	}
	return nil
}

func (e *TesseractEngine) SetImage(img image.Image) error {
	data, err := imageio.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return nil
}

func (e *TesseractEngine) Text() (string, error) {
	return e.client.Text()
}

func (e *TesseractEngine) Close() error {
	return e.client.Close()
}

// AvailableLanguages lists installed traineddata names, either in prefix or
// in Tesseract's compiled-in data path when prefix is empty.
func AvailableLanguages(prefix string) ([]string, error) {
	if prefix == "" {
		return gosseract.GetAvailableLanguages()
	}
	matches, err := filepath.Glob(filepath.Join(prefix, "*.traineddata"))
	if err != nil {
		return nil, err
	}
	langs := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		langs = append(langs, base[:len(base)-len(".traineddata")])
	}
	return langs, nil
}

// CheckLanguages reports the first requested language with no traineddata.
func CheckLanguages(available func(string) ([]string, error), prefix string, langs []string) error {
	installed, err := available(prefix)
	if err != nil {
		return fmt.Errorf("listing tessdata: %w", err)
	}
	set := make(map[string]struct{}, len(installed))
	for _, l := range installed {
		set[l] = struct{}{}
	}
	for _, l := range langs {
		if _, ok := set[l]; !ok {
			return fmt.Errorf("%w: %s", ErrLanguageUnavailable, l)
		}
	}
	return nil
}

// TessdataDir is where traineddata files are looked up for prefix.
func TessdataDir(prefix string) string {
	if prefix != "" {
		return prefix
	}
	if env := os.Getenv("TESSDATA_PREFIX"); env != "" {
		return env
	}
	return "tesseract default data path"
}
