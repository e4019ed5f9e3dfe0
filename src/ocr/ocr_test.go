package ocr

import (
	"errors"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"spectacle-ocr/src/imageio"
)

type fakeEngine struct {
	initErr  error
	imageErr error
	text     string
	textErr  error

	initLang string
	gotImage bool
	closed   bool
}

func (f *fakeEngine) Init(language string) error {
	f.initLang = language
	return f.initErr
}

func (f *fakeEngine) SetImage(img image.Image) error {
	f.gotImage = img != nil
	return f.imageErr
}

func (f *fakeEngine) Text() (string, error) { return f.text, f.textErr }

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func newTestRecognizer(engine *fakeEngine, loadErr error) *Recognizer {
	r := NewRecognizerWithEngine(func() Engine { return engine })
	r.load = func(string) (image.Image, error) {
		if loadErr != nil {
			return nil, loadErr
		}
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	}
	return r
}

func TestRecognizeSuccess(t *testing.T) {
	engine := &fakeEngine{text: "hello world\n"}
	out := newTestRecognizer(engine, nil).Recognize("shot.png", "eng+hin")

	if !out.Success || out.Text != "hello world\n" {
		t.Fatalf("Unexpected outcome %+v", out)
	}
	if out.FromBarcode {
		t.Error("OCR outcome must not be marked as barcode")
	}
	if engine.initLang != "eng+hin" {
		t.Errorf("Expected engine initialised with eng+hin, got %q", engine.initLang)
	}
	if !engine.gotImage {
		t.Error("Expected image to be handed to the engine")
	}
	if !engine.closed {
		t.Error("Expected engine to be closed")
	}
}

func TestRecognizeEmptyTextIsSuccess(t *testing.T) {
	out := newTestRecognizer(&fakeEngine{}, nil).Recognize("shot.png", "eng")
	if !out.Success || out.Text != "" || out.Err != "" {
		t.Fatalf("Expected empty successful outcome, got %+v", out)
	}
}

func TestRecognizeInitFailureNamesLanguage(t *testing.T) {
	engine := &fakeEngine{initErr: errors.New("no data")}
	out := newTestRecognizer(engine, nil).Recognize("shot.png", "xx")

	if out.Success {
		t.Fatal("Expected failure")
	}
	if !strings.Contains(out.Err, "xx") {
		t.Errorf("Expected message naming the language, got %q", out.Err)
	}
	if out.Text != "" {
		t.Errorf("Expected empty text, got %q", out.Text)
	}
	if engine.gotImage {
		t.Error("Image must not be set after init failure")
	}
	if !engine.closed {
		t.Error("Expected engine to be closed after init failure")
	}
}

func TestRecognizeLoadFailure(t *testing.T) {
	engine := &fakeEngine{}
	out := newTestRecognizer(engine, errors.New("corrupt")).Recognize("shot.png", "eng")

	if out.Success || out.Err != "Failed to load image" {
		t.Fatalf("Expected image load failure, got %+v", out)
	}
	if !engine.closed {
		t.Error("Expected engine to be closed after load failure")
	}
}

func TestRecognizeSetImageFailure(t *testing.T) {
	engine := &fakeEngine{imageErr: errors.New("bad pix")}
	out := newTestRecognizer(engine, nil).Recognize("shot.png", "eng")
	if out.Success || out.Err != "Failed to load image" {
		t.Fatalf("Expected image load failure, got %+v", out)
	}
	if !engine.closed {
		t.Error("Expected engine to be closed")
	}
}

func TestRecognizeTextFailure(t *testing.T) {
	engine := &fakeEngine{textErr: errors.New("failed to initialize TessBaseAPI with code -1")}
	out := newTestRecognizer(engine, nil).Recognize("shot.png", "deu")
	if out.Success || !strings.Contains(out.Err, "deu") {
		t.Fatalf("Expected init-style failure naming deu, got %+v", out)
	}
	if !engine.closed {
		t.Error("Expected engine to be closed")
	}
}

func TestCheckLanguages(t *testing.T) {
	available := func(string) ([]string, error) { return []string{"eng", "osd", "hin"}, nil }

	if err := CheckLanguages(available, "", []string{"eng", "hin"}); err != nil {
		t.Fatalf("Expected installed languages to pass: %v", err)
	}
	err := CheckLanguages(available, "", []string{"eng", "xx"})
	if !errors.Is(err, ErrLanguageUnavailable) || !strings.Contains(err.Error(), "xx") {
		t.Fatalf("Expected ErrLanguageUnavailable naming xx, got %v", err)
	}

	failing := func(string) ([]string, error) { return nil, errors.New("glob") }
	if err := CheckLanguages(failing, "", []string{"eng"}); err == nil {
		t.Fatal("Expected listing error to propagate")
	}
}

func TestAvailableLanguagesWithPrefix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"eng.traineddata", "chi_sim.traineddata", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	langs, err := AvailableLanguages(dir)
	if err != nil {
		t.Fatalf("AvailableLanguages failed: %v", err)
	}
	if len(langs) != 2 {
		t.Fatalf("Expected 2 languages, got %v", langs)
	}
	seen := map[string]bool{}
	for _, l := range langs {
		seen[l] = true
	}
	if !seen["eng"] || !seen["chi_sim"] {
		t.Fatalf("Unexpected languages %v", langs)
	}
}

func TestTesseractEngineUnknownLanguage(t *testing.T) {
	engine := NewTesseractEngine(t.TempDir())
	defer engine.Close()

	if err := engine.Init("xx"); !errors.Is(err, ErrLanguageUnavailable) {
		t.Fatalf("Expected ErrLanguageUnavailable for empty tessdata dir, got %v", err)
	}
}

func TestRecognizeWithTesseract(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}
	if err := CheckLanguages(AvailableLanguages, "", []string{"eng"}); err != nil {
		t.Skipf("eng language data not installed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "blank.png")
	if err := imageio.SavePNG(image.NewGray(image.Rect(0, 0, 64, 32)), path); err != nil {
		t.Fatal(err)
	}

	out := NewRecognizer("").Recognize(path, "eng")
	if !out.Success {
		t.Fatalf("Expected recognition to run, got %+v", out)
	}
}
