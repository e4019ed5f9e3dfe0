package main

import (
	"bytes"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"spectacle-ocr/src/imageio"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("SPECTACLE_OCR_TMPDIR", tmp)
	t.Setenv("BARCODE_FORMAT", "qr")
	t.Setenv("DISABLE_QR", "")
	t.Setenv("OCR_LANG", "")
	t.Setenv("ENABLE_FILE_LOGGING", "")
	return tmp
}

func writeQRCode(t *testing.T, payload string) string {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 240, 240, nil)
	if err != nil {
		t.Fatalf("encode QR: %v", err)
	}
	path := filepath.Join(t.TempDir(), "qr.png")
	if err := imageio.SavePNG(matrix, path); err != nil {
		t.Fatalf("save QR: %v", err)
	}
	return path
}

func TestCLIDecodesQRCode(t *testing.T) {
	isolateEnv(t)
	path := writeQRCode(t, "WIFI:S:home;T:WPA;P:secret;;")

	t.Run("PlainTextOutput", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if err := runWithArgs([]string{"ocr-tool", "--file", path}, nil, &stdout, &stderr); err != nil {
			t.Fatalf("Command failed: %v\nStderr: %s", err, stderr.String())
		}
		if stdout.String() != "WIFI:S:home;T:WPA;P:secret;;" {
			t.Errorf("Unexpected output %q", stdout.String())
		}
		if stderr.Len() > 0 {
			t.Errorf("Expected empty stderr without -v, got %q", stderr.String())
		}
	})

	t.Run("JSONOutput", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		args := normalizeLegacyArgs([]string{"ocr-tool", "-file", path, "-json"})
		if err := runWithArgs(args, nil, &stdout, &stderr); err != nil {
			t.Fatalf("Command failed: %v", err)
		}

		var result OCRResult
		if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
			t.Fatalf("Failed to parse JSON: %v\n%s", err, stdout.String())
		}
		if result.Text != "WIFI:S:home;T:WPA;P:secret;;" || !result.FromBarcode {
			t.Errorf("Unexpected result %+v", result)
		}
		if result.Source != path {
			t.Errorf("Expected source=%s, got %s", path, result.Source)
		}
		if result.CharCount != len("WIFI:S:home;T:WPA;P:secret;;") {
			t.Errorf("Unexpected character count %d", result.CharCount)
		}
		if result.Timestamp == "" {
			t.Error("JSON result missing timestamp")
		}
	})

	t.Run("StdinInput", func(t *testing.T) {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var stdout, stderr bytes.Buffer
		if err := runWithArgs([]string{"ocr-tool", "--file", "-", "-v"}, bytes.NewReader(data), &stdout, &stderr); err != nil {
			t.Fatalf("Stdin run failed: %v\n%s", err, stderr.String())
		}
		if stdout.String() != "WIFI:S:home;T:WPA;P:secret;;" {
			t.Errorf("Unexpected output %q", stdout.String())
		}
		if strings.Contains(stdout.String(), "[verbose]") {
			t.Error("Found [verbose] in stdout")
		}
		if !strings.Contains(stderr.String(), "[verbose]") {
			t.Error("Expected verbose output in stderr")
		}
	})
}

func TestCLIExportWritesReport(t *testing.T) {
	tmp := isolateEnv(t)
	path := writeQRCode(t, "a<b")

	var stdout, stderr bytes.Buffer
	if err := runWithArgs([]string{"ocr-tool", "--file", path, "--export"}, nil, &stdout, &stderr); err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(tmp, "ocr_result_*.html"))
	if len(matches) != 1 {
		t.Fatalf("Expected one report in %s, got %v", tmp, matches)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "a&lt;b") {
		t.Error("Expected escaped payload in report")
	}
}

func TestCLIErrors(t *testing.T) {
	isolateEnv(t)

	var stdout, stderr bytes.Buffer
	if err := runWithArgs([]string{"ocr-tool"}, nil, &stdout, &stderr); err == nil {
		t.Error("Expected error without --file")
	}
	if err := runWithArgs([]string{"ocr-tool", "--file", "/nonexistent/file.png"}, nil, &stdout, &stderr); err == nil {
		t.Error("Expected error for missing file")
	}

	garbage := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(garbage, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := runWithArgs([]string{"ocr-tool", "--file", garbage}, nil, &stdout, &stderr)
	if err != errUnsupportedFormat {
		t.Errorf("Expected errUnsupportedFormat, got %v", err)
	}
	if stdout.Len() > 0 {
		t.Errorf("Expected empty stdout on error, got %q", stdout.String())
	}
}

func TestCLIUnknownLanguage(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "blank.png")
	if err := imageio.SavePNG(imaging.New(64, 64, color.White), path); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err := runWithArgs([]string{"ocr-tool", "--file", path, "--lang", "xx"}, nil, &stdout, &stderr)
	if err == nil {
		t.Fatal("Expected error for unknown OCR language")
	}
	if !strings.Contains(err.Error(), "xx") {
		t.Errorf("Expected error naming the language, got %v", err)
	}
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantExt string
		wantErr bool
	}{
		{"PNG", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00}, ".png", false},
		{"JPEG", []byte{0xff, 0xd8, 0xff, 0xe0}, ".jpg", false},
		{"WebP", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), ".webp", false},
		{"HEIC", []byte("\x00\x00\x00\x18ftypheic\x00\x00"), ".heic", false},
		{"PDF", []byte("%PDF-1.7\n"), ".pdf", false},
		{"TIFF", []byte("II*\x00\x08\x00"), ".tiff", false},
		{"InvalidMagic", []byte{0x00, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, "", true},
		{"TooShort", []byte{0x89, 'P', 'N', 'G'}, "", true},
		{"Empty", []byte{}, "", true},
		{"TooLarge", append([]byte{0xff, 0xd8, 0xff}, make([]byte, maxFileSize)...), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := validateImage(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateImage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ext != tt.wantExt {
				t.Errorf("validateImage() = %q, want %q", ext, tt.wantExt)
			}
		})
	}
}

func TestNormalizeLegacyArgs(t *testing.T) {
	got := normalizeLegacyArgs([]string{"ocr-tool", "-file=a.png", "-json", "-lang", "hin", "-", "-v"})
	want := []string{"ocr-tool", "--file=a.png", "--json", "--lang", "hin", "-", "-v"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}
