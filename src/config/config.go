package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultLanguage       = "eng"
	DefaultCaptureCommand = "spectacle -b -r -n -o"
	ConfigPathEnvVar      = "SPECTACLE_OCR"

	CaptureBackendCommand = "command"
	CaptureBackendScreen  = "screen"

	BarcodeQR         = "qr"
	BarcodeDataMatrix = "datamatrix"
	BarcodeCode128    = "code128"
	BarcodeEAN13      = "ean13"
)

// LoadOptions carries command-line overrides. Non-zero values win over the
// environment and the .env file.
type LoadOptions struct {
	LanguageOverride string
	DisableQR        bool
	OpenInBrowser    bool
	InputFile        string
}

type Config struct {
	Language          string
	DisableQR         bool
	OpenInBrowser     bool
	CaptureBackend    string
	CaptureCommand    string
	BarcodeFormat     string
	TempDir           string
	TessdataPrefix    string
	EnableFileLogging bool
	InputFile         string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SPECTACLE_OCR env var as a path to a config file
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Language:          resolveLanguage(opts.LanguageOverride),
		DisableQR:         opts.DisableQR || envBool("DISABLE_QR"),
		OpenInBrowser:     opts.OpenInBrowser || envBool("OPEN_IN_BROWSER"),
		CaptureBackend:    resolveCaptureBackend(os.Getenv("CAPTURE_BACKEND")),
		CaptureCommand:    getEnvWithDefault("CAPTURE_COMMAND", DefaultCaptureCommand),
		BarcodeFormat:     resolveBarcodeFormat(os.Getenv("BARCODE_FORMAT")),
		TempDir:           getEnvWithDefault("SPECTACLE_OCR_TMPDIR", os.TempDir()),
		TessdataPrefix:    strings.TrimSpace(os.Getenv("TESSDATA_PREFIX")),
		EnableFileLogging: envBool("ENABLE_FILE_LOGGING"),
		InputFile:         strings.TrimSpace(opts.InputFile),
	}

	return cfg, nil
}

// Languages splits a "+"-joined language tag ("eng+hin") into its parts.
func (c *Config) Languages() []string {
	return SplitLanguages(c.Language)
}

// ScreenshotPath is the fixed per-run location of the captured image.
func (c *Config) ScreenshotPath() string {
	return filepath.Join(c.TempDir, "screenshot.png")
}

// SplitLanguages returns the non-empty components of a "+"-joined tag.
func SplitLanguages(tag string) []string {
	var langs []string
	for _, l := range strings.Split(tag, "+") {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			langs = append(langs, trimmed)
		}
	}
	return langs
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveLanguage(override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	return getEnvWithDefault("OCR_LANG", DefaultLanguage)
}

func resolveCaptureBackend(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case CaptureBackendScreen, "kbinani", "native":
		return CaptureBackendScreen
	default:
		return CaptureBackendCommand
	}
}

func resolveBarcodeFormat(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case BarcodeDataMatrix, "data_matrix":
		return BarcodeDataMatrix
	case BarcodeCode128, "code_128":
		return BarcodeCode128
	case BarcodeEAN13, "ean_13":
		return BarcodeEAN13
	default:
		return BarcodeQR
	}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
