package runtimeinit

import (
	"fmt"
	"io"
	"log"
	"os"

	"spectacle-ocr/src/clipboard"
	"spectacle-ocr/src/config"
)

type Options struct {
	LoadOptions config.LoadOptions
	// SetupLogging receives EnableFileLogging once the config is loaded.
	SetupLogging func(bool)
	// InitClipboard prepares the clipboard up front; failure is logged only,
	// the copy action reports it later.
	InitClipboard bool
}

// Bootstrap loads the configuration, configures logging and makes sure the
// temporary directory exists.
func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if len(cfg.Languages()) == 0 {
		return nil, fmt.Errorf("OCR language is empty. Use --lang or OCR_LANG, e.g. eng or eng+hin")
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory %s: %w", cfg.TempDir, err)
	}

	if opts.InitClipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("Clipboard unavailable: %v", err)
		}
	}

	log.Printf("Config: language=%s backend=%s barcode=%s tmp=%s",
		cfg.Language, cfg.CaptureBackend, cfg.BarcodeFormat, cfg.TempDir)
	return cfg, nil
}

// Logging returns a SetupLogging func for the logutil package: stderr when
// verbose, otherwise discarded unless file logging is enabled.
func Logging(verbose bool, setup func(bool, io.Writer)) func(bool) {
	fallback := io.Discard
	if verbose {
		fallback = os.Stderr
	}
	return func(enableFileLogging bool) {
		setup(enableFileLogging, fallback)
	}
}
