// Package session runs one capture → barcode → OCR pass and decides what the
// process does with the outcome.
package session

import (
	"context"
	"errors"
	"log"

	"spectacle-ocr/src/logutil"
	"spectacle-ocr/src/result"
	"spectacle-ocr/src/screenshot"
)

const (
	StatusCaptureFailed = "Error occurred while taking screenshot"
	AlertCaptureFailed  = "Failed to launch screenshot tool or take screenshot"
	StatusBarcode       = "QR code detected and decoded successfully"
	StatusExtracted     = "Text extracted successfully."
)

type CaptureFunc func(ctx context.Context, path string) screenshot.CaptureResult

type DetectFunc func(path string) result.Outcome

type RecognizeFunc func(path, language string) result.Outcome

// ExportFunc writes the HTML report for text and opens it.
type ExportFunc func(text string) (string, error)

type Options struct {
	ImagePath      string
	Language       string
	DisableBarcode bool
	AutoExport     bool

	Capture       CaptureFunc
	DetectBarcode DetectFunc
	Recognize     RecognizeFunc
	Export        ExportFunc
}

// Plan is what the caller should do after the pass: show the window with
// Text and Status (and Alert, if set), or exit with ExitCode.
type Plan struct {
	ShowWindow bool
	Text       string
	Status     string
	Alert      string
	ExitCode   int
	Outcome    result.Outcome
}

// Execute runs the pass synchronously. Each step runs at most once.
func Execute(ctx context.Context, opts Options) (Plan, error) {
	if opts.Capture == nil {
		return Plan{}, errors.New("Capture is required")
	}
	if opts.Recognize == nil {
		return Plan{}, errors.New("Recognize is required")
	}
	if opts.AutoExport && opts.Export == nil {
		return Plan{}, errors.New("Export is required for auto-export")
	}

	capture := opts.Capture(ctx, opts.ImagePath)
	if !capture.Success {
		log.Printf("Screenshot capture failed: %v", capture.Err)
		return Plan{
			ShowWindow: true,
			Status:     StatusCaptureFailed,
			Alert:      AlertCaptureFailed,
			Outcome:    result.Failure(AlertCaptureFailed),
		}, nil
	}

	if !opts.DisableBarcode && opts.DetectBarcode != nil {
		outcome := opts.DetectBarcode(capture.Path)
		if outcome.Success {
			log.Printf("Barcode decoded: %s", logutil.Sanitize(outcome.Text))
			return finish(opts, outcome, StatusBarcode), nil
		}
		log.Printf("No barcode: %s", outcome.Err)
	}

	outcome := opts.Recognize(capture.Path, opts.Language)
	if !outcome.Success {
		log.Printf("OCR failed: %s", outcome.Err)
		return Plan{ShowWindow: true, Status: outcome.Err, Outcome: outcome}, nil
	}
	log.Printf("OCR produced %d characters: %s", len(outcome.Text), logutil.Sanitize(outcome.Text))
	return finish(opts, outcome, StatusExtracted), nil
}

func finish(opts Options, outcome result.Outcome, status string) Plan {
	if !opts.AutoExport {
		return Plan{ShowWindow: true, Text: outcome.Text, Status: status, Outcome: outcome}
	}
	if path, err := opts.Export(outcome.Text); err != nil {
		log.Printf("Auto-export failed: %v", err)
	} else {
		log.Printf("Auto-exported to %s", path)
	}
	return Plan{Text: outcome.Text, Status: status, ExitCode: 0, Outcome: outcome}
}
