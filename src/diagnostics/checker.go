// Package diagnostics checks that the external pieces a run depends on are
// installed: the screenshot tool, the OCR language data and a writable
// temporary directory.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"spectacle-ocr/src/config"
	"spectacle-ocr/src/ocr"
	"spectacle-ocr/src/screenshot"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Item is one check result with an optional hint.
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	HasFailures bool      `json:"hasFailures"`
	Items       []Item    `json:"items"`
}

// Checker runs the checks against injectable OS dependencies.
type Checker struct {
	lookPath   func(string) (string, error)
	languages  func(prefix string) ([]string, error)
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		languages:  ocr.AvailableLanguages,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes every check that applies to cfg.
func (c *Checker) Run(cfg *config.Config) Report {
	var items []Item
	if cfg.CaptureBackend == config.CaptureBackendCommand && cfg.InputFile == "" {
		items = append(items, c.checkCaptureTool(cfg.CaptureCommand))
	}
	items = append(items, c.checkLanguages(cfg.TessdataPrefix, cfg.Languages())...)
	items = append(items, c.checkTempDir(cfg.TempDir))

	report := Report{GeneratedAt: time.Now().UTC(), Items: items}
	for _, item := range items {
		if item.Status == StatusFail {
			report.HasFailures = true
			break
		}
	}
	return report
}

func (c *Checker) checkCaptureTool(commandLine string) Item {
	name := screenshot.NewCommandCapturer(commandLine).Name
	path, err := c.lookPath(name)
	if err != nil {
		return Item{
			ID:      "tool_" + name,
			Name:    name,
			Status:  StatusFail,
			Message: fmt.Sprintf("Screenshot tool not found in PATH: %s", name),
			Hint:    "Install it, set CAPTURE_COMMAND to another tool, or use CAPTURE_BACKEND=screen.",
		}
	}
	return Item{
		ID:      "tool_" + name,
		Name:    name,
		Status:  StatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

func (c *Checker) checkLanguages(prefix string, langs []string) []Item {
	items := make([]Item, 0, len(langs))
	for _, lang := range langs {
		item := Item{ID: "lang_" + lang, Name: "OCR language " + lang}
		err := ocr.CheckLanguages(c.languages, prefix, []string{lang})
		switch {
		case err == nil:
			item.Status = StatusPass
			item.Message = fmt.Sprintf("Language data installed in %s", ocr.TessdataDir(prefix))
		case errors.Is(err, ocr.ErrLanguageUnavailable):
			item.Status = StatusFail
			item.Message = fmt.Sprintf("No %s.traineddata in %s", lang, ocr.TessdataDir(prefix))
			item.Hint = "Install the tesseract language pack or point TESSDATA_PREFIX at the directory holding it."
		default:
			item.Status = StatusFail
			item.Message = fmt.Sprintf("Cannot list Tesseract languages: %v", err)
			item.Hint = "Check that Tesseract is installed."
		}
		items = append(items, item)
	}
	return items
}

func (c *Checker) checkTempDir(dir string) Item {
	item := Item{ID: "temp_dir", Name: "Temporary directory"}
	if strings.TrimSpace(dir) == "" {
		item.Status = StatusFail
		item.Message = "Temporary directory is empty."
		item.Hint = "Set SPECTACLE_OCR_TMPDIR to a writable directory."
		return item
	}

	f, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Temporary directory is not writable: %s", dir)
		item.Hint = "Screenshots and HTML reports are written here; choose a writable location."
		return item
	}
	name := f.Name()
	_ = f.Close()
	_ = c.remove(name)

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// Print writes the report as one line per item.
func Print(w io.Writer, report Report) {
	for _, item := range report.Items {
		fmt.Fprintf(w, "[%s] %s: %s\n", item.Status, item.Name, item.Message)
		if item.Hint != "" {
			fmt.Fprintf(w, "       %s\n", item.Hint)
		}
	}
}
