// Package presenter holds the result window's state and its button actions,
// independent of the GUI toolkit that draws them.
package presenter

import (
	"errors"
	"io"
	"log"
	"os"
	"time"

	"spectacle-ocr/src/export"
)

const (
	StatusCopied          = "Text copied to clipboard"
	StatusNothingToCopy   = "No text to copy"
	StatusCopyFailed      = "Failed to copy text"
	StatusSaved           = "Text saved to file"
	StatusSaveFailed      = "Failed to save file"
	StatusNothingToSave   = "No text to save"
	StatusImageSaved      = "Screenshot saved successfully"
	StatusImageFailed     = "Failed to save screenshot"
	StatusOpenedInBrowser = "OCR results opened in web browser"
	StatusBrowserFailed   = "Failed to open web browser"
	StatusHTMLFailed      = "Failed to create HTML file"
	StatusNothingToShow   = "No text to display"
)

// View is the part of the window holding the status line and the text area.
type View interface {
	Text() string
	SetText(text string)
	SetStatus(status string)
}

// Dialogs are the modal interactions the actions need.
type Dialogs interface {
	// SaveFile asks the user for a destination. done receives nil if the
	// dialog was cancelled; otherwise the caller owns and must close w.
	SaveFile(title, suggestedName string, extensions []string, done func(w io.WriteCloser))
	ShowError(title, message string)
	ShowWarning(title, message string)
}

// Exporter writes the HTML report and opens it.
type Exporter interface {
	Export(text string) (string, error)
}

type Options struct {
	// ImagePath is the captured screenshot offered by "Save Image".
	ImagePath string
	Clipboard func(text string) error
	Exporter  Exporter
	Now       func() time.Time
}

// Presenter owns the window state shared by the four actions. Each run
// overwrites the previous text and status; there is no history.
type Presenter struct {
	view      View
	dialogs   Dialogs
	clipboard func(string) error
	exporter  Exporter
	imagePath string
	now       func() time.Time
}

func New(view View, dialogs Dialogs, opts Options) *Presenter {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Presenter{
		view:      view,
		dialogs:   dialogs,
		clipboard: opts.Clipboard,
		exporter:  opts.Exporter,
		imagePath: opts.ImagePath,
		now:       now,
	}
}

// Show replaces the displayed text and status.
func (p *Presenter) Show(text, status string) {
	p.view.SetText(text)
	p.view.SetStatus(status)
}

// Alert shows a modal error.
func (p *Presenter) Alert(title, message string) {
	p.dialogs.ShowError(title, message)
}

// CopyText puts the whole text area on the clipboard.
func (p *Presenter) CopyText() {
	text := p.view.Text()
	if text == "" {
		p.view.SetStatus(StatusNothingToCopy)
		return
	}
	if err := p.clipboard(text); err != nil {
		log.Printf("Copy to clipboard failed: %v", err)
		p.view.SetStatus(StatusCopyFailed)
		return
	}
	p.view.SetStatus(StatusCopied)
}

// SaveText writes the text area verbatim to a user-chosen file.
func (p *Presenter) SaveText() {
	text := p.view.Text()
	if text == "" {
		p.view.SetStatus(StatusNothingToSave)
		return
	}
	p.dialogs.SaveFile("Save OCR Text", "ocr_result.txt", []string{".txt"}, func(w io.WriteCloser) {
		if w == nil {
			return
		}
		_, err := io.WriteString(w, text)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Printf("Save text failed: %v", err)
			p.view.SetStatus(StatusSaveFailed)
			p.dialogs.ShowError("Error", "Failed to save the file")
			return
		}
		p.view.SetStatus(StatusSaved)
	})
}

// SaveImage copies the captured screenshot to a user-chosen file.
func (p *Presenter) SaveImage() {
	suggested := "Screenshot_" + p.now().Format("20060102_150405") + ".png"
	p.dialogs.SaveFile("Save Screenshot", suggested, []string{".png"}, func(w io.WriteCloser) {
		if w == nil {
			return
		}
		err := copyFileTo(w, p.imagePath)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Printf("Save screenshot failed: %v", err)
			p.view.SetStatus(StatusImageFailed)
			p.dialogs.ShowError("Error", "Failed to save the screenshot file")
			return
		}
		p.view.SetStatus(StatusImageSaved)
	})
}

// OpenInBrowser exports the text area as an HTML page and opens it.
func (p *Presenter) OpenInBrowser() {
	text := p.view.Text()
	if text == "" {
		p.view.SetStatus(StatusNothingToShow)
		return
	}
	path, err := p.exporter.Export(text)
	switch {
	case err == nil:
		log.Printf("Opened report %s", path)
		p.view.SetStatus(StatusOpenedInBrowser)
	case errors.Is(err, export.ErrOpen):
		log.Printf("Open report failed: %v", err)
		p.view.SetStatus(StatusBrowserFailed)
		p.dialogs.ShowWarning("Warning", "Could not open default web browser")
	default:
		log.Printf("Write report failed: %v", err)
		p.view.SetStatus(StatusHTMLFailed)
		p.dialogs.ShowError("Error", "Failed to create temporary HTML file")
	}
}

func copyFileTo(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
