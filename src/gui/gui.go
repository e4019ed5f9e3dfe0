package gui

import (
	"io"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"spectacle-ocr/src/presenter"
)

const (
	windowWidth  = 500
	windowHeight = 400
)

// Window is the result window. It implements presenter.View and
// presenter.Dialogs.
type Window struct {
	win    fyne.Window
	status *widget.Label
	text   *widget.Entry

	copyButton      *widget.Button
	saveTextButton  *widget.Button
	saveImageButton *widget.Button
	browserButton   *widget.Button
}

// New creates the window without showing it. Bind must be called before Run.
func New(a fyne.App, language string) *Window {
	win := a.NewWindow("Spectacle Screenshot OCR - Language: " + language)
	win.SetIcon(Icon)
	win.Resize(fyne.NewSize(windowWidth, windowHeight))

	text := widget.NewMultiLineEntry()
	text.Wrapping = fyne.TextWrapWord

	return &Window{
		win:    win,
		status: widget.NewLabel(""),
		text:   text,
	}
}

// Bind wires the four buttons to p and lays out the window.
func (w *Window) Bind(p *presenter.Presenter) {
	w.copyButton = widget.NewButton("Copy Text", p.CopyText)
	w.saveTextButton = widget.NewButton("Save Text", p.SaveText)
	w.saveImageButton = widget.NewButton("Save Image", p.SaveImage)
	w.browserButton = widget.NewButton("Open in Browser", p.OpenInBrowser)

	buttons := container.NewGridWithColumns(4,
		w.copyButton, w.saveTextButton, w.saveImageButton, w.browserButton)
	w.win.SetContent(container.NewBorder(w.status, buttons, nil, nil, w.text))
}

// Run shows the window and blocks until it is closed.
func (w *Window) Run() {
	w.win.ShowAndRun()
}

func (w *Window) Text() string {
	return w.text.Text
}

func (w *Window) SetText(text string) {
	w.text.SetText(text)
}

func (w *Window) SetStatus(status string) {
	w.status.SetText(status)
}

// SaveFile opens a save dialog starting in the user's home directory.
// fyne file dialogs have no caller-set title, so title is only logged.
func (w *Window) SaveFile(title, suggestedName string, extensions []string, done func(io.WriteCloser)) {
	log.Printf("Opening save dialog %q (suggested %s)", title, suggestedName)
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		saveTarget(uc, err, done)
	}, w.win)
	d.SetFileName(suggestedName)
	if len(extensions) > 0 {
		d.SetFilter(storage.NewExtensionFileFilter(extensions))
	}
	if home, err := os.UserHomeDir(); err == nil {
		if lister, err := storage.ListerForURI(storage.NewFileURI(home)); err == nil {
			d.SetLocation(lister)
		}
	}
	d.Resize(fyne.NewSize(windowWidth, windowHeight))
	d.Show()
}

// saveTarget hands the dialog result to done. A dialog error is passed on as
// a destination that fails on write, so the caller reports it like any other
// save failure.
func saveTarget(uc fyne.URIWriteCloser, err error, done func(io.WriteCloser)) {
	switch {
	case err != nil:
		log.Printf("Save dialog failed: %v", err)
		done(failedTarget{err: err})
	case uc == nil:
		done(nil)
	default:
		log.Printf("Saving to %s", uc.URI())
		done(uc)
	}
}

type failedTarget struct{ err error }

func (f failedTarget) Write([]byte) (int, error) { return 0, f.err }

func (failedTarget) Close() error { return nil }

// ShowError shows a modal error dialog titled title.
func (w *Window) ShowError(title, message string) {
	d := dialog.NewCustom(title, "OK", widget.NewLabel(message), w.win)
	d.Show()
}

func (w *Window) ShowWarning(title, message string) {
	dialog.ShowInformation(title, message, w.win)
}
