package gui

import (
	"errors"
	"io"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"spectacle-ocr/src/presenter"
)

func newTestWindow(t *testing.T, clip func(string) error) (*Window, *presenter.Presenter) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	w := New(a, "eng+hin")
	p := presenter.New(w, w, presenter.Options{Clipboard: clip})
	w.Bind(p)
	return w, p
}

func TestNewWindowTitle(t *testing.T) {
	w, _ := newTestWindow(t, nil)
	if got := w.win.Title(); got != "Spectacle Screenshot OCR - Language: eng+hin" {
		t.Fatalf("Unexpected title %q", got)
	}
	if w.copyButton.Text != "Copy Text" || w.saveTextButton.Text != "Save Text" ||
		w.saveImageButton.Text != "Save Image" || w.browserButton.Text != "Open in Browser" {
		t.Error("Unexpected button labels")
	}
}

func TestShowUpdatesWidgets(t *testing.T) {
	w, p := newTestWindow(t, nil)
	p.Show("recognized", "Text extracted successfully.")

	if w.text.Text != "recognized" {
		t.Errorf("Expected text area to hold result, got %q", w.text.Text)
	}
	if w.status.Text != "Text extracted successfully." {
		t.Errorf("Unexpected status %q", w.status.Text)
	}
}

func TestCopyButton(t *testing.T) {
	var copied []string
	w, p := newTestWindow(t, func(s string) error {
		copied = append(copied, s)
		return nil
	})

	test.Tap(w.copyButton)
	if w.status.Text != presenter.StatusNothingToCopy || len(copied) != 0 {
		t.Fatalf("Empty copy: status %q, clipboard %v", w.status.Text, copied)
	}

	p.Show("hello", "")
	test.Type(w.text, " world")
	test.Tap(w.copyButton)
	if len(copied) != 1 {
		t.Fatalf("Expected one clipboard write, got %v", copied)
	}
	if copied[0] != w.text.Text {
		t.Errorf("Expected edited text %q on clipboard, got %q", w.text.Text, copied[0])
	}
	if w.status.Text != presenter.StatusCopied {
		t.Errorf("Unexpected status %q", w.status.Text)
	}
}

func TestEmptyTextButtons(t *testing.T) {
	w, _ := newTestWindow(t, nil)

	test.Tap(w.saveTextButton)
	if w.status.Text != presenter.StatusNothingToSave {
		t.Errorf("Unexpected status %q", w.status.Text)
	}
	test.Tap(w.browserButton)
	if w.status.Text != presenter.StatusNothingToShow {
		t.Errorf("Unexpected status %q", w.status.Text)
	}
}

func TestSaveTargetDialogError(t *testing.T) {
	var got io.WriteCloser
	saveTarget(nil, errors.New("permission denied"), func(w io.WriteCloser) { got = w })

	if got == nil {
		t.Fatal("Expected a destination so the failure is reported, got nil")
	}
	if _, err := io.WriteString(got, "text"); err == nil {
		t.Error("Expected write to fail after a dialog error")
	}
	if err := got.Close(); err != nil {
		t.Errorf("Unexpected close error %v", err)
	}
}

func TestSaveTargetCancelled(t *testing.T) {
	called := false
	saveTarget(nil, nil, func(w io.WriteCloser) {
		called = true
		if w != nil {
			t.Errorf("Expected nil destination on cancel, got %v", w)
		}
	})
	if !called {
		t.Fatal("Expected done to be called on cancel")
	}
}

func hasLabel(objects []fyne.CanvasObject, text string) bool {
	for _, o := range objects {
		if l, ok := o.(*widget.Label); ok && l.Text == text {
			return true
		}
	}
	return false
}

func TestShowErrorUsesTitle(t *testing.T) {
	w, _ := newTestWindow(t, nil)
	w.win.Show()
	w.ShowError("Save failed", "Failed to save the file")

	top := w.win.Canvas().Overlays().Top()
	if top == nil {
		t.Fatal("Expected a dialog overlay")
	}
	objects := test.LaidOutObjects(top)
	if !hasLabel(objects, "Save failed") {
		t.Error("Expected dialog titled with the given title")
	}
	if !hasLabel(objects, "Failed to save the file") {
		t.Error("Expected dialog to show the message")
	}
}
