// Package export renders recognized text as a standalone HTML page and opens
// it in the default browser.
package export

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
)

const (
	fileStampLayout  = "20060102_150405"
	headerTimeLayout = "2006-01-02 15:04:05"
)

var (
	// ErrWrite wraps failures creating or writing the report file.
	ErrWrite = errors.New("failed to create HTML file")
	// ErrOpen wraps failures launching the browser.
	ErrOpen = errors.New("failed to open web browser")
)

var page = template.Must(template.New("report").Parse(pageTemplate))

type pageData struct {
	Generated string
	Text      string
}

// Render writes the report page for text. The text is HTML-escaped.
func Render(w io.Writer, text string, generated time.Time) error {
	return page.Execute(w, pageData{
		Generated: generated.Format(headerTimeLayout),
		Text:      text,
	})
}

// FileName is the report name for a given generation time.
func FileName(t time.Time) string {
	return "ocr_result_" + t.Format(fileStampLayout) + ".html"
}

// Exporter writes reports into Dir and opens them.
type Exporter struct {
	Dir  string
	Now  func() time.Time
	Open func(path string) error
}

// New returns an exporter writing to dir and opening files with the OS
// default handler.
func New(dir string) *Exporter {
	return &Exporter{Dir: dir, Now: time.Now, Open: browser.OpenFile}
}

// Write renders text into a timestamped file and returns its path.
func (e *Exporter) Write(text string) (string, error) {
	now := e.Now()
	path := filepath.Join(e.Dir, FileName(now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := Render(f, text, now); err != nil {
		_ = f.Close()
		return path, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return path, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return path, nil
}

// Export writes the report and opens it. Errors wrap ErrWrite or ErrOpen.
func (e *Exporter) Export(text string) (string, error) {
	path, err := e.Write(text)
	if err != nil {
		return path, err
	}
	if err := e.Open(path); err != nil {
		return path, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return path, nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>OCR Results</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 20px;
            line-height: 1.6;
            background-color: #f4f4f4;
        }
        .container {
            max-width: 800px;
            margin: 0 auto;
            background-color: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        h1 {
            color: #333;
        }
        .timestamp {
            color: #666;
            font-size: 0.9em;
        }
        .content {
            width: 100%;
            min-height: 300px;
            padding: 15px;
            border: 2px solid #007bff;
            border-radius: 4px;
            font-family: 'Courier New', monospace;
            font-size: 14px;
            box-sizing: border-box;
            resize: vertical;
        }
        .button-group {
            margin-top: 15px;
            display: flex;
            gap: 10px;
        }
        button {
            padding: 10px 20px;
            background-color: #007bff;
            color: white;
            border: none;
            border-radius: 4px;
            cursor: pointer;
            font-size: 14px;
        }
        button:hover {
            background-color: #0056b3;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>OCR Results</h1>
        <p class="timestamp">Generated: {{.Generated}}</p>
        <textarea id="content" class="content">{{.Text}}</textarea>
        <div class="button-group">
            <button onclick="copyText()">Copy to Clipboard</button>
            <button onclick="downloadText()">Download as TXT</button>
        </div>
    </div>
    <script>
        function copyText() {
            const textarea = document.getElementById('content');
            textarea.select();
            document.execCommand('copy');
            alert('Text copied to clipboard!');
        }
        function downloadText() {
            const textarea = document.getElementById('content');
            const text = textarea.value;
            const element = document.createElement('a');
            element.setAttribute('href', 'data:text/plain;charset=utf-8,' + encodeURIComponent(text));
            element.setAttribute('download', 'ocr_result.txt');
            element.style.display = 'none';
            document.body.appendChild(element);
            element.click();
            document.body.removeChild(element);
        }
    </script>
</body>
</html>
`
