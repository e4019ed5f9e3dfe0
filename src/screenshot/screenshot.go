package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os/exec"
	"strings"

	"github.com/kbinani/screenshot"

	"spectacle-ocr/src/config"
	"spectacle-ocr/src/imageio"
)

// CaptureResult reports whether an image was written to Path. Err keeps the
// underlying cause for logging; callers only branch on Success.
type CaptureResult struct {
	Success bool
	Path    string
	Err     error
}

// Capturer writes a screenshot to the given path.
type Capturer interface {
	Capture(ctx context.Context, path string) CaptureResult
}

// New picks the capturer for cfg: an existing input file wins, then the
// configured backend.
func New(cfg *config.Config) Capturer {
	if cfg.InputFile != "" {
		return FileCapturer{Source: cfg.InputFile}
	}
	if cfg.CaptureBackend == config.CaptureBackendScreen {
		return ScreenCapturer{}
	}
	return NewCommandCapturer(cfg.CaptureCommand)
}

// CommandCapturer runs an external screenshot tool and waits for it to exit.
// The output path is appended as the final argument.
type CommandCapturer struct {
	Name string
	Args []string

	run func(cmd *exec.Cmd) error
}

// NewCommandCapturer splits a command line such as "spectacle -b -r -n -o".
func NewCommandCapturer(commandLine string) CommandCapturer {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		fields = strings.Fields(config.DefaultCaptureCommand)
	}
	return CommandCapturer{Name: fields[0], Args: fields[1:]}
}

func (c CommandCapturer) Capture(ctx context.Context, path string) CaptureResult {
	args := append(append([]string{}, c.Args...), path)
	cmd := exec.CommandContext(ctx, c.Name, args...)

	run := c.run
	if run == nil {
		run = func(cmd *exec.Cmd) error { return cmd.Run() }
	}

	log.Printf("Running capture command: %s %s", c.Name, strings.Join(args, " "))
	if err := run(cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("%s exited with code %d", c.Name, exitErr.ExitCode())
		} else {
			err = fmt.Errorf("failed to run %s: %w", c.Name, err)
		}
		log.Printf("Capture failed: %v", err)
		return CaptureResult{Path: path, Err: err}
	}
	return CaptureResult{Success: true, Path: path}
}

// ScreenCapturer grabs every active display without an external tool.
type ScreenCapturer struct{}

func (ScreenCapturer) Capture(ctx context.Context, path string) CaptureResult {
	img, err := CaptureDesktop()
	if err == nil {
		err = imageio.SavePNG(img, path)
	}
	if err != nil {
		log.Printf("Desktop capture failed: %v", err)
		return CaptureResult{Path: path, Err: err}
	}
	return CaptureResult{Success: true, Path: path}
}

// CaptureDesktop captures the entire virtual screen across all active displays.
func CaptureDesktop() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("failed to capture desktop: %w", err)
	}
	return img, nil
}

// FileCapturer stands in for a capture by converting an existing image.
type FileCapturer struct {
	Source string
}

func (c FileCapturer) Capture(ctx context.Context, path string) CaptureResult {
	if err := imageio.Convert(c.Source, path); err != nil {
		log.Printf("Import of %s failed: %v", c.Source, err)
		return CaptureResult{Path: path, Err: err}
	}
	return CaptureResult{Success: true, Path: path}
}
