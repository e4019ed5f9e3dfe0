package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"spectacle-ocr/src/barcode"
	"spectacle-ocr/src/config"
	"spectacle-ocr/src/export"
	"spectacle-ocr/src/logutil"
	"spectacle-ocr/src/ocr"
	"spectacle-ocr/src/runtimeinit"
	"spectacle-ocr/src/screenshot"
	"spectacle-ocr/src/session"
)

const (
	maxFileSizeMB = 20
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

type cliOptions struct {
	filePath   string
	lang       string
	disableQR  bool
	jsonOutput bool
	export     bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdin, os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		args = []string{"ocr-tool"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ocr-tool",
		Short:         "Decode a barcode or run OCR on an image file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to image file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "OCR language, e.g. eng or eng+hin")
	cmd.Flags().BoolVar(&opts.disableQR, "disable-qr", false, "Skip barcode detection")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.export, "export", false, "Also write the HTML report to the temp directory")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(ctx context.Context, opts cliOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	// Configure logging before anything else writes.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(stderr)
		fmt.Fprintf(stderr, "[verbose] Starting OCR tool\n")
	}

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			LanguageOverride: opts.lang,
			DisableQR:        opts.disableQR,
		},
		SetupLogging: func(enableFileLogging bool) {
			if enableFileLogging {
				logutil.SetupWithFallback(true, log.Writer())
			}
		},
	})
	if err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(stderr, "[verbose] Config loaded: Language=%s Barcode=%s DisableQR=%v\n",
			cfg.Language, cfg.BarcodeFormat, cfg.DisableQR)
	}

	workDir, err := os.MkdirTemp(cfg.TempDir, "ocr-tool-*")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	source, err := readInput(opts.filePath, stdin, workDir, opts.verbose, stderr)
	if err != nil {
		return err
	}

	return processImage(ctx, cfg, source, opts, workDir, stdout, stderr)
}

// readInput validates the input and returns a path the image loaders can
// open. Stdin is spooled to a file named after the sniffed format.
func readInput(filePath string, stdin io.Reader, workDir string, verbose bool, stderr io.Writer) (string, error) {
	var imageData []byte
	var err error

	if filePath == "-" {
		if verbose {
			fmt.Fprintf(stderr, "[verbose] Reading image from stdin\n")
		}
		imageData, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		if verbose {
			fmt.Fprintf(stderr, "[verbose] Reading image from file: %s\n", filePath)
		}
		imageData, err = os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	ext, err := validateImage(imageData)
	if err != nil {
		return "", err
	}
	if verbose {
		fmt.Fprintf(stderr, "[verbose] Read %d bytes, detected %s\n", len(imageData), ext)
	}

	if filePath != "-" {
		return filePath, nil
	}
	spooled := filepath.Join(workDir, "stdin"+ext)
	if err := os.WriteFile(spooled, imageData, 0o600); err != nil {
		return "", fmt.Errorf("failed to spool stdin: %w", err)
	}
	return spooled, nil
}

var errUnsupportedFormat = errors.New("input is not a supported image (PNG, JPEG, GIF, BMP, TIFF, WebP, HEIC or PDF)")

// validateImage checks the size limit and sniffs the format from magic bytes.
func validateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return "", fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}

	switch {
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}):
		return ".png", nil
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return ".jpg", nil
	case bytes.HasPrefix(data, []byte("GIF8")):
		return ".gif", nil
	case bytes.HasPrefix(data, []byte("BM")):
		return ".bmp", nil
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return ".tiff", nil
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return ".webp", nil
	case len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) && isHEIFBrand(string(data[8:12])):
		return ".heic", nil
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return ".pdf", nil
	}
	return "", errUnsupportedFormat
}

func isHEIFBrand(brand string) bool {
	switch brand {
	case "heic", "heix", "heim", "heis", "mif1", "msf1":
		return true
	}
	return false
}

func processImage(ctx context.Context, cfg *config.Config, source string, opts cliOptions, workDir string, stdout, stderr io.Writer) error {
	if opts.verbose {
		fmt.Fprintf(stderr, "[verbose] Running barcode/OCR chain\n")
	}

	startTime := time.Now()
	plan, err := session.Execute(ctx, session.Options{
		ImagePath:      filepath.Join(workDir, "input.png"),
		Language:       cfg.Language,
		DisableBarcode: cfg.DisableQR,
		Capture:        screenshot.FileCapturer{Source: source}.Capture,
		DetectBarcode:  barcode.New(cfg.BarcodeFormat).Detect,
		Recognize:      ocr.NewRecognizer(cfg.TessdataPrefix).Recognize,
	})
	elapsed := time.Since(startTime)
	if err != nil {
		return err
	}
	if !plan.Outcome.Success {
		if opts.verbose {
			fmt.Fprintf(stderr, "[verbose] Failed after %v: %s\n", elapsed, plan.Status)
		}
		return fmt.Errorf("%s", plan.Status)
	}

	text := plan.Outcome.Text
	if opts.verbose {
		fmt.Fprintf(stderr, "[verbose] %s in %v, %d characters\n", plan.Status, elapsed, utf8.RuneCountInString(text))
	}

	if opts.export {
		path, err := export.New(cfg.TempDir).Write(text)
		if err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		fmt.Fprintf(stderr, "Report written to %s\n", path)
	}

	return outputResult(stdout, text, opts.filePath, plan.Outcome.FromBarcode, elapsed, opts.jsonOutput)
}

type OCRResult struct {
	Text        string  `json:"text"`
	Source      string  `json:"source"`
	FromBarcode bool    `json:"from_barcode"`
	Timestamp   string  `json:"timestamp"`
	Duration    float64 `json:"duration_seconds"`
	CharCount   int     `json:"character_count"`
}

func outputResult(w io.Writer, text, sourcePath string, fromBarcode bool, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		_, err := fmt.Fprint(w, text)
		return err
	}

	result := OCRResult{
		Text:        text,
		Source:      sourcePath,
		FromBarcode: fromBarcode,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Duration:    elapsed.Seconds(),
		CharCount:   utf8.RuneCountInString(text),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

var legacyFlags = []string{"file", "lang", "disable-qr", "json", "export", "verbose"}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range legacyFlags {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
