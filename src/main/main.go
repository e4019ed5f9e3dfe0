package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"spectacle-ocr/src/barcode"
	"spectacle-ocr/src/clipboard"
	"spectacle-ocr/src/config"
	"spectacle-ocr/src/diagnostics"
	"spectacle-ocr/src/export"
	"spectacle-ocr/src/gui"
	"spectacle-ocr/src/logutil"
	"spectacle-ocr/src/ocr"
	"spectacle-ocr/src/presenter"
	"spectacle-ocr/src/runtimeinit"
	"spectacle-ocr/src/screenshot"
	"spectacle-ocr/src/session"
)

const appID = "io.github.spectacle-ocr"

type mainOptions struct {
	lang          string
	disableQR     bool
	openInBrowser bool
	file          string
	verbose       bool
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		LanguageOverride: o.lang,
		DisableQR:        o.disableQR,
		OpenInBrowser:    o.openInBrowser,
		InputFile:        o.file,
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"spectacle-ocr"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spectacle-ocr",
		Short:         "Capture a screen region and show its text (QR code or OCR)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd.Context(), *opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.lang, "lang", "", "OCR language, e.g. eng or eng+hin (default OCR_LANG or eng)")
	flags.BoolVar(&opts.disableQR, "disable-qr", false, "Skip QR code detection")
	flags.BoolVar(&opts.openInBrowser, "web", false, "Open OCR results in web browser")
	flags.BoolVar(&opts.openInBrowser, "browser", false, "Open OCR results in web browser")
	flags.StringVar(&opts.file, "file", "", "Use an existing image instead of capturing the screen")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	cmd.AddCommand(newDoctorCmd(opts))
	return cmd
}

func newDoctorCmd(opts *mainOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the screenshot tool, OCR languages and temp directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*opts, false)
			if err != nil {
				return err
			}
			return runDoctor(cmd.OutOrStdout(), cfg, diagnostics.NewChecker())
		},
	}
}

type checker interface {
	Run(cfg *config.Config) diagnostics.Report
}

func runDoctor(w io.Writer, cfg *config.Config, c checker) error {
	report := c.Run(cfg)
	diagnostics.Print(w, report)
	if report.HasFailures {
		return fmt.Errorf("some checks failed")
	}
	return nil
}

func loadConfig(opts mainOptions, initClipboard bool) (*config.Config, error) {
	return runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:   opts.loadOptions(),
		SetupLogging:  runtimeinit.Logging(opts.verbose, logutil.SetupWithFallback),
		InitClipboard: initClipboard,
	})
}

func runCapture(ctx context.Context, opts mainOptions) error {
	cfg, err := loadConfig(opts, true)
	if err != nil {
		return err
	}
	log.Printf("Starting: language=%s disable_qr=%v browser=%v backend=%s",
		cfg.Language, cfg.DisableQR, cfg.OpenInBrowser, cfg.CaptureBackend)

	exporter := export.New(cfg.TempDir)
	plan, err := session.Execute(ctx, sessionOptions(cfg, exporter))
	if err != nil {
		return err
	}
	if !plan.ShowWindow {
		log.Printf("Auto-export done, exiting")
		return nil
	}

	showWindow(cfg, plan, exporter)
	return nil
}

func sessionOptions(cfg *config.Config, exporter *export.Exporter) session.Options {
	return session.Options{
		ImagePath:      cfg.ScreenshotPath(),
		Language:       cfg.Language,
		DisableBarcode: cfg.DisableQR,
		AutoExport:     cfg.OpenInBrowser,
		Capture:        screenshot.New(cfg).Capture,
		DetectBarcode:  barcode.New(cfg.BarcodeFormat).Detect,
		Recognize:      ocr.NewRecognizer(cfg.TessdataPrefix).Recognize,
		Export:         exporter.Export,
	}
}

// showWindow blocks until the result window is closed.
func showWindow(cfg *config.Config, plan session.Plan, exporter *export.Exporter) {
	a := app.NewWithID(appID)
	a.SetIcon(gui.Icon)

	w := gui.New(a, cfg.Language)
	p := presenter.New(w, w, presenter.Options{
		ImagePath: cfg.ScreenshotPath(),
		Clipboard: clipboard.Write,
		Exporter:  exporter,
	})
	w.Bind(p)
	p.Show(plan.Text, plan.Status)
	if plan.Alert != "" {
		p.Alert("Error", plan.Alert)
	}
	w.Run()
}

var legacyFlags = []string{"lang", "disable-qr", "web", "browser", "file", "verbose"}

// normalizeLegacyArgs maps single-dash long flags (-lang eng, -web) to their
// double-dash form.
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
