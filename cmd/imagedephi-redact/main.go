// Command imagedephi-redact is the CLI entrypoint for the selective
// TIFF/BigTIFF redactor: source, --out, --annotation, --verbose are the
// only options spec.md §6 names; everything else (tile geometry, JPEG
// quality, scratch directory) is a tuning knob layered by redactconfig,
// the same way the teacher's cmd/tiler layers its own flags over cobra.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/DigitalSlideArchive/ImageDePHI-Phase-I/redact"
	"github.com/DigitalSlideArchive/ImageDePHI-Phase-I/redactconfig"
	"github.com/DigitalSlideArchive/ImageDePHI-Phase-I/redactlog"
	"github.com/spf13/cobra"
)

var (
	outPath        string
	annotationPath string
	verbose        bool
	flags          redactconfig.Flags
)

var rootCmd = &cobra.Command{
	Use:   "imagedephi-redact source",
	Short: "redact polygon regions from a pyramidal whole-slide BigTIFF",
	Args:  cobra.ExactArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			redactlog.Structured()
		}
		return nil
	},
	RunE: runRedact,
}

func init() {
	rootCmd.Flags().StringVar(&outPath, "out", "", "output BigTIFF path (required)")
	rootCmd.Flags().StringVar(&annotationPath, "annotation", "", "path to a JSON polygon list (required)")
	rootCmd.MarkFlagRequired("out")
	rootCmd.MarkFlagRequired("annotation")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "structured (JSON) logging")
	flags.Register(rootCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := redactlog.Logger(ctx)
	sourcePath := args[0]

	if samePath(sourcePath, outPath) {
		return &redact.SameInputOutputError{Path: sourcePath}
	}

	cfg, err := flags.Build()
	if err != nil {
		return fmt.Errorf("build config: %w", err)
	}

	annotationBytes, err := os.ReadFile(annotationPath)
	if err != nil {
		return fmt.Errorf("read annotation: %w", err)
	}
	polygons, err := redact.UnmarshalPolygonList(annotationBytes)
	if err != nil {
		return fmt.Errorf("parse annotation: %w", err)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	ok := false
	defer func() {
		dst.Close()
		if !ok {
			os.Remove(outPath)
		}
	}()

	log.Sugar().Infof("redacting %s -> %s (%d polygons)", sourcePath, outPath, len(polygons))
	start := time.Now()
	if err := redact.Redact(src, polygons, dst, cfg, redact.DefaultDeps()); err != nil {
		return err
	}
	ok = true
	log.Sugar().Infof("done in %s", time.Since(start))
	return nil
}

func samePath(a, b string) bool {
	ai, aerr := os.Stat(a)
	bi, berr := os.Stat(b)
	if aerr != nil || berr != nil {
		return a == b
	}
	return os.SameFile(ai, bi)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer redactlog.Sync()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
