package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmooAI/blobmeta"
	"github.com/SmooAI/blobmeta/internal/config"
)

type extractOptions struct {
	format   string
	output   string
	name     string
	declared string
	sniff    bool
	noDigest bool
	timeout  time.Duration
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract <path|-|url|s3://bucket/key>",
		Short: "Extract metadata from a blob and print it",
		Long: `Extract metadata from a blob and print it as JSON, CSV or a table.

The source may be a local path, "-" for stdin, an http(s) URL or an
s3://bucket/key URI. Images get pixel dimensions, audio and video get a
duration (via ffprobe), and every blob gets a SHA-256 digest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.resolve(cmd, cfg)
			return runExtract(cmd, cfg, logger, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: json, csv or table (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result to this file instead of stdout")
	cmd.Flags().StringVar(&opts.name, "name", "", "Override the blob name")
	cmd.Flags().StringVar(&opts.declared, "type", "", "Override the declared content type")
	cmd.Flags().BoolVar(&opts.sniff, "sniff", false, "Sniff magic bytes when no type is declared")
	cmd.Flags().BoolVar(&opts.noDigest, "no-digest", false, "Skip the content digest")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Bound the extraction time (default from config)")
	return cmd
}

// resolve fills unset flags from the configuration.
func (o *extractOptions) resolve(cmd *cobra.Command, cfg *config.Config) {
	if strings.TrimSpace(o.format) == "" {
		o.format = cfg.Output.Format
	}
	o.format = strings.ToLower(strings.TrimSpace(o.format))
	if !cmd.Flags().Changed("sniff") {
		o.sniff = cfg.Output.SniffType
	}
	if !cmd.Flags().Changed("timeout") {
		o.timeout = cfg.Timeout()
	}
}

func runExtract(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, source string, opts extractOptions) error {
	switch opts.format {
	case config.FormatJSON, config.FormatCSV, config.FormatTable:
	default:
		return fmt.Errorf("unsupported format %q (want json, csv or table)", opts.format)
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, opts.timeout)
		defer cancel()
	}

	hint := blobmeta.BlobHint{Name: opts.name, Type: opts.declared}
	blob, err := openSource(runCtx, cmd, source, hint)
	if err != nil {
		return err
	}
	logger.Debug("blob opened", "component", "cli", "blob", blob.String())

	if opts.sniff && blob.Type() == "" {
		detected, err := blobmeta.DetectType(blob)
		if err != nil {
			return fmt.Errorf("sniff type: %w", err)
		}
		if detected != "" {
			logger.Info("type sniffed", "component", "cli", "type", detected)
			blob = blob.WithType(detected)
		}
	}

	extractor := blobmeta.NewExtractor(extractorOptions(cfg, opts, logger)...)
	record, err := extractor.Extract(runCtx, blob)
	if err != nil {
		return err
	}

	rendered, err := renderRecord(cmd, record, opts.format)
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts.output, rendered)
}

func extractorOptions(cfg *config.Config, opts extractOptions, logger *slog.Logger) []blobmeta.Option {
	options := []blobmeta.Option{blobmeta.WithLogger(logger)}
	if !cfg.Probes.Digest || opts.noDigest {
		options = append(options, blobmeta.WithDigester(nil))
	}
	if !cfg.Probes.Images {
		options = append(options, blobmeta.WithImageProber(nil))
	}
	if cfg.Probes.Media {
		options = append(options, blobmeta.WithMediaProber(blobmeta.FFProbe{Binary: cfg.Probes.FFProbeBinary}))
	} else {
		options = append(options, blobmeta.WithMediaProber(nil))
	}
	return options
}

func openSource(ctx context.Context, cmd *cobra.Command, source string, hint blobmeta.BlobHint) (*blobmeta.Blob, error) {
	lower := strings.ToLower(source)
	switch {
	case source == "-":
		return blobmeta.NewFromStream(cmd.InOrStdin(), hint)
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return blobmeta.NewFromURLWithContext(ctx, source, hint)
	case strings.HasPrefix(lower, "s3://"):
		bucket, key, ok := blobmeta.ParseS3URI(source)
		if !ok {
			return nil, fmt.Errorf("invalid S3 URI %q (want s3://bucket/key)", source)
		}
		return blobmeta.NewFromS3WithContext(ctx, bucket, key, hint)
	default:
		absPath, err := filepath.Abs(source)
		if err != nil {
			return nil, fmt.Errorf("resolve path: %w", err)
		}
		return blobmeta.NewFromFile(absPath, hint)
	}
}

func renderRecord(cmd *cobra.Command, record *blobmeta.Record, format string) (string, error) {
	switch format {
	case config.FormatCSV:
		return blobmeta.ToCSV(record)
	case config.FormatTable:
		return renderRecordTable(record, shouldStyle(cmd.OutOrStdout())), nil
	default:
		return blobmeta.ToJSON(record)
	}
}

func writeOutput(cmd *cobra.Command, target, rendered string) error {
	if strings.TrimSpace(target) == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return err
	}
	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(target, []byte(rendered+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote metadata to %s\n", target)
	return nil
}
