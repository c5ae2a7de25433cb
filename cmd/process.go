package cmd

import (
	"context"
	"log/slog"

	"github.com/chaos-io/pixelprep/catalog"
	"github.com/chaos-io/pixelprep/pipeline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type pipelineOptions struct {
	schedule string
	dryRun   bool
	maxSize  int
	noCopy   bool
	exts     []string
}

func newPipelineCmd(root *rootOptions, use, short string, removeBackground, crop bool) *cobra.Command {
	opts := &pipelineOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, root)
			if err != nil {
				return err
			}
			if opts.maxSize < 0 {
				return errors.Errorf("--max-size must be >= 0, got %d", opts.maxSize)
			}

			po := pipeline.Options{
				Root:             root.generated,
				Exts:             opts.exts,
				Config:           cfg,
				RemoveBackground: removeBackground,
				Crop:             crop,
				MaxSize:          opts.maxSize,
				DryRun:           opts.dryRun,
			}
			if !opts.noCopy {
				po.Catalog = catalog.New(root.assets)
			}

			run := func(ctx context.Context) error {
				report, err := pipeline.NewRunner(po).Run(ctx)
				if report != nil {
					report.Print(cmd.OutOrStdout())
				}
				return err
			}

			if err := run(cmd.Context()); err != nil {
				return err
			}
			if opts.schedule == "" {
				return nil
			}

			return pipeline.Schedule(cmd.Context(), opts.schedule, func(ctx context.Context) {
				if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.Error("scheduled run failed", "command", use, "error", err)
				}
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.schedule, "schedule", "", `Keep running on a cron schedule after the first pass, e.g. "@every 10m"`)
	f.BoolVar(&opts.dryRun, "dry-run", false, "Report what would change without writing files")
	f.IntVar(&opts.maxSize, "max-size", 0, "Downscale so the longest side is at most this many pixels (0 = keep size)")
	f.BoolVar(&opts.noCopy, "no-copy", false, "Do not copy results into the asset catalog")
	f.StringSliceVar(&opts.exts, "ext", []string{".png"}, "File extensions to process")
	return cmd
}
