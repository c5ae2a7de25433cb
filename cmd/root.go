// Package cmd 命令行入口
package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/chaos-io/pixelprep/pixel"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	defaultGenerated = "Resources/generated"
	defaultAssets    = "FuelLift/Resources/Assets.xcassets"
)

type rootOptions struct {
	configPath string
	verbose    bool
	generated  string
	assets     string
}

// NewRootCmd 每次返回一棵新的命令树，测试之间互不影响
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "pixelprep",
		Short:         "Prepare generated pixel-art sprites for the app asset catalog",
		Long:          `pixelprep generates pixel-art images, removes their black background and sparkles, crops them to content and copies them into matching imagesets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(cmd.ErrOrStderr(), opts.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML file with background and crop thresholds")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&opts.generated, "generated", defaultGenerated, "Directory with generated images")
	pf.StringVar(&opts.assets, "assets", defaultAssets, "Asset catalog (.xcassets) directory")

	def := pixel.DefaultConfig()
	pf.Int("padding", def.Padding, "Transparent pixels kept around the content when cropping")
	pf.Int("black-threshold", def.BlackThreshold, "max(R,G,B) below this is black background")
	pf.Int("white-threshold", def.WhiteThreshold, "min(R,G,B) above this (with low saturation) is a sparkle")
	pf.Int("sparkle-saturation-max", def.SparkleSaturationMax, "Saturation limit for sparkle detection")

	root.AddCommand(
		newPipelineCmd(opts, "remove-bg", "Make black background and sparkles transparent, then copy to the asset catalog", true, false),
		newPipelineCmd(opts, "crop", "Crop transparent borders, then copy to the asset catalog", false, true),
		newPipelineCmd(opts, "process", "Remove background and crop in one pass, then copy to the asset catalog", true, true),
		newGenerateCmd(),
		newServeCmd(opts),
	)
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// resolveConfig 默认值 <- 配置文件 <- 命令行参数
func resolveConfig(cmd *cobra.Command, opts *rootOptions) (pixel.Config, error) {
	cfg := pixel.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = pixel.LoadConfig(opts.configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	overrides := []struct {
		name string
		dst  *int
	}{
		{"padding", &cfg.Padding},
		{"black-threshold", &cfg.BlackThreshold},
		{"white-threshold", &cfg.WhiteThreshold},
		{"sparkle-saturation-max", &cfg.SparkleSaturationMax},
	}
	for _, o := range overrides {
		if !flags.Changed(o.name) {
			continue
		}
		v, err := flags.GetInt(o.name)
		if err != nil {
			return cfg, errors.Wrapf(err, "flag --%s", o.name)
		}
		*o.dst = v
	}

	return cfg, cfg.Validate()
}

func apiKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("GEMINI_API_KEY")
}
