package cmd

import (
	"fmt"
	"strings"

	"github.com/chaos-io/pixelprep/gemini"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	output  string
	model   string
	raw     bool
	apiKey  string
	baseURL string
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a pixel-art image with Gemini",
		Long:  "Generate a pixel-art image with Gemini. The style prefix is added to the prompt unless --raw is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := apiKey(opts.apiKey)
			if key == "" {
				return errors.New("GEMINI_API_KEY is not set (or pass --api-key)")
			}

			c := gemini.NewClient(key, gemini.WithBaseURL(opts.baseURL))
			path, err := c.GenerateToFile(cmd.Context(), gemini.Request{
				Prompt: args[0],
				Model:  opts.model,
				Raw:    opts.raw,
			}, opts.output)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output file path (default generated/<id>.png)")
	f.StringVarP(&opts.model, "model", "m", gemini.DefaultModel,
		fmt.Sprintf("Model: %s", strings.Join(gemini.ModelNames(), ", ")))
	f.BoolVar(&opts.raw, "raw", false, "Skip the style prefix and use the prompt as-is")
	f.StringVar(&opts.apiKey, "api-key", "", "Gemini API key (default $GEMINI_API_KEY)")
	f.StringVar(&opts.baseURL, "base-url", gemini.DefaultBaseURL, "Gemini API base URL")
	_ = f.MarkHidden("base-url")
	return cmd
}
