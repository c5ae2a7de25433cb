package cmd

import (
	"github.com/chaos-io/pixelprep/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr    string
		maxSize int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve single-image preview endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, root)
			if err != nil {
				return err
			}
			if !root.verbose {
				gin.SetMode(gin.ReleaseMode)
			}
			return server.New(server.Options{Config: cfg, MaxSize: maxSize}).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "Longest side limit for /v1/process (0 = keep size)")
	return cmd
}
