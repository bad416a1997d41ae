package main

import (
	"fmt"

	"github.com/aretw0/novapay"
	"github.com/aretw0/novapay/internal/cli"
	"github.com/aretw0/novapay/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve wizard sessions to agents over the Model Context Protocol",
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		app, closeStore, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		srv := mcp.NewServer(app.Sessions, novapay.Version, mcp.WithLogger(logger))
		switch transport {
		case "stdio":
			return srv.ServeStdio()
		case "sse":
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			return srv.ServeSSE(sigCtx, fmt.Sprintf(":%d", port), fmt.Sprintf("http://localhost:%d", port))
		default:
			return fmt.Errorf("unknown transport %q (stdio or sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "stdio or sse")
	mcpCmd.Flags().Int("port", 8081, "port for the sse transport")
}
