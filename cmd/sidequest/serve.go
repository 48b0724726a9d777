package main

import (
	"os/signal"
	"syscall"

	"github.com/oscillatelabsllc/sidequest/internal/api"
	"github.com/oscillatelabsllc/sidequest/internal/logging"
	"github.com/oscillatelabsllc/sidequest/internal/mcp"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API with MCP over SSE",
	Long: `Run the HTTP server. REST routes live under /api/v1, Prometheus metrics
on /metrics, the OpenAPI document on /openapi.json and the MCP SSE
transport under /mcp.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (default: server.port)")
	rootCmd.AddCommand(serveCmd, mcpCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	port := cfg.Server.Port
	if servePort != "" {
		port = servePort
	}

	srv := api.NewServer(t, port, cfg.Server.CORSOrigins)
	srv.AddMCPServer(mcp.NewServer(t).GetMCPServer())

	logging.Info().
		Str("backend", cfg.Storage.Backend).
		Str("ledger", cfg.Storage.Path).
		Str("model", cfg.Recommend.ModelPath).
		Msg("Sidequest server starting")

	return srv.Serve(ctx)
}

func runMCP(cmd *cobra.Command, args []string) error {
	t, closeFn, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	logging.Info().
		Str("backend", cfg.Storage.Backend).
		Str("ledger", cfg.Storage.Path).
		Msg("Sidequest MCP server starting on stdio")

	return mcp.NewServer(t).Serve()
}
