package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server exposing the team mailboxes and the
routing table.

Tools: mailbox_send, mailbox_peek, mailbox_drain, route_file, list_agents.
Resources: bizzy://agents, bizzy://routes.
Prompts: agent-briefing, change-review.

The stdio transport keeps stdout for the protocol; diagnostics go to stderr.`,
	Example: `  # For an assistant's MCP configuration
  bizzy-hooks serve

  # SSE over HTTP with a bearer token
  bizzy-hooks serve --transport http --addr 127.0.0.1:8765 --auth-token secret`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveTransport string
	serveAddr      string
	serveAuthToken string
)

func init() {
	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", mcp.TransportStdio, "Transport type (stdio, http)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8765", "Listen address for the http transport")
	serveCmd.Flags().StringVar(&serveAuthToken, "auth-token", "", "Bearer token required by the http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(p.mailbox, p.routes,
		mcp.WithLogger(p.logger),
		mcp.WithVersion(Version),
	)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var httpConfig *mcp.HTTPConfig
	if serveTransport == mcp.TransportHTTP {
		httpConfig = &mcp.HTTPConfig{Addr: serveAddr, Token: serveAuthToken}
	}

	p.logger.Info("starting MCP server", "transport", serveTransport, "root", p.root())
	if err := server.Start(ctx, serveTransport, httpConfig); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
