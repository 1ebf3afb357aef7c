// Package mcp exposes the team mailboxes and routing table over the Model
// Context Protocol.
package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
	"github.com/Bizzy211/aes-bizzy/internal/core/mailbox"
	"github.com/Bizzy211/aes-bizzy/internal/core/routing"
)

// Transports accepted by Start.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// HTTPConfig configures the SSE transport.
type HTTPConfig struct {
	Addr string
	// Token, when set, is required as a bearer token on every request.
	Token string
}

// Server serves mailbox and routing tools.
type Server struct {
	mcpServer *server.MCPServer
	mailbox   *mailbox.Manager
	routes    *routing.Table
	logger    logger.Logger
	version   string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a server over mb and routes.
func NewServer(mb *mailbox.Manager, routes *routing.Table, opts ...Option) (*Server, error) {
	s := &Server{
		mailbox: mb,
		routes:  routes,
		logger:  logger.Nop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.routes == nil {
		s.routes = routing.DefaultTable()
	}

	s.mcpServer = server.NewMCPServer(
		"bizzy-hooks",
		s.version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithLogging(),
	)

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	s.registerResources()
	s.registerPrompts()
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start serves until the transport closes or ctx is cancelled.
func (s *Server) Start(ctx context.Context, transport string, httpConfig *HTTPConfig) error {
	switch transport {
	case "", TransportStdio:
		s.logger.Info("serving MCP over stdio")
		return server.ServeStdio(s.mcpServer)
	case TransportHTTP:
		return s.startHTTPServer(ctx, httpConfig)
	default:
		return fmt.Errorf("unsupported transport: %s", transport)
	}
}

func (s *Server) startHTTPServer(ctx context.Context, cfg *HTTPConfig) error {
	if cfg == nil || cfg.Addr == "" {
		return fmt.Errorf("HTTP transport requires an address")
	}

	sseServer := server.NewSSEServer(s.mcpServer)
	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           corsMiddleware(authMiddleware(cfg.Token, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("failed to shut down MCP server", "error", err)
		}
	}()

	s.logger.Info("serving MCP over SSE", "addr", cfg.Addr, "sse", "/sse", "message", "/message")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func authMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	want := []byte("Bearer " + token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
