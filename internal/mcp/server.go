// Package mcp exposes the browser tool surface over the Model Context
// Protocol, on stdio or an SSE endpoint.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nextlevelbuilder/pagepilot/internal/config"
	"github.com/nextlevelbuilder/pagepilot/internal/session"
	"github.com/nextlevelbuilder/pagepilot/internal/tools"
)

// Server wires the tool registry into an MCP server and keeps the
// registration in sync with the capability allowlist.
type Server struct {
	srv    *server.MCPServer
	runner *tools.Runner
	logger *slog.Logger

	mu         sync.Mutex
	registered []string
}

func New(name, version string, cfg *config.Config, sess *session.Session, logger *slog.Logger) *Server {
	srv := server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	s := &Server{
		srv:    srv,
		runner: tools.NewRunner(sess, cfg, logger),
		logger: logger,
	}
	s.applyAllowlist(cfg)
	return s
}

// applyAllowlist replaces the registered tool set with the tools the
// config allows.
func (s *Server) applyAllowlist(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.registered) > 0 {
		s.srv.DeleteTools(s.registered...)
		s.registered = nil
	}

	for _, tool := range tools.All() {
		name := tool.Def.Name
		if !cfg.ToolAllowed(name) {
			s.logger.Debug("tool not allowed", "tool", name)
			continue
		}
		s.srv.AddTool(tool.Def, s.runner.Handle(tool))
		s.registered = append(s.registered, name)
	}
	s.logger.Info("tools registered", "count", len(s.registered))
}

// Reload re-applies tool registration after a config change. Browser
// and output settings take effect on the next browser launch, not
// retroactively.
func (s *Server) Reload(cfg *config.Config) {
	s.applyAllowlist(cfg)
}

// ServeStdio runs the server over stdin/stdout until the client
// disconnects or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ServeStdio(s.srv)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// ServeSSE runs the server on an HTTP SSE endpoint.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	sse := server.NewSSEServer(s.srv)
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("serving MCP over SSE", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case <-ctx.Done():
		return sse.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
