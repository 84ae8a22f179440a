package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/recap/internal/config"
	"github.com/teemow/recap/internal/tools/meeting_tools"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start a Model Context Protocol server exposing the recording pipeline
to AI assistants over stdio.

Available tools: zoom_list_recordings, recording_process,
transcript_analyze and job_status. Logs go to stderr so stdout stays
free for the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runMCP(cfg)
		},
	}

	return cmd
}

func runMCP(cfg *config.Config) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := buildApp(shutdownCtx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("recap", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := meeting_tools.RegisterMeetingTools(mcpSrv, a.sc); err != nil {
		return fmt.Errorf("failed to register meeting tools: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
