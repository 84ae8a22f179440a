package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/recap/internal/config"
	"github.com/teemow/recap/internal/logging"
)

// rootCmd represents the base command for the recap application
var rootCmd = &cobra.Command{
	Use:   "recap",
	Short: "Archives and analyzes Zoom class recordings",
	Long: `recap turns Zoom cloud recordings into analysis documents and archives
them to Google Drive.

When a recording finishes, recap downloads its transcript, generates
analysis documents with Claude under a token-per-minute budget, uploads
everything to a per-session Drive folder and records the insight links
in a report spreadsheet.

It can run as:
  - A webhook server reacting to Zoom recording.completed events (serve)
  - A one-shot CLI for a single meeting or transcript file (process)
  - A batch processor for a date range of recordings (backfill)
  - An MCP (Model Context Protocol) server for AI assistants (mcp)`,
	SilenceUsage: true,
}

var cfgFile string

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "recap version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the config file (default: recap.yaml, or RECAP_CONFIG env var)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newBackfillCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("recap version %s\n", version)
		},
	}
}

// loadConfig reads, validates and applies the configuration, including
// the global logger.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("RECAP_CONFIG")
	}
	if path == "" {
		path = "recap.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	return cfg, nil
}
