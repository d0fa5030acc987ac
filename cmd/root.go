package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a handled error (missing input, provider
	// error, timeout). Every failure maps here; there are no retryable
	// outcomes.
	ExitCodeError = 1
)

// Persistent flags shared by all subcommands.
var (
	envFile    string
	configFile string
	verbose    bool
)

// rootCmd represents the base command for the connectkit application.
var rootCmd = &cobra.Command{
	Use:   "connectkit",
	Short: "Command-line connectors for third-party content APIs",
	Long: `connectkit wraps the third-party REST APIs used by the content
pipeline. The primary connector drives the LinkedIn OAuth authorization
code flow (flow, url, exchange, refresh, status, scopes); the generate
command drives Replicate image generation.

Credentials are read from a flat KEY=VALUE environment file (default
.env). Commands that obtain new tokens print the lines to add to that
file; nothing is written back automatically.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application. It runs the
// root command and translates any returned error into the process exit
// status; this is the single place where errors become exit codes.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "connectkit version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to the KEY=VALUE credentials file (default .env)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to an optional YAML config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
}
