// Package main provides the CLI entrypoint for clipbox.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/clipbox/internal/app"
	"github.com/jmylchreest/clipbox/internal/clipboard"
	"github.com/jmylchreest/clipbox/internal/config"
	"github.com/jmylchreest/clipbox/internal/store"
	"github.com/jmylchreest/clipbox/internal/undo"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		dataDir    string
		configPath string
	}
	logger *slog.Logger

	// session is the application state shared by every command
	session *app.Session
	kv      *store.FileKV
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "clipbox",
	Short: "Quick phrase manager for the terminal",
	Long: `clipbox keeps a small collection of reusable text snippets
("quick phrases"), each with a category and an optional keyword.

Phrases can be searched, copied to the clipboard, and exported to or
imported from JSON files.

Running clipbox without a subcommand launches the interactive TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogger()

		// Load configuration
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.dataDir != "" {
			cfg.Storage.Dir = globalOpts.dataDir
		}

		if err := cfg.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		kv = store.NewFileKV(cfg.DataDir())
		logger.Debug("using data directory", "path", kv.Dir())

		session = app.NewSession(app.Options{
			KV: kv,
			Clipboard: clipboard.NewSystem(clipboard.Config{
				ReadCommand:  cfg.Clipboard.ReadCommand,
				WriteCommand: cfg.Clipboard.WriteCommand,
				Timeout:      cfg.Clipboard.Timeout.Duration(),
			}),
			Undo: undo.Config{
				Capacity:         cfg.Undo.Capacity,
				Window:           cfg.Undo.Window.Duration(),
				AllowAfterExpiry: cfg.Undo.AllowAfterExpiry,
			},
			PasteType:    cfg.Paste.Type,
			MergeIcons:   cfg.Import.MergeIcons,
			SeedExamples: cfg.SeedExamples,
		})

		return session.Open(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if session != nil {
			return session.Close()
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}

	kind, ok := app.KindOf(err)
	if !ok {
		return 1
	}

	switch kind {
	case app.KindValidation:
		return 2
	case app.KindFormat:
		return 3
	case app.KindPermission, app.KindEnvironment:
		return 4
	case app.KindStorage:
		return 5
	default:
		return 1
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.dataDir, "data-dir", "",
		"Path to data directory (default: ~/.local/share/clipbox)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/clipbox/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
