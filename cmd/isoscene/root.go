package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/isoscene/internal/config"
	"github.com/aretw0/isoscene/internal/logging"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/aretw0/isoscene/pkg/observability"
	"github.com/aretw0/isoscene/pkg/state"
	"github.com/aretw0/isoscene/pkg/workspace"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "isoscene",
	Short: "isoscene is a headless isometric scene editor",
	Long: `isoscene keeps isometric scenes (layers, objects, camera and an undo log) in a
persistent state tree, and exposes them over HTTP, MCP and this command line.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringP("workspace", "w", "default", "Workspace to operate on")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
}

// app is the wiring shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	backend *config.Backend
	metrics *observability.Metrics
	mgr     *workspace.Manager
}

// setup loads the config, applies command-specific overrides and wires the manager.
func setup(cmd *cobra.Command, overrides ...func(*config.Config)) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	backend, err := config.OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, backend: backend}
	if cfg.Metrics {
		a.metrics = observability.NewMetrics()
	}

	opts := []workspace.Option{
		workspace.WithLogger(logger),
		workspace.WithStateHooks(a.hooks),
	}
	if cfg.HistorySize > 0 {
		opts = append(opts, workspace.WithEditorOptions(
			editor.WithStateOptions(state.WithMaxHistorySize(cfg.HistorySize)),
		))
	}
	if backend.Locker != nil {
		opts = append(opts, workspace.WithLocker(backend.Locker))
	}
	if cfg.LockTTL > 0 {
		opts = append(opts, workspace.WithLockTTL(cfg.LockTTL))
	}
	a.mgr = workspace.NewManager(backend.Store, opts...)
	return a, nil
}

func (a *app) hooks(id string) domain.StateHooks {
	logged := observability.LoggingHooks(a.logger.With("workspace", id))
	if a.metrics == nil {
		return logged
	}
	return observability.CombineHooks(a.metrics.Hooks(id), logged)
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("Closing backend failed", "err", err)
	}
}

// withEditor runs fn against the workspace selected by --workspace.
func withEditor(cmd *cobra.Command, fn func(ctx context.Context, e *editor.Editor) error) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	id, _ := cmd.Flags().GetString("workspace")
	return a.mgr.WithLock(cmd.Context(), id, fn)
}
