package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/i2y/pispi/configs"
	"github.com/i2y/pispi/internal/adapter/outbound/telemetry"
	"github.com/i2y/pispi/internal/usecase"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the dependencies shared by every subcommand.
type app struct {
	configFile string
	logLevel   string

	cfg      *configs.Config
	logger   *slog.Logger
	fs       afero.Fs
	recorder usecase.FixRecorder
	shutdown func(context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{fs: afero.NewOsFs()}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "✘ %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pispi",
		Short: "Prepare the PI-SPI OpenAPI description and patch the generated client",
		Long: "pispi normalizes the PI-SPI OpenAPI description before code generation " +
			"and repairs the known defects of the generator output afterwards.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Configuration file (local path or github://owner/repo/path[@ref])")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newNormalizeCmd(a),
		newPatchCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := configs.Load(cmd.Context(), a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	logLevel := cfg.ParsedLogLevel()
	a.logger = slog.New(slog.NewTextHandler(cmd.OutOrStdout(), &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(a.logger)
	a.logger.Debug("Logger initialized.", slog.String("level", logLevel.String()))

	shutdown, err := initOtelProvider(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.shutdown = shutdown

	recorder, err := telemetry.NewRecorder(otel.Meter(telemetry.MeterName))
	if err != nil {
		return err
	}
	a.recorder = recorder
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.shutdown == nil {
		return nil
	}
	if err := a.shutdown(context.Background()); err != nil {
		a.logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pispi version",
		Args:  cobra.NoArgs,
		// Skip config loading and telemetry.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pispi", version)
		},
	}
}
