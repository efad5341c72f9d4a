package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/cidstore"
	"github.com/cideldill/cideldill/internal/httpapi"
	"github.com/cideldill/cideldill/internal/logger"
	"github.com/cideldill/cideldill/internal/portdiscovery"
	"github.com/cideldill/cideldill/internal/telemetry"
	"github.com/cideldill/cideldill/pkg/config"
	"github.com/cideldill/cideldill/pkg/metrics"
)

var memoryStore bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the cideldilld control plane",
	Long: `Start the control plane: the breakpoint manager, the CID object
store, and the HTTP server debuggee proxies and operators talk to.

Examples:
  cideldilld start
  cideldilld start --config /etc/cideldilld/config.yaml
  cideldilld start --memory-store

  # Override configuration with environment variables
  CIDELDILL_LOGGING_LEVEL=DEBUG cideldilld start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&memoryStore, "memory-store", false, "Use an in-memory CID store instead of the configured path (discarded on exit)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "cideldilld",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "cideldilld",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("starting cideldilld", "version", Version, "commit", Commit)
	logger.Info("log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("profiling disabled")
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open CID store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("CID store close error", "error", err)
		}
	}()
	logger.Info("CID store opened", "path", cfg.CIDStore.Path, "in_memory", memoryStore)

	manager := breakpoint.New()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", "path", "/metrics")
		go pollCIDStoreStats(ctx, store)
	} else {
		logger.Info("metrics disabled")
	}

	server := httpapi.NewServer(cfg.ControlPlane, manager, store)

	if err := portdiscovery.WritePort(cfg.ControlPlane.Port); err != nil {
		logger.Warn("failed to write port discovery file", "error", err)
	} else {
		defer func() {
			if err := portdiscovery.RemovePort(); err != nil {
				logger.Warn("failed to remove port discovery file", "error", err)
			}
		}()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("control plane is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", "error", err)
			return err
		}
		logger.Info("server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		logger.Info("server stopped")
	}

	return nil
}

// pollCIDStoreStats refreshes the CID store size gauges every few
// seconds until ctx is cancelled.
func pollCIDStoreStats(ctx context.Context, store *cidstore.Store) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		if stats, err := store.Stats(ctx); err == nil {
			metrics.SetCIDStoreStats(stats.Count, stats.TotalSizeBytes)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func openStore(cfg *config.Config) (*cidstore.Store, error) {
	if memoryStore {
		return cidstore.OpenMemory()
	}
	return cidstore.Open(cfg.CIDStore.Path)
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
