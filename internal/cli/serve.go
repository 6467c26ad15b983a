package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orienthq/orient/internal/config"
	"github.com/orienthq/orient/internal/logger"
	"github.com/orienthq/orient/internal/metrics"
	"github.com/orienthq/orient/internal/scheduler"
	"github.com/orienthq/orient/internal/store/sqlite"
	"github.com/orienthq/orient/pkg/core"
	"github.com/orienthq/orient/pkg/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Orient daemon",
	Long: `Run the Orient daemon in the foreground: open the local database,
start the scheduler and the gateway control server, and serve until
interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()
	log := appLogger.Zerolog()

	log.Info().Str("version", version).Msg("Starting Orient")

	store, err := sqlite.New(cfg.Storage.Path, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	m := metrics.New()

	// Schedule firings are logged; channel adapters subscribe to the
	// scheduler when a messaging transport is connected.
	sched := scheduler.New(func(id string) func() {
		return func() {
			log.Info().Str("scheduleId", id).Msg("Schedule fired")
		}
	}, log)

	orientCore, err := core.New(core.Config{
		AdminChatID:        cfg.Admin.ChatID,
		RecordStore:        store,
		Prompts:            store,
		Secrets:            store,
		Agents:             store,
		Schedules:          store,
		Scheduler:          sched,
		ToolAllow:          cfg.Tools.Allow,
		ToolDeny:           cfg.Tools.Deny,
		PermissionCacheTTL: time.Duration(cfg.Permissions.CacheTTLSeconds) * time.Second,
		ActionTTL:          time.Duration(cfg.Pending.TTLSeconds) * time.Second,
		SweepInterval:      time.Duration(cfg.Pending.SweepSeconds) * time.Second,
		Logger:             log,
		Metrics:            m,
	})
	if err != nil {
		return fmt.Errorf("failed to build core: %w", err)
	}

	// Register persisted schedules before the cron runner starts.
	schedules, err := store.ListSchedules(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}
	for _, schedule := range schedules {
		if err := sched.Apply(schedule.ID, schedule.Cron); err != nil {
			log.Warn().Err(err).Str("scheduleId", schedule.ID).Msg("Skipping invalid persisted schedule")
		}
	}

	token := cfg.Gateway.Token
	if token == "" {
		return fmt.Errorf("gateway token is required; set gateway.token in the config")
	}

	server, err := gateway.NewServer(gateway.Config{
		Host:    cfg.Gateway.Host,
		Port:    cfg.Gateway.Port,
		Token:   token,
		Core:    orientCore,
		Metrics: m,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("failed to build gateway: %w", err)
	}

	// Config edits on disk invalidate cached permission records so an
	// externally edited allow-list takes effect without a restart.
	watcher, err := config.NewWatcher(config.NewLoader(cfgFile), func(updated *config.Config) {
		orientCore.Permissions().ClearCache()
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("Config watching disabled")
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	orientCore.Start()
	defer orientCore.Stop()
	sched.Start()
	defer sched.Stop()
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	pidFile := pidFilePath()
	if err := writePIDFile(pidFile); err != nil {
		log.Warn().Err(err).Msg("Failed to write PID file")
	} else {
		defer os.Remove(pidFile)
	}

	log.Info().
		Str("gateway", fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port)).
		Int("schedules", sched.Len()).
		Msg("Orient is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	if err := server.Stop(); err != nil {
		log.Error().Err(err).Msg("Gateway shutdown error")
	}
	return nil
}

func pidFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/orient.pid"
	}
	return filepath.Join(home, ".orient", "orient.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

func isRunning(pidFile string) bool {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return false
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds; signal 0 probes liveness.
	return process.Signal(syscall.Signal(0)) == nil
}
