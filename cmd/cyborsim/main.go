// Command cyborsim plays the campaign headless with a scripted pilot and
// records the after-action telemetry.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cyborstrike/combatcore/internal/api"
	"github.com/cyborstrike/combatcore/internal/config"
	"github.com/cyborstrike/combatcore/internal/dispatcher"
	"github.com/cyborstrike/combatcore/internal/encounter"
	"github.com/cyborstrike/combatcore/internal/geo"
	"github.com/cyborstrike/combatcore/internal/influx"
	"github.com/cyborstrike/combatcore/internal/logging"
	"github.com/cyborstrike/combatcore/internal/mission"
	"github.com/cyborstrike/combatcore/internal/monitor"
	intOtel "github.com/cyborstrike/combatcore/internal/otel"
	"github.com/cyborstrike/combatcore/internal/sim"
	"github.com/cyborstrike/combatcore/internal/storage"
	pgstorage "github.com/cyborstrike/combatcore/internal/storage/postgres"
	"github.com/cyborstrike/combatcore/internal/worker"
)

// BuildDate can be set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"

	AppName = "cyborsim"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "cyborsim:", err)
		os.Exit(1)
	}
}

// newFlagSet declares the command line. Every flag but config-dir is bound
// into viper, so it overrides the config file when given.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.String("config-dir", ".", "directory holding "+config.FileName)
	fs.Int64("seed", 1, "random seed of the campaign")
	fs.Float64("tick-rate", 60, "ticks per simulated second")
	fs.Int("max-ticks", 60*60*15, "stop after this many ticks (0 = no limit)")
	fs.Int("missions", 0, "stop after this many finished attempts (0 = whole campaign)")
	fs.Int("friendly-bots", 0, "bots fighting on the player's team")
	fs.Bool("tactical", false, "enable tactical mode from the first tick")
	fs.Bool("realtime", false, "pace ticks to the wall clock")
	fs.String("anchor", "", `"lon,lat" geo anchor used for every map`)
	fs.String("storage", "memory", "storage backend: memory, sqlite or postgres")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	return fs
}

var flagKeys = map[string]string{
	"seed":          "sim.seed",
	"tick-rate":     "sim.tickRate",
	"max-ticks":     "sim.maxTicks",
	"missions":      "sim.missions",
	"friendly-bots": "sim.friendlyBots",
	"tactical":      "sim.tactical",
	"realtime":      "sim.realtime",
	"anchor":        "sim.anchor",
	"storage":       "storage.type",
	"log-level":     "logLevel",
}

func loadConfig(args []string) error {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	configDir, _ := fs.GetString("config-dir")
	if err := config.Load(configDir); err != nil {
		return err
	}
	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// encounterConfig applies the sim settings to the default campaign.
func encounterConfig(simCfg config.SimConfig) (encounter.Config, error) {
	cfg := encounter.DefaultConfig()
	cfg.FriendlyBots = simCfg.FriendlyBots
	cfg.SnapshotEvery = simCfg.SnapshotEvery
	if simCfg.Anchor == "" {
		return cfg, nil
	}

	anchor, err := geo.AnchorFromString(simCfg.Anchor)
	if err != nil {
		return cfg, fmt.Errorf("invalid sim.anchor: %w", err)
	}
	cfg.Missions = slices.Clone(cfg.Missions)
	for i := range cfg.Missions {
		cfg.Missions[i].Anchor = anchor
	}
	return cfg, nil
}

func run(args []string) error {
	if err := loadConfig(args); err != nil {
		return err
	}

	sessionStart := time.Now()
	sessionID := uuid.NewString()
	logsDir := viper.GetString("logsDir")
	logLevel := viper.GetString("logLevel")
	simCfg := config.GetSimConfig()

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, AppName, sessionStart))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// OTel
	otelCfg := config.GetOTelConfig()
	var otelWriter io.Writer
	if otelCfg.Enabled {
		f, err := os.Create(logging.LogFilePath(logsDir, AppName+".otel", sessionStart))
		if err != nil {
			return fmt.Errorf("failed to create OTel log file: %w", err)
		}
		defer f.Close()
		otelWriter = f
	}
	otelProvider, err := intOtel.New(ctx, otelCfg, otelWriter)
	if err != nil {
		return fmt.Errorf("failed to set up OTel: %w", err)
	}
	defer otelProvider.Shutdown(context.Background())

	// Logging
	missionCtx := mission.NewContext()
	logOpts := logging.Options{
		Level:    logLevel,
		File:     logFile,
		Provider: otelProvider.LoggerProvider(),
		Context:  missionCtx.Attrs,
	}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGelfWriter(gl.Address)
		if err != nil {
			return err
		}
		defer w.Close()
		logOpts.Gelf = w
	}
	slogManager := logging.NewSlogManager()
	slogManager.Setup(logOpts)
	logger := slogManager.Logger()
	logger.Info("Starting up", "version", Version, "buildDate", BuildDate, "session", sessionID, "seed", simCfg.Seed)

	// Dispatcher
	d, err := dispatcher.New(logging.NewDispatcherLogger(logging.NewZerolog(logFile, logLevel, "dispatcher")))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	// Campaign
	encCfg, err := encounterConfig(simCfg)
	if err != nil {
		return err
	}
	coord, err := encounter.New(encCfg,
		encounter.WithSeed(simCfg.Seed),
		encounter.WithLogger(logger),
		encounter.WithRecorder(worker.NewRecorder(d, logger)),
		encounter.WithSessionID(sessionID),
	)
	if err != nil {
		return fmt.Errorf("failed to create coordinator: %w", err)
	}

	// Storage
	storageCfg := config.GetStorageConfig()
	dbCfg := config.GetDBConfig()
	backend, err := createStorageBackend(storageCfg, dbCfg, logger)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}

	workerDeps := worker.Dependencies{
		Logger:         logger,
		MissionContext: missionCtx,
	}
	if apiCfg := config.GetAPIConfig(); apiCfg.ServerURL != "" {
		client := api.New(apiCfg.ServerURL, apiCfg.APIKey, apiCfg.Tag, apiCfg.Timeout)
		if err := client.Healthcheck(ctx); err != nil {
			logger.Warn("Report server unreachable, uploads will likely fail", "url", apiCfg.ServerURL, "error", err)
		}
		workerDeps.Uploader = client
	}
	workerManager := worker.NewManager(workerDeps, backend)
	workerManager.RegisterHandlers(d)

	// Monitor
	monDeps := monitor.Dependencies{
		DB:             dbOf(backend),
		Logger:         logger,
		MissionContext: missionCtx,
		WorkerManager:  workerManager,
		StatusDir:      logsDir,
		Interval:       simCfg.StatusInterval,
	}
	if q, ok := backend.(storage.Monitorable); ok {
		monDeps.Queues = q
	}
	mon := monitor.NewService(monDeps)
	if _, isPG := backend.(*pgstorage.Backend); isPG && dbCfg.Timescale {
		if err := mon.ValidateHypertables(monitor.Hypertables); err != nil {
			logger.Warn("Failed to validate hypertables", "error", err)
		}
	}
	if err := mon.Start(); err != nil {
		logger.Warn("Status monitor not started", "error", err)
	}

	// InfluxDB
	var influxManager *influx.Manager
	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		influxManager = influx.NewManager(logging.NewZerolog(logFile, logLevel, "influx"), influxCfg)
		if err := influxManager.Connect(ctx); err != nil {
			logger.Warn("InfluxDB unavailable", "error", err)
			influxManager = nil
		}
	}

	simOpts := []sim.Option{
		sim.WithLogger(logger),
		sim.WithMonitor(mon),
		sim.WithWorker(workerManager),
	}
	if influxManager != nil {
		simOpts = append(simOpts, sim.WithInflux(influxManager))
	}

	report, runErr := sim.New(coord, simCfg, simOpts...).Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		logger.Info("Interrupted", "ticks", report.Ticks)
		runErr = nil
	}

	// Shutdown: stop producers first, then drain writers.
	mon.Stop()
	d.Close()
	workerManager.Wait()
	if err := backend.Close(); err != nil {
		logger.Error("Failed to close storage backend", "error", err)
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			logger.Error("Failed to close InfluxDB manager", "error", err)
		}
	}
	if err := slogManager.Flush(context.Background()); err != nil {
		logger.Error("Failed to flush logs", "error", err)
	}

	fmt.Print(report.String())
	printStorageSummary(os.Stdout, backend, sessionID, logger)
	return runErr
}

func printStorageSummary(w io.Writer, backend storage.Backend, sessionID string, logger *slog.Logger) {
	if e, ok := backend.(storage.Exporter); ok && e.GetExportedFilePath() != "" {
		fmt.Fprintf(w, "Report: %s\n", e.GetExportedFilePath())
	}
	if h, ok := backend.(storage.History); ok {
		results, err := h.Results(sessionID)
		if err != nil {
			logger.Warn("Failed to read stored results", "error", err)
			return
		}
		fmt.Fprintf(w, "Stored attempts: %d\n", len(results))
	}
}

