// Command netsim drives a topology to quiescence and reports the result.
// Subcommand dispatch mirrors the teacher's cmd/rib-ingester/main.go:
// os.Args[1] switch, small parseFlags/loadConfig/initLogger helpers.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/routesim/netsim/internal/config"
	"github.com/routesim/netsim/internal/controller"
	"github.com/routesim/netsim/internal/db"
	"github.com/routesim/netsim/internal/httpapi"
	"github.com/routesim/netsim/internal/logging"
	"github.com/routesim/netsim/internal/maintenance"
	"github.com/routesim/netsim/internal/metrics"
	"github.com/routesim/netsim/internal/render"
	"github.com/routesim/netsim/internal/snapshot"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runRun()
	case "migrate":
		runMigrate()
	case "maintenance":
		runMaintenance()
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: netsim <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run           Load a topology and run it to completion")
	fmt.Println("  migrate       Run database migrations for the snapshot store")
	fmt.Println("  maintenance   Run partition maintenance (create new, drop old)")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>   Path to service configuration YAML file")
	fmt.Println("  --topology <path> Path to topology YAML file (run only)")
	fmt.Println("  --log-level <lvl> Override log level (debug, info, warn, error)")
}

func parseFlags(args []string) (configPath, topologyPath, logLevel string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		case "--topology":
			if i+1 < len(args) {
				topologyPath = args[i+1]
				i++
			}
		case "--log-level":
			if i+1 < len(args) {
				logLevel = args[i+1]
				i++
			}
		}
	}
	return
}

func loadConfig(args []string) (*config.Config, string, *zap.Logger) {
	configPath, topologyPath, logLevelOverride := parseFlags(args)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if logLevelOverride != "" {
		cfg.Service.LogLevel = logLevelOverride
	}

	logger := initLogger(cfg.Service.LogLevel)
	return cfg, topologyPath, logger
}

func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zap.DebugLevel
	case "warn":
		zapLevel = zap.WarnLevel
	case "error":
		zapLevel = zap.ErrorLevel
	default:
		zapLevel = zap.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func migrationsDir() string {
	return "migrations"
}

// runStatus implements httpapi.RunStatus for the HTTP server's /readyz.
type runStatus struct {
	done atomic.Bool
}

func (r *runStatus) Done() bool { return r.done.Load() }

func runRun() {
	cfg, topologyPath, logger := loadConfig(os.Args[2:])
	defer logger.Sync()

	if topologyPath == "" {
		logger.Fatal("--topology is required")
	}

	metrics.Register()

	topo, err := config.LoadTopology(topologyPath)
	if err != nil {
		logger.Fatal("failed to load topology", zap.Error(err))
	}

	status := &runStatus{}
	httpServer := httpapi.NewServer(cfg.Service.HTTPListen, nil, status, logger.Named("http"))
	if err := httpServer.Start(); err != nil {
		logger.Fatal("failed to start HTTP server", zap.Error(err))
	}

	simLogger := logger.Named("sim")
	if cfg.Kafka.Enabled {
		tlsCfg, err := cfg.Kafka.BuildTLSConfig()
		if err != nil {
			logger.Fatal("failed to build kafka TLS config", zap.Error(err))
		}
		kafkaSink, err := logging.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ClientID,
			tlsCfg, cfg.Kafka.BuildSASLMechanism(), logger.Named("kafka.sink"))
		if err != nil {
			logger.Fatal("failed to create kafka sink", zap.Error(err))
		}
		defer kafkaSink.Close()

		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "ts"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewTee(simLogger.Core(), kafkaSink.Core(zapcore.NewJSONEncoder(encCfg), zap.InfoLevel))
		simLogger = zap.New(core)
	}

	sink := logging.NewSink(simLogger, topo.LogCategories)
	ctrl := controller.New(topo, sink)

	ctx := context.Background()
	result, err := ctrl.Run(ctx)
	status.done.Store(true)
	if err != nil {
		logger.Fatal("simulation run failed", zap.Error(err))
	}

	if topo.PrintRoutingTables {
		render.RoutingTables(os.Stdout, result)
	}
	if topo.PrintBGPTables {
		render.BGPTables(os.Stdout, result)
	}
	render.PingOutcomes(os.Stdout, result)

	if topo.DotGraphFile != "" {
		f, err := os.Create(topo.DotGraphFile)
		if err != nil {
			logger.Error("failed to write dot graph file", zap.Error(err))
		} else {
			render.WriteDot(f, topo)
			f.Close()
		}
	}

	if cfg.Postgres.Enabled {
		pool, err := db.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
		if err != nil {
			logger.Error("failed to connect to snapshot store", zap.Error(err))
		} else {
			defer pool.Close()
			w := snapshot.NewWriter(pool, logger.Named("snapshot"))
			if _, err := w.WriteResult(ctx, result); err != nil {
				logger.Error("failed to persist run snapshot", zap.Error(err))
			}
		}
	}
}

func runMigrate() {
	cfg, _, logger := loadConfig(os.Args[2:])
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrationsDir(), logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	logger.Info("migrations complete")
}

func runMaintenance() {
	cfg, _, logger := loadConfig(os.Args[2:])
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	pm := maintenance.NewPartitionManager(pool, cfg.Retention.Days, cfg.Retention.Timezone, logger)
	if err := pm.Run(ctx); err != nil {
		logger.Fatal("maintenance failed", zap.Error(err))
	}

	logger.Info("partition maintenance complete")
}
