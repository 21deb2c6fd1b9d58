package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/canvasstrack/voterroll/internal/app"
	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/rolldb"
)

func main() {
	var cfg appconf.Config
	var configPath, envFlag, dbDriver, dbDSN string
	var tokenTTLMinutes, maxOpenConns int

	// Parse command-line flags
	flag.StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (overrides the other flags)")
	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&envFlag, "env", "development", "Environment (development|test|production)")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per client for rate limiting")
	flag.IntVar(&tokenTTLMinutes, "token-ttl", int(appconf.DefaultTokenTTL/time.Minute), "Session token lifetime in minutes")
	flag.StringVar(&dbDriver, "db-driver", "sqlite", "Database driver (sqlite|sqlite3|mysql|pgx)")
	flag.StringVar(&dbDSN, "db-dsn", "./voters.db", "Database file path or connection string")
	flag.IntVar(&maxOpenConns, "db-max-conns", rolldb.DefaultMaxOpenConns, "Maximum open database connections")
	flag.StringVar(&cfg.IndexPath, "index", "./index.html", "Path to the web UI entry page")
	flag.StringVar(&cfg.FontPath, "font", "", "TTF font with Devanagari glyphs for PDF reports")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// A missing .env file is normal outside development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	var dbCfg rolldb.Config
	tuning := search.DefaultTuning()

	if configPath != "" {
		jsonCfg, err := appconf.LoadFromFile(configPath)
		if err != nil {
			logger.Error("failed to load config file", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = jsonCfg.ToAppConfig()
		dbCfg = app.DBConfig(jsonCfg)
		tuning = app.SearchTuning(jsonCfg)
	} else {
		cfg.Verbose = true
		cfg.Env = appconf.EnvFlagToEnvironment(envFlag)
		cfg.TokenTTL = time.Duration(tokenTTLMinutes) * time.Minute
		dbCfg = rolldb.NewConfig(dbDriver, dbDSN, cfg.Env, true)
		dbCfg.MaxOpenConns = maxOpenConns
	}

	ApplyEnvOverrides(&cfg, &dbCfg, os.Getenv)

	// Build application with dependencies
	coreApp, err := BuildApplication(cfg, dbCfg, tuning)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	// Create HTTP server
	srv, api := CreateServer(coreApp, cfg)

	// Run server with graceful shutdown
	if err := Run(srv, api, coreApp.Logger); err != nil {
		coreApp.Logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
