package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/canvasstrack/voterroll/internal/app"
	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/clock"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/rolldb"
)

const envDBDSN = "VOTERROLL_DB_DSN"

type rootOptions struct {
	configPath string
	env        string
	dbDriver   string
	dbDSN      string
	fontPath   string
	bcryptCost int
}

// NewRootCmd builds the rollctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rollctl",
		Short: "Administer a voterroll database",
		Long: `rollctl works directly on the roll database: it imports electoral rolls,
creates accounts, runs searches and exports the progress report without
going through the HTTP API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "JSON or YAML config file (overrides the database flags)")
	flags.StringVar(&opts.env, "env", "development", "Environment (development|test|production)")
	flags.StringVar(&opts.dbDriver, "db-driver", "sqlite", "Database driver (sqlite|sqlite3|mysql|pgx)")
	flags.StringVar(&opts.dbDSN, "db-dsn", "./voters.db", "Database file path or connection string")
	flags.StringVar(&opts.fontPath, "font", "", "TTF font with Devanagari glyphs for PDF reports")
	flags.IntVar(&opts.bcryptCost, "bcrypt-cost", 0, "bcrypt cost for new passwords (0 selects the default)")
	_ = flags.MarkHidden("bcrypt-cost")

	cmd.AddCommand(newImportVotersCmd(opts))
	cmd.AddCommand(newAddUserCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newExportPDFCmd(opts))

	return cmd
}

// openApp wires the same services the API server uses. Diagnostics go to
// stderr so command output stays machine readable.
func (o *rootOptions) openApp(cmd *cobra.Command) (*app.Application, error) {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg := appconf.Config{
		Env:        appconf.EnvFlagToEnvironment(o.env),
		FontPath:   o.fontPath,
		BcryptCost: o.bcryptCost,
	}
	dbCfg := rolldb.NewConfig(o.dbDriver, o.dbDSN, cfg.Env, false)
	tuning := search.DefaultTuning()

	if o.configPath != "" {
		jsonCfg, err := appconf.LoadFromFile(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = jsonCfg.ToAppConfig()
		cfg.BcryptCost = o.bcryptCost
		if o.fontPath != "" {
			cfg.FontPath = o.fontPath
		}
		dbCfg = app.DBConfig(jsonCfg)
		tuning = app.SearchTuning(jsonCfg)
	}
	if dsn := strings.TrimSpace(os.Getenv(envDBDSN)); dsn != "" && !cmd.Flags().Changed("db-dsn") {
		dbCfg.DSN = dsn
	}

	// rollctl never issues tokens
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
	}

	return app.New(cfg, dbCfg, tuning, clock.RealClock{}, logger)
}
