// Package app holds the dependencies shared by the HTTP layer, the web UI
// and the command line tools.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/auth"
	"github.com/canvasstrack/voterroll/internal/canvass"
	"github.com/canvasstrack/voterroll/internal/clock"
	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/metrics"
	"github.com/canvasstrack/voterroll/internal/report"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/internal/translit"
	"github.com/canvasstrack/voterroll/rolldb"
)

// ErrMissingToken is returned when a request carries no bearer token.
var ErrMissingToken = errors.New("missing bearer token")

type Application struct {
	Config   appconf.Config
	Logger   *slog.Logger
	Clock    clock.Clock
	DB       *rolldb.Client
	Searcher *search.Searcher
	Canvass  *canvass.Service
	Auth     *auth.Service
	Reports  *report.Renderer
	Metrics  *metrics.Metrics
}

// New opens the roll database and wires every service on top of it. The
// caller owns the returned Application and must Close it.
func New(cfg appconf.Config, dbCfg rolldb.Config, tuning search.Tuning, c clock.Clock, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = clock.RealClock{}
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = appconf.DefaultTokenTTL
	}

	db, err := rolldb.NewClient(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open roll database: %w", err)
	}

	searcher := search.NewSearcher(search.ClientSource{Client: db}, translit.NewExpander(logger), tuning)

	authService, err := auth.NewService(db, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, c), cfg.BcryptCost, c, logger)
	if err != nil {
		logging.SafeCloseWithLogging(db, logger, "roll database")
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	return &Application{
		Config:   cfg,
		Logger:   logger,
		Clock:    c,
		DB:       db,
		Searcher: searcher,
		Canvass:  canvass.NewService(db, searcher, c, logger),
		Auth:     authService,
		Reports:  report.NewRenderer(cfg.FontPath, logger),
		Metrics:  metrics.New(db.InUseConnections),
	}, nil
}

// Authenticate verifies the bearer token in an Authorization header value.
func (app *Application) Authenticate(header string) (auth.Identity, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return auth.Identity{}, ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Identity{}, ErrMissingToken
	}
	return app.Auth.Tokens().Verify(token)
}

// Close releases the database pool.
func (app *Application) Close() error {
	if app.DB == nil {
		return nil
	}
	return app.DB.Close()
}
