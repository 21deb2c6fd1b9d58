package app

import (
	"time"

	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/rolldb"
)

// DBConfig maps the database section of a config file.
func DBConfig(c *appconf.JSONConfig) rolldb.Config {
	dbCfg := rolldb.NewConfig(c.Database.Driver, c.Database.DSN, appconf.EnvFlagToEnvironment(c.Env), true)
	if c.Database.MaxOpenConns > 0 {
		dbCfg.MaxOpenConns = c.Database.MaxOpenConns
	}
	if c.Database.AcquireTimeoutSeconds > 0 {
		dbCfg.AcquireTimeout = time.Duration(c.Database.AcquireTimeoutSeconds) * time.Second
	}
	return dbCfg
}

// SearchTuning maps the search section of a config file. Omitted values
// fall back to the search defaults.
func SearchTuning(c *appconf.JSONConfig) search.Tuning {
	s := c.Search
	return search.Tuning{
		MinQueryLength:  s.MinQueryLength,
		MaxQueryLength:  s.MaxQueryLength,
		CandidateCap:    s.CandidateCap,
		DefaultPageSize: s.DefaultPageSize,
		MaxPageSize:     s.MaxPageSize,
		Weights: search.Weights{
			ExactName:  s.Weights.ExactName,
			WordSet:    s.Weights.WordSet,
			ExactID:    s.Weights.ExactID,
			Prefix:     s.Weights.Prefix,
			Contains:   s.Weights.Contains,
			IDContains: s.Weights.IDContains,
		},
	}.WithDefaults()
}
