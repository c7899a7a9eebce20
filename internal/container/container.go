package container

import (
	"fmt"

	"fastfisher/adapters/api"
	"fastfisher/adapters/stats/fisher"
	"fastfisher/adapters/stats/senses"
	"fastfisher/internal"
	"fastfisher/internal/config"
	"fastfisher/internal/referee"
	"fastfisher/ui"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Engine
	LogFactorials fisher.LogFactorials
	Engine        *fisher.Engine

	// Reference comparison
	Oracle  referee.Oracle
	Referee *referee.Referee

	// Signal detection on paired samples
	Senses *senses.SenseEngine
}

// New wires every component from cfg
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)),
	}

	c.LogFactorials = NewLogFactorials(cfg.Fisher)
	c.Engine = fisher.New(
		fisher.WithLogFactorials(c.LogFactorials),
		fisher.WithTolerance(cfg.Fisher.Tolerance),
	)

	oracle, err := referee.GetOracleByName(cfg.Compare.Oracle, cfg.Compare.OracleMaxN)
	if err != nil {
		return nil, fmt.Errorf("failed to select oracle: %w", err)
	}
	c.Oracle = oracle
	c.Referee = referee.New(c.Engine, oracle, referee.Options{
		AbsTolerance: cfg.Compare.AbsTolerance,
		RelTolerance: cfg.Compare.RelTolerance,
		Workers:      cfg.Compare.Workers,
		Logger:       c.Logger,
	})

	c.Senses = senses.NewSenseEngine(c.Engine, cfg.Compare.Workers)

	c.Logger.Debug("container initialized",
		"backend", cfg.Fisher.Backend,
		"tolerance", c.Engine.Tolerance(),
		"oracle", oracle.Name())
	return c, nil
}

// NewLogFactorials selects the ln(k!) source for a backend name. The table
// backend shares the process-wide cache and sets its limit to CacheLimit; local
// gives the engine a synchronized cache of its own with the same limit; lgamma
// tabulates nothing. Preload applies to both caches.
func NewLogFactorials(cfg config.FisherConfig) fisher.LogFactorials {
	var cache *fisher.LogFactorialCache
	switch cfg.Backend {
	case config.BackendLgamma:
		return fisher.DirectLogFactorials{}
	case config.BackendLocal:
		cache = fisher.NewLogFactorialCache(cfg.CacheLimit)
	default:
		cache = fisher.SharedCache()
		cache.SetLimit(cfg.CacheLimit)
	}
	if cfg.Preload > 0 {
		cache.Preload(cfg.Preload)
	}
	return cache
}

// APIServer builds the JSON API around the container's engine.
func (c *Container) APIServer() *api.Server {
	return api.NewServer(c.Engine, c.Logger, api.WithMaxSupport(c.Config.Server.MaxSupport))
}

// UIApp builds the report UI around the container's engine and referee.
func (c *Container) UIApp() (*ui.App, error) {
	return ui.NewApp(c.Engine, c.Referee, ui.Config{
		Port:            c.Config.Server.Port,
		BenchIterations: c.Config.Bench.Iterations,
		CompareSamples:  c.Config.Compare.Samples,
		Seed:            c.Config.Compare.Seed,
	}, c.Logger)
}
