package main

import (
	"context"
	"fmt"

	"github.com/newthinker/bondcalc/internal/config"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/inflation"
	"github.com/newthinker/bondcalc/internal/logger"
	"github.com/newthinker/bondcalc/internal/metrics"
	"github.com/newthinker/bondcalc/internal/portfolio"
	"github.com/newthinker/bondcalc/internal/solver"
	"github.com/newthinker/bondcalc/internal/storage/archive"
	"github.com/newthinker/bondcalc/internal/valuation"
	"go.uber.org/zap"
)

// env is everything a command needs, built from the config file.
type env struct {
	cfg         *config.Config
	log         *zap.Logger
	metrics     *metrics.Registry
	store       archive.Storage
	calculators *valuation.Set
	book        *portfolio.Book
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func setup(ctx context.Context) (*env, error) {
	bootstrap := logger.Must(debug, "")
	cfg, err := loadConfig(bootstrap)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	log, err := logger.New(debug || cfg.Logging.Development, level)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log}
	if cfg.Metrics.Enabled {
		e.metrics = metrics.NewRegistry()
	}

	if e.store, err = archive.New(cfg.Storage.Archive()); err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	var indexes map[string]*inflation.IndexSeries
	if len(cfg.Inflation.Indexes) > 0 {
		if indexes, err = inflation.LoadIndexes(ctx, e.store, cfg.Inflation.Paths()); err != nil {
			return nil, err
		}
		log.Info("inflation indexes loaded", zap.Int("count", len(indexes)))
	}

	finder, err := solver.Configure(cfg.Solver.Method, solver.Params{
		Start:        cfg.Solver.Start,
		Step:         cfg.Solver.Step,
		Precision:    cfg.Solver.Precision,
		MaxIteration: cfg.Solver.MaxIteration,
		Lower:        cfg.Solver.Lower,
		Upper:        cfg.Solver.Upper,
	})
	if err != nil {
		return nil, err
	}

	e.calculators, err = valuation.NewSet(valuation.Options{
		Method:      valuation.Method(cfg.Valuation.Method),
		Accrued:     cfg.Valuation.Accrued,
		Inflation:   cfg.Valuation.Inflation,
		Indexes:     indexes,
		Solver:      finder,
		CacheSize:   cfg.Valuation.CacheSize,
		Concurrency: cfg.Valuation.Concurrency,
		Metrics:     e.metrics,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	if len(cfg.Portfolio.Positions) > 0 {
		if e.book, err = cfg.Portfolio.Build(); err != nil {
			return nil, fmt.Errorf("building portfolio: %w", err)
		}
	}
	return e, nil
}

// positions returns the named configured positions, all of them when ids is
// empty.
func (e *env) positions(ids []string) ([]*core.Position, error) {
	if e.book == nil {
		return nil, core.Errorf(core.ErrConfigMissing, "no portfolio configured")
	}
	if len(ids) == 0 {
		return e.book.Positions(), nil
	}
	out := make([]*core.Position, 0, len(ids))
	for _, id := range ids {
		p, err := e.book.Position(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
