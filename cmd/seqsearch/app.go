package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/blast/command"
	"github.com/kailas-cloud/seqsearch/internal/blast/process"
	"github.com/kailas-cloud/seqsearch/internal/config"
	"github.com/kailas-cloud/seqsearch/internal/db"
	dbBolt "github.com/kailas-cloud/seqsearch/internal/db/bolt"
	dbRedis "github.com/kailas-cloud/seqsearch/internal/db/redis"
	"github.com/kailas-cloud/seqsearch/internal/hyperlink"
	logpkg "github.com/kailas-cloud/seqsearch/internal/logger"
	"github.com/kailas-cloud/seqsearch/internal/metrics"
	"github.com/kailas-cloud/seqsearch/internal/repository/resultstore"
	"github.com/kailas-cloud/seqsearch/internal/repository/runcache"
	cataloguc "github.com/kailas-cloud/seqsearch/internal/usecase/catalog"
	entryuc "github.com/kailas-cloud/seqsearch/internal/usecase/entry"
	healthuc "github.com/kailas-cloud/seqsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/seqsearch/internal/usecase/search"
)

// app is the wired composition root shared by every subcommand.
type app struct {
	cfg     config.Config
	env     string
	logger  *zap.Logger
	catalog *cataloguc.Catalog
	store   db.Store // nil when results are not kept
	search  *searchuc.Service
	entries *entryuc.Service
	health  *healthuc.Service
}

func loadConfig() (config.Config, error) {
	if flagConfig != "" {
		return config.LoadFile(flagConfig)
	}
	return config.Load(flagEnv)
}

// newApp loads configuration and wires every service. withStore opens the result
// store; one-shot commands skip it.
func newApp(ctx context.Context, withStore bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(flagEnv, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	runner := process.NewRunner(
		process.WithTempDir(cfg.Blast.TempDir),
		process.WithGracePeriod(time.Duration(cfg.Blast.GraceSec)*time.Second),
		process.WithExitCounter(metrics.ProcessExitsTotal),
		process.WithLogger(logger),
	)

	static := make([]cataloguc.StaticCorpus, len(cfg.Blast.Corpora))
	for i, c := range cfg.Blast.Corpora {
		static[i] = cataloguc.StaticCorpus{ID: c.ID, Path: c.Path, Title: c.Title, Kind: c.Kind}
	}
	cat, err := cataloguc.New(runner, logger).Discover(ctx, cataloguc.Config{
		BinDir:      cfg.Blast.BinDir,
		DatabaseDir: cfg.Blast.DatabaseDir,
		Static:      static,
	})
	if err != nil {
		return nil, fmt.Errorf("discover catalog: %w", err)
	}

	a := &app{cfg: cfg, env: flagEnv, logger: logger, catalog: cat}

	var searchRunner searchuc.Runner = runner
	var runs searchuc.RunStore
	var pinger healthuc.StorePinger
	if withStore && cfg.Store.Driver != config.StoreNone {
		store, err := openStore(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		a.store = store
		pinger = store
		runs = resultstore.New(store, time.Duration(cfg.Store.TTLSec)*time.Second, metrics.ResultStoreTotal, logger)
		if cfg.Store.CacheTTLSec > 0 {
			searchRunner = runcache.New(runner, store,
				time.Duration(cfg.Store.CacheTTLSec)*time.Second, metrics.RunCacheTotal, logger)
		}
	}

	compiler := command.NewCompiler(cat.Algorithms, cat.Corpora,
		command.WithThreads(cfg.Blast.NumThreads),
		command.WithTempDir(cfg.Blast.TempDir),
	)
	resolver := hyperlink.New(
		hyperlink.WithBasePath(cfg.Links.BasePath),
		hyperlink.WithLogger(logger),
	)

	a.search = searchuc.New(compiler, searchRunner, resolver, runs, logger)
	a.entries = entryuc.New(runner, cat.Corpora, cat.Retrieval, logger)

	binaries := []string{cat.Retrieval}
	for _, name := range cat.Algorithms.Names() {
		p, _ := cat.Algorithms.Lookup(name)
		binaries = append(binaries, p)
	}
	a.health = healthuc.New(pinger, binaries)
	return a, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.StoreRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Addrs,
			Username:   cfg.Username,
			Password:   cfg.Password,
			DB:         cfg.DB,
			Standalone: cfg.Standalone,
		})
	case config.StoreBolt:
		store, err = dbBolt.NewStore(dbBolt.Config{Path: cfg.Path})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}
