package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/alert"
	"github.com/emperorhan/multichain-ingestor/internal/cache"
	"github.com/emperorhan/multichain-ingestor/internal/chain"
	"github.com/emperorhan/multichain-ingestor/internal/chain/endpointpool"
	"github.com/emperorhan/multichain-ingestor/internal/chain/ratelimit"
	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/config"
	"github.com/emperorhan/multichain-ingestor/internal/cycle"
	"github.com/emperorhan/multichain-ingestor/internal/decode"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/fetcher"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/ingester"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/normalizer"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/orchestrator"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/reorgdetector"
	"github.com/emperorhan/multichain-ingestor/internal/pipeline/writer"
	"github.com/emperorhan/multichain-ingestor/internal/store"
	"github.com/emperorhan/multichain-ingestor/internal/store/postgres"
	redispkg "github.com/emperorhan/multichain-ingestor/internal/store/redis"
	"github.com/emperorhan/multichain-ingestor/internal/tracing"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName         = "multichain-ingestor"
	redisConnectTimeout = 5 * time.Second
)

func main() {
	reprocessFrom := flag.Int64("reprocess-from", -1, "delete blocks from this height on and rewind the checkpoint, then exit")
	reprocessChain := flag.String("reprocess-chain", "", "chain name for -reprocess-from")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if *reprocessFrom >= 0 {
		if err := a.reprocess(ctx, *reprocessChain, *reprocessFrom); err != nil {
			logger.Error("reprocess failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := a.run(ctx); err != nil {
		logger.Error("ingestor exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestor shut down gracefully")
}

// app holds the wired process components.
type app struct {
	cfg          *config.Config
	logger       *slog.Logger
	db           *postgres.DB
	closers      []func() error
	chains       []model.Chain
	health       *pipeline.HealthRegistry
	alerter      alert.Alerter
	pool         *endpointpool.Pool
	cycles       *cycle.Manager
	orchestrator *orchestrator.Orchestrator
	ingesters    []*ingester.Ingester
	detectors    map[model.ChainID]*reorgdetector.Detector
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, detectors: make(map[model.ChainID]*reorgdetector.Detector)}

	logger.Info("starting "+serviceName,
		"chains", len(cfg.Chains),
		"redis_enabled", cfg.Redis.URL != "",
		"signature_lookup", cfg.Signatures.LookupURL != "",
		"trace_internal_calls", cfg.Ingestor.TraceInternalCalls,
	)

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		ServiceName: serviceName,
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, func() error { return shutdownTracing(context.Background()) })

	db, err := postgres.New(ctx, postgres.Config{
		URL:                cfg.DB.URL,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetime:    cfg.DB.ConnMaxLifetime,
		StatementTimeoutMS: cfg.DB.StatementTimeoutMS,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	if cfg.DB.MigrationsDir != "" {
		err = db.RunMigrations(ctx, os.DirFS(cfg.DB.MigrationsDir))
	} else {
		err = db.Migrate(ctx)
	}
	if err != nil {
		a.close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var (
		chainRepo  = postgres.NewChainRepo(db)
		entityRepo = postgres.NewTrackedEntityRepo(db)
		cycleRepo  = postgres.NewCycleRepo(db)
		snapRepo   = postgres.NewSnapshotRepo(db)
		recordRepo = postgres.NewRecordRepo(db)
		sigRepo    = postgres.NewSignatureRepo(db)
		blockRepo  = postgres.NewBlockRepo(db)
		cpRepo     = postgres.NewCheckpointRepo(db)
		reorgRepo  = postgres.NewReorgEventRepo(db)
	)

	a.chains, err = seedRegistry(ctx, cfg.Chains, chainRepo, entityRepo, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	a.alerter = alert.New(alert.Config{
		SlackWebhookURL: cfg.Alert.SlackWebhookURL,
		WebhookURL:      cfg.Alert.WebhookURL,
		Cooldown:        cfg.Alert.Cooldown,
	}, logger)

	a.pool, err = endpointpool.New(a.chains, rpcClientFactory(cfg.RPC, logger), endpointpool.Config{
		HealthInterval: cfg.RPC.HealthInterval,
		ProbeTimeout:   cfg.RPC.Timeout,
	}, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("build endpoint pool: %w", err)
	}

	resolverOpts := []decode.ResolverOption{decode.WithCacheCapacity(cfg.Signatures.CacheCapacity)}
	if cfg.Signatures.LookupURL != "" {
		resolverOpts = append(resolverOpts, decode.WithLookup(
			decode.NewFourByteClient(cfg.Signatures.LookupURL, cfg.Signatures.LookupTimeout, logger),
		))
	}
	resolver := decode.NewResolver(sigRepo, logger, resolverOpts...)
	if err := resolver.SeedStore(ctx); err != nil {
		logger.Warn("failed to seed signature table, continuing with memory seed", "error", err)
	}
	norm := normalizer.New(decode.NewDecoder(resolver, logger), logger)

	blockCache, publisher := a.buildCacheAndBus(ctx)

	w := writer.New(db, snapRepo, recordRepo, logger)
	a.health = pipeline.NewHealthRegistry(cfg.Orchestrator.MaxRetries)
	a.cycles = cycle.New(db, cycleRepo, cfg.Cycle.Period, logger, cycle.WithAlerter(a.alerter))

	f := fetcher.New(a.pool, entityRepo, snapRepo, fetcher.Config{
		EntitySampleSize:  cfg.Fetcher.EntitySampleSize,
		LogLookbackBlocks: cfg.Fetcher.LogLookbackBlocks,
		LogMaxBlockRange:  cfg.Fetcher.LogMaxBlockRange,
		MaxTxDetails:      cfg.Fetcher.MaxTxDetails,
	}, logger)
	a.orchestrator = orchestrator.New(a.chains, f, norm, w, a.pool, a.cycles, orchestrator.Config{
		Interval:   cfg.Orchestrator.Interval,
		BatchSize:  cfg.Orchestrator.BatchSize,
		MaxRetries: cfg.Orchestrator.MaxRetries,
	}, logger,
		orchestrator.WithAlerter(a.alerter),
		orchestrator.WithHealthRegistry(a.health),
	)

	for _, c := range a.chains {
		if !c.Active || !c.Checkpointed {
			continue
		}
		detector := reorgdetector.New(db, blockRepo, reorgRepo, logger,
			reorgdetector.WithBlockCache(blockCache),
			reorgdetector.WithAlerter(a.alerter),
			reorgdetector.WithTipVerification(cfg.Ingestor.TipVerifyInterval, cfg.Ingestor.TipVerifyDepth),
		)
		ingOpts := []ingester.Option{ingester.WithBlockCache(blockCache)}
		if publisher != nil {
			ingOpts = append(ingOpts, ingester.WithPublisher(publisher))
		}
		a.ingesters = append(a.ingesters, ingester.New(c, a.pool, db, blockRepo, cpRepo, w, norm, detector, ingester.Config{
			PollInterval:       cfg.Ingestor.PollInterval,
			CheckpointInterval: cfg.Ingestor.CheckpointInterval,
			TraceInternalCalls: cfg.Ingestor.TraceInternalCalls,
			TraceMaxDepth:      cfg.Ingestor.TraceMaxDepth,
		}, logger, ingOpts...))
		a.detectors[c.ID] = detector
	}

	return a, nil
}

// buildCacheAndBus prefers Redis when configured. An unreachable Redis
// degrades to an in-process cache without a bus.
func (a *app) buildCacheAndBus(ctx context.Context) (store.BlockCache, store.Publisher) {
	rc := a.cfg.Redis
	if rc.URL == "" {
		return cache.NewBlockHashCache(blockCacheCapacity(a.cfg), rc.BlockCacheTTL), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()
	client, err := redispkg.NewClient(connectCtx, rc.URL)
	if err != nil {
		a.logger.Warn("redis unavailable, continuing without block cache sharing and stream bus", "error", err)
		return cache.NewBlockHashCache(blockCacheCapacity(a.cfg), rc.BlockCacheTTL), nil
	}
	a.closers = append(a.closers, client.Close)
	a.logger.Info("redis block cache and stream bus enabled", "stream_prefix", rc.StreamPrefix)
	return redispkg.NewBlockCache(client, rc.StreamPrefix, rc.BlockCacheTTL, a.logger),
		redispkg.NewPublisher(client, rc.StreamPrefix, rc.StreamMaxLen)
}

func blockCacheCapacity(cfg *config.Config) int {
	n := int(cfg.Ingestor.TipVerifyDepth) * len(cfg.Chains) * 4
	if n < 1024 {
		n = 1024
	}
	return n
}

func rpcClientFactory(cfg config.RPCConfig, logger *slog.Logger) endpointpool.ClientFactory {
	return func(c model.Chain, rpcURL string) chain.Client {
		return rpc.NewClient(rpcURL, logger.With("chain", c.Label()),
			rpc.WithTimeout(cfg.Timeout),
			rpc.WithChainLabel(c.Label()),
			rpc.WithRateLimiter(ratelimit.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, c.Label())),
		)
	}
}

// run starts components in dependency order: endpoint health, the first
// cycle, then the orchestrator and per-chain ingestion.
func (a *app) run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runHealthServer(gCtx, a.cfg.Server.HealthPort, healthSources{
			registry:  a.health,
			cycles:    a.cycles,
			endpoints: a.pool,
			chains:    a.chains,
		}, a.logger)
	})
	g.Go(func() error {
		return runDBPoolStats(gCtx, a.db, time.Duration(a.cfg.DB.PoolStatsIntervalMS)*time.Millisecond, a.alerter, a.logger)
	})

	a.pool.CheckHealth(gCtx)
	g.Go(func() error { return ignoreCanceled(a.pool.Run(gCtx)) })

	a.cycles.Start(gCtx)
	g.Go(func() error { return ignoreCanceled(a.cycles.Run(gCtx)) })
	g.Go(func() error { return ignoreCanceled(a.orchestrator.Run(gCtx)) })

	for _, ing := range a.ingesters {
		ing := ing
		c := ing.Chain()
		g.Go(func() error { return ignoreCanceled(ing.Run(gCtx)) })
		g.Go(func() error { return ignoreCanceled(a.detectors[c.ID].Run(gCtx, c, a.pool)) })
	}

	return g.Wait()
}

func (a *app) reprocess(ctx context.Context, chainName string, from int64) error {
	for _, ing := range a.ingesters {
		if ing.Chain().Label() != chainName {
			continue
		}
		deleted, err := ing.Reprocess(ctx, from)
		if err != nil {
			return err
		}
		a.logger.Info("reprocess prepared", "chain", chainName, "from_block", from, "blocks_deleted", deleted)
		return nil
	}
	return fmt.Errorf("no checkpointed chain named %q", chainName)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
