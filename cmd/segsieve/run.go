package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/arloliu/segsieve"
	"github.com/arloliu/segsieve/internal/logging"
	"github.com/arloliu/segsieve/internal/metrics"
	"github.com/arloliu/segsieve/internal/natsutil"
	"github.com/arloliu/segsieve/sink"
	"github.com/arloliu/segsieve/source"
	"github.com/arloliu/segsieve/types"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func run(cmd *cobra.Command, opts *options, limit uint32, mode sink.Mode) error {
	ctx := cmd.Context()

	logger, err := logging.NewText(cmd.ErrOrStderr(), opts.logLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	kind := types.DataCache
	if cfg.InstructionCache {
		kind = types.InstructionCache
	}
	src, err := source.NewCPUID(cfg.CacheLevel, kind, source.WithLogger(logger))
	if err != nil {
		return err
	}

	sieveOpts := []segsieve.Option{segsieve.WithLogger(logger)}

	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		sieveOpts = append(sieveOpts, segsieve.WithMetrics(metrics.NewPrometheus(reg, "")))

		srv := newMetricsServer(opts.metricsAddr, reg, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			if err := srv.Shutdown(); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	var res *segsieve.Result
	switch opts.transport {
	case transportLocal:
		res, err = segsieve.RunLocal(ctx, cfg, src, opts.workers, limit, sieveOpts...)
	case transportNATS:
		res, err = runNATS(ctx, cfg, src, opts, limit, logger, sieveOpts)
	case transportEmbedded:
		res, err = runEmbedded(ctx, cfg, src, opts.workers, limit, logger, sieveOpts)
	default:
		return fmt.Errorf("%w: unknown transport %q", errUsage, opts.transport)
	}
	if err != nil {
		return err
	}

	if !res.Collector {
		logger.Info("partial result delivered", "rank", res.Group.Rank, "localPrimes", res.LocalPrimes)
		return nil
	}

	return writeResult(ctx, cmd, opts, mode, res, logger)
}

func loadConfig(opts *options) (*segsieve.Config, error) {
	var cfg *segsieve.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = segsieve.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	} else {
		defaults := segsieve.DefaultConfig()
		cfg = &defaults
	}

	if opts.cacheLevel != 0 {
		cfg.CacheLevel = opts.cacheLevel
	}
	if opts.instructionCache {
		cfg.InstructionCache = true
	}
	if opts.collectorRank >= 0 {
		cfg.CollectorRank = opts.collectorRank
	}
	if opts.runID != "" {
		cfg.Transport.RunID = opts.runID
	}
	// Ranks in separate processes must agree on the run ID, so only
	// in-process groups get a generated one.
	if cfg.Transport.RunID == "" && opts.transport != transportNATS {
		cfg.Transport.RunID = fmt.Sprintf("r%d", time.Now().UnixNano())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeResult(ctx context.Context, cmd *cobra.Command, opts *options, mode sink.Mode, res *segsieve.Result, logger types.Logger) error {
	sinks := sink.Multi{sink.NewText(cmd.OutOrStdout(), mode)}

	if opts.sqlitePath != "" {
		db, err := sink.OpenSQLite(ctx, opts.sqlitePath, sink.WithLogger(logger))
		if err != nil {
			return err
		}
		defer db.Close()
		sinks = append(sinks, db)
	}

	return sinks.Write(ctx, res)
}

// runNATS runs this process as one rank of a group on an external server.
func runNATS(
	ctx context.Context,
	cfg *segsieve.Config,
	src segsieve.CacheSource,
	opts *options,
	limit uint32,
	logger types.Logger,
	sieveOpts []segsieve.Option,
) (*segsieve.Result, error) {
	if cfg.Transport.RunID == "" {
		return nil, fmt.Errorf("%w: --run-id is required with the nats transport", errUsage)
	}

	nc, err := nats.Connect(opts.natsURL,
		nats.Name(fmt.Sprintf("segsieve-%d", opts.rank)),
		nats.Timeout(cfg.Transport.OperationTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", opts.natsURL, err)
	}
	defer nc.Close()

	group := segsieve.Group{Rank: opts.rank, Size: opts.size}

	return runRank(ctx, nc, group, cfg, src, limit, logger, sieveOpts)
}

// runEmbedded starts a NATS server in this process and runs a whole group
// against it, one connection per worker.
func runEmbedded(
	ctx context.Context,
	cfg *segsieve.Config,
	src segsieve.CacheSource,
	workers int,
	limit uint32,
	logger types.Logger,
	sieveOpts []segsieve.Option,
) (*segsieve.Result, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: workers must be >= 1, got %d", segsieve.ErrInvalidGroup, workers)
	}

	storeDir, err := os.MkdirTemp("", "segsieve-js-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(storeDir)

	srv, err := natsutil.StartEmbedded(storeDir, 5*time.Second)
	if err != nil {
		return nil, err
	}
	defer srv.Close()
	logger.Debug("embedded NATS server started", "url", srv.Server.ClientURL())

	results := make([]*segsieve.Result, workers)
	g, gctx := errgroup.WithContext(ctx)
	for rank := range workers {
		g.Go(func() error {
			nc, err := nats.Connect(srv.Server.ClientURL())
			if err != nil {
				return err
			}
			defer nc.Close()

			workerCfg := *cfg
			group := segsieve.Group{Rank: rank, Size: workers}
			results[rank], err = runRank(gctx, nc, group, &workerCfg, src, limit, logger, sieveOpts)

			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results[cfg.CollectorRank], nil
}

func runRank(
	ctx context.Context,
	nc *nats.Conn,
	group segsieve.Group,
	cfg *segsieve.Config,
	src segsieve.CacheSource,
	limit uint32,
	logger types.Logger,
	sieveOpts []segsieve.Option,
) (*segsieve.Result, error) {
	tr, err := segsieve.NewNATSTransport(ctx, nc, group, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	s, err := segsieve.New(cfg, src, group, append(sieveOpts[:len(sieveOpts):len(sieveOpts)], segsieve.WithTransport(tr))...)
	if err != nil {
		return nil, err
	}

	return s.Run(ctx, limit)
}
