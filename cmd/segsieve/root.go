package main

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/arloliu/segsieve"
	"github.com/arloliu/segsieve/sink"
	"github.com/spf13/cobra"
)

// Transport modes accepted by --transport.
const (
	transportLocal    = "local"
	transportNATS     = "nats"
	transportEmbedded = "embedded"
)

var errUsage = errors.New("usage error")

type options struct {
	configPath       string
	workers          int
	transport        string
	natsURL          string
	rank             int
	size             int
	runID            string
	collectorRank    int
	cacheLevel       int
	instructionCache bool
	sqlitePath       string
	metricsAddr      string
	logLevel         string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "segsieve <right-limit> (l|t|a)",
		Short: "Cache-aware segmented sieve of Eratosthenes",
		Long: `segsieve computes every prime up to <right-limit> with a segmented sieve
whose marking window is sized from the CPU cache.

Output modes:
  l  print the primes on one line
  t  print the elapsed time in seconds
  a  print both`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseLimit(args[0])
			if err != nil {
				return err
			}
			mode, err := sink.ParseMode(args[1])
			if err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}

			return run(cmd, opts, limit, mode)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.IntVar(&opts.workers, "workers", runtime.NumCPU(), "Worker count for local and embedded transports")
	flags.StringVar(&opts.transport, "transport", transportLocal, "Transport: local, nats or embedded")
	flags.StringVar(&opts.natsURL, "nats-url", "nats://127.0.0.1:4222", "NATS server URL (nats transport)")
	flags.IntVar(&opts.rank, "rank", 0, "This process's rank (nats transport)")
	flags.IntVar(&opts.size, "size", 1, "Group size (nats transport)")
	flags.StringVar(&opts.runID, "run-id", "", "Run ID shared by the group (overrides config)")
	flags.IntVar(&opts.collectorRank, "collector", -1, "Collector rank (overrides config)")
	flags.IntVar(&opts.cacheLevel, "cache-level", 0, "Cache level sizing the window, 1-3 (overrides config)")
	flags.BoolVar(&opts.instructionCache, "instruction-cache", false, "Size the window from the L1 instruction cache")
	flags.StringVar(&opts.sqlitePath, "sqlite", "", "Also store the result in this SQLite database")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	return cmd
}

// parseLimit parses the right limit and checks the accepted range.
func parseLimit(arg string) (uint32, error) {
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: right limit %q is not a number", errUsage, arg)
	}
	limit := uint32(n)
	if limit < segsieve.MinLimit || limit > segsieve.MaxLimit {
		return 0, fmt.Errorf("%w: right limit %d outside [%d, %d]",
			segsieve.ErrInvalidRange, limit, segsieve.MinLimit, segsieve.MaxLimit)
	}

	return limit, nil
}
