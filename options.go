package segsieve

// Option configures a Sieve with optional dependencies.
type Option func(*sieveOptions)

// sieveOptions holds optional Sieve configuration.
type sieveOptions struct {
	transport Transport
	strategy  PartitionStrategy
	hooks     *Hooks
	metrics   MetricsCollector
	logger    Logger
}

// WithTransport sets the point-to-point transport used by the merge.
//
// Required for groups larger than one worker.
//
// Parameters:
//   - transport: Transport implementation bound to this worker's rank
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	net, _ := transport.NewLocal(4)
//	ep, _ := net.Endpoint(rank)
//	s, err := segsieve.New(&cfg, src, segsieve.Group{Rank: rank, Size: 4}, segsieve.WithTransport(ep))
func WithTransport(transport Transport) Option {
	return func(o *sieveOptions) {
		o.transport = transport
	}
}

// WithStrategy sets the range partitioning strategy.
//
// Defaults to strategy.NewContiguous(). Every worker of a group must use the
// same strategy.
//
// Parameters:
//   - strategy: PartitionStrategy implementation
//
// Returns:
//   - Option: Functional option for New
func WithStrategy(strategy PartitionStrategy) Option {
	return func(o *sieveOptions) {
		o.strategy = strategy
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions (nil fields are allowed)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	hooks := &segsieve.Hooks{
//	    OnPhaseChanged: func(ctx context.Context, from, to segsieve.Phase) error {
//	        log.Printf("%s -> %s", from, to)
//	        return nil
//	    },
//	}
//	s, err := segsieve.New(&cfg, src, segsieve.SingleWorker(), segsieve.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *sieveOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.NewRegistry(), "")
//	s, err := segsieve.New(&cfg, src, group, segsieve.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *sieveOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for New
func WithLogger(logger Logger) Option {
	return func(o *sieveOptions) {
		o.logger = logger
	}
}
