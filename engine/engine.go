package engine

import (
	"time"

	"github.com/bcdannyboy/stocvar/backtest"
	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/metrics"
	"github.com/bcdannyboy/stocvar/models"
	"github.com/bcdannyboy/stocvar/pricing"
	"github.com/bcdannyboy/stocvar/risk"
	"github.com/bcdannyboy/stocvar/stress"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the engine entry points. It holds configuration only;
// every call builds its own price cache and models.
type Service struct {
	log     *zap.Logger
	params  models.Params
	metrics *metrics.Recorder
	source  func() history.Source

	simulations int
	seed        uint64
	workers     int
	timePeriod  int

	backtestDays int
	progress     func(done, total int)

	stressDays  int
	crashFactor float64
	stressSeed  uint64
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithParams(p models.Params) Option {
	return func(s *Service) { s.params = p }
}

// WithMonteCarlo configures simulation count, seed and worker limit. A zero
// seed draws a new seed per call.
func WithMonteCarlo(simulations int, seed uint64, workers int) Option {
	return func(s *Service) {
		s.simulations = simulations
		s.seed = seed
		s.workers = workers
	}
}

// WithPricingPeriod sets the horizon simulated by the Monte Carlo option
// pricer outside of Monte Carlo VaR.
func WithPricingPeriod(days int) Option {
	return func(s *Service) { s.timePeriod = days }
}

func WithBacktestDays(days int) Option {
	return func(s *Service) { s.backtestDays = days }
}

func WithProgress(fn func(done, total int)) Option {
	return func(s *Service) { s.progress = fn }
}

func WithStress(days int, crashFactor float64, seed uint64) Option {
	return func(s *Service) {
		s.stressDays = days
		s.crashFactor = crashFactor
		s.stressSeed = seed
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithSource replaces the per-call file loader, mostly for tests.
func WithSource(fn func() history.Source) Option {
	return func(s *Service) { s.source = fn }
}

func New(opts ...Option) *Service {
	s := &Service{
		log:          zap.NewNop(),
		params:       models.DefaultParams(),
		simulations:  1000,
		timePeriod:   pricing.DefaultTimePeriod,
		backtestDays: backtest.DefaultDays,
		stressDays:   stress.DefaultTotalDays,
		crashFactor:  stress.DefaultCrashFactor,
		source:       func() history.Source { return history.NewLoader() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func resolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano())
}

// run wraps one entry point call with a run id, logging and metrics.
func (s *Service) run(operation, model string, fields []zap.Field, fn func(log *zap.Logger) error) error {
	log := s.log.With(append([]zap.Field{
		zap.String("run_id", uuid.NewString()),
		zap.String("operation", operation),
		zap.String("model", model),
	}, fields...)...)

	start := time.Now()
	log.Debug("starting")
	err := fn(log)
	elapsed := time.Since(start)
	s.metrics.Observe(operation, model, elapsed, err)

	if err != nil {
		log.Error("failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return err
	}
	log.Info("finished", zap.Duration("elapsed", elapsed))
	return nil
}

// ComputeVaR estimates VaR for the setup's portfolio with its model.
func (s *Service) ComputeVaR(setup models.SimulationSetup) (risk.Estimate, error) {
	var est risk.Estimate
	seed := resolveSeed(s.seed)
	fields := []zap.Field{
		zap.Int("confidence", int(setup.Confidence())),
		zap.Int("horizon", setup.Horizon()),
	}
	if setup.Portfolio().HasOptions() {
		fields = append(fields, zap.Stringer("pricer", setup.PricingModel()))
	}
	if setup.Model() == models.MonteCarlo {
		fields = append(fields, zap.Uint64("seed", seed))
	}

	err := s.run("var", setup.Model().String(), fields, func(log *zap.Logger) error {
		m, err := risk.New(setup.Model(), risk.Config{
			Source:  s.source(),
			Params:  s.params,
			Pricing: setup.PricingModel(),
			MonteCarlo: pricing.MonteCarloPricer{
				Simulations: s.simulations,
				TimePeriod:  s.timePeriod,
				Seed:        seed,
				Workers:     s.workers,
			},
			Simulations: s.simulations,
			Seed:        seed,
			Workers:     s.workers,
		})
		if err != nil {
			return err
		}
		if est, err = m.Estimate(setup.Portfolio(), setup.Confidence(), setup.Horizon()); err != nil {
			return err
		}
		log.Debug("estimate", zap.Float64("final_var", est.Final), zap.Float64("max_var", est.Max))
		return nil
	})
	return est, err
}

// Backtest replays the setup's model over the first asset's history.
func (s *Service) Backtest(setup models.SimulationSetup) (backtest.Report, error) {
	var report backtest.Report
	seed := resolveSeed(s.seed)
	fields := []zap.Field{
		zap.Int("confidence", int(setup.Confidence())),
		zap.Int("horizon", setup.Horizon()),
		zap.Int("days", s.backtestDays),
	}

	err := s.run("backtest", setup.Model().String(), fields, func(log *zap.Logger) error {
		b := &backtest.Backtester{
			Source:      s.source(),
			Params:      s.params,
			Days:        s.backtestDays,
			Simulations: s.simulations,
			Seed:        seed,
			Workers:     s.workers,
			Progress:    s.progress,
		}
		var err error
		if report, err = b.Run(setup); err != nil {
			return err
		}
		log.Debug("backtest done",
			zap.String("asset", report.AssetID),
			zap.Int("exceptions", report.Exceptions),
			zap.Int("acceptable", report.Acceptable))
		return nil
	})
	return report, err
}

// RunBacktest renders Backtest as text.
func (s *Service) RunBacktest(setup models.SimulationSetup) (string, error) {
	r, err := s.Backtest(setup)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// StressTest runs the crash scenario against the portfolio's asset value.
func (s *Service) StressTest(p *models.Portfolio) (stress.Report, error) {
	var report stress.Report
	seed := resolveSeed(s.stressSeed)
	fields := []zap.Field{
		zap.Int("days", s.stressDays),
		zap.Float64("crash_factor", s.crashFactor),
		zap.Uint64("seed", seed),
	}

	err := s.run("stress", "stress", fields, func(log *zap.Logger) error {
		t := stress.Tester{TotalDays: s.stressDays, CrashFactor: s.crashFactor, Seed: seed}
		var err error
		if report, err = t.Run(p); err != nil {
			return err
		}
		log.Debug("stress done", zap.Float64("max_loss", report.MaxLoss))
		return nil
	})
	return report, err
}

// RunStressTest renders StressTest as text.
func (s *Service) RunStressTest(p *models.Portfolio) (string, error) {
	r, err := s.StressTest(p)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}
