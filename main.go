package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bcdannyboy/stocvar/config"
	"github.com/bcdannyboy/stocvar/engine"
	"github.com/bcdannyboy/stocvar/logging"
	"github.com/bcdannyboy/stocvar/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xhhuango/json"
	"go.uber.org/zap"
)

var (
	configPath  string
	logLevel    string
	metricsFile string
	jsonOutput  bool
)

// app is what every subcommand needs, built once in PersistentPreRunE.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
}

var current app

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %s\n", err.Error())
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stocvar",
		Short:         "Value-at-Risk, backtesting and stress testing for equity and option portfolios",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
			if err != nil {
				return err
			}
			current = app{cfg: cfg, log: log, metrics: metrics.New()}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer current.log.Sync()
			if metricsFile == "" {
				return nil
			}
			return current.metrics.WriteTextfile(metricsFile)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this textfile on exit")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(varCmd(), backtestCmd(), stressCmd(), volCmd(), priceCmd())
	return root
}

func newService(opts ...engine.Option) *engine.Service {
	cfg := current.cfg
	base := []engine.Option{
		engine.WithLogger(current.log),
		engine.WithParams(cfg.Params),
		engine.WithMetrics(current.metrics),
		engine.WithMonteCarlo(cfg.MonteCarlo.Simulations, cfg.MonteCarlo.Seed, cfg.MonteCarlo.Workers),
		engine.WithPricingPeriod(cfg.MonteCarlo.TimePeriod),
		engine.WithBacktestDays(cfg.Backtest.Days),
		engine.WithStress(cfg.Stress.Days, cfg.Stress.CrashFactor, cfg.Stress.Seed),
	}
	return engine.New(append(base, opts...)...)
}

// emit prints v as JSON when --json is set, otherwise its text form.
func emit(cmd *cobra.Command, v any, text string) error {
	if !jsonOutput {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
