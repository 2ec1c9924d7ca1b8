package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bcdannyboy/stocvar/backtest"
	"github.com/bcdannyboy/stocvar/config"
	"github.com/bcdannyboy/stocvar/engine"
	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/models"
	"github.com/spf13/cobra"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
)

type setupFlags struct {
	portfolio  string
	model      string
	pricer     string
	confidence int
	horizon    int
}

func (f *setupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.portfolio, "portfolio", "p", "", "portfolio YAML file")
	cmd.Flags().StringVarP(&f.model, "model", "m", "mb", "VaR model: mb, hs or mc")
	cmd.Flags().StringVar(&f.pricer, "pricer", "bs", "option pricing model: bs, bt or mc")
	cmd.Flags().IntVarP(&f.confidence, "confidence", "c", 99, "confidence level (99, 95, 90, 85, 80, 75)")
	cmd.Flags().IntVar(&f.horizon, "horizon", 10, "time horizon in trading days")
	_ = cmd.MarkFlagRequired("portfolio")
}

func (f *setupFlags) setup(src history.Source) (models.SimulationSetup, error) {
	p, err := config.LoadPortfolio(f.portfolio, src)
	if err != nil {
		return models.SimulationSetup{}, err
	}
	model, err := models.ParseVaRModel(f.model)
	if err != nil {
		return models.SimulationSetup{}, err
	}
	var pricing models.PricingModel
	if p.HasOptions() {
		if pricing, err = models.ParsePricingModel(f.pricer); err != nil {
			return models.SimulationSetup{}, err
		}
	}
	c, err := models.ParseConfidence(f.confidence)
	if err != nil {
		return models.SimulationSetup{}, err
	}
	return models.NewSimulationSetup(p, model, pricing, c, f.horizon)
}

func varCmd() *cobra.Command {
	var f setupFlags
	cmd := &cobra.Command{
		Use:   "var",
		Short: "Compute Value-at-Risk for a portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService()
			setup, err := f.setup(svc.Source())
			if err != nil {
				return err
			}
			est, err := svc.ComputeVaR(setup)
			if err != nil {
				return err
			}
			text := fmt.Sprintf("%s VaR (%d%%, %d days): %.0f\nMaximum VaR: %.0f",
				setup.Model(), setup.Confidence(), setup.Horizon(), est.Final, est.Max)
			return emit(cmd, est, text)
		},
	}
	f.register(cmd)
	return cmd
}

func backtestCmd() *cobra.Command {
	var (
		f        setupFlags
		progress bool
	)
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Backtest a VaR model against the first asset's history",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []engine.Option
			var p *mpb.Progress
			var bar *mpb.Bar
			if progress {
				days := current.cfg.Backtest.Days
				if days <= 0 {
					days = backtest.DefaultDays
				}
				p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
				bar = p.AddBar(int64(days),
					mpb.PrependDecorators(
						decor.Name("Backtest"),
						decor.Percentage(decor.WCSyncSpace),
					),
					mpb.AppendDecorators(
						decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
					),
				)
				opts = append(opts, engine.WithProgress(func(done, total int) {
					bar.SetCurrent(int64(done))
					if done == total {
						bar.SetTotal(int64(total), true)
					}
				}))
			}

			svc := newService(opts...)
			setup, err := f.setup(svc.Source())
			if err == nil {
				var report any
				if report, err = svc.Backtest(setup); err == nil {
					if bar != nil {
						p.Wait()
					}
					return emit(cmd, report, fmt.Sprint(report))
				}
			}
			if bar != nil {
				bar.Abort(true)
				p.Wait()
			}
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	return cmd
}

func stressCmd() *cobra.Command {
	var portfolio string
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Stress test a portfolio against a simulated crash",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService()
			p, err := config.LoadPortfolio(portfolio, svc.Source())
			if err != nil {
				return err
			}
			report, err := svc.StressTest(p)
			if err != nil {
				return err
			}
			return emit(cmd, report, report.String())
		},
	}
	cmd.Flags().StringVarP(&portfolio, "portfolio", "p", "", "portfolio YAML file")
	_ = cmd.MarkFlagRequired("portfolio")
	return cmd
}

func volCmd() *cobra.Command {
	var (
		file string
		days int
	)
	cmd := &cobra.Command{
		Use:   "vol",
		Short: "Estimate daily and annualised volatility of a price file",
		RunE: func(cmd *cobra.Command, args []string) error {
			readings, err := newService().Volatilities(file, days)
			if err != nil {
				return err
			}
			var sb strings.Builder
			for _, r := range readings {
				fmt.Fprintf(&sb, "%-16s daily %.6f  annual %.4f\n", r.Estimator, r.Daily, r.Annual)
			}
			return emit(cmd, readings, strings.TrimRight(sb.String(), "\n"))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "price CSV file")
	cmd.Flags().IntVar(&days, "days", 21, "bars used by the range estimators")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func priceCmd() *cobra.Command {
	var (
		typ    string
		option models.Option
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a single option under every pricing model",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := models.ParseOptionType(typ)
			if err != nil {
				return err
			}
			option.Type = t
			option.Name = t.String()
			option.NumShares = 1

			quotes, err := newService().PriceOption(option)
			if err != nil {
				return err
			}
			var sb strings.Builder
			for _, q := range quotes {
				fmt.Fprintf(&sb, "%-24s %.4f", q.Pricer, q.Value)
				if g := q.Greeks; g != nil {
					fmt.Fprintf(&sb, "  delta %.4f gamma %.4f vega %.4f theta %.4f rho %.4f", g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho)
				}
				sb.WriteByte('\n')
			}
			return emit(cmd, quotes, strings.TrimRight(sb.String(), "\n"))
		},
	}
	cmd.Flags().StringVar(&typ, "type", "european_call", "option type")
	cmd.Flags().Float64Var(&option.InitialStockPrice, "stock", 0, "underlying price")
	cmd.Flags().Float64Var(&option.Strike, "strike", 0, "strike price")
	cmd.Flags().IntVar(&option.TimeToMaturity, "days", 0, "trading days to maturity")
	cmd.Flags().Float64Var(&option.Interest, "rate", 0, "annual risk free rate")
	cmd.Flags().Float64Var(&option.DailyVolatility, "vol", 0, "daily volatility")
	return cmd
}
