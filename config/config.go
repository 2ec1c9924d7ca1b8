package config

import (
	"strconv"
	"strings"

	"github.com/bcdannyboy/stocvar/models"
	"github.com/spf13/viper"
)

type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type MonteCarlo struct {
	Simulations int    `mapstructure:"simulations"`
	Seed        uint64 `mapstructure:"seed"`
	Workers     int    `mapstructure:"workers"`
	TimePeriod  int    `mapstructure:"time_period"`
}

type Backtest struct {
	Days int `mapstructure:"days"`
}

type Stress struct {
	Days        int     `mapstructure:"days"`
	CrashFactor float64 `mapstructure:"crash_factor"`
	Seed        uint64  `mapstructure:"seed"`
}

// Config is the engine configuration. A zero seed asks for a fresh random
// seed on every run.
type Config struct {
	Log        Log                `mapstructure:"log"`
	MonteCarlo MonteCarlo         `mapstructure:"montecarlo"`
	Backtest   Backtest           `mapstructure:"backtest"`
	Stress     Stress             `mapstructure:"stress"`
	Params     models.Params      `mapstructure:"params"`
	ZTable     map[string]float64 `mapstructure:"z_table"`
}

func setDefaults(v *viper.Viper) {
	p := models.DefaultParams()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("montecarlo.simulations", 1000)
	v.SetDefault("montecarlo.seed", 0)
	v.SetDefault("montecarlo.workers", 0)
	v.SetDefault("montecarlo.time_period", 10)
	v.SetDefault("backtest.days", 100)
	v.SetDefault("stress.days", 100)
	v.SetDefault("stress.crash_factor", 0.5)
	v.SetDefault("stress.seed", 0)
	v.SetDefault("params.lambda", p.Lambda)
	v.SetDefault("params.first_day_variance", p.FirstDayVariance)
	v.SetDefault("params.first_day_return", p.FirstDayReturn)
	v.SetDefault("params.garch.gamma", p.GARCH.Gamma)
	v.SetDefault("params.garch.alpha", p.GARCH.Alpha)
	v.SetDefault("params.garch.beta", p.GARCH.Beta)
}

// Load reads defaults, then the optional YAML file at path, then STOCVAR_*
// environment variables (STOCVAR_MONTECARLO_SEED=42 sets montecarlo.seed).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STOCVAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, models.Wrap(models.KindConfiguration, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, models.Wrap(models.KindConfiguration, path, err)
	}

	table := models.DefaultZTable()
	for k, z := range cfg.ZTable {
		c, err := strconv.Atoi(k)
		if err != nil {
			return nil, models.Errorf(models.KindConfiguration, "z_table", "confidence %q is not an integer", k)
		}
		table[c] = z
	}
	cfg.Params = cfg.Params.WithZTable(table)

	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
