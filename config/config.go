package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "CATALOGDESK"
	configFileEnvName = "CATALOGDESK_CONFIG_FILE"
)

type Remote struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Catalog struct {
	StaleAfter          time.Duration `mapstructure:"stale_after"`
	ReloadAfterMutation bool          `mapstructure:"reload_after_mutation"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

type RateLimit struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

type DevStore struct {
	Addr        string `mapstructure:"addr"`
	DatabaseURL string `mapstructure:"database_url"`
	Seed        bool   `mapstructure:"seed"`
}

type Config struct {
	LogLevel  string    `mapstructure:"log_level"`
	HTTPAddr  string    `mapstructure:"http_addr"`
	Remote    Remote    `mapstructure:"remote"`
	Catalog   Catalog   `mapstructure:"catalog"`
	Metrics   Metrics   `mapstructure:"metrics"`
	RateLimit RateLimit `mapstructure:"rate_limit"`
	DevStore  DevStore  `mapstructure:"devstore"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8090")
	v.SetDefault("remote.base_url", "https://fakestoreapi.com")
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("catalog.stale_after", time.Hour)
	v.SetDefault("catalog.reload_after_mutation", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.token", "")
	v.SetDefault("rate_limit.per_second", 2.0)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("devstore.addr", ":8082")
	v.SetDefault("devstore.database_url", "")
	v.SetDefault("devstore.seed", true)
}

// Load reads defaults, then the optional config file (--config flag or
// CATALOGDESK_CONFIG_FILE), then CATALOGDESK_* environment variables.
func Load(args []string) (Config, error) {
	const op = "config.Load"

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("catalogdesk", pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "", "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", err
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env, nil
	}
	return *arg, nil
}

func (c Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		errs = append(errs, errors.New("remote.base_url: required"))
	}
	if c.Remote.Timeout < 0 {
		errs = append(errs, errors.New("remote.timeout: cannot be negative"))
	}
	if c.RateLimit.PerSecond <= 0 {
		errs = append(errs, errors.New("rate_limit.per_second: must be positive"))
	}
	return errors.Join(errs...)
}
