package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration for the workflow engine service.
type Config struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`
	Engine struct {
		TaskTimeout     time.Duration `mapstructure:"task_timeout"`
		StoreAttempts   int           `mapstructure:"store_attempts"`
		StoreRetryDelay time.Duration `mapstructure:"store_retry_delay"`
		// SimulatedStepDelay is the fake provider latency for the
		// built-in simulated executors.
		SimulatedStepDelay time.Duration `mapstructure:"simulated_step_delay"`
	} `mapstructure:"engine"`
}

// Load reads configuration from config.yaml (working dir or ./config) with
// MARKETINGOS_-prefixed environment overrides. Missing config files fall
// back to defaults so the service can boot from env alone.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("MARKETINGOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.dsn", "host=localhost user=postgres password=postgres dbname=marketingos port=5432 sslmode=disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("engine.task_timeout", "2m")
	v.SetDefault("engine.store_attempts", 3)
	v.SetDefault("engine.store_retry_delay", "100ms")
	v.SetDefault("engine.simulated_step_delay", "2s")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
