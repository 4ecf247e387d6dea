package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string

		RollbarToken string

		API   APIConfig
		Cache CacheConfig
	}

	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	CacheConfig struct {
		// GracePeriod is how long an unsubscribed cache entry survives
		// before being evicted.
		GracePeriod time.Duration
	}
)

// NewConfig loads the configuration from the environment;
// an optional `config/.env.<env>` file is loaded first if it exists.
func NewConfig() (*Config, error) {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Elimu")
	conf.SetDefault("build", "local")
	conf.SetDefault("apiBaseUrl", "http://localhost:5000/api/v1")
	conf.SetDefault("apiTimeout", 30*time.Second)
	conf.SetDefault("cacheGracePeriod", 60*time.Second)
	conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		Build:        conf.GetString("build"),
		RollbarToken: conf.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: conf.GetString("apiBaseUrl"),
			Timeout: conf.GetDuration("apiTimeout"),
		},
		Cache: CacheConfig{
			GracePeriod: conf.GetDuration("cacheGracePeriod"),
		},
	}, nil
}
