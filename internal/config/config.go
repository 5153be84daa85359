package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config is the bridge's environment-driven configuration.
type Config struct {
	AppName string `envconfig:"APP_NAME" default:"LinkedIn Bridge"`
	UserID  string `envconfig:"BRIDGE_USER_ID" default:"@admin:localhost"`

	Logging  LogConfig
	LinkedIn LinkedInConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"true"`
}

// LinkedInConfig overrides the provider endpoints, mainly to point the
// bridge at a stub server during development.
type LinkedInConfig struct {
	SeedURL   string `envconfig:"LINKEDIN_SEED_URL" default:"https://www.linkedin.com/uas/login"`
	LoginURL  string `envconfig:"LINKEDIN_LOGIN_URL" default:"https://www.linkedin.com/checkpoint/lg/login-submit"`
	VerifyURL string `envconfig:"LINKEDIN_VERIFY_URL" default:"https://www.linkedin.com/checkpoint/challenge/verify"`
	MeURL     string `envconfig:"LINKEDIN_ME_URL" default:"https://www.linkedin.com/voyager/api/me"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] envconfig")
	}
	return &cfg, nil
}
