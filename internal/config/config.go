package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config interface {
	EnvConfig
	FlickrConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetProjectDomain() string
	GetBaseURL() string
	GetCallbackURL() string
}

type mainConfig struct {
	EnvVars
	Flickr
	Security
}

// Option overrides a value after the environment has been read, e.g. from a CLI flag.
type Option func(*mainConfig)

func WithPort(port string) Option {
	return func(c *mainConfig) {
		if port != "" {
			c.EnvVars.Port = port
		}
	}
}

func WithLogLevel(level string) Option {
	return func(c *mainConfig) {
		if level != "" {
			c.EnvVars.LogLevel = level
		}
	}
}

// New reads the process environment into a validated Config.
func New(opts ...Option) (Config, error) {
	c := mainConfig{}
	if err := envconfig.Process("", &c.EnvVars); err != nil {
		return nil, fmt.Errorf("[config New] environment: %w", err)
	}
	if err := envconfig.Process("", &c.Flickr); err != nil {
		return nil, fmt.Errorf("[config New] flickr: %w", err)
	}
	if err := envconfig.Process("", &c.Security); err != nil {
		return nil, fmt.Errorf("[config New] security: %w", err)
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Security.decodeCookieKey(); err != nil {
		return nil, err
	}
	return c, nil
}
