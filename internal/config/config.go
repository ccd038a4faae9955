package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/safestream/safestream-go/pkg/safestream/client"
)

var singleConfig *Config = nil

// Config is the CLI configuration read from SAFESTREAM_* environment variables.
// Empty connection fields leave the config file or built-in defaults in place.
type Config struct {
	APIKey         string        `envconfig:"SAFESTREAM_API_KEY" default:""`
	Protocol       string        `envconfig:"SAFESTREAM_PROTOCOL" default:""`
	Host           string        `envconfig:"SAFESTREAM_HOST" default:""`
	Version        string        `envconfig:"SAFESTREAM_VERSION" default:""`
	ConfigFile     string        `envconfig:"SAFESTREAM_CONFIG" default:""`
	LogLevel       string        `envconfig:"SAFESTREAM_LOG_LEVEL" default:"info"`
	RequestTimeout time.Duration `envconfig:"SAFESTREAM_REQUEST_TIMEOUT" default:"60s"`
}

// New loads the configuration once per process, reading a .env file from the working directory if there is one.
func New() (*Config, error) {
	if singleConfig == nil {
		c, err := Load()
		if err != nil {
			return nil, err
		}
		singleConfig = c
	}
	return singleConfig, nil
}

// Load reads the given dotenv files (".env" when none is given) into the environment,
// without overriding variables already set, then processes the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	c := new(Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply returns a copy of base with every connection setting present in c overriding it.
func (c *Config) Apply(base *client.Config) (*client.Config, error) {
	out := client.NewDefault()
	if base != nil {
		out = base.DeepCopy()
	}

	if c.APIKey != "" {
		out.APIKey = c.APIKey
	}
	if c.Protocol != "" {
		p, err := client.ParseProtocol(c.Protocol)
		if err != nil {
			return nil, err
		}
		out.Service.Protocol = p
	}
	if c.Host != "" {
		out.Service.Host = c.Host
	}
	if c.Version != "" {
		out.Service.Version = c.Version
	}
	return out, nil
}
