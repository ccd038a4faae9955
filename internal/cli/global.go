package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/safestream/safestream-go/internal/config"
	"github.com/safestream/safestream-go/pkg/log"
	"github.com/safestream/safestream-go/pkg/safestream"
	"github.com/safestream/safestream-go/pkg/safestream/client"
)

type GlobalOptions struct {
	ConfigFilePath string
	APIKey         string
	Protocol       string
	Host           string
	APIVersion     string
	LogLevel       string
	RequestTimeout time.Duration

	out io.Writer
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ConfigFilePath: client.DefaultConfigPath(),
		LogLevel:       "info",
		RequestTimeout: client.DefaultRequestTimeout,
		out:            os.Stdout,
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFilePath, "config", "c", o.ConfigFilePath, "Path to the client config file")
	fs.StringVar(&o.APIKey, "api-key", o.APIKey, "SafeStream API key")
	fs.StringVar(&o.Protocol, "protocol", o.Protocol, "Protocol used to reach the API (http or https)")
	fs.StringVar(&o.Host, "host", o.Host, "API host, optionally with a port")
	fs.StringVar(&o.APIVersion, "api-version", o.APIVersion, "API version")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level (debug, info, warn, error)")
	fs.DurationVar(&o.RequestTimeout, "request-timeout", o.RequestTimeout, "Timeout of a single API request")
}

// Complete fills every flag left unset from the SAFESTREAM_* environment and sets up logging.
func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	o.out = cmd.OutOrStdout()

	env, err := config.New()
	if err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	flags := cmd.Flags()
	fromEnv := func(flag string, target *string, value string) {
		if !flags.Changed(flag) && value != "" {
			*target = value
		}
	}
	fromEnv("config", &o.ConfigFilePath, env.ConfigFile)
	fromEnv("api-key", &o.APIKey, env.APIKey)
	fromEnv("protocol", &o.Protocol, env.Protocol)
	fromEnv("host", &o.Host, env.Host)
	fromEnv("api-version", &o.APIVersion, env.Version)
	fromEnv("log-level", &o.LogLevel, env.LogLevel)
	if !flags.Changed("request-timeout") && env.RequestTimeout > 0 {
		o.RequestTimeout = env.RequestTimeout
	}

	lvl, err := log.ParseLevel(o.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", o.LogLevel, err)
	}
	zap.ReplaceGlobals(log.InitLog(lvl))
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	return nil
}

// ClientConfig merges the config file, when present, with the settings given by flags or environment.
func (o *GlobalOptions) ClientConfig() (*client.Config, error) {
	base, err := client.ReadConfigFile(o.ConfigFilePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		base = client.NewDefault()
	}

	return o.overrides().Apply(base)
}

func (o *GlobalOptions) overrides() *config.Config {
	return &config.Config{
		APIKey:   o.APIKey,
		Protocol: o.Protocol,
		Host:     o.Host,
		Version:  o.APIVersion,
	}
}

func (o *GlobalOptions) API() (*safestream.API, error) {
	cfg, err := o.ClientConfig()
	if err != nil {
		return nil, err
	}
	api, err := safestream.NewFromConfig(cfg,
		client.WithRequestTimeout(o.RequestTimeout),
		client.WithLogger(zap.S().Named("safestream")),
	)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return api, nil
}
