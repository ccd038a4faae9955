package client

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/yaml"
)

type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

const (
	DefaultProtocol = ProtocolHTTP
	DefaultHost     = "api.safestream.com"
	DefaultVersion  = "0.1"
)

// ParseProtocol returns the protocol matching s, ignoring case.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case ProtocolHTTP, ProtocolHTTPS:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported protocol %q, must be one of %s, %s", s, ProtocolHTTP, ProtocolHTTPS)
	}
}

// Config holds the information needed to connect to the SafeStream API.
type Config struct {
	// APIKey is exchanged for a bearer token on first use.
	APIKey  string  `json:"apiKey"`
	Service Service `json:"service"`
}

// Service describes where the SafeStream API lives: {protocol}://{host}/{version}/.
type Service struct {
	Protocol Protocol `json:"protocol"`
	Host     string   `json:"host"`
	Version  string   `json:"version"`
}

func (c *Config) Equal(c2 *Config) bool {
	if c == c2 {
		return true
	}
	if c == nil || c2 == nil {
		return false
	}
	return c.APIKey == c2.APIKey && c.Service.Equal(&c2.Service)
}

func (s *Service) Equal(s2 *Service) bool {
	if s == s2 {
		return true
	}
	if s == nil || s2 == nil {
		return false
	}
	return s.Protocol == s2.Protocol && s.Host == s2.Host && s.Version == s2.Version
}

func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}
	return &Config{
		APIKey:  c.APIKey,
		Service: *c.Service.DeepCopy(),
	}
}

func (s *Service) DeepCopy() *Service {
	if s == nil {
		return nil
	}
	s2 := *s
	return &s2
}

func NewDefault() *Config {
	return &Config{
		Service: Service{
			Protocol: DefaultProtocol,
			Host:     DefaultHost,
			Version:  DefaultVersion,
		},
	}
}

// BaseURL returns the root of the versioned API, always ending with a slash.
func (s Service) BaseURL() string {
	return fmt.Sprintf("%s://%s/%s/", s.Protocol, strings.TrimSuffix(s.Host, "/"), strings.Trim(s.Version, "/"))
}

// ResourceURL returns the absolute URL of a resource path relative to the API root, e.g. "videos".
func (s Service) ResourceURL(resource string) string {
	return s.BaseURL() + strings.TrimPrefix(resource, "/")
}

// DefaultConfigPath returns the default path to the SafeStream client config file.
func DefaultConfigPath() string {
	return filepath.Join(homedir.HomeDir(), ".safestream", "client.yaml")
}

// ParseConfigFile reads and validates the config file at filename.
func ParseConfigFile(filename string) (*Config, error) {
	config, err := ReadConfigFile(filename)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ReadConfigFile reads the config file at filename on top of the defaults, without validating it.
func ReadConfigFile(filename string) (*Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	config := NewDefault()
	if err := yaml.Unmarshal(contents, config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return config, nil
}

// WriteConfig writes a client config file using the given parameters.
func WriteConfig(filename string, apiKey string, service Service) error {
	config := NewDefault()
	config.APIKey = apiKey
	config.Service = service

	if err := config.Validate(); err != nil {
		return err
	}
	return config.Persist(filename)
}

func (c *Config) Persist(filename string) error {
	contents, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.WriteFile(filename, contents, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	validationErrors := make([]error, 0)
	if len(c.APIKey) == 0 {
		validationErrors = append(validationErrors, fmt.Errorf("no api key found"))
	}
	validationErrors = append(validationErrors, validateService(c.Service)...)
	if len(validationErrors) > 0 {
		return fmt.Errorf("invalid configuration: %v", utilerrors.NewAggregate(validationErrors).Error())
	}
	return nil
}

func validateService(service Service) []error {
	validationErrors := make([]error, 0)
	if _, err := ParseProtocol(string(service.Protocol)); err != nil {
		validationErrors = append(validationErrors, err)
	}
	if len(service.Host) == 0 {
		validationErrors = append(validationErrors, fmt.Errorf("no host found"))
	} else {
		u, err := url.Parse(fmt.Sprintf("%s://%s", ProtocolHTTP, service.Host))
		if err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("invalid host format %q: %w", service.Host, err))
		}
		if err == nil && len(u.Hostname()) == 0 {
			validationErrors = append(validationErrors, fmt.Errorf("invalid host format %q: no hostname", service.Host))
		}
		if err == nil && u.Path != "" && u.Path != "/" {
			validationErrors = append(validationErrors, fmt.Errorf("invalid host format %q: must not contain a path", service.Host))
		}
	}
	if len(strings.Trim(service.Version, "/")) == 0 {
		validationErrors = append(validationErrors, fmt.Errorf("no api version found"))
	}
	return validationErrors
}
