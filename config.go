package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddress   = "localhost:3001"
	defaultUpstream  = "https://tb.api.mkeai.com/v1/chat/completions"
	defaultAPIKeyEnv = "VITE_DEEPSEEK_API_KEY"
	defaultEnvFile   = ".env.local"
	defaultTimeout   = 30

	envUpstream = "CHAT_PROXY_UPSTREAM"
	envAddress  = "CHAT_PROXY_ADDRESS"
	envLogLevel = "LOG_LEVEL"
)

// Config is built once at startup and only read afterwards.
type Config struct {
	Address   string `yaml:"address"`
	Upstream  string `yaml:"upstream"`
	APIKeyEnv string `yaml:"api_key_env"`
	// Timeout of the upstream call, in seconds.
	Timeout  int64  `yaml:"timeout"`
	LogLevel string `yaml:"log_level"`

	// APIKey is only ever taken from the environment or the env file.
	APIKey      string    `yaml:"-"`
	UpstreamURL *url.URL  `yaml:"-"`
	CliConfig   CliConfig `yaml:"-"`
}

// CliConfig holds the command line overrides.
type CliConfig struct {
	ConfigFile string
	EnvFile    string
	Address    string
	Upstream   string
	LogLevel   string
}

// ReadConfig layers defaults, the optional YAML file, the env file,
// the process environment and finally the command line flags.
func ReadConfig(cli CliConfig) (*Config, error) {
	config := &Config{CliConfig: cli}

	if cli.ConfigFile != "" {
		data, err := os.ReadFile(cli.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file '%s': %w", cli.ConfigFile, err)
		}
	}

	envFile := cli.EnvFile
	if envFile == "" {
		envFile = defaultEnvFile
	}
	fileEnv, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fileEnv[key]
	}

	if v := lookup(envUpstream); v != "" {
		config.Upstream = v
	}
	if v := lookup(envAddress); v != "" {
		config.Address = v
	}
	if v := lookup(envLogLevel); v != "" {
		config.LogLevel = v
	}

	if cli.Upstream != "" {
		config.Upstream = cli.Upstream
	}
	if cli.Address != "" {
		config.Address = cli.Address
	}
	if cli.LogLevel != "" {
		config.LogLevel = cli.LogLevel
	}

	if config.APIKeyEnv == "" {
		config.APIKeyEnv = defaultAPIKeyEnv
	}
	config.APIKey = strings.TrimSpace(lookup(config.APIKeyEnv))

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// readEnvFile parses KEY=value lines. A missing file yields no values.
func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("Env file '%s' not found, using process environment only", path)
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read env file '%s': %w", path, err)
	}
	return values, nil
}

// normalize fills in defaults and validates the result.
func (c *Config) normalize() error {
	if c.Address == "" {
		log.Debugf("Address not set, use default value: %s", defaultAddress)
		c.Address = defaultAddress
	}
	if c.Upstream == "" {
		log.Debugf("Upstream not set, use default value: %s", defaultUpstream)
		c.Upstream = defaultUpstream
	}
	if c.Timeout == 0 {
		log.Debugf("Timeout not set, use default value: %d", defaultTimeout)
		c.Timeout = defaultTimeout
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}

	endpoint, err := url.Parse(c.Upstream)
	if err != nil {
		return fmt.Errorf("can't parse upstream URL '%s': %w", c.Upstream, err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return fmt.Errorf("upstream URL '%s' must use http or https", c.Upstream)
	}
	if endpoint.Host == "" {
		return fmt.Errorf("upstream URL '%s' has no host", c.Upstream)
	}
	c.UpstreamURL = endpoint
	return nil
}

// RequestTimeout is the deadline applied to every upstream call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
