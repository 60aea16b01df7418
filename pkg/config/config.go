// Package config reads the configuration file of port-kics.
// The configuration file customizes the Port API endpoint, the blueprints of entities,
// and the retry policy of API requests. Every setting is optional.
package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
	"github.com/suzuki-shunsuke/port-kics/pkg/retry"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL    string      `json:"base_url,omitempty" yaml:"base_url" jsonschema:"description=Base URL of Port API. The default is https://api.getport.io/v1"`
	Blueprints *Blueprints `json:"blueprints,omitempty"`
	Relation   string      `json:"relation,omitempty" jsonschema:"description=Relation name from the service entity to findings. The default is the finding blueprint"`
	Retry      *Retry      `json:"retry,omitempty"`
}

type Blueprints struct {
	Service string `json:"service,omitempty" jsonschema:"description=Blueprint of the repository. The default is service"`
	Finding string `json:"finding,omitempty" jsonschema:"description=Blueprint of KICS findings. The default is kicsScan"`
}

type Retry struct {
	MaxRetries int    `json:"max_retries,omitempty" yaml:"max_retries" jsonschema:"description=Maximum number of attempts per request. The default is 5"`
	BaseDelay  string `json:"base_delay,omitempty" yaml:"base_delay" jsonschema:"description=Base delay of exponential backoff. The default is 1s"`
	MaxDelay   string `json:"max_delay,omitempty" yaml:"max_delay" jsonschema:"description=Maximum delay of exponential backoff. The default is 32s"`
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse a duration: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("duration must be positive")
	}
	return d, nil
}

func (r *Retry) Init() error {
	if r.MaxRetries < 0 {
		return errors.New("max_retries must not be negative")
	}
	var err error
	r.baseDelay, err = parseDuration(r.BaseDelay, retry.DefaultBaseDelay)
	if err != nil {
		return fmt.Errorf("base_delay is invalid: %w", err)
	}
	r.maxDelay, err = parseDuration(r.MaxDelay, retry.DefaultMaxDelay)
	if err != nil {
		return fmt.Errorf("max_delay is invalid: %w", err)
	}
	if r.maxDelay < r.baseDelay {
		return errors.New("max_delay must be greater than or equal to base_delay")
	}
	return nil
}

// Init validates the configuration and fills in default values.
func (c *Config) Init() error {
	if c.BaseURL == "" {
		c.BaseURL = port.DefaultBaseURL
	}
	if c.Blueprints == nil {
		c.Blueprints = &Blueprints{}
	}
	if c.Blueprints.Service == "" {
		c.Blueprints.Service = port.BlueprintService
	}
	if c.Blueprints.Finding == "" {
		c.Blueprints.Finding = port.BlueprintKICSScan
	}
	if c.Relation == "" {
		c.Relation = c.Blueprints.Finding
	}
	if c.Retry == nil {
		c.Retry = &Retry{}
	}
	if err := c.Retry.Init(); err != nil {
		return fmt.Errorf("initialize retry: %w", err)
	}
	return nil
}

// RetryPolicy returns the retry policy. Init must be called in advance.
func (c *Config) RetryPolicy() *retry.Policy {
	p := retry.NewPolicy()
	if c.Retry.MaxRetries > 0 {
		p.MaxRetries = c.Retry.MaxRetries
	}
	p.BaseDelay = c.Retry.baseDelay
	p.MaxDelay = c.Retry.maxDelay
	return p
}

func getConfigPath(fs afero.Fs) (string, error) {
	for _, path := range []string{".port-kics.yaml", ".github/port-kics.yaml", ".port-kics.yml", ".github/port-kics.yml"} {
		f, err := afero.Exists(fs, path)
		if err != nil {
			return "", fmt.Errorf("check if %s exists: %w", path, err)
		}
		if f {
			return path, nil
		}
	}
	return "", nil
}

type Finder struct {
	fs afero.Fs
}

func NewFinder(fs afero.Fs) *Finder {
	return &Finder{fs: fs}
}

func (f *Finder) Find(configFilePath string) (string, error) {
	if configFilePath != "" {
		return configFilePath, nil
	}
	p, err := getConfigPath(f.fs)
	if err != nil {
		return "", err
	}
	return p, nil
}

type Reader struct {
	fs afero.Fs
}

func NewReader(fs afero.Fs) *Reader {
	return &Reader{fs: fs}
}

// Read reads a configuration file and initializes cfg.
// If configFilePath is empty, cfg is initialized with default values.
func (r *Reader) Read(cfg *Config, configFilePath string) error {
	if configFilePath != "" {
		if err := r.decode(cfg, configFilePath); err != nil {
			return err
		}
	}
	if err := cfg.Init(); err != nil {
		return fmt.Errorf("initialize a configuration: %w", err)
	}
	return nil
}

func (r *Reader) decode(cfg *Config, configFilePath string) error {
	f, err := r.fs.Open(configFilePath)
	if err != nil {
		return fmt.Errorf("open a configuration file: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode a configuration file as YAML: %w", err)
	}
	return nil
}
