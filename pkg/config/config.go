// Package config handles configuration for webquery.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/loader"
	"gopkg.in/yaml.v3"
)

// Config represents the workspace configuration (webquery.yaml).
type Config struct {
	WebDriver WebDriverConfig `yaml:"webdriver"`
	CDP       CDPConfig       `yaml:"cdp"`
	Libraries LibraryConfig   `yaml:"libraries"`

	// Prerequisite wait
	LoadTimeout  time.Duration `yaml:"loadTimeout"`  // e.g. "3s"
	PollInterval time.Duration `yaml:"pollInterval"` // e.g. "100ms"

	// Logging
	LogFile string `yaml:"logFile"`
	Verbose bool   `yaml:"verbose"`
}

// WebDriverConfig points at a W3C WebDriver remote end.
type WebDriverConfig struct {
	URL           string                 `yaml:"url"`
	Capabilities  map[string]interface{} `yaml:"capabilities"`
	ScriptTimeout time.Duration          `yaml:"scriptTimeout"`
}

// CDPConfig selects a Chrome DevTools endpoint, or a browser to launch.
type CDPConfig struct {
	ControlURL string `yaml:"controlURL"` // ws:// URL of a running browser
	Bin        string `yaml:"bin"`        // browser binary to launch
	Headless   *bool  `yaml:"headless"`
}

// LibraryConfig overrides where jQuery and Sizzle are loaded from.
type LibraryConfig struct {
	JQuery         string `yaml:"jquery"`         // full URI
	JQueryVersion  string `yaml:"jqueryVersion"`  // used when JQuery is empty
	JQueryVariable string `yaml:"jqueryVariable"` // global the selectors call, default jQuery
	Sizzle         string `yaml:"sizzle"`
	Dir            string `yaml:"dir"` // local copies, looked up by file name
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LoadTimeout:  loader.DefaultTimeout,
		PollInterval: loader.DefaultPollInterval,
		Libraries: LibraryConfig{
			JQueryVariable: "jQuery",
		},
	}
}

// Load loads configuration from a file. Fields missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("failed to parse %s: %v", path, err)).
			WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir looks for webquery.yaml or webquery.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"webquery.yaml", "webquery.yml"} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return defaults
	return Default(), nil
}

// Discover loads the first config found in the working directory, then the
// webquery home directory.
func Discover() (*Config, error) {
	dirs := []string{"."}
	if home := GetHome(); home != "" {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		for _, name := range []string{"webquery.yaml", "webquery.yml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return LoadFromDir(dir)
			}
		}
	}
	return Default(), nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	invalid := func(field, msg string) error {
		return core.ErrInvalidConfig.
			WithMessage(field + ": " + msg).
			WithDetails(map[string]interface{}{"field": field})
	}

	if c.LoadTimeout < 0 {
		return invalid("loadTimeout", "must not be negative")
	}
	if c.PollInterval < 0 {
		return invalid("pollInterval", "must not be negative")
	}
	if c.LoadTimeout > 0 && c.PollInterval > c.LoadTimeout {
		return invalid("pollInterval", "must not exceed loadTimeout")
	}
	if c.WebDriver.ScriptTimeout < 0 {
		return invalid("webdriver.scriptTimeout", "must not be negative")
	}
	if c.WebDriver.URL != "" {
		u, err := url.Parse(c.WebDriver.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("webdriver.url", "must be an http(s) URL")
		}
	}
	if c.CDP.ControlURL != "" {
		u, err := url.Parse(c.CDP.ControlURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss" && u.Scheme != "http") {
			return invalid("cdp.controlURL", "must be a ws(s) or http URL")
		}
	}
	if v := c.Libraries.JQueryVariable; v != "" && strings.TrimSpace(v) != v {
		return invalid("libraries.jqueryVariable", "must not contain surrounding whitespace")
	}
	if c.Libraries.JQuery != "" && c.Libraries.JQueryVersion != "" {
		return invalid("libraries", "set either jquery or jqueryVersion, not both")
	}
	return nil
}

// JQueryLoader returns the jQuery loader after applying library overrides.
func (c *Config) JQueryLoader() (loader.Loader, error) {
	if c.Libraries.JQuery != "" {
		return loader.JQuery().WithURI(c.Libraries.JQuery), nil
	}
	if c.Libraries.JQueryVersion != "" {
		return loader.JQueryVersion(c.Libraries.JQueryVersion)
	}
	return loader.JQuery(), nil
}

// SizzleLoader returns the Sizzle loader after applying library overrides.
func (c *Config) SizzleLoader() loader.Loader {
	if c.Libraries.Sizzle != "" {
		return loader.Sizzle().WithURI(c.Libraries.Sizzle)
	}
	return loader.Sizzle()
}

// LoaderOptions converts the wait settings for loader.Ensure.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		Timeout:      c.LoadTimeout,
		PollInterval: c.PollInterval,
	}
}

// LibraryDir returns the directory holding local library copies.
func (c *Config) LibraryDir() string {
	if c.Libraries.Dir != "" {
		return c.Libraries.Dir
	}
	return GetLibraryDir()
}
