// Package cli provides the command-line interface for webquery.
package cli

import (
	"fmt"
	"os"

	"github.com/devicelab-dev/webquery/pkg/config"
	"github.com/devicelab-dev/webquery/pkg/logger"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to webquery.yaml (default: discovered in . then $WEBQUERY_HOME)",
		EnvVars: []string{"WEBQUERY_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable debug logging",
		EnvVars: []string{"WEBQUERY_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file",
		EnvVars: []string{"WEBQUERY_LOG_FILE"},
	},
	&cli.StringFlag{
		Name:    "webdriver-url",
		Usage:   "WebDriver server URL (for the webdriver backend)",
		EnvVars: []string{"WEBQUERY_WEBDRIVER_URL"},
	},
	&cli.DurationFlag{
		Name:    "load-timeout",
		Usage:   "How long to wait for jQuery or Sizzle to load",
		EnvVars: []string{"WEBQUERY_LOAD_TIMEOUT"},
	},
}

// NewApp returns the webquery application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "webquery",
		Usage:   "Compose and run jQuery, Sizzle and querySelectorAll lookups",
		Version: Version,
		Description: `webquery builds the JavaScript a WebDriver session runs to find
elements with jQuery, Sizzle or querySelectorAll, and can evaluate it
against an HTML file, a URL, a WebDriver server or Chrome.

Examples:
  webquery script --kind jquery --find li --eq 1 "#menu"
  webquery query --html page.html ".item"
  webquery query --backend cdp --url https://example.com --text "a"`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			scriptCommand,
			queryCommand,
			checkCommand,
		},
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies the global flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover()
	}
	if err != nil {
		return nil, err
	}

	if c.IsSet("webdriver-url") {
		cfg.WebDriver.URL = c.String("webdriver-url")
	}
	if c.IsSet("load-timeout") {
		cfg.LoadTimeout = c.Duration("load-timeout")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.LogFile != "" {
		if err := logger.Init(cfg.LogFile); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "Warning: %v\n", err)
		}
	}
	logger.SetVerbose(cfg.Verbose)
	return cfg, nil
}
