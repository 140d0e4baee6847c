package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/webquery/pkg/config"
	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/driver/cdp"
	"github.com/devicelab-dev/webquery/pkg/driver/webdriver"
	"github.com/devicelab-dev/webquery/pkg/finder"
	"github.com/devicelab-dev/webquery/pkg/jsengine"
	"github.com/devicelab-dev/webquery/pkg/logger"
	"github.com/urfave/cli/v2"
)

// Backends accepted by --backend.
const (
	backendPage      = "page"
	backendWebDriver = "webdriver"
	backendCDP       = "cdp"
)

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "Evaluate a selector against a page and print the matches",
	ArgsUsage: "SELECTOR",
	Description: `Evaluate a selector and print one line per match: its index and CSS path,
followed by its text with --text.

The page backend parses --html or downloads --url and runs the lookup
without a browser. The webdriver and cdp backends open --url in a real
browser; jQuery and Sizzle are injected when the page lacks them.

Examples:
  webquery query --html page.html "#menu li"
  webquery query --kind jquery --find a --url https://example.com "nav"
  webquery --webdriver-url http://127.0.0.1:4444 query --backend webdriver --url https://example.com h1`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "html",
			Usage: "HTML file to query",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "URL to open",
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Where to evaluate (page, webdriver, cdp)",
			Value:   backendPage,
		},
		&cli.BoolFlag{
			Name:  "text",
			Usage: "Print each match's text",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Give up after this long",
			Value: time.Minute,
		},
	}, selectorFlags...),
	Action: runQuery,
}

// session is an open page plus whatever releases it.
type session struct {
	exec  core.ScriptExecutor
	close func()
}

func runQuery(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	sel, err := buildSelector(c, cfg.Libraries.JQueryVariable)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	s, err := openSession(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	f, err := finder.FromConfig(s.exec, cfg)
	if err != nil {
		return err
	}

	logger.Info("query %s", sel.Description())
	elements, err := f.FindElements(ctx, sel)
	if err != nil {
		return err
	}
	for i, el := range elements {
		p, err := el.Path(ctx)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%d\t%s", i, p)
		if c.Bool("text") {
			text, err := el.Text(ctx)
			if err != nil {
				return err
			}
			line += "\t" + strings.TrimSpace(text)
		}
		fmt.Fprintln(c.App.Writer, line)
	}
	logger.Info("query matched %d element(s)", len(elements))
	return nil
}

func openSession(ctx context.Context, c *cli.Context, cfg *config.Config) (*session, error) {
	htmlFile, pageURL := c.String("html"), c.String("url")

	switch backend := c.String("backend"); backend {
	case backendPage:
		if (htmlFile == "") == (pageURL == "") {
			return nil, fmt.Errorf("the page backend needs exactly one of --html or --url")
		}
		page, err := openPage(ctx, htmlFile, pageURL, cfg)
		if err != nil {
			return nil, err
		}
		return &session{exec: page, close: page.Close}, nil

	case backendWebDriver:
		if pageURL == "" {
			return nil, fmt.Errorf("the %s backend needs --url", backend)
		}
		client, err := webdriver.Open(ctx, cfg.WebDriver)
		if err != nil {
			return nil, err
		}
		closeClient := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("disconnect: %v", err)
			}
		}
		if err := client.OpenURL(ctx, pageURL); err != nil {
			closeClient()
			return nil, err
		}
		return &session{exec: client, close: closeClient}, nil

	case backendCDP:
		if pageURL == "" {
			return nil, fmt.Errorf("the %s backend needs --url", backend)
		}
		browser, err := cdp.Connect(ctx, cfg.CDP)
		if err != nil {
			return nil, err
		}
		exec, err := browser.Open(ctx, pageURL)
		if err != nil {
			_ = browser.Close()
			return nil, err
		}
		return &session{exec: exec, close: func() {
			_ = exec.Close()
			if err := browser.Close(); err != nil {
				logger.Warn("close browser: %v", err)
			}
		}}, nil

	default:
		return nil, core.InvalidArgument("backend", fmt.Sprintf("unknown backend %q (page, webdriver, cdp)", backend))
	}
}

// openPage builds an offline page from a file or a download. Library URIs
// are served from the library directory when a file with the same base name
// exists there.
func openPage(ctx context.Context, htmlFile, pageURL string, cfg *config.Config) (*jsengine.Page, error) {
	opts := []jsengine.PageOption{jsengine.WithResolver(localLibraries(cfg.LibraryDir()))}

	if pageURL != "" {
		return jsengine.FetchPage(ctx, nil, pageURL, opts...)
	}

	src, err := os.ReadFile(htmlFile) //#nosec G304 -- user-provided page
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", htmlFile, err)
	}
	if abs, err := filepath.Abs(htmlFile); err == nil {
		opts = append(opts, jsengine.WithURL("file://"+filepath.ToSlash(abs)))
	}
	return jsengine.NewPage(string(src), opts...)
}

func localLibraries(dir string) func(uri string) (string, bool) {
	return func(uri string) (string, bool) {
		if dir == "" {
			return "", false
		}
		name := path.Base(uri)
		if name == "." || name == "/" {
			return "", false
		}
		data, err := os.ReadFile(filepath.Join(dir, name)) //#nosec G304 -- library directory
		if err != nil {
			return "", false
		}
		logger.Debug("serving %s from %s", uri, dir)
		return string(data), true
	}
}
