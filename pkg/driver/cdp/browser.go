package cdp

import (
	"context"
	"fmt"
	"strings"

	"github.com/devicelab-dev/webquery/pkg/config"
	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/logger"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Browser is a connected Chrome instance, launched by us or already running.
type Browser struct {
	browser *rod.Browser
	lnch    *launcher.Launcher // nil when connected to a running browser
}

// Connect attaches to the browser at cfg.ControlURL, or launches one when
// no control URL is configured.
func Connect(ctx context.Context, cfg config.CDPConfig) (*Browser, error) {
	b := &Browser{}

	wsURL, err := b.controlURL(cfg)
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(wsURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		b.kill()
		return nil, core.ErrServerUnreachable.
			WithMessage("cannot connect to browser at " + wsURL).
			WithCause(err)
	}
	b.browser = browser
	return b, nil
}

func (b *Browser) controlURL(cfg config.CDPConfig) (string, error) {
	switch {
	case strings.HasPrefix(cfg.ControlURL, "ws://"), strings.HasPrefix(cfg.ControlURL, "wss://"):
		return cfg.ControlURL, nil
	case cfg.ControlURL != "":
		// http://host:port of a browser started with --remote-debugging-port
		u, err := launcher.ResolveURL(cfg.ControlURL)
		if err != nil {
			return "", core.ErrServerUnreachable.
				WithMessage("cannot resolve DevTools URL " + cfg.ControlURL).
				WithCause(err)
		}
		return u, nil
	}

	headless := true
	if cfg.Headless != nil {
		headless = *cfg.Headless
	}
	l := launcher.New().Headless(headless)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}
	b.lnch = l
	logger.Info("launched browser, control URL %s", u)
	return u, nil
}

// Open creates a tab, navigates it to url and waits for the load event.
func (b *Browser) Open(ctx context.Context, url string) (*Executor, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait for %s: %w", url, err)
	}
	return New(page), nil
}

// Close stops the browser if we launched it. A browser we attached to is
// left running.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil && b.lnch != nil {
		err = b.browser.Close()
	}
	b.kill()
	return err
}

func (b *Browser) kill() {
	if b.lnch != nil {
		b.lnch.Kill()
		b.lnch = nil
	}
}
