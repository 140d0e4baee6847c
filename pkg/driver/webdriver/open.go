package webdriver

import (
	"context"
	"fmt"

	"github.com/devicelab-dev/webquery/pkg/config"
	"github.com/devicelab-dev/webquery/pkg/core"
)

// Open connects to the remote end described by cfg and applies its script
// timeout.
func Open(ctx context.Context, cfg config.WebDriverConfig, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, core.ErrInvalidConfig.
			WithMessage("webdriver.url is not set").
			WithDetails(map[string]interface{}{"field": "webdriver.url"})
	}

	c := NewClient(cfg.URL, opts...)
	if err := c.Connect(ctx, cfg.Capabilities); err != nil {
		return nil, err
	}
	if err := c.SetTimeouts(ctx, Timeouts{Script: cfg.ScriptTimeout}); err != nil {
		_ = c.Disconnect(ctx)
		return nil, fmt.Errorf("set timeouts: %w", err)
	}
	return c, nil
}
