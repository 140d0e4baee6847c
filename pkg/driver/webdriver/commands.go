package webdriver

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/devicelab-dev/webquery/pkg/core"
)

// Locator strategies defined by the W3C specification.
const (
	ByCSS             = "css selector"
	ByLinkText        = "link text"
	ByPartialLinkText = "partial link text"
	ByTagName         = "tag name"
	ByXPath           = "xpath"
)

// Timeouts configures the session timeouts. Zero fields are left unchanged.
type Timeouts struct {
	Script   time.Duration
	PageLoad time.Duration
	Implicit time.Duration
}

// Script execution

// ExecuteScript runs script synchronously in the current browsing context.
// Element arguments are sent as element references and element results come
// back as *Element.
func (c *Client) ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	encoded := make([]interface{}, len(args))
	for i, arg := range args {
		encoded[i] = encode(arg)
	}
	value, err := c.session(ctx, http.MethodPost, "/execute/sync", map[string]interface{}{
		"script": script,
		"args":   encoded,
	})
	if err != nil {
		return nil, err
	}
	return decode(value), nil
}

// Navigation

// OpenURL navigates the current browsing context to rawURL.
func (c *Client) OpenURL(ctx context.Context, rawURL string) error {
	_, err := c.session(ctx, http.MethodPost, "/url", map[string]interface{}{
		"url": rawURL,
	})
	return err
}

// CurrentURL returns the URL of the current page.
func (c *Client) CurrentURL(ctx context.Context) (string, error) {
	return c.text(ctx, "/url")
}

func (c *Client) Title(ctx context.Context) (string, error) {
	return c.text(ctx, "/title")
}

// Source returns the serialized DOM of the current page.
func (c *Client) Source(ctx context.Context) (string, error) {
	return c.text(ctx, "/source")
}

// Screenshot returns a PNG of the viewport.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	encoded, err := c.text(ctx, "/screenshot")
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// Timeouts

// SetTimeouts updates the session timeouts.
func (c *Client) SetTimeouts(ctx context.Context, t Timeouts) error {
	body := map[string]interface{}{}
	if t.Script > 0 {
		body["script"] = t.Script.Milliseconds()
	}
	if t.PageLoad > 0 {
		body["pageLoad"] = t.PageLoad.Milliseconds()
	}
	if t.Implicit > 0 {
		body["implicit"] = t.Implicit.Milliseconds()
	}
	if len(body) == 0 {
		return nil
	}
	_, err := c.session(ctx, http.MethodPost, "/timeouts", body)
	return err
}

// Element Operations

// FindElements finds elements with a native locator strategy.
func (c *Client) FindElements(ctx context.Context, strategy, value string) ([]*Element, error) {
	raw, err := c.session(ctx, http.MethodPost, "/elements", map[string]interface{}{
		"using": strategy,
		"value": value,
	})
	if err != nil {
		return nil, err
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("find elements: unexpected response %T", raw)
	}

	elements := make([]*Element, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			if id := extractElementID(m); id != "" {
				elements = append(elements, NewElement(id))
			}
		}
	}
	return elements, nil
}

// FindElement finds the first element with a native locator strategy.
func (c *Client) FindElement(ctx context.Context, strategy, value string) (*Element, error) {
	raw, err := c.session(ctx, http.MethodPost, "/element", map[string]interface{}{
		"using": strategy,
		"value": value,
	})
	if err != nil {
		return nil, err
	}
	m, _ := raw.(map[string]interface{})
	id := extractElementID(m)
	if id == "" {
		return nil, core.ErrNoSuchElement.
			WithMessage(fmt.Sprintf("no element matches %s %q", strategy, value))
	}
	return NewElement(id), nil
}

// ElementText returns the rendered text of el.
func (c *Client) ElementText(ctx context.Context, el core.Element) (string, error) {
	return c.text(ctx, elementPath(el)+"/text")
}

// ElementTagName returns the tag name of el.
func (c *Client) ElementTagName(ctx context.Context, el core.Element) (string, error) {
	return c.text(ctx, elementPath(el)+"/name")
}

// ElementAttribute returns the named attribute, or nil when el lacks it.
func (c *Client) ElementAttribute(ctx context.Context, el core.Element, name string) (*string, error) {
	raw, err := c.session(ctx, http.MethodGet, elementPath(el)+"/attribute/"+url.PathEscape(name), nil)
	if err != nil || raw == nil {
		return nil, err
	}
	s, ok := raw.(string)
	if !ok {
		s = fmt.Sprint(raw)
	}
	return &s, nil
}

func (c *Client) ClickElement(ctx context.Context, el core.Element) error {
	_, err := c.session(ctx, http.MethodPost, elementPath(el)+"/click", nil)
	return err
}

func (c *Client) ClearElement(ctx context.Context, el core.Element) error {
	_, err := c.session(ctx, http.MethodPost, elementPath(el)+"/clear", nil)
	return err
}

// SendKeys types text into el.
func (c *Client) SendKeys(ctx context.Context, el core.Element, text string) error {
	_, err := c.session(ctx, http.MethodPost, elementPath(el)+"/value", map[string]interface{}{
		"text": text,
	})
	return err
}

func elementPath(el core.Element) string {
	return "/element/" + el.ElementID()
}

func (c *Client) text(ctx context.Context, path string) (string, error) {
	raw, err := c.session(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	s, _ := raw.(string)
	return s, nil
}
