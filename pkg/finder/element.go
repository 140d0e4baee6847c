package finder

import (
	"context"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/parser"
	"github.com/devicelab-dev/webquery/pkg/script"
	"github.com/devicelab-dev/webquery/pkg/selector"
)

// WebElement is an element found by a selector. It remembers the selector and
// its position in the result so nested lookups can be scoped to it.
type WebElement struct {
	core.Element

	finder   *Finder
	selector selector.Selector
	index    int
}

// Selector returns the selector that found the element.
func (e *WebElement) Selector() selector.Selector { return e.selector }

// Index returns the element's position in the selector's result.
func (e *WebElement) Index() int { return e.index }

// Path returns a CSS path that uniquely addresses the element,
// e.g. "html > body:nth-child(2) > div:nth-child(2)".
func (e *WebElement) Path(ctx context.Context) (string, error) {
	return e.query(ctx, script.ElementPath)
}

// XPath returns the element's absolute XPath, e.g. "/html[1]/body[1]/div[2]".
func (e *WebElement) XPath(ctx context.Context) (string, error) {
	return e.query(ctx, script.ElementXPath)
}

// Text returns the element's rendered text.
func (e *WebElement) Text(ctx context.Context) (string, error) {
	return e.query(ctx, script.ElementText)
}

// TagName returns the lower-cased tag name.
func (e *WebElement) TagName(ctx context.Context) (string, error) {
	return e.query(ctx, script.ElementTagName)
}

// Attribute returns the named attribute, or nil when the element lacks it.
func (e *WebElement) Attribute(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, core.InvalidArgument("name", "must not be empty")
	}
	raw, err := e.finder.ExecuteScript(ctx, script.ElementAttribute, e.Element, name)
	if err != nil {
		return nil, err
	}
	return parser.As[*string](e.finder.parser, raw)
}

// FindElements evaluates sel inside this element.
func (e *WebElement) FindElements(ctx context.Context, sel selector.Selector) ([]*WebElement, error) {
	scoped, err := e.scope(ctx, sel)
	if err != nil {
		return nil, err
	}
	return e.finder.FindElements(ctx, scoped)
}

// FindElement evaluates sel inside this element and returns the first match.
func (e *WebElement) FindElement(ctx context.Context, sel selector.Selector) (*WebElement, error) {
	scoped, err := e.scope(ctx, sel)
	if err != nil {
		return nil, err
	}
	return e.finder.FindElement(ctx, scoped)
}

func (e *WebElement) scope(ctx context.Context, sel selector.Selector) (selector.Selector, error) {
	if sel == nil {
		return nil, core.InvalidArgument("selector", "must not be nil")
	}
	if err := sel.Err(); err != nil {
		return nil, err
	}
	path, err := e.Path(ctx)
	if err != nil {
		return nil, err
	}
	return sel.Root(path), nil
}

func (e *WebElement) query(ctx context.Context, js string) (string, error) {
	raw, err := e.finder.ExecuteScript(ctx, js, e.Element)
	if err != nil {
		return "", err
	}
	return parser.As[string](e.finder.parser, raw)
}
