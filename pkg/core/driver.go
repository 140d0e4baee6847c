package core

import (
	"context"
)

// ScriptExecutor runs JavaScript in a browser page.
// Implementations: W3C WebDriver (Selenium, chromedriver), Chrome DevTools, the
// offline goja page.
//
// The script is a function body: it receives args as `arguments` and hands its
// result back with `return`. Results are loosely typed: nil, bool, float64,
// string, Element, []interface{} or map[string]interface{}.
type ScriptExecutor interface {
	ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error)
}

// Element is an opaque reference to a DOM element owned by a ScriptExecutor.
// Passing an Element back as a script argument makes it available to the
// script as the corresponding DOM node.
type Element interface {
	ElementID() string
}
