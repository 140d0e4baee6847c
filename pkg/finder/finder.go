// Package finder locates elements by evaluating selector scripts through a
// core.ScriptExecutor. It checks or injects the library each selector needs
// before the selector script runs.
package finder

import (
	"context"
	"fmt"
	"strings"

	"github.com/devicelab-dev/webquery/pkg/config"
	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/loader"
	"github.com/devicelab-dev/webquery/pkg/logger"
	"github.com/devicelab-dev/webquery/pkg/parser"
	"github.com/devicelab-dev/webquery/pkg/script"
	"github.com/devicelab-dev/webquery/pkg/selector"
)

// maxLoggedScript truncates scripts in debug output.
const maxLoggedScript = 200

// Finder evaluates selectors against one page.
type Finder struct {
	exec   core.ScriptExecutor
	opts   loader.Options
	uris   map[string]string // loader name -> library URI
	parser *parser.Chain
}

// Option configures a Finder.
type Option func(*Finder)

// WithLoaderOptions sets the wait used while an injected library loads.
func WithLoaderOptions(opts loader.Options) Option {
	return func(f *Finder) {
		f.opts = opts
	}
}

// WithLibraryURI loads the library named name ("jQuery", "Sizzle") from uri.
func WithLibraryURI(name, uri string) Option {
	return func(f *Finder) {
		f.uris[name] = uri
	}
}

// WithParser replaces the default result parser chain.
func WithParser(chain *parser.Chain) Option {
	return func(f *Finder) {
		f.parser = chain
	}
}

// New returns a Finder that runs scripts through exec.
func New(exec core.ScriptExecutor, opts ...Option) *Finder {
	f := &Finder{
		exec:   exec,
		uris:   make(map[string]string),
		parser: parser.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FromConfig returns a Finder using the library locations and wait settings in cfg.
func FromConfig(exec core.ScriptExecutor, cfg *config.Config, opts ...Option) (*Finder, error) {
	jq, err := cfg.JQueryLoader()
	if err != nil {
		return nil, err
	}
	sz := cfg.SizzleLoader()

	base := []Option{
		WithLoaderOptions(cfg.LoaderOptions()),
		WithLibraryURI(jq.Name, jq.LibraryURI),
		WithLibraryURI(sz.Name, sz.LibraryURI),
	}
	return New(exec, append(base, opts...)...), nil
}

// Executor returns the underlying script executor.
func (f *Finder) Executor() core.ScriptExecutor { return f.exec }

// Parser returns the result parser chain.
func (f *Finder) Parser() *parser.Chain { return f.parser }

// LoaderOptions returns the wait settings used by Ensure.
func (f *Finder) LoaderOptions() loader.Options { return f.opts }

// Loader returns l with any configured URI override applied.
func (f *Finder) Loader(l loader.Loader) loader.Loader {
	if uri, ok := f.uris[l.Name]; ok && uri != "" {
		return l.WithURI(uri)
	}
	return l
}

// Ensure makes the library described by l available on the page.
func (f *Finder) Ensure(ctx context.Context, l loader.Loader) error {
	return loader.Ensure(ctx, f.exec, l, f.opts)
}

// Prepare fails with the selector's argument error, if any, and otherwise
// makes sure the page supports it: native selectors need querySelectorAll,
// jQuery and Sizzle selectors get their library injected when absent.
func (f *Finder) Prepare(ctx context.Context, sel selector.Selector) error {
	if sel == nil {
		return core.InvalidArgument("selector", "must not be nil")
	}
	if err := sel.Err(); err != nil {
		return err
	}

	l := f.Loader(sel.Prerequisite())
	if l.Injectable() {
		return f.Ensure(ctx, l)
	}

	ok, err := loader.Check(ctx, f.exec, l)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrSelectorNotSupported.
			WithMessage(fmt.Sprintf("%s requires %s, which the page does not support", sel.Description(), l.Name)).
			WithDetails(map[string]interface{}{"selector": sel.Description(), "capability": l.Name})
	}
	return nil
}

// ExecuteScript runs script, a function body that reads its arguments from
// `arguments` and hands back a value with `return`.
func (f *Finder) ExecuteScript(ctx context.Context, js string, args ...interface{}) (interface{}, error) {
	if strings.TrimSpace(js) == "" {
		return nil, core.InvalidArgument("script", "must not be empty")
	}
	logger.Debug("execute: %s", abbreviate(js))
	return f.exec.ExecuteScript(ctx, js, args...)
}

// FindElements returns every element sel matches. No match is not an error.
func (f *Finder) FindElements(ctx context.Context, sel selector.Selector) ([]*WebElement, error) {
	if err := f.Prepare(ctx, sel); err != nil {
		return nil, err
	}

	raw, err := f.ExecuteScript(ctx, script.Return(selector.All(sel)))
	if err != nil {
		return nil, err
	}
	found, err := parser.As[[]core.Element](f.parser, raw)
	if err != nil {
		return nil, err
	}

	elements := make([]*WebElement, 0, len(found))
	for i, el := range found {
		if el == nil {
			continue
		}
		elements = append(elements, f.wrap(el, sel, i))
	}
	return elements, nil
}

// FindElement returns the first element sel matches, or core.ErrNoSuchElement.
func (f *Finder) FindElement(ctx context.Context, sel selector.Selector) (*WebElement, error) {
	if err := f.Prepare(ctx, sel); err != nil {
		return nil, err
	}

	js := script.Return(selector.At(sel, 0))
	raw, err := f.ExecuteScript(ctx, js)
	if err != nil {
		return nil, err
	}
	el, err := parser.As[core.Element](f.parser, raw)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, core.ErrNoSuchElement.
			WithMessage("no element matches " + sel.Description()).
			WithDetails(map[string]interface{}{
				"selector": sel.Description(),
				"script":   js,
			})
	}
	return f.wrap(el, sel, 0), nil
}

// Run evaluates sel and calls member on the result for its side effects,
// e.g. Run(ctx, sel, "addClass('on')").
func (f *Finder) Run(ctx context.Context, sel selector.Selector, member string) error {
	if err := f.Prepare(ctx, sel); err != nil {
		return err
	}
	_, err := f.ExecuteScript(ctx, script.Member(sel.Expression(), member)+";")
	return err
}

// Find evaluates sel, reads member from the result and parses it as T, e.g.
// Find[string](ctx, f, sel, "text()").
func Find[T any](ctx context.Context, f *Finder, sel selector.Selector, member string) (T, error) {
	return FindWrapped[T](ctx, f, sel, member, "")
}

// FindWrapped is Find with the member access wrapped in format, e.g.
// "JSON.stringify(%s)".
func FindWrapped[T any](ctx context.Context, f *Finder, sel selector.Selector, member, format string) (T, error) {
	var zero T
	if err := f.Prepare(ctx, sel); err != nil {
		return zero, err
	}

	raw, err := f.ExecuteScript(ctx, script.Return(script.Wrap(format, script.Member(sel.Expression(), member))))
	if err != nil {
		return zero, err
	}
	return parser.As[T](f.parser, raw)
}

func (f *Finder) wrap(el core.Element, sel selector.Selector, index int) *WebElement {
	if we, ok := el.(*WebElement); ok {
		el = we.Element
	}
	return &WebElement{Element: el, finder: f, selector: sel, index: index}
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxLoggedScript {
		return s[:maxLoggedScript] + "..."
	}
	return s
}
