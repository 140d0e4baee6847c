// Package jquery reads and changes page state through jQuery. Every call
// evaluates the selector on the page, makes sure jQuery is loaded first, and
// invokes one jQuery method on the result.
package jquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/finder"
	"github.com/devicelab-dev/webquery/pkg/loader"
	"github.com/devicelab-dev/webquery/pkg/logger"
	"github.com/devicelab-dev/webquery/pkg/parser"
	"github.com/devicelab-dev/webquery/pkg/script"
	"github.com/devicelab-dev/webquery/pkg/selector"
)

// Position is the result of position() and offset().
type Position struct {
	Top  int64
	Left int64
}

// Helper runs jQuery methods on the elements a selector matches.
type Helper struct {
	finder   *finder.Finder
	selector *selector.JQuery
}

// New returns a Helper for sel.
func New(f *finder.Finder, sel *selector.JQuery) *Helper {
	return &Helper{finder: f, selector: sel}
}

// Load makes jQuery version available on the page, waiting at most timeout
// for it to load. "latest" selects the newest build; a zero timeout uses the
// finder's wait.
func Load(ctx context.Context, f *finder.Finder, version string, timeout time.Duration) error {
	l, err := loader.JQueryVersion(version)
	if err != nil {
		return err
	}
	return ensure(ctx, f, l, timeout)
}

// LoadURI makes jQuery available on the page, loading it from uri when absent.
func LoadURI(ctx context.Context, f *finder.Finder, uri string, timeout time.Duration) error {
	if strings.TrimSpace(uri) == "" {
		return core.InvalidArgument("uri", "must not be empty")
	}
	return ensure(ctx, f, loader.JQuery().WithURI(uri), timeout)
}

func ensure(ctx context.Context, f *finder.Finder, l loader.Loader, timeout time.Duration) error {
	opts := f.LoaderOptions()
	if timeout > 0 {
		opts.Timeout = timeout
	}
	opts.URI = ""
	logger.Debug("load %s from %s", l.Name, l.LibraryURI)
	return loader.Ensure(ctx, f.Executor(), l, opts)
}

// Selector returns the selector the helper evaluates.
func (h *Helper) Selector() *selector.JQuery { return h.selector }

// Within returns a helper whose selector only matches descendants of el.
func (h *Helper) Within(ctx context.Context, el *finder.WebElement) (*Helper, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	if el == nil {
		return nil, core.InvalidArgument("element", "must not be nil")
	}
	path, err := el.Path(ctx)
	if err != nil {
		return nil, err
	}
	scoped, ok := h.selector.Root(path).(*selector.JQuery)
	if !ok {
		return nil, fmt.Errorf("scope %s: unexpected selector type", h.selector.Description())
	}
	return &Helper{finder: h.finder, selector: scoped}, nil
}

// Elements returns the matched elements.
func (h *Helper) Elements(ctx context.Context) ([]*finder.WebElement, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	return h.finder.FindElements(ctx, h.selector)
}

// Element returns the first matched element, or core.ErrNoSuchElement.
func (h *Helper) Element(ctx context.Context) (*finder.WebElement, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	return h.finder.FindElement(ctx, h.selector)
}

// Text returns the combined text of the matched elements.
func (h *Helper) Text(ctx context.Context) (string, error) {
	return find[string](ctx, h, "text()")
}

// HTML returns the inner HTML of the first matched element.
func (h *Helper) HTML(ctx context.Context) (string, error) {
	return find[string](ctx, h, "html()")
}

// Attribute returns the named attribute of the first matched element, or ""
// when it is not set.
func (h *Helper) Attribute(ctx context.Context, name string) (string, error) {
	if err := required("attributeName", name); err != nil {
		return "", err
	}
	return find[string](ctx, h, call("attr", script.Quote(name)))
}

// Property returns a boolean property such as "checked". It is nil when
// nothing matches or the property is undefined.
func (h *Helper) Property(ctx context.Context, name string) (*bool, error) {
	if err := required("propertyName", name); err != nil {
		return nil, err
	}
	return find[*bool](ctx, h, call("prop", script.Quote(name)))
}

// PropertyString returns a string property such as "tagName".
func (h *Helper) PropertyString(ctx context.Context, name string) (string, error) {
	if err := required("propertyName", name); err != nil {
		return "", err
	}
	return find[string](ctx, h, call("prop", script.Quote(name)))
}

// Value returns the form value of the first matched element.
func (h *Helper) Value(ctx context.Context) (string, error) {
	return find[string](ctx, h, "val()")
}

// CSS returns a style property of the first matched element.
func (h *Helper) CSS(ctx context.Context, name string) (string, error) {
	if err := required("propertyName", name); err != nil {
		return "", err
	}
	return find[string](ctx, h, call("css", script.Quote(name)))
}

func (h *Helper) Width(ctx context.Context) (*int64, error) {
	return find[*int64](ctx, h, "width()")
}

func (h *Helper) Height(ctx context.Context) (*int64, error) {
	return find[*int64](ctx, h, "height()")
}

func (h *Helper) InnerWidth(ctx context.Context) (*int64, error) {
	return find[*int64](ctx, h, "innerWidth()")
}

func (h *Helper) InnerHeight(ctx context.Context) (*int64, error) {
	return find[*int64](ctx, h, "innerHeight()")
}

// OuterWidth returns the width including padding and border, and the margin
// when includeMargin is set.
func (h *Helper) OuterWidth(ctx context.Context, includeMargin bool) (*int64, error) {
	return find[*int64](ctx, h, call("outerWidth", margin(includeMargin)))
}

// OuterHeight is OuterWidth for the vertical axis.
func (h *Helper) OuterHeight(ctx context.Context, includeMargin bool) (*int64, error) {
	return find[*int64](ctx, h, call("outerHeight", margin(includeMargin)))
}

// Position returns the first element's coordinates relative to its offset
// parent, or nil when nothing matches.
func (h *Helper) Position(ctx context.Context) (*Position, error) {
	return h.coordinates(ctx, "position()")
}

// Offset returns the first element's coordinates relative to the document,
// or nil when nothing matches.
func (h *Helper) Offset(ctx context.Context) (*Position, error) {
	return h.coordinates(ctx, "offset()")
}

func (h *Helper) ScrollLeft(ctx context.Context) (*int64, error) {
	return find[*int64](ctx, h, "scrollLeft()")
}

func (h *Helper) ScrollTop(ctx context.Context) (*int64, error) {
	return find[*int64](ctx, h, "scrollTop()")
}

// Data returns the data stored under key on the first matched element.
func (h *Helper) Data(ctx context.Context, key string) (string, error) {
	if err := required("key", key); err != nil {
		return "", err
	}
	return find[string](ctx, h, call("data", script.Quote(key)))
}

// DataBool is Data for boolean values.
func (h *Helper) DataBool(ctx context.Context, key string) (*bool, error) {
	if err := required("key", key); err != nil {
		return nil, err
	}
	return find[*bool](ctx, h, call("data", script.Quote(key)))
}

// DataInt is Data for numeric values.
func (h *Helper) DataInt(ctx context.Context, key string) (*int64, error) {
	if err := required("key", key); err != nil {
		return nil, err
	}
	return find[*int64](ctx, h, call("data", script.Quote(key)))
}

// Count returns the number of matched elements.
func (h *Helper) Count(ctx context.Context) (int64, error) {
	return find[int64](ctx, h, "length")
}

// Serialized returns the matched form controls URL-encoded.
func (h *Helper) Serialized(ctx context.Context) (string, error) {
	return find[string](ctx, h, "serialize()")
}

// SerializedArray returns serializeArray() as a JSON string.
func (h *Helper) SerializedArray(ctx context.Context) (string, error) {
	if err := h.check(); err != nil {
		return "", err
	}
	return finder.FindWrapped[string](ctx, h.finder, h.selector, "serializeArray()", "JSON.stringify(%s)")
}

// HasClass reports whether any matched element has class name.
func (h *Helper) HasClass(ctx context.Context, name string) (*bool, error) {
	if err := required("className", name); err != nil {
		return nil, err
	}
	return find[*bool](ctx, h, call("hasClass", script.Quote(name)))
}

func (h *Helper) coordinates(ctx context.Context, member string) (*Position, error) {
	raw, err := find[map[string]interface{}](ctx, h, member)
	if err != nil || raw == nil {
		return nil, err
	}
	top, okTop := raw["top"]
	left, okLeft := raw["left"]
	if !okTop || !okLeft {
		return nil, nil
	}

	chain := h.finder.Parser()
	var pos Position
	if pos.Top, err = parser.As[int64](chain, top); err != nil {
		return nil, fmt.Errorf("%s top: %w", member, err)
	}
	if pos.Left, err = parser.As[int64](chain, left); err != nil {
		return nil, fmt.Errorf("%s left: %w", member, err)
	}
	return &pos, nil
}

func (h *Helper) check() error {
	if h.finder == nil {
		return core.InvalidArgument("finder", "must not be nil")
	}
	if h.selector == nil {
		return core.InvalidArgument("selector", "must not be nil")
	}
	return nil
}

func find[T any](ctx context.Context, h *Helper, member string) (T, error) {
	if err := h.check(); err != nil {
		var zero T
		return zero, err
	}
	return finder.Find[T](ctx, h.finder, h.selector, member)
}

// run calls member for its side effects.
func (h *Helper) run(ctx context.Context, member string) error {
	if err := h.check(); err != nil {
		return err
	}
	return h.finder.Run(ctx, h.selector, member)
}

// call renders name(args...), skipping empty arguments.
func call(name string, args ...string) string {
	var kept []string
	for _, a := range args {
		if a != "" {
			kept = append(kept, a)
		}
	}
	return name + "(" + strings.Join(kept, ", ") + ")"
}

func margin(include bool) string {
	if include {
		return "true"
	}
	return ""
}

func required(param, value string) error {
	if strings.TrimSpace(value) == "" {
		return core.InvalidArgument(param, "must not be empty")
	}
	return nil
}
