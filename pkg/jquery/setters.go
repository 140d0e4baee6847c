package jquery

import (
	"context"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/script"
)

var errTooManyFilters = core.InvalidArgument("selector", "at most one filter selector is allowed")

// SetText sets the text content of every matched element.
func (h *Helper) SetText(ctx context.Context, text string) error {
	return h.run(ctx, call("text", script.Quote(text)))
}

// SetHTML sets the inner HTML of every matched element.
func (h *Helper) SetHTML(ctx context.Context, html string) error {
	return h.run(ctx, call("html", script.Quote(html)))
}

func (h *Helper) SetAttribute(ctx context.Context, name, value string) error {
	if err := required("attributeName", name); err != nil {
		return err
	}
	return h.run(ctx, call("attr", script.Quote(name), script.Quote(value)))
}

// SetProperty sets a string property on every matched element.
func (h *Helper) SetProperty(ctx context.Context, name, value string) error {
	if err := required("propertyName", name); err != nil {
		return err
	}
	return h.run(ctx, call("prop", script.Quote(name), script.Quote(value)))
}

// SetPropertyBool sets a boolean property such as "checked".
func (h *Helper) SetPropertyBool(ctx context.Context, name string, value bool) error {
	if err := required("propertyName", name); err != nil {
		return err
	}
	return h.run(ctx, call("prop", script.Quote(name), script.Bool(value)))
}

func (h *Helper) SetValue(ctx context.Context, value string) error {
	return h.run(ctx, call("val", script.Quote(value)))
}

func (h *Helper) SetCSS(ctx context.Context, name, value string) error {
	if err := required("propertyName", name); err != nil {
		return err
	}
	return h.run(ctx, call("css", script.Quote(name), script.Quote(value)))
}

func (h *Helper) SetWidth(ctx context.Context, value float64) error {
	return h.run(ctx, call("width", script.Number(value)))
}

func (h *Helper) SetHeight(ctx context.Context, value float64) error {
	return h.run(ctx, call("height", script.Number(value)))
}

func (h *Helper) SetInnerWidth(ctx context.Context, value float64) error {
	return h.run(ctx, call("innerWidth", script.Number(value)))
}

func (h *Helper) SetInnerHeight(ctx context.Context, value float64) error {
	return h.run(ctx, call("innerHeight", script.Number(value)))
}

func (h *Helper) SetOuterWidth(ctx context.Context, value float64) error {
	return h.run(ctx, call("outerWidth", script.Number(value)))
}

func (h *Helper) SetOuterHeight(ctx context.Context, value float64) error {
	return h.run(ctx, call("outerHeight", script.Number(value)))
}

func (h *Helper) SetScrollLeft(ctx context.Context, value float64) error {
	return h.run(ctx, call("scrollLeft", script.Number(value)))
}

func (h *Helper) SetScrollTop(ctx context.Context, value float64) error {
	return h.run(ctx, call("scrollTop", script.Number(value)))
}

// SetData stores a string under key on every matched element.
func (h *Helper) SetData(ctx context.Context, key, value string) error {
	if err := required("key", key); err != nil {
		return err
	}
	return h.run(ctx, call("data", script.Quote(key), script.Quote(value)))
}

// SetDataNumber stores a number under key.
func (h *Helper) SetDataNumber(ctx context.Context, key string, value float64) error {
	if err := required("key", key); err != nil {
		return err
	}
	return h.run(ctx, call("data", script.Quote(key), script.Number(value)))
}

// SetDataBool stores a boolean under key.
func (h *Helper) SetDataBool(ctx context.Context, key string, value bool) error {
	if err := required("key", key); err != nil {
		return err
	}
	return h.run(ctx, call("data", script.Quote(key), script.Bool(value)))
}

func (h *Helper) RemoveData(ctx context.Context, key string) error {
	if err := required("key", key); err != nil {
		return err
	}
	return h.run(ctx, call("removeData", script.Quote(key)))
}

// AddClass adds one or more space-separated classes.
func (h *Helper) AddClass(ctx context.Context, name string) error {
	if err := required("className", name); err != nil {
		return err
	}
	return h.run(ctx, call("addClass", script.Quote(name)))
}

func (h *Helper) RemoveClass(ctx context.Context, name string) error {
	if err := required("className", name); err != nil {
		return err
	}
	return h.run(ctx, call("removeClass", script.Quote(name)))
}

// ToggleClass adds name to elements lacking it and removes it from the rest.
func (h *Helper) ToggleClass(ctx context.Context, name string) error {
	if err := required("className", name); err != nil {
		return err
	}
	return h.run(ctx, call("toggleClass", script.Quote(name)))
}

// ToggleClassState adds name when state is true and removes it otherwise.
func (h *Helper) ToggleClassState(ctx context.Context, name string, state bool) error {
	if err := required("className", name); err != nil {
		return err
	}
	return h.run(ctx, call("toggleClass", script.Quote(name), script.Bool(state)))
}

// Remove detaches the matched elements from the document. With a filter only
// the elements matching it are removed.
func (h *Helper) Remove(ctx context.Context, filter ...string) error {
	switch len(filter) {
	case 0:
		return h.run(ctx, "remove()")
	case 1:
		if err := required("selector", filter[0]); err != nil {
			return err
		}
		return h.run(ctx, call("remove", script.Quote(filter[0])))
	default:
		return errTooManyFilters
	}
}

// Empty removes all child nodes of the matched elements.
func (h *Helper) Empty(ctx context.Context) error {
	return h.run(ctx, "empty()")
}
