package jquery

import (
	"context"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/script"
)

// Duration is the length of a jQuery animation.
type Duration struct {
	name   string
	millis int64
	set    bool
}

var (
	// Default lets jQuery pick the duration (400ms).
	Default = Duration{}
	Slow    = Duration{name: "slow", set: true}
	Fast    = Duration{name: "fast", set: true}
)

// Millis returns a duration of ms milliseconds.
func Millis(ms int64) Duration {
	return Duration{millis: ms, set: true}
}

// arg renders the duration as a jQuery argument. Default renders as nothing.
func (d Duration) arg() string {
	switch {
	case !d.set:
		return ""
	case d.name != "":
		return script.Quote(d.name)
	default:
		return script.Number(float64(d.millis))
	}
}

func (d Duration) String() string {
	switch {
	case !d.set:
		return "default"
	case d.name != "":
		return d.name
	default:
		return script.Number(float64(d.millis)) + "ms"
	}
}

func (h *Helper) Show(ctx context.Context, d Duration) error {
	return h.animate(ctx, "show", d)
}

func (h *Helper) Hide(ctx context.Context, d Duration) error {
	return h.animate(ctx, "hide", d)
}

// Toggle shows hidden elements and hides visible ones.
func (h *Helper) Toggle(ctx context.Context, d Duration) error {
	return h.animate(ctx, "toggle", d)
}

func (h *Helper) SlideDown(ctx context.Context, d Duration) error {
	return h.animate(ctx, "slideDown", d)
}

func (h *Helper) SlideUp(ctx context.Context, d Duration) error {
	return h.animate(ctx, "slideUp", d)
}

func (h *Helper) SlideToggle(ctx context.Context, d Duration) error {
	return h.animate(ctx, "slideToggle", d)
}

func (h *Helper) FadeIn(ctx context.Context, d Duration) error {
	return h.animate(ctx, "fadeIn", d)
}

func (h *Helper) FadeOut(ctx context.Context, d Duration) error {
	return h.animate(ctx, "fadeOut", d)
}

func (h *Helper) FadeToggle(ctx context.Context, d Duration) error {
	return h.animate(ctx, "fadeToggle", d)
}

// FadeTo animates the opacity of the matched elements to opacity, which must
// lie in [0, 1].
func (h *Helper) FadeTo(ctx context.Context, d Duration, opacity float64) error {
	if opacity < 0 {
		return core.InvalidArgument("opacity", "cannot be negative")
	}
	if opacity > 1 {
		return core.InvalidArgument("opacity", "cannot be bigger than 1")
	}
	duration := d.arg()
	if duration == "" {
		duration = "400"
	}
	return h.run(ctx, call("fadeTo", duration, script.Number(opacity)))
}

func (h *Helper) animate(ctx context.Context, name string, d Duration) error {
	return h.run(ctx, call(name, d.arg()))
}
