package jquery

import (
	"context"

	"github.com/devicelab-dev/webquery/pkg/script"
)

// Trigger fires event on every matched element, running bound handlers and
// the default action.
func (h *Helper) Trigger(ctx context.Context, event string) error {
	if err := required("eventName", event); err != nil {
		return err
	}
	return h.run(ctx, call("trigger", script.Quote(event)))
}

// TriggerHandler runs the handlers bound to event on the first matched
// element without the default action or bubbling.
func (h *Helper) TriggerHandler(ctx context.Context, event string) error {
	if err := required("eventName", event); err != nil {
		return err
	}
	return h.run(ctx, call("triggerHandler", script.Quote(event)))
}

func (h *Helper) Blur(ctx context.Context) error        { return h.Trigger(ctx, "blur") }
func (h *Helper) Focus(ctx context.Context) error       { return h.Trigger(ctx, "focus") }
func (h *Helper) Change(ctx context.Context) error      { return h.Trigger(ctx, "change") }
func (h *Helper) Click(ctx context.Context) error       { return h.Trigger(ctx, "click") }
func (h *Helper) DoubleClick(ctx context.Context) error { return h.Trigger(ctx, "dblclick") }
func (h *Helper) KeyUp(ctx context.Context) error       { return h.Trigger(ctx, "keyup") }
func (h *Helper) KeyDown(ctx context.Context) error     { return h.Trigger(ctx, "keydown") }
func (h *Helper) KeyPress(ctx context.Context) error    { return h.Trigger(ctx, "keypress") }
func (h *Helper) MouseUp(ctx context.Context) error     { return h.Trigger(ctx, "mouseup") }
func (h *Helper) MouseDown(ctx context.Context) error   { return h.Trigger(ctx, "mousedown") }
func (h *Helper) MouseOut(ctx context.Context) error    { return h.Trigger(ctx, "mouseout") }
func (h *Helper) MouseOver(ctx context.Context) error   { return h.Trigger(ctx, "mouseover") }
func (h *Helper) MouseMove(ctx context.Context) error   { return h.Trigger(ctx, "mousemove") }
func (h *Helper) MouseEnter(ctx context.Context) error  { return h.Trigger(ctx, "mouseenter") }
func (h *Helper) MouseLeave(ctx context.Context) error  { return h.Trigger(ctx, "mouseleave") }
func (h *Helper) Resize(ctx context.Context) error      { return h.Trigger(ctx, "resize") }
func (h *Helper) Scroll(ctx context.Context) error      { return h.Trigger(ctx, "scroll") }
