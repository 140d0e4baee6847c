// Package parser coerces loosely typed script results (nil, bool, float64,
// string, elements, arrays, objects) into the Go type a caller asks for.
//
// A Chain tries its handlers in order. Each handler either produces a value of
// the requested type or declines and lets the next one try; when nobody
// handles the value the chain fails with core.ErrTypeCoercion.
package parser

import (
	"fmt"
	"reflect"

	"github.com/devicelab-dev/webquery/pkg/core"
)

// Handler is one coercion step.
type Handler interface {
	Name() string
	// Parse returns handled=false to delegate to the next handler. The chain is
	// passed along so handlers can parse nested values.
	Parse(c *Chain, raw interface{}, target reflect.Type) (v reflect.Value, handled bool, err error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc struct {
	Label string
	Fn    func(c *Chain, raw interface{}, target reflect.Type) (reflect.Value, bool, error)
}

func (h HandlerFunc) Name() string { return h.Label }

func (h HandlerFunc) Parse(c *Chain, raw interface{}, target reflect.Type) (reflect.Value, bool, error) {
	return h.Fn(c, raw, target)
}

// Chain is an ordered list of handlers.
type Chain struct {
	handlers []Handler
}

// New returns a chain trying handlers in the given order.
func New(handlers ...Handler) *Chain {
	return &Chain{handlers: handlers}
}

var defaultChain = New(Null{}, Numeric{}, Sequence{}, DirectCast{})

// Default returns the standard chain: null, numeric widening, sequence, direct cast.
func Default() *Chain {
	return defaultChain
}

// Handlers returns the names of the handlers in order.
func (c *Chain) Handlers() []string {
	names := make([]string, len(c.handlers))
	for i, h := range c.handlers {
		names[i] = h.Name()
	}
	return names
}

// Parse coerces raw into target.
func (c *Chain) Parse(raw interface{}, target reflect.Type) (reflect.Value, error) {
	for _, h := range c.handlers {
		v, handled, err := h.Parse(c, raw, target)
		if err != nil {
			return reflect.Value{}, err
		}
		if handled {
			return v, nil
		}
	}
	return reflect.Value{}, coercionError(raw, target)
}

// As coerces raw into T using c.
func As[T any](c *Chain, raw interface{}) (T, error) {
	var zero T
	target := reflect.TypeOf((*T)(nil)).Elem()
	v, err := c.Parse(raw, target)
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(T)
	return out, nil
}

// Parse coerces raw into T using the default chain.
func Parse[T any](raw interface{}) (T, error) {
	return As[T](Default(), raw)
}

func coercionError(raw interface{}, target reflect.Type) *core.ExecutionError {
	return core.ErrTypeCoercion.
		WithMessage(fmt.Sprintf("cannot convert %T to %s", raw, target)).
		WithDetails(map[string]interface{}{
			"raw_type":    fmt.Sprintf("%T", raw),
			"target_type": target.String(),
		})
}
