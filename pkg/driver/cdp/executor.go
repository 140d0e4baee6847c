// Package cdp implements core.ScriptExecutor over the Chrome DevTools
// Protocol using go-rod.
package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/logger"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// elementKey marks an element reference crossing the protocol boundary.
const elementKey = "__webqueryElement"

// staleMarker is the message the page raises for an unknown reference.
const staleMarker = "stale element reference"

// bridge runs a script body with decoded arguments and encodes the result.
// Elements are kept in a page-global registry so references stay stable
// across calls until the page navigates.
const bridge = `function(args) {
	var reg = window.__webquery || (window.__webquery = { next: 0, nodes: {}, ids: new WeakMap() });
	function ref(node) {
		var id = reg.ids.get(node);
		if (id === undefined) {
			id = 'cdp-' + (++reg.next);
			reg.ids.set(node, id);
			reg.nodes[id] = node;
		}
		var out = {};
		out['` + elementKey + `'] = id;
		return out;
	}
	function imp(v) {
		if (v === null || typeof v !== 'object') { return v; }
		if (Array.isArray(v)) { return v.map(imp); }
		if (Object.prototype.hasOwnProperty.call(v, '` + elementKey + `')) {
			var node = reg.nodes[v['` + elementKey + `']];
			if (!node) { throw new Error('` + staleMarker + `: ' + v['` + elementKey + `']); }
			return node;
		}
		var o = {};
		for (var k in v) { o[k] = imp(v[k]); }
		return o;
	}
	function exp(v, depth) {
		if (v === undefined || v === null || typeof v === 'function' || depth > 32) { return null; }
		if (typeof v !== 'object') { return v; }
		if (typeof v.nodeType === 'number') { return v.nodeType === 1 ? ref(v) : {}; }
		var out, i;
		if (Array.isArray(v) || (typeof v.length === 'number' && typeof v.item === 'function')) {
			out = [];
			for (i = 0; i < v.length; i++) { out.push(exp(v[i], depth + 1)); }
			return out;
		}
		out = {};
		for (var k in v) {
			if (Object.prototype.hasOwnProperty.call(v, k)) { out[k] = exp(v[k], depth + 1); }
		}
		return out;
	}
	return exp((function() {
%s
	}).apply(window, imp(args)), 0);
}`

type evalFunc func(ctx context.Context, opts *rod.EvalOptions) (*proto.RuntimeRemoteObject, error)

// Executor runs scripts in one rod page.
type Executor struct {
	page *rod.Page
	eval evalFunc
}

// New returns an executor for page.
func New(page *rod.Page) *Executor {
	return &Executor{
		page: page,
		eval: func(ctx context.Context, opts *rod.EvalOptions) (*proto.RuntimeRemoteObject, error) {
			return page.Context(ctx).Evaluate(opts)
		},
	}
}

// Page returns the underlying rod page.
func (e *Executor) Page() *rod.Page { return e.page }

// Close closes the tab.
func (e *Executor) Close() error {
	if e.page == nil {
		return nil
	}
	return e.page.Close()
}

// ExecuteScript runs script, a function body reading `arguments`, in the page.
func (e *Executor) ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	encoded := make([]interface{}, len(args))
	for i, arg := range args {
		encoded[i] = encode(arg)
	}

	opts := rod.Eval(fmt.Sprintf(bridge, script), encoded)
	res, err := e.eval(ctx, opts)
	if err != nil {
		return nil, evalError(ctx, err)
	}
	if res == nil {
		return nil, nil
	}

	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return decode(value), nil
}

func evalError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return core.ErrScriptTimeout.WithCause(ctxErr)
		}
		return ctxErr
	}

	msg := err.Error()
	if strings.Contains(msg, staleMarker) {
		return core.ErrNoSuchElement.WithMessage(msg).WithCause(err)
	}
	var evalErr *rod.EvalError
	if errors.As(err, &evalErr) {
		return core.ErrJavaScript.WithMessage(msg).WithCause(err)
	}
	logger.Debug("cdp evaluate: %v", err)
	return fmt.Errorf("evaluate: %w", err)
}
