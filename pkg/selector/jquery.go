package selector

import (
	"strconv"
	"strings"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/loader"
	"github.com/devicelab-dev/webquery/pkg/script"
)

// DefaultVariable is the global jQuery is reached through.
const DefaultVariable = "jQuery"

// JQuery is a jQuery selector with an optional traversal chain, e.g.
// jQuery('div', jQuery('body')).find('p').eq(-1).
//
// Chain methods never modify the receiver. An invalid argument does not stop
// the chain: it is carried by the returned selector and reported by Err, and
// finder operations refuse to run it.
type JQuery struct {
	raw      string
	context  *JQuery
	variable string
	chain    string
	err      error
}

// JQueryOption configures JQuerySelector.
type JQueryOption func(*JQuery)

// WithContext scopes the selector to the elements matched by ctx.
func WithContext(ctx *JQuery) JQueryOption {
	return func(j *JQuery) {
		j.context = ctx
		if ctx != nil {
			j.err = firstErr(j.err, ctx.err)
		}
	}
}

// WithVariable evaluates the selector through variable instead of jQuery, e.g. "$".
func WithVariable(variable string) JQueryOption {
	return func(j *JQuery) {
		j.variable = variable
		j.err = firstErr(j.err, required("variable", variable))
	}
}

// JQuerySelector returns a jQuery selector for raw.
func JQuerySelector(raw string, opts ...JQueryOption) *JQuery {
	j := &JQuery{
		raw:      raw,
		variable: DefaultVariable,
		err:      required("selector", raw),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// NewJQuery builds a jQuery selector and returns argument errors directly.
// context may be nil.
func NewJQuery(raw string, context *JQuery, variable string) (*JQuery, error) {
	j := JQuerySelector(raw, WithContext(context), WithVariable(variable))
	if j.err != nil {
		return nil, j.err
	}
	return j, nil
}

func (j *JQuery) Raw() string         { return j.raw }
func (j *JQuery) Context() *JQuery    { return j.context }
func (j *JQuery) Variable() string    { return j.variable }
func (j *JQuery) Chain() string       { return j.chain }
func (j *JQuery) Err() error          { return j.err }
func (j *JQuery) Resolver() string    { return ".get()" }
func (j *JQuery) CallFormat() string  { return "%s.get(%d)" }
func (j *JQuery) Expression() string  { return j.Script() }
func (j *JQuery) String() string      { return j.Script() }
func (j *JQuery) Description() string { return "By.JQuerySelector: " + j.raw }

// Script returns variable('raw'[, context]) followed by the chain.
func (j *JQuery) Script() string {
	var b strings.Builder
	b.WriteString(j.variable)
	b.WriteString("(")
	b.WriteString(script.Quote(j.raw))
	if j.context != nil {
		b.WriteString(", ")
		b.WriteString(j.context.Script())
	}
	b.WriteString(")")
	b.WriteString(j.chain)
	return b.String()
}

func (j *JQuery) Prerequisite() loader.Loader {
	return loader.JQuery()
}

// Root scopes the selector to the element at path. The chain is kept.
func (j *JQuery) Root(path string) Selector {
	ctx := JQuerySelector(path, WithVariable(j.variable))
	return &JQuery{
		raw:      j.raw,
		context:  ctx,
		variable: j.variable,
		chain:    j.chain,
		err:      firstErr(j.err, ctx.err),
	}
}

// Equal compares raw text, context and variable. The chain is not compared.
func (j *JQuery) Equal(other Selector) bool {
	o, ok := other.(*JQuery)
	if !ok || j == nil || o == nil {
		return false
	}
	if j == o {
		return true
	}
	if j.raw != o.raw || j.variable != o.variable {
		return false
	}
	if j.context == nil || o.context == nil {
		return j.context == nil && o.context == nil
	}
	return j.context.Equal(o.context)
}

func (j *JQuery) Hash() uint32 {
	h := hashString(j.raw) ^ hashString(j.variable)
	if j.context != nil {
		h ^= j.context.Hash()
	}
	return h
}

// Add adds elements matching selector to the set.
func (j *JQuery) Add(selector string) *JQuery {
	return j.call("add", selector)
}

// AddWithContext adds elements matching selector inside context.
func (j *JQuery) AddWithContext(selector string, context *JQuery) *JQuery {
	return j.callWithContext("add", selector, context)
}

func (j *JQuery) AddBack(selector ...string) *JQuery {
	return j.callOptional("addBack", selector)
}

func (j *JQuery) AndSelf() *JQuery {
	return j.extend("andSelf", "", nil)
}

func (j *JQuery) Children(selector ...string) *JQuery {
	return j.callOptional("children", selector)
}

func (j *JQuery) Closest(selector string) *JQuery {
	return j.call("closest", selector)
}

func (j *JQuery) ClosestWithContext(selector string, context *JQuery) *JQuery {
	return j.callWithContext("closest", selector, context)
}

func (j *JQuery) Contents() *JQuery {
	return j.extend("contents", "", nil)
}

func (j *JQuery) End() *JQuery {
	return j.extend("end", "", nil)
}

// Eq reduces the set to the element at index. Negative indexes count from the end.
func (j *JQuery) Eq(index int) *JQuery {
	return j.extend("eq", strconv.Itoa(index), nil)
}

func (j *JQuery) Filter(selector string) *JQuery {
	return j.call("filter", selector)
}

func (j *JQuery) Find(selector string) *JQuery {
	return j.call("find", selector)
}

func (j *JQuery) First() *JQuery {
	return j.extend("first", "", nil)
}

func (j *JQuery) Has(selector string) *JQuery {
	return j.call("has", selector)
}

func (j *JQuery) Is(selector string) *JQuery {
	return j.call("is", selector)
}

func (j *JQuery) Last() *JQuery {
	return j.extend("last", "", nil)
}

func (j *JQuery) Next(selector ...string) *JQuery {
	return j.callOptional("next", selector)
}

func (j *JQuery) NextAll(selector ...string) *JQuery {
	return j.callOptional("nextAll", selector)
}

// NextUntil takes an optional stop selector and an optional filter; pass "" to omit either.
func (j *JQuery) NextUntil(selector, filter string) *JQuery {
	return j.callUntil("nextUntil", selector, filter)
}

func (j *JQuery) Not(selector string) *JQuery {
	return j.call("not", selector)
}

func (j *JQuery) OffsetParent() *JQuery {
	return j.extend("offsetParent", "", nil)
}

func (j *JQuery) Parent(selector ...string) *JQuery {
	return j.callOptional("parent", selector)
}

func (j *JQuery) Parents(selector ...string) *JQuery {
	return j.callOptional("parents", selector)
}

func (j *JQuery) ParentsUntil(selector, filter string) *JQuery {
	return j.callUntil("parentsUntil", selector, filter)
}

func (j *JQuery) Prev(selector ...string) *JQuery {
	return j.callOptional("prev", selector)
}

func (j *JQuery) PrevAll(selector ...string) *JQuery {
	return j.callOptional("prevAll", selector)
}

func (j *JQuery) PrevUntil(selector, filter string) *JQuery {
	return j.callUntil("prevUntil", selector, filter)
}

func (j *JQuery) Siblings(selector ...string) *JQuery {
	return j.callOptional("siblings", selector)
}

// Slice reduces the set to the elements from start on.
func (j *JQuery) Slice(start int) *JQuery {
	return j.extend("slice", strconv.Itoa(start), nil)
}

// SliceRange reduces the set to the elements in [start, end).
func (j *JQuery) SliceRange(start, end int) *JQuery {
	return j.extend("slice", strconv.Itoa(start)+", "+strconv.Itoa(end), nil)
}

// call appends .name('selector') for a required selector argument.
func (j *JQuery) call(name, selector string) *JQuery {
	if err := required("selector", selector); err != nil {
		return j.extend(name, "", err)
	}
	return j.extend(name, script.Quote(strings.TrimSpace(selector)), nil)
}

// callOptional appends .name() or .name('selector'). An empty selector is
// omitted; one made only of whitespace is an error.
func (j *JQuery) callOptional(name string, selector []string) *JQuery {
	if len(selector) == 0 || selector[0] == "" {
		return j.extend(name, "", nil)
	}
	return j.call(name, selector[0])
}

func (j *JQuery) callWithContext(name, selector string, context *JQuery) *JQuery {
	if err := required("selector", selector); err != nil {
		return j.extend(name, "", err)
	}
	if context == nil {
		return j.extend(name, "", core.InvalidArgument("context", "must not be nil"))
	}
	return j.extend(name, script.Quote(strings.TrimSpace(selector))+", "+context.Script(), context.err)
}

// callUntil renders the argument list of the *Until traversals:
// 's', 'f' / '', 'f' / 's' / nothing.
func (j *JQuery) callUntil(name, selector, filter string) *JQuery {
	if selector != "" && blank(selector) {
		return j.extend(name, "", core.InvalidArgument("selector", "must not be blank"))
	}
	if filter != "" && blank(filter) {
		return j.extend(name, "", core.InvalidArgument("filter", "must not be blank"))
	}

	var args string
	switch {
	case selector != "" && filter != "":
		args = script.Quote(strings.TrimSpace(selector)) + ", " + script.Quote(strings.TrimSpace(filter))
	case filter != "":
		args = "'', " + script.Quote(strings.TrimSpace(filter))
	case selector != "":
		args = script.Quote(strings.TrimSpace(selector))
	}
	return j.extend(name, args, nil)
}

// extend returns a copy of j with .name(args) appended to the chain.
func (j *JQuery) extend(name, args string, err error) *JQuery {
	return &JQuery{
		raw:      j.raw,
		context:  j.context,
		variable: j.variable,
		chain:    j.chain + "." + name + "(" + args + ")",
		err:      firstErr(j.err, err),
	}
}
