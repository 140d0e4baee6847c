package selector

import (
	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/loader"
	"github.com/devicelab-dev/webquery/pkg/script"
)

// DefaultBaseElement is the element native queries run against.
const DefaultBaseElement = "document"

// Kind distinguishes the locator strategies served by native querySelectorAll.
type Kind int

const (
	KindQuerySelector Kind = iota
	KindClassName
	KindID
	KindName
	KindTagName
	KindCSS
)

func (k Kind) String() string {
	switch k {
	case KindQuerySelector:
		return "By.QuerySelector"
	case KindClassName:
		return "By.ClassName"
	case KindID:
		return "By.Id"
	case KindName:
		return "By.Name"
	case KindTagName:
		return "By.TagName"
	case KindCSS:
		return "By.CssSelector"
	default:
		return "By.Unknown"
	}
}

// Query is a native querySelectorAll selector.
type Query struct {
	kind        Kind
	raw         string
	css         string
	baseElement string
	base        *Query
	err         error
}

// QuerySelector returns a selector running document.querySelectorAll(raw).
// An empty raw text is recorded and reported by Err.
func QuerySelector(raw string) *Query {
	return newQuery(KindQuerySelector, raw, raw)
}

// QuerySelectorIn runs raw against the element expression baseElement,
// e.g. "document.body".
func QuerySelectorIn(raw, baseElement string) *Query {
	q := QuerySelector(raw)
	q.baseElement = baseElement
	q.err = firstErr(q.err, required("baseElement", baseElement))
	return q
}

// QuerySelectorWithBase runs raw inside the first element matched by base.
func QuerySelectorWithBase(raw string, base *Query) *Query {
	q := QuerySelector(raw)
	if base == nil {
		q.err = firstErr(q.err, core.InvalidArgument("baseSelector", "must not be nil"))
		return q
	}
	q.base = base
	q.err = firstErr(q.err, base.err)
	return q
}

// NewQuery is QuerySelector with the argument error returned directly.
func NewQuery(raw string) (*Query, error) {
	return checked(QuerySelector(raw))
}

// NewQueryIn is QuerySelectorIn with the argument error returned directly.
func NewQueryIn(raw, baseElement string) (*Query, error) {
	return checked(QuerySelectorIn(raw, baseElement))
}

// NewQueryWithBase is QuerySelectorWithBase with the argument error returned directly.
func NewQueryWithBase(raw string, base *Query) (*Query, error) {
	return checked(QuerySelectorWithBase(raw, base))
}

func checked(q *Query) (*Query, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q, nil
}

// ClassName matches elements carrying the CSS class c.
func ClassName(c string) *Query {
	return newQuery(KindClassName, c, "."+c)
}

// ID matches the element with the given id.
func ID(id string) *Query {
	return newQuery(KindID, id, "#"+id)
}

// Name matches elements by their name attribute. The value sits inside
// double quotes, so a name containing ' (rendered as " by Quote) ends the
// attribute early and yields invalid CSS.
func Name(name string) *Query {
	return newQuery(KindName, name, `*[name="`+name+`"]`)
}

// TagName matches elements by tag.
func TagName(tag string) *Query {
	return newQuery(KindTagName, tag, tag)
}

// CSS matches elements by a CSS selector.
func CSS(css string) *Query {
	return newQuery(KindCSS, css, css)
}

func newQuery(kind Kind, raw, css string) *Query {
	return &Query{
		kind:        kind,
		raw:         raw,
		css:         css,
		baseElement: DefaultBaseElement,
		err:         required("selector", raw),
	}
}

func (q *Query) Kind() Kind          { return q.kind }
func (q *Query) Raw() string         { return q.raw }
func (q *Query) BaseElement() string { return q.baseElement }
func (q *Query) Base() *Query        { return q.base }
func (q *Query) Err() error          { return q.err }
func (q *Query) Resolver() string    { return "" }
func (q *Query) CallFormat() string  { return "%s[%d]" }
func (q *Query) String() string      { return q.Script() }

// Script returns base.querySelectorAll('css'), or the guarded form
// `B.length === 0 ? [] : B[0].querySelectorAll('css')` when rooted at a base selector.
func (q *Query) Script() string {
	if q.base == nil {
		return script.QuerySelectorAll(q.baseElement, q.css)
	}
	b := q.base.Expression()
	return b + ".length === 0 ? [] : " + script.QuerySelectorAll(b+"[0]", q.css)
}

func (q *Query) Expression() string {
	if q.base == nil {
		return q.Script()
	}
	return "(" + q.Script() + ")"
}

func (q *Query) Description() string {
	return q.kind.String() + ": " + q.raw
}

func (q *Query) Prerequisite() loader.Loader {
	return loader.QuerySelectorSupport()
}

// Root keeps the kind and scopes the query to the element at path.
func (q *Query) Root(path string) Selector {
	rooted := *q
	rooted.baseElement = DefaultBaseElement
	rooted.base = QuerySelector(path)
	rooted.err = firstErr(q.err, rooted.base.err)
	return &rooted
}

func (q *Query) Equal(other Selector) bool {
	o, ok := other.(*Query)
	if !ok || q == nil || o == nil {
		return false
	}
	if q == o {
		return true
	}
	if q.kind != o.kind || q.raw != o.raw || q.baseElement != o.baseElement {
		return false
	}
	if q.base == nil || o.base == nil {
		return q.base == nil && o.base == nil
	}
	return q.base.Equal(o.base)
}

func (q *Query) Hash() uint32 {
	if q.base == nil {
		return hashString(q.raw) ^ hashString(q.baseElement)
	}
	return hashString(q.raw) ^ q.base.Hash()
}
