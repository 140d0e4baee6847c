package selector

import (
	"github.com/devicelab-dev/webquery/pkg/loader"
	"github.com/devicelab-dev/webquery/pkg/script"
)

const linkTextCode = "(function(text, baseElem, partial) { " +
	"var l = baseElem.querySelectorAll('a[href]'); " +
	"var r = []; " +
	"for (var i = 0; i < l.length; i++) { " +
	"var t = (l[i].innerText || l[i].textContent || '').trim(); " +
	"if (partial ? t.indexOf(text) !== -1 : t === text) { r.push(l[i]); } " +
	"} " +
	"return r; " +
	"})"

const xpathCode = "(function(expr, baseElem) { " +
	"var s = document.evaluate(expr, baseElem, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null); " +
	"var r = []; " +
	"for (var i = 0; i < s.snapshotLength; i++) { r.push(s.snapshotItem(i)); } " +
	"return r; " +
	"})"

// LinkText matches anchors by their visible text.
type LinkText struct {
	text        string
	partial     bool
	baseElement string
	err         error
}

// LinkTextSelector matches anchors whose trimmed text equals text.
func LinkTextSelector(text string) *LinkText {
	return &LinkText{text: text, baseElement: DefaultBaseElement, err: required("text", text)}
}

// PartialLinkText matches anchors whose trimmed text contains text.
func PartialLinkText(text string) *LinkText {
	l := LinkTextSelector(text)
	l.partial = true
	return l
}

// In returns a copy searching below the element expression baseElement.
func (l *LinkText) In(baseElement string) *LinkText {
	c := *l
	c.baseElement = baseElement
	c.err = firstErr(l.err, required("baseElement", baseElement))
	return &c
}

func (l *LinkText) Raw() string         { return l.text }
func (l *LinkText) Partial() bool       { return l.partial }
func (l *LinkText) BaseElement() string { return l.baseElement }
func (l *LinkText) Err() error          { return l.err }
func (l *LinkText) Resolver() string    { return "" }
func (l *LinkText) CallFormat() string  { return "%s[%d]" }
func (l *LinkText) Expression() string  { return l.Script() }
func (l *LinkText) String() string      { return l.Script() }

func (l *LinkText) Description() string {
	if l.partial {
		return "By.PartialLinkText: " + l.text
	}
	return "By.LinkText: " + l.text
}

func (l *LinkText) Script() string {
	return linkTextCode + "(" + script.Quote(l.text) + ", " + l.baseElement + ", " + script.Bool(l.partial) + ")"
}

func (l *LinkText) Prerequisite() loader.Loader {
	return loader.QuerySelectorSupport()
}

func (l *LinkText) Root(path string) Selector {
	return l.In(At(QuerySelector(path), 0))
}

func (l *LinkText) Equal(other Selector) bool {
	o, ok := other.(*LinkText)
	if !ok || l == nil || o == nil {
		return false
	}
	return l.text == o.text && l.partial == o.partial && l.baseElement == o.baseElement
}

func (l *LinkText) Hash() uint32 {
	return hashString(l.text) ^ hashString(l.baseElement)
}

// XPath matches elements with an XPath expression through document.evaluate.
type XPath struct {
	expr        string
	baseElement string
	err         error
}

// XPathSelector returns a selector for expr evaluated against document.
func XPathSelector(expr string) *XPath {
	return &XPath{expr: expr, baseElement: DefaultBaseElement, err: required("expression", expr)}
}

// In returns a copy evaluating relative to the element expression baseElement.
func (x *XPath) In(baseElement string) *XPath {
	c := *x
	c.baseElement = baseElement
	c.err = firstErr(x.err, required("baseElement", baseElement))
	return &c
}

func (x *XPath) Raw() string         { return x.expr }
func (x *XPath) BaseElement() string { return x.baseElement }
func (x *XPath) Err() error          { return x.err }
func (x *XPath) Resolver() string    { return "" }
func (x *XPath) CallFormat() string  { return "%s[%d]" }
func (x *XPath) Expression() string  { return x.Script() }
func (x *XPath) String() string      { return x.Script() }
func (x *XPath) Description() string { return "By.XPath: " + x.expr }

func (x *XPath) Script() string {
	return xpathCode + "(" + script.Quote(x.expr) + ", " + x.baseElement + ")"
}

func (x *XPath) Prerequisite() loader.Loader {
	return loader.Loader{Name: "XPath", Variable: "document.evaluate"}
}

func (x *XPath) Root(path string) Selector {
	return x.In(At(QuerySelector(path), 0))
}

func (x *XPath) Equal(other Selector) bool {
	o, ok := other.(*XPath)
	if !ok || x == nil || o == nil {
		return false
	}
	return x.expr == o.expr && x.baseElement == o.baseElement
}

func (x *XPath) Hash() uint32 {
	return hashString(x.expr) ^ hashString(x.baseElement)
}
