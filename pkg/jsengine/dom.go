package jsengine

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node types as reported by nodeType.
const (
	elementNodeType  = 1
	documentNodeType = 9
)

// domBridge exposes *html.Node trees to scripts. Every node maps to exactly
// one JS object so identity comparisons (a === b) behave as in a browser.
type domBridge struct {
	rt        *goja.Runtime
	objects   map[*html.Node]*goja.Object
	nodes     map[*goja.Object]*html.Node
	selectors map[string]cascadia.Selector

	// onAppend is called after a node is attached to the tree.
	onAppend func(n *html.Node)
}

func newDOMBridge(rt *goja.Runtime) *domBridge {
	return &domBridge{
		rt:        rt,
		objects:   make(map[*html.Node]*goja.Object),
		nodes:     make(map[*goja.Object]*html.Node),
		selectors: make(map[string]cascadia.Selector),
	}
}

// wrap returns the JS object for n, creating it on first use.
func (d *domBridge) wrap(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if o, ok := d.objects[n]; ok {
		return o
	}

	o := d.rt.NewObject()
	d.objects[n] = o
	d.nodes[o] = n

	if n.Type == html.DocumentNode {
		d.defineDocument(o, n)
	} else {
		d.defineElement(o, n)
	}
	d.defineQueries(o, n)
	return o
}

// node returns the node behind v, if v is a DOM object.
func (d *domBridge) node(v goja.Value) (*html.Node, bool) {
	o, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	n, ok := d.nodes[o]
	return n, ok
}

func (d *domBridge) mustNode(v goja.Value, what string) *html.Node {
	n, ok := d.node(v)
	if !ok {
		panic(d.rt.NewTypeError(what + " is not a node"))
	}
	return n
}

func (d *domBridge) accessor(o *goja.Object, name string, get func() interface{}, set func(goja.Value)) {
	getter := d.rt.ToValue(func(goja.FunctionCall) goja.Value {
		return d.rt.ToValue(get())
	})
	var setter goja.Value
	if set != nil {
		setter = d.rt.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	o.DefineAccessorProperty(name, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)
}

func (d *domBridge) method(o *goja.Object, name string, fn func(call goja.FunctionCall) goja.Value) {
	o.Set(name, fn)
}

func (d *domBridge) nodeList(nodes []*html.Node) goja.Value {
	values := make([]interface{}, len(nodes))
	for i, n := range nodes {
		values[i] = d.wrap(n)
	}
	return d.rt.NewArray(values...)
}

func (d *domBridge) compile(sel string) cascadia.Selector {
	if s, ok := d.selectors[sel]; ok {
		return s
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		panic(d.rt.NewTypeError("'" + sel + "' is not a valid selector"))
	}
	d.selectors[sel] = s
	return s
}

// defineQueries adds the lookups shared by documents and elements.
func (d *domBridge) defineQueries(o *goja.Object, n *html.Node) {
	d.method(o, "querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return d.nodeList(d.querySelectorAll(n, call.Argument(0).String()))
	})
	d.method(o, "querySelector", func(call goja.FunctionCall) goja.Value {
		found := d.querySelectorAll(n, call.Argument(0).String())
		if len(found) == 0 {
			return goja.Null()
		}
		return d.wrap(found[0])
	})
	d.method(o, "getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		tag := strings.ToLower(call.Argument(0).String())
		if tag == "*" {
			return d.nodeList(d.querySelectorAll(n, "*"))
		}
		return d.nodeList(goquery.NewDocumentFromNode(n).Find(tag).Nodes)
	})
	d.method(o, "appendChild", func(call goja.FunctionCall) goja.Value {
		child := d.mustNode(call.Argument(0), "appendChild argument")
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		n.AppendChild(child)
		if d.onAppend != nil {
			d.onAppend(child)
		}
		return call.Argument(0)
	})
	d.method(o, "removeChild", func(call goja.FunctionCall) goja.Value {
		child := d.mustNode(call.Argument(0), "removeChild argument")
		if child.Parent != n {
			panic(d.rt.NewTypeError("node is not a child"))
		}
		n.RemoveChild(child)
		return call.Argument(0)
	})
	d.accessor(o, "children", func() interface{} {
		return d.nodeList(elementChildren(n))
	}, nil)
	d.accessor(o, "childElementCount", func() interface{} {
		return len(elementChildren(n))
	}, nil)
	d.accessor(o, "textContent", func() interface{} {
		if n.Type == html.DocumentNode {
			return nil
		}
		return textContent(n)
	}, func(v goja.Value) {
		setText(n, v.String())
	})
}

func (d *domBridge) querySelectorAll(n *html.Node, sel string) []*html.Node {
	return goquery.NewDocumentFromNode(n).FindMatcher(d.compile(sel)).Nodes
}

func (d *domBridge) defineDocument(o *goja.Object, doc *html.Node) {
	find := func(tag string) func() interface{} {
		return func() interface{} {
			return d.wrap(firstByTag(doc, tag))
		}
	}

	d.accessor(o, "nodeType", func() interface{} { return documentNodeType }, nil)
	d.accessor(o, "nodeName", func() interface{} { return "#document" }, nil)
	d.accessor(o, "readyState", func() interface{} { return "complete" }, nil)
	d.accessor(o, "documentElement", find("html"), nil)
	d.accessor(o, "head", find("head"), nil)
	d.accessor(o, "body", find("body"), nil)
	d.accessor(o, "parentNode", func() interface{} { return goja.Null() }, nil)
	d.accessor(o, "title", func() interface{} {
		if t := firstByTag(doc, "title"); t != nil {
			return strings.TrimSpace(textContent(t))
		}
		return ""
	}, nil)

	d.method(o, "getElementById", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).String()
		var found *html.Node
		walk(doc, func(n *html.Node) bool {
			if n.Type == html.ElementNode && attr(n, "id") == id {
				found = n
				return false
			}
			return true
		})
		return d.wrap(found)
	})
	d.method(o, "createElement", func(call goja.FunctionCall) goja.Value {
		tag := strings.ToLower(call.Argument(0).String())
		return d.wrap(&html.Node{
			Type:     html.ElementNode,
			Data:     tag,
			DataAtom: atom.Lookup([]byte(tag)),
		})
	})
}

func (d *domBridge) defineElement(o *goja.Object, n *html.Node) {
	reflectAttr := func(name string) {
		d.accessor(o, name, func() interface{} {
			return attr(n, name)
		}, func(v goja.Value) {
			setAttr(n, name, v.String())
		})
	}
	boolAttr := func(name string) {
		d.accessor(o, name, func() interface{} {
			return hasAttr(n, name)
		}, func(v goja.Value) {
			if v.ToBoolean() {
				setAttr(n, name, "")
			} else {
				removeAttr(n, name)
			}
		})
	}

	d.accessor(o, "nodeType", func() interface{} { return elementNodeType }, nil)
	d.accessor(o, "tagName", func() interface{} { return strings.ToUpper(n.Data) }, nil)
	d.accessor(o, "nodeName", func() interface{} { return strings.ToUpper(n.Data) }, nil)
	d.accessor(o, "parentNode", func() interface{} { return d.wrap(n.Parent) }, nil)
	d.accessor(o, "parentElement", func() interface{} {
		if n.Parent != nil && n.Parent.Type == html.ElementNode {
			return d.wrap(n.Parent)
		}
		return goja.Null()
	}, nil)
	d.accessor(o, "firstElementChild", func() interface{} {
		return d.wrap(firstElement(n.FirstChild, func(c *html.Node) *html.Node { return c.NextSibling }))
	}, nil)
	d.accessor(o, "lastElementChild", func() interface{} {
		return d.wrap(firstElement(n.LastChild, func(c *html.Node) *html.Node { return c.PrevSibling }))
	}, nil)
	d.accessor(o, "nextElementSibling", func() interface{} {
		return d.wrap(firstElement(n.NextSibling, func(c *html.Node) *html.Node { return c.NextSibling }))
	}, nil)
	d.accessor(o, "previousElementSibling", func() interface{} {
		return d.wrap(firstElement(n.PrevSibling, func(c *html.Node) *html.Node { return c.PrevSibling }))
	}, nil)
	d.accessor(o, "innerText", func() interface{} { return strings.TrimSpace(textContent(n)) }, func(v goja.Value) {
		setText(n, v.String())
	})
	d.accessor(o, "innerHTML", func() interface{} { return innerHTML(n) }, func(v goja.Value) {
		d.setInnerHTML(n, v.String())
	})
	d.accessor(o, "outerHTML", func() interface{} { return render(n) }, nil)
	d.accessor(o, "sourceIndex", func() interface{} { return sourceIndex(n) }, nil)
	d.accessor(o, "value", func() interface{} { return formValue(n) }, func(v goja.Value) {
		setFormValue(n, v.String())
	})
	for _, name := range []string{"id", "className", "name", "type", "src", "href", "title", "alt"} {
		if name == "className" {
			d.accessor(o, name, func() interface{} { return attr(n, "class") }, func(v goja.Value) {
				setAttr(n, "class", v.String())
			})
			continue
		}
		reflectAttr(name)
	}
	for _, name := range []string{"checked", "disabled", "selected", "readOnly", "hidden"} {
		boolAttr(name)
	}

	d.method(o, "getAttribute", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if !hasAttr(n, name) {
			return goja.Null()
		}
		return d.rt.ToValue(attr(n, name))
	})
	d.method(o, "setAttribute", func(call goja.FunctionCall) goja.Value {
		setAttr(n, call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	d.method(o, "removeAttribute", func(call goja.FunctionCall) goja.Value {
		removeAttr(n, call.Argument(0).String())
		return goja.Undefined()
	})
	d.method(o, "hasAttribute", func(call goja.FunctionCall) goja.Value {
		return d.rt.ToValue(hasAttr(n, call.Argument(0).String()))
	})
	d.method(o, "matches", func(call goja.FunctionCall) goja.Value {
		return d.rt.ToValue(d.compile(call.Argument(0).String()).Match(n))
	})
}

func (d *domBridge) setInnerHTML(n *html.Node, markup string) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		panic(d.rt.NewTypeError("invalid markup: " + err.Error()))
	}
	clearChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, name, value string) {
	name = strings.ToLower(name)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func firstElement(start *html.Node, next func(*html.Node) *html.Node) *html.Node {
	for c := start; c != nil; c = next(c) {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// walk visits n and its descendants in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func firstByTag(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// sourceIndex is the position of n in a preorder walk of its tree.
func sourceIndex(n *html.Node) int {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	i, index := 0, -1
	walk(root, func(c *html.Node) bool {
		if c == n {
			index = i
			return false
		}
		i++
		return true
	})
	return index
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

func setText(n *html.Node, text string) {
	clearChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func clearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(render(c))
	}
	return b.String()
}

func formValue(n *html.Node) string {
	switch n.Data {
	case "textarea":
		return textContent(n)
	case "select":
		var value string
		first := true
		walk(n, func(c *html.Node) bool {
			if c.Type != html.ElementNode || c.Data != "option" {
				return true
			}
			if first || hasAttr(c, "selected") {
				value = optionValue(c)
				first = false
			}
			return !hasAttr(c, "selected")
		})
		return value
	case "option":
		return optionValue(n)
	}
	return attr(n, "value")
}

func optionValue(n *html.Node) string {
	if hasAttr(n, "value") {
		return attr(n, "value")
	}
	return strings.TrimSpace(textContent(n))
}

func setFormValue(n *html.Node, value string) {
	switch n.Data {
	case "textarea":
		setText(n, value)
	case "select":
		walk(n, func(c *html.Node) bool {
			if c.Type == html.ElementNode && c.Data == "option" {
				if optionValue(c) == value {
					setAttr(c, "selected", "")
				} else {
					removeAttr(c, "selected")
				}
			}
			return true
		})
	default:
		setAttr(n, "value", value)
	}
}
