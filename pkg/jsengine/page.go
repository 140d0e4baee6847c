package jsengine

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/loader"
	"github.com/devicelab-dev/webquery/pkg/logger"
	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

// maxExportDepth bounds how deep a returned object graph is converted.
const maxExportDepth = 32

// Page is a simulated browser page: an HTML document whose DOM is scriptable
// through goja. It implements core.ScriptExecutor, so selectors, loaders and
// finders run against it the same way they run against a real browser.
//
// Scripts that append a <script src=...> element queue a library load. The
// load completes after a configurable number of further ExecuteScript calls,
// which mimics the asynchronous loading a real browser performs.
type Page struct {
	engine *Engine
	bridge *domBridge
	doc    *html.Node
	url    string

	ids       map[*html.Node]string
	elements  map[string]*html.Node
	libraries map[string]string
	resolver  func(uri string) (string, bool)
	client    *http.Client
	loadDelay int
	preloaded []string

	pending  []pendingLoad
	injected []string
	loaded   []string
	failed   []string
	closed   bool

	mu sync.Mutex
}

type pendingLoad struct {
	uri       string
	inline    string
	remaining int
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithLibrary serves src whenever a script element requests uri.
func WithLibrary(uri, src string) PageOption {
	return func(p *Page) {
		p.libraries[uri] = src
	}
}

// WithResolver consults fn for script URIs missing from the library registry.
func WithResolver(fn func(uri string) (string, bool)) PageOption {
	return func(p *Page) {
		p.resolver = fn
	}
}

// WithLoadDelay sets how many ExecuteScript calls pass before an injected
// script finishes loading. Zero loads it as soon as the injecting script returns.
func WithLoadDelay(calls int) PageOption {
	return func(p *Page) {
		if calls < 0 {
			calls = 0
		}
		p.loadDelay = calls
	}
}

// WithHTTPClient downloads script URIs the registry does not know.
func WithHTTPClient(client *http.Client) PageOption {
	return func(p *Page) {
		p.client = client
	}
}

// WithPreloaded evaluates the libraries at uris while the page is built, as if
// the page had included them itself.
func WithPreloaded(uris ...string) PageOption {
	return func(p *Page) {
		p.preloaded = append(p.preloaded, uris...)
	}
}

// WithURL records the address the page was loaded from (window.location.href).
func WithURL(url string) PageOption {
	return func(p *Page) {
		p.url = url
	}
}

// NewPage parses source and returns a page ready to execute scripts.
func NewPage(source string, opts ...PageOption) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	p := &Page{
		engine:   New(),
		doc:      doc,
		url:      "about:blank",
		ids:      make(map[*html.Node]string),
		elements: make(map[string]*html.Node),
		libraries: map[string]string{
			loader.JQueryURI: JQuerySource,
			loader.SizzleURI: SizzleSource,
		},
		loadDelay: 1,
	}
	for _, opt := range opts {
		opt(p)
	}

	rt := p.engine.runtime
	p.bridge = newDOMBridge(rt)
	p.bridge.onAppend = p.appended
	rt.Set("document", p.bridge.wrap(doc))

	location := rt.NewObject()
	location.Set("href", p.url)
	rt.Set("location", location)

	for _, uri := range p.preloaded {
		src, err := p.source(context.Background(), uri)
		if err != nil {
			p.engine.Close()
			return nil, err
		}
		if _, err := rt.RunString(src); err != nil {
			p.engine.Close()
			return nil, scriptError(err)
		}
		p.loaded = append(p.loaded, uri)
	}

	logger.Debug("page %s ready", p.url)
	return p, nil
}

// ExecuteScript runs script as a function body with args bound to arguments.
// Element arguments must come from this page. Cancelling ctx interrupts the
// script.
func (p *Page) ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, core.ErrNoSession.WithMessage("page is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.tick(ctx)

	rt := p.engine.runtime
	values := make([]goja.Value, len(args))
	for i, arg := range args {
		v, err := p.importValue(arg)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	compiled, err := rt.RunString(wrapFunction(script))
	if err != nil {
		return nil, scriptError(err)
	}
	fn, ok := goja.AssertFunction(compiled)
	if !ok {
		return nil, core.ErrJavaScript.WithMessage("script did not compile to a function")
	}

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		rt.Interrupt(ctx.Err())
		close(interrupted)
	})
	result, err := fn(goja.Undefined(), values...)
	if !stop() {
		<-interrupted
	}
	rt.ClearInterrupt()
	if err != nil {
		return nil, scriptError(err)
	}

	p.runDue(ctx)
	return p.export(result, 0)
}

// Injected lists the script URIs that scripts have appended, in order.
func (p *Page) Injected() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.injected...)
}

// Loaded lists the libraries that finished loading, in order.
func (p *Page) Loaded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.loaded...)
}

// Failed lists the script URIs that could not be resolved or evaluated.
func (p *Page) Failed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.failed...)
}

// HTML renders the current document.
func (p *Page) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return render(p.doc)
}

// Close releases the runtime. Later ExecuteScript calls fail with ErrNoSession.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.engine.Close()
}

// Element is a DOM element handed out by a Page.
type Element struct {
	page *Page
	id   string
	node *html.Node
}

func (e *Element) ElementID() string { return e.id }

// Node returns the underlying parsed node.
func (e *Element) Node() *html.Node { return e.node }

func (e *Element) String() string {
	return fmt.Sprintf("<%s> (%s)", e.node.Data, e.id)
}

func (p *Page) element(n *html.Node) *Element {
	id, ok := p.ids[n]
	if !ok {
		id = "webquery-node-" + strconv.Itoa(len(p.ids)+1)
		p.ids[n] = id
		p.elements[id] = n
	}
	return &Element{page: p, id: id, node: n}
}

func (p *Page) importValue(arg interface{}) (goja.Value, error) {
	rt := p.engine.runtime
	switch v := arg.(type) {
	case nil:
		return goja.Null(), nil
	case *Element:
		if v.page != p {
			return nil, core.InvalidArgument("args", "element "+v.id+" belongs to another page")
		}
		return p.bridge.wrap(v.node), nil
	case core.Element:
		n, ok := p.elements[v.ElementID()]
		if !ok {
			return nil, core.InvalidArgument("args", "unknown element "+v.ElementID())
		}
		return p.bridge.wrap(n), nil
	case []interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			iv, err := p.importValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = iv
		}
		return rt.NewArray(items...), nil
	case []core.Element:
		items := make([]interface{}, len(v))
		for i, item := range v {
			iv, err := p.importValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = iv
		}
		return rt.NewArray(items...), nil
	case map[string]interface{}:
		o := rt.NewObject()
		for k, item := range v {
			iv, err := p.importValue(item)
			if err != nil {
				return nil, err
			}
			o.Set(k, iv)
		}
		return o, nil
	}
	return rt.ToValue(arg), nil
}

// export converts a script result into the loosely typed values a remote
// WebDriver would return: numbers become float64, DOM nodes become *Element.
func (p *Page) export(v goja.Value, depth int) (interface{}, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	if depth > maxExportDepth {
		return nil, core.ErrJavaScript.WithMessage("result nests too deeply to serialize")
	}

	o, ok := v.(*goja.Object)
	if !ok {
		switch x := v.Export().(type) {
		case int64:
			return float64(x), nil
		default:
			return x, nil
		}
	}

	if n, ok := p.bridge.node(o); ok {
		if n.Type == html.DocumentNode {
			return map[string]interface{}{}, nil
		}
		return p.element(n), nil
	}
	if _, ok := goja.AssertFunction(o); ok {
		return nil, nil
	}

	if o.ClassName() == "Array" {
		length := int(o.Get("length").ToInteger())
		out := make([]interface{}, length)
		for i := 0; i < length; i++ {
			item, err := p.export(o.Get(strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	}

	out := make(map[string]interface{})
	for _, key := range o.Keys() {
		item, err := p.export(o.Get(key), depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = item
	}
	return out, nil
}

// appended queues script elements attached to the document.
func (p *Page) appended(n *html.Node) {
	if n.Type != html.ElementNode || n.Data != "script" {
		return
	}
	if src := attr(n, "src"); src != "" {
		p.injected = append(p.injected, src)
		p.pending = append(p.pending, pendingLoad{uri: src, remaining: p.loadDelay})
		logger.Debug("page: queued script %s", src)
		return
	}
	p.pending = append(p.pending, pendingLoad{inline: textContent(n)})
}

// tick advances every queued load by one script call.
func (p *Page) tick(ctx context.Context) {
	for i := range p.pending {
		p.pending[i].remaining--
	}
	p.runDue(ctx)
}

func (p *Page) runDue(ctx context.Context) {
	var waiting, due []pendingLoad
	for _, l := range p.pending {
		if l.remaining > 0 {
			waiting = append(waiting, l)
		} else {
			due = append(due, l)
		}
	}
	p.pending = waiting

	for _, l := range due {
		p.load(ctx, l)
	}
}

func (p *Page) load(ctx context.Context, l pendingLoad) {
	rt := p.engine.runtime
	if l.uri == "" {
		if _, err := rt.RunString(l.inline); err != nil {
			logger.Warn("page: inline script failed: %v", err)
		}
		return
	}

	src, err := p.source(ctx, l.uri)
	if err != nil {
		logger.Warn("page: %v", err)
		p.failed = append(p.failed, l.uri)
		return
	}
	if _, err := rt.RunString(src); err != nil {
		logger.Warn("page: script %s failed: %v", l.uri, err)
		p.failed = append(p.failed, l.uri)
		return
	}
	p.loaded = append(p.loaded, l.uri)
	logger.Debug("page: loaded %s", l.uri)
}

// source resolves uri to script text: the registry first, then the
// resolver, then versioned jQuery builds, then the network.
func (p *Page) source(ctx context.Context, uri string) (string, error) {
	if src, ok := p.libraries[uri]; ok {
		return src, nil
	}
	if p.resolver != nil {
		if src, ok := p.resolver(uri); ok {
			return src, nil
		}
	}
	if strings.HasPrefix(uri, "https://code.jquery.com/jquery-") && strings.HasSuffix(uri, ".js") {
		return JQuerySource, nil
	}
	if p.client != nil {
		return fetch(ctx, p.client, uri)
	}
	return "", fmt.Errorf("no source for script %s", uri)
}
