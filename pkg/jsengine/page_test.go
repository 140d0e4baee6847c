package jsengine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/loader"
	"github.com/google/go-cmp/cmp"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title> Fixture </title></head>
<body>
	<div id="first" class="box">one</div>
	<div id="second" class="box wide" style="top: 10px; left: 5px">two <span>inner</span></div>
	<ul>
		<li>a</li><li class="x">b</li><li>c</li><li>d</li>
	</ul>
	<a href="/docs">Read the docs</a>
	<form id="f">
		<input name="q" value="go">
		<input type="checkbox" name="c" value="on">
		<select name="s"><option>x</option><option selected>y</option></select>
	</form>
	<button id="b">Go</button>
</body>
</html>`

func newTestPage(t *testing.T, opts ...PageOption) *Page {
	t.Helper()
	p, err := NewPage(testPage, opts...)
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func exec(t *testing.T, p *Page, script string, args ...interface{}) interface{} {
	t.Helper()
	got, err := p.ExecuteScript(context.Background(), script, args...)
	if err != nil {
		t.Fatalf("ExecuteScript(%q) error = %v", script, err)
	}
	return got
}

func elements(t *testing.T, v interface{}) []*Element {
	t.Helper()
	items, ok := v.([]interface{})
	if !ok {
		t.Fatalf("result = %#v, want []interface{}", v)
	}
	out := make([]*Element, len(items))
	for i, item := range items {
		el, ok := item.(*Element)
		if !ok {
			t.Fatalf("item %d = %#v, want *Element", i, item)
		}
		out[i] = el
	}
	return out
}

func ids(els []*Element) []string {
	out := make([]string, len(els))
	for i, el := range els {
		for _, a := range el.Node().Attr {
			if a.Key == "id" {
				out[i] = a.Val
			}
		}
		if out[i] == "" {
			out[i] = el.Node().Data
		}
	}
	return out
}

func TestPageQuerySelectorAll(t *testing.T) {
	p := newTestPage(t)

	divs := elements(t, exec(t, p, "return document.querySelectorAll('div');"))
	if diff := cmp.Diff([]string{"first", "second"}, ids(divs)); diff != "" {
		t.Errorf("divs mismatch (-want +got):\n%s", diff)
	}

	missing := elements(t, exec(t, p, "return document.querySelectorAll('div.missing');"))
	if len(missing) != 0 {
		t.Errorf("div.missing matched %d elements", len(missing))
	}

	nested := elements(t, exec(t, p, "var b = document.querySelectorAll('#second'); return b.length === 0 ? [] : b[0].querySelectorAll('span');"))
	if len(nested) != 1 || nested[0].Node().Data != "span" {
		t.Errorf("nested = %v", nested)
	}
}

func TestPageElementIdentity(t *testing.T) {
	p := newTestPage(t)

	a := elements(t, exec(t, p, "return document.querySelectorAll('#first');"))[0]
	b := elements(t, exec(t, p, "return document.querySelectorAll('.box');"))[0]
	if a.ElementID() != b.ElementID() {
		t.Errorf("same node has ids %q and %q", a.ElementID(), b.ElementID())
	}

	got := exec(t, p, "return arguments[0].id + ':' + arguments[1];", a, "x")
	if got != "first:x" {
		t.Errorf("element argument = %v", got)
	}

	same := exec(t, p, "return arguments[0] === document.getElementById('first');", a)
	if same != true {
		t.Error("element argument should be the live DOM node")
	}
}

func TestPageResultTypes(t *testing.T) {
	p := newTestPage(t)

	tests := []struct {
		name   string
		script string
		want   interface{}
	}{
		{"integer", "return 3;", float64(3)},
		{"fraction", "return 1.5;", 1.5},
		{"string", "return document.title;", "Fixture"},
		{"bool", "return true;", true},
		{"undefined", "return;", nil},
		{"null", "return null;", nil},
		{"function", "return function() {};", nil},
		{"array", "return [1, 'a', null];", []interface{}{float64(1), "a", nil}},
		{"object", "return {top: 1, nested: {ok: true}};", map[string]interface{}{
			"top":    float64(1),
			"nested": map[string]interface{}{"ok": true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exec(t, p, tt.script)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPageScriptErrors(t *testing.T) {
	p := newTestPage(t)

	_, err := p.ExecuteScript(context.Background(), "return (;")
	if !errors.Is(err, core.ErrJavaScript) {
		t.Errorf("syntax error = %v, want ErrJavaScript", err)
	}

	_, err = p.ExecuteScript(context.Background(), "return document.querySelectorAll('div[');")
	if !errors.Is(err, core.ErrJavaScript) {
		t.Errorf("bad selector error = %v, want ErrJavaScript", err)
	}

	_, err = p.ExecuteScript(context.Background(), "return missing.value;")
	if !errors.Is(err, core.ErrJavaScript) {
		t.Errorf("reference error = %v, want ErrJavaScript", err)
	}
}

func TestPageInterrupt(t *testing.T) {
	p := newTestPage(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.ExecuteScript(ctx, "while (true) {}")
	if !errors.Is(err, core.ErrScriptTimeout) {
		t.Fatalf("error = %v, want ErrScriptTimeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded cause", err)
	}

	// The runtime stays usable afterwards.
	if got := exec(t, p, "return 1 + 1;"); got != float64(2) {
		t.Errorf("after interrupt = %v", got)
	}
}

func TestPageCancelledContext(t *testing.T) {
	p := newTestPage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.ExecuteScript(ctx, "return 1;"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestPageClosed(t *testing.T) {
	p, err := NewPage(testPage)
	if err != nil {
		t.Fatal(err)
	}
	p.Close()
	p.Close()

	if _, err := p.ExecuteScript(context.Background(), "return 1;"); !errors.Is(err, core.ErrNoSession) {
		t.Errorf("error = %v, want ErrNoSession", err)
	}
}

func TestPageForeignElement(t *testing.T) {
	p := newTestPage(t)
	other := newTestPage(t)

	el := elements(t, exec(t, other, "return document.querySelectorAll('#first');"))[0]
	_, err := p.ExecuteScript(context.Background(), "return arguments[0];", el)
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestPageInjectsLibraryOnce(t *testing.T) {
	p := newTestPage(t)
	ctx := context.Background()
	opts := loader.Options{PollInterval: 5 * time.Millisecond, Timeout: time.Second}

	if err := loader.Ensure(ctx, p, loader.JQuery(), opts); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if err := loader.Ensure(ctx, p, loader.JQuery(), opts); err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}

	if diff := cmp.Diff([]string{loader.JQueryURI}, p.Injected()); diff != "" {
		t.Errorf("Injected() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{loader.JQueryURI}, p.Loaded()); diff != "" {
		t.Errorf("Loaded() mismatch (-want +got):\n%s", diff)
	}

	got := elements(t, exec(t, p, "return jQuery('div').get();"))
	if len(got) != 2 {
		t.Errorf("jQuery('div') found %d elements, want 2", len(got))
	}
}

func TestPageLoadDelay(t *testing.T) {
	p := newTestPage(t, WithLoadDelay(2))

	exec(t, p, "var s = document.createElement('script'); s.src = arguments[0]; document.head.appendChild(s);", loader.SizzleURI)

	check := "return typeof window.Sizzle === 'function';"
	for i, want := range []bool{false, true} {
		if got := exec(t, p, check); got != want {
			t.Errorf("call %d: Sizzle present = %v, want %v", i, got, want)
		}
	}
}

func TestPageUnknownLibraryTimesOut(t *testing.T) {
	p := newTestPage(t)

	l := loader.Loader{Name: "widgets", LibraryURI: "https://cdn.invalid/widgets.js", Variable: "window.Widgets"}
	err := loader.Ensure(context.Background(), p, l, loader.Options{
		Timeout:      50 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	if !errors.Is(err, core.ErrLibraryLoadTimeout) {
		t.Fatalf("error = %v, want ErrLibraryLoadTimeout", err)
	}
	if diff := cmp.Diff([]string{l.LibraryURI}, p.Failed()); diff != "" {
		t.Errorf("Failed() mismatch (-want +got):\n%s", diff)
	}
}

func TestPageCustomLibrary(t *testing.T) {
	p := newTestPage(t,
		WithLoadDelay(0),
		WithResolver(func(uri string) (string, bool) {
			return "window.Widgets = function() { return 'w'; };", uri == "https://cdn.test/widgets.js"
		}),
	)

	l := loader.Loader{Name: "widgets", LibraryURI: "https://cdn.test/widgets.js", Variable: "window.Widgets"}
	if err := loader.Ensure(context.Background(), p, l, loader.Options{}); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if got := exec(t, p, "return Widgets();"); got != "w" {
		t.Errorf("Widgets() = %v", got)
	}
}

func TestPageNoXPath(t *testing.T) {
	p := newTestPage(t)
	if got := exec(t, p, "return typeof document.evaluate === 'function';"); got != false {
		t.Errorf("document.evaluate present = %v, want false", got)
	}
}

func TestPageJQuery(t *testing.T) {
	p := newTestPage(t, WithPreloaded(loader.JQueryURI))

	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{"eq negative", "return jQuery('li').eq(-1).get();", []string{"li"}},
		{"slice range", "return jQuery('li').slice(1, 3).get();", []string{"li", "li"}},
		{"find", "return jQuery('#second').find('span').get();", []string{"span"}},
		{"closest", "return jQuery('span').closest('div').get();", []string{"second"}},
		{"parent", "return jQuery('span').parent().get();", []string{"second"}},
		{"siblings", "return jQuery('#first').siblings('div').get();", []string{"second"}},
		{"next", "return jQuery('#first').next().get();", []string{"second"}},
		{"prev", "return jQuery('#second').prev().get();", []string{"first"}},
		{"filter", "return jQuery('div').filter('.wide').get();", []string{"second"}},
		{"not", "return jQuery('div').not('.wide').get();", []string{"first"}},
		{"has", "return jQuery('div').has('span').get();", []string{"second"}},
		{"add", "return jQuery('#b').add('#first').get();", []string{"first", "b"}},
		{"addBack", "return jQuery('#second').find('span').addBack().get();", []string{"second", "span"}},
		{"end", "return jQuery('#second').find('span').end().get();", []string{"second"}},
		{"nextUntil", "return jQuery('li').first().nextUntil('li:last-child').get();", []string{"li", "li"}},
		{"context", "return jQuery('span', jQuery('#second')).get();", []string{"span"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(elements(t, exec(t, p, tt.script)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPageJQueryAccessors(t *testing.T) {
	p := newTestPage(t, WithPreloaded(loader.JQueryURI))

	tests := []struct {
		name   string
		script string
		want   interface{}
	}{
		{"text", "return jQuery('li').text();", "abcd"},
		{"html", "return jQuery('#first').html();", "one"},
		{"attr", "return jQuery('a').attr('href');", "/docs"},
		{"missing attr", "return jQuery('a').attr('target');", nil},
		{"val", "return jQuery('input[name=q]').val();", "go"},
		{"select val", "return jQuery('select').val();", "y"},
		{"hasClass", "return jQuery('div').hasClass('wide');", true},
		{"is", "return jQuery('#b').is('button');", true},
		{"css", "return jQuery('#second').css('top');", "10px"},
		{"position", "return jQuery('#second').position();", map[string]interface{}{"top": float64(10), "left": float64(5)}},
		{"empty position", "return jQuery('.missing').position();", nil},
		{"serialize", "return jQuery('#f').serialize();", "q=go&s=y"},
		{"length", "return jQuery('li.x').length;", float64(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, exec(t, p, tt.script)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPageJQueryMutations(t *testing.T) {
	p := newTestPage(t, WithPreloaded(loader.JQueryURI))

	exec(t, p, "jQuery('#first').addClass('on').attr('title', 'hello').css('width', 40);")
	if got := exec(t, p, "return document.getElementById('first').className;"); got != "box on" {
		t.Errorf("className = %v", got)
	}
	if got := exec(t, p, "return jQuery('#first').width();"); got != float64(40) {
		t.Errorf("width = %v", got)
	}

	exec(t, p, "jQuery('#first').hide();")
	if got := exec(t, p, "return jQuery('#first').css('display');"); got != "none" {
		t.Errorf("display after hide = %v", got)
	}
	exec(t, p, "jQuery('#first').fadeTo(200, 0.5);")
	if got := exec(t, p, "return jQuery('#first').css('opacity');"); got != "0.5" {
		t.Errorf("opacity after fadeTo = %v", got)
	}
}

func TestPageJQueryEvents(t *testing.T) {
	p := newTestPage(t, WithPreloaded(loader.JQueryURI))

	got := exec(t, p, `
		jQuery('#b').on('click', function() { this.setAttribute('data-clicked', 'yes'); });
		jQuery('#b').click();
		return jQuery('#b').attr('data-clicked');`)
	if got != "yes" {
		t.Errorf("click handler result = %v", got)
	}

	got = exec(t, p, `
		jQuery('#b').off('click');
		jQuery('#b').removeAttr('data-clicked').trigger('click');
		return jQuery('#b').attr('data-clicked');`)
	if got != nil {
		t.Errorf("handler still bound: %v", got)
	}
}

func TestPageSizzle(t *testing.T) {
	p := newTestPage(t, WithPreloaded(loader.SizzleURI))

	got := ids(elements(t, exec(t, p, "return Sizzle('li.x');")))
	if diff := cmp.Diff([]string{"li"}, got); diff != "" {
		t.Errorf("Sizzle mismatch (-want +got):\n%s", diff)
	}

	got = ids(elements(t, exec(t, p, "return Sizzle('span', Sizzle('#second')[0]);")))
	if diff := cmp.Diff([]string{"span"}, got); diff != "" {
		t.Errorf("Sizzle context mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>remote</p></body></html>`))
	})
	mux.HandleFunc("/lib.js", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`window.Remote = function() { return 'ok'; };`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	p, err := FetchPage(ctx, srv.Client(), srv.URL+"/", WithLoadDelay(0))
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	defer p.Close()

	if got := exec(t, p, "return location.href;"); got != srv.URL+"/" {
		t.Errorf("location.href = %v", got)
	}
	if got := exec(t, p, "return document.querySelectorAll('p')[0].textContent;"); got != "remote" {
		t.Errorf("text = %v", got)
	}

	l := loader.Loader{Name: "remote", LibraryURI: srv.URL + "/lib.js", Variable: "window.Remote"}
	if err := loader.Ensure(ctx, p, l, loader.Options{}); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	if _, err := FetchPage(ctx, srv.Client(), srv.URL+"/missing"); err == nil {
		t.Error("FetchPage() should fail on 404")
	}
}
