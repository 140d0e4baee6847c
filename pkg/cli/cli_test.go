package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/webquery/pkg/config"
	"github.com/devicelab-dev/webquery/pkg/core"
)

const page = `<html><head></head><body><ul id="m"><li>a</li><li>b</li></ul></body></html>`

// run executes the app with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	config.ResetHome()
	t.Setenv("WEBQUERY_HOME", t.TempDir())
	t.Cleanup(config.ResetHome)

	var out bytes.Buffer
	app := NewApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"webquery"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestGlobalFlags(t *testing.T) {
	flagNames := make(map[string]bool)
	for _, f := range GlobalFlags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{"config", "verbose", "log-file", "webdriver-url", "load-timeout"} {
		if !flagNames[name] {
			t.Errorf("expected flag %q to be defined", name)
		}
	}
}

func TestVersionAndVerboseFlags(t *testing.T) {
	out, err := run(t, "-v")
	if err != nil {
		t.Fatalf("-v error = %v", err)
	}
	if !strings.Contains(out, "webquery version "+Version) {
		t.Errorf("-v output = %q", out)
	}

	out, err = run(t, "--verbose", "script", "div")
	if err != nil {
		t.Fatalf("--verbose error = %v", err)
	}
	if got := strings.TrimSpace(out); got != "document.querySelectorAll('div')" {
		t.Errorf("--verbose output = %q", got)
	}
}

func TestJQueryVariableFromConfig(t *testing.T) {
	cfg := writeFile(t, "webquery.yaml", "libraries:\n  jqueryVariable: $\n")

	out, err := run(t, "--config", cfg, "script", "--kind", "jquery", "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "$('p').get()" {
		t.Errorf("output = %q, want %q", got, "$('p').get()")
	}

	// --variable wins over the file.
	out, err = run(t, "--config", cfg, "script", "--kind", "jquery", "--variable", "jQuery", "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "jQuery('p').get()" {
		t.Errorf("output = %q, want %q", got, "jQuery('p').get()")
	}

	// The offline jQuery also answers to $.
	file := writeFile(t, "page.html", page)
	out, err = run(t, "--config", cfg, "query", "--html", file, "--text", "--kind", "jquery", "li")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "\tb\n") {
		t.Errorf("output = %q, want 2 lines", out)
	}
}

func TestScriptCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"query", []string{"script", "#a .b"}, "document.querySelectorAll('#a .b')"},
		{"query base", []string{"script", "--base", "document.body", "li"}, "document.body.querySelectorAll('li')"},
		{"jquery", []string{"script", "--kind", "jquery", "p"}, "jQuery('p').get()"},
		{"jquery variable", []string{"script", "--kind", "jquery", "--variable", "$", "p"}, "$('p').get()"},
		{
			"jquery chain",
			[]string{"script", "--kind", "jquery", "--context", "#menu", "--find", "li", "--eq", "1", "ul"},
			"jQuery('ul', jQuery('#menu')).find('li').eq(1).get()",
		},
		{"sizzle", []string{"script", "--kind", "sizzle", "div"}, "Sizzle('div')"},
		{"sizzle context", []string{"script", "-k", "sizzle", "--context", "#x", "div"}, "Sizzle('div', Sizzle('#x')[0])"},
		{"checked", []string{"script", "--check", "--kind", "jquery", "a"}, "jQuery('a').get()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScriptCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{"no selector", []string{"script"}, nil, "exactly one SELECTOR"},
		{"eq on query", []string{"script", "--eq", "1", "p"}, nil, "--kind jquery"},
		{"base on jquery", []string{"script", "--kind", "jquery", "--base", "document", "p"}, nil, "--base needs"},
		{"context on query", []string{"script", "--context", "#x", "p"}, nil, "--context needs"},
		{"unknown kind", []string{"script", "--kind", "xpath", "p"}, core.ErrInvalidArgument, "unknown selector kind"},
		{"blank selector", []string{"script", " "}, core.ErrInvalidArgument, ""},
		{"blank find", []string{"script", "--kind", "jquery", "--find", " ", "p"}, core.ErrInvalidArgument, ""},
		{"blank context", []string{"script", "--kind", "sizzle", "--context", " ", "p"}, core.ErrInvalidArgument, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestQueryCommand_HTML(t *testing.T) {
	file := writeFile(t, "page.html", page)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			"query",
			[]string{"query", "--html", file, "#m li"},
			[]string{
				"0\thtml > body:nth-child(2) > ul:nth-child(1) > li:nth-child(1)",
				"1\thtml > body:nth-child(2) > ul:nth-child(1) > li:nth-child(2)",
			},
		},
		{
			"text",
			[]string{"query", "--html", file, "--text", "li"},
			[]string{
				"0\thtml > body:nth-child(2) > ul:nth-child(1) > li:nth-child(1)\ta",
				"1\thtml > body:nth-child(2) > ul:nth-child(1) > li:nth-child(2)\tb",
			},
		},
		{
			"jquery injected",
			[]string{"query", "--html", file, "--text", "--kind", "jquery", "--find", "li", "--eq", "1", "#m"},
			[]string{"0\thtml > body:nth-child(2) > ul:nth-child(1) > li:nth-child(2)\tb"},
		},
		{
			"no match",
			[]string{"query", "--html", file, "p"},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []string
			if trimmed := strings.TrimRight(out, "\n"); trimmed != "" {
				got = strings.Split(trimmed, "\n")
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryCommand_Errors(t *testing.T) {
	file := writeFile(t, "page.html", page)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{"no source", []string{"query", "li"}, nil, "exactly one of --html or --url"},
		{"both sources", []string{"query", "--html", file, "--url", "http://127.0.0.1:1/", "li"}, nil, "exactly one of"},
		{"missing file", []string{"query", "--html", filepath.Join(t.TempDir(), "none.html"), "li"}, nil, "failed to read"},
		{"webdriver without url", []string{"query", "--backend", "webdriver", "li"}, nil, "needs --url"},
		{"cdp without url", []string{"query", "--backend", "cdp", "li"}, nil, "needs --url"},
		{
			"webdriver without server",
			[]string{"query", "--backend", "webdriver", "--url", "http://example.com", "li"},
			core.ErrInvalidConfig, "webdriver.url",
		},
		{"unknown backend", []string{"query", "--backend", "x", "--url", "http://example.com", "li"}, core.ErrInvalidArgument, "unknown backend"},
		{"bad load timeout", []string{"--load-timeout=-1s", "query", "--html", file, "li"}, core.ErrInvalidConfig, "loadTimeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestQueryCommand_ConfigFile(t *testing.T) {
	file := writeFile(t, "page.html", page)
	cfg := writeFile(t, "webquery.yaml", "loadTimeout: 2s\npollInterval: 10ms\n")

	out, err := run(t, "--config", cfg, "query", "--html", file, "li")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("output = %q, want 2 lines", out)
	}

	// Flags override the file.
	_, err = run(t, "--config", cfg, "--load-timeout=1ms", "query", "--html", file, "li")
	if !errors.Is(err, core.ErrInvalidConfig) || !strings.Contains(err.Error(), "pollInterval") {
		t.Errorf("error = %v, want pollInterval ErrInvalidConfig", err)
	}

	broken := writeFile(t, "broken.yaml", "webdriver:\n  url: \"ftp://nowhere\"\n")
	if _, err := run(t, "--config", broken, "query", "--html", file, "li"); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestLocalLibraries(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "jquery-9.9.9.min.js"), []byte("window.x = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	resolve := localLibraries(dir)

	src, ok := resolve("https://code.jquery.com/jquery-9.9.9.min.js")
	if !ok || src != "window.x = 1;" {
		t.Errorf("resolve() = %q, %v", src, ok)
	}
	if _, ok := resolve("https://example.com/other.js"); ok {
		t.Error("expected unknown library to be unresolved")
	}
	if _, ok := localLibraries("")("https://example.com/x.js"); ok {
		t.Error("expected empty directory to resolve nothing")
	}
}

func TestCheckCommand(t *testing.T) {
	good := writeFile(t, "good.js", "return document.title;")
	bad := writeFile(t, "bad.js", "return (;")
	expr := writeFile(t, "expr.js", "document.querySelectorAll('a')")

	out, err := run(t, "check", good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ": ok") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "check", bad); !errors.Is(err, core.ErrJavaScript) {
		t.Errorf("error = %v, want ErrJavaScript", err)
	}
	if _, err := run(t, "check", "--expression", expr); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := run(t, "check"); err == nil {
		t.Error("expected error without FILE")
	}
}

func TestCheckCommand_Stdin(t *testing.T) {
	config.ResetHome()
	t.Cleanup(config.ResetHome)

	var out bytes.Buffer
	app := NewApp()
	app.Reader = strings.NewReader("return 1;")
	app.Writer = &out
	if err := app.Run([]string{"webquery", "check", "-"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "-: ok" {
		t.Errorf("output = %q", out.String())
	}
}
