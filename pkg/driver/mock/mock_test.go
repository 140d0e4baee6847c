package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/google/go-cmp/cmp"
)

func TestResponses(t *testing.T) {
	boom := errors.New("boom")
	e := New(Config{Responses: []Response{
		{Match: "typeof", Value: true},
		{Match: "throw", Err: boom},
		{Match: "return", Value: "first"},
		{Match: "return 1", Value: "shadowed"},
	}})
	ctx := context.Background()

	tests := []struct {
		script  string
		want    interface{}
		wantErr error
	}{
		{"return typeof window.jQuery === 'function';", true, nil},
		{"throw new Error('x');", nil, boom},
		{"return 1;", "first", nil},
		{"document.title = 'x';", nil, nil},
	}
	for _, tt := range tests {
		got, err := e.ExecuteScript(ctx, tt.script)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ExecuteScript(%q) error = %v, want %v", tt.script, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ExecuteScript(%q) = %v, want %v", tt.script, got, tt.want)
		}
	}

	want := []string{
		"return typeof window.jQuery === 'function';",
		"throw new Error('x');",
		"return 1;",
		"document.title = 'x';",
	}
	if diff := cmp.Diff(want, e.Scripts()); diff != "" {
		t.Errorf("Scripts() mismatch (-want +got):\n%s", diff)
	}
	if e.Last() != "document.title = 'x';" {
		t.Errorf("Last() = %q", e.Last())
	}

	e.Reset()
	if len(e.Scripts()) != 0 || e.Last() != "" {
		t.Errorf("Reset() left %v", e.Scripts())
	}
}

type constant struct{ value interface{} }

func (c constant) ExecuteScript(ctx context.Context, script string, args ...interface{}) (interface{}, error) {
	return c.value, nil
}

func TestRecorder(t *testing.T) {
	e := Recorder(constant{value: 42.0})
	got, err := e.ExecuteScript(context.Background(), "return 42;")
	if err != nil || got != 42.0 {
		t.Errorf("ExecuteScript() = %v, %v", got, err)
	}
	if e.Last() != "return 42;" {
		t.Errorf("Last() = %q", e.Last())
	}
}

func TestFailOnCall(t *testing.T) {
	e := New(Config{FailOnCall: 2})
	ctx := context.Background()

	if _, err := e.ExecuteScript(ctx, "a"); err != nil {
		t.Fatalf("call 1 error = %v", err)
	}
	if _, err := e.ExecuteScript(ctx, "b"); !errors.Is(err, core.ErrJavaScript) {
		t.Errorf("call 2 error = %v, want ErrJavaScript", err)
	}
	if _, err := e.ExecuteScript(ctx, "c"); err != nil {
		t.Errorf("call 3 error = %v", err)
	}

	// Reset restarts the count.
	e.Reset()
	e.ExecuteScript(ctx, "a")
	if _, err := e.ExecuteScript(ctx, "b"); err == nil {
		t.Error("expected call 2 to fail again after Reset")
	}
}

func TestDelayHonoursContext(t *testing.T) {
	e := New(Config{Delay: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := e.ExecuteScript(ctx, "return 1;"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("delay ignored the context")
	}
}
