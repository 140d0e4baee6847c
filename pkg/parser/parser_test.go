package parser

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/google/go-cmp/cmp"
)

type fakeElement string

func (e fakeElement) ElementID() string { return string(e) }

type color string

func TestParseDoubleToLong(t *testing.T) {
	got, err := Parse[int64](12.0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != 12 {
		t.Errorf("Parse() = %d, want 12", got)
	}
}

func TestParseNull(t *testing.T) {
	b, err := Parse[*bool](nil)
	if err != nil {
		t.Fatalf("Parse[*bool](nil) error = %v", err)
	}
	if b != nil {
		t.Errorf("Parse[*bool](nil) = %v, want nil", *b)
	}

	v, err := Parse[bool](nil)
	if err != nil {
		t.Fatalf("Parse[bool](nil) error = %v", err)
	}
	if v {
		t.Error("Parse[bool](nil) = true, want false")
	}

	s, err := Parse[string](nil)
	if err != nil || s != "" {
		t.Errorf("Parse[string](nil) = %q, %v", s, err)
	}

	el, err := Parse[core.Element](nil)
	if err != nil || el != nil {
		t.Errorf("Parse[core.Element](nil) = %v, %v", el, err)
	}

	list, err := Parse[[]core.Element](nil)
	if err != nil || list != nil {
		t.Errorf("Parse[[]core.Element](nil) = %v, %v", list, err)
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name  string
		parse func() (interface{}, error)
		want  interface{}
	}{
		{"float to int", func() (interface{}, error) { return Parse[int](3.0) }, 3},
		{"truncate toward zero", func() (interface{}, error) { return Parse[int64](12.9) }, int64(12)},
		{"negative truncation", func() (interface{}, error) { return Parse[int64](-1.5) }, int64(-1)},
		{"float to float32", func() (interface{}, error) { return Parse[float32](0.5) }, float32(0.5)},
		{"int to float", func() (interface{}, error) { return Parse[float64](int64(7)) }, float64(7)},
		{"json number", func() (interface{}, error) { return Parse[int64](json.Number("42")) }, int64(42)},
		{"json fraction", func() (interface{}, error) { return Parse[float64](json.Number("1.25")) }, 1.25},
		{"float to uint", func() (interface{}, error) { return Parse[uint16](200.0) }, uint16(200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestParseNumericPointer(t *testing.T) {
	p, err := Parse[*int64](640.0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p == nil || *p != 640 {
		t.Errorf("Parse[*int64](640.0) = %v, want pointer to 640", p)
	}
}

func TestParseSequence(t *testing.T) {
	ints, err := Parse[[]int]([]interface{}{1.0, 2.0, 3.0})
	if err != nil {
		t.Fatalf("Parse[[]int] error = %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, ints); diff != "" {
		t.Errorf("Parse[[]int] mismatch (-want +got):\n%s", diff)
	}

	strs, err := Parse[[]string]([]interface{}{"a", nil, "c"})
	if err != nil {
		t.Fatalf("Parse[[]string] error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "", "c"}, strs); diff != "" {
		t.Errorf("Parse[[]string] mismatch (-want +got):\n%s", diff)
	}

	els, err := Parse[[]core.Element]([]interface{}{fakeElement("e1"), fakeElement("e2")})
	if err != nil {
		t.Fatalf("Parse[[]core.Element] error = %v", err)
	}
	if len(els) != 2 || els[1].ElementID() != "e2" {
		t.Errorf("Parse[[]core.Element] = %v", els)
	}

	raw := []interface{}{"x", 1.0}
	same, err := Parse[[]interface{}](raw)
	if err != nil {
		t.Fatalf("Parse[[]interface{}] error = %v", err)
	}
	if diff := cmp.Diff(raw, same); diff != "" {
		t.Errorf("Parse[[]interface{}] mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSequenceElementError(t *testing.T) {
	_, err := Parse[[]int]([]interface{}{1.0, "two"})
	if !errors.Is(err, core.ErrTypeCoercion) {
		t.Errorf("error = %v, want ErrTypeCoercion", err)
	}
}

func TestParseDirectCast(t *testing.T) {
	s, err := Parse[string]("hello")
	if err != nil || s != "hello" {
		t.Errorf("Parse[string] = %q, %v", s, err)
	}

	b, err := Parse[*bool](true)
	if err != nil || b == nil || !*b {
		t.Errorf("Parse[*bool](true) = %v, %v", b, err)
	}

	c, err := Parse[color]("red")
	if err != nil || c != "red" {
		t.Errorf("Parse[color] = %q, %v", c, err)
	}

	el, err := Parse[core.Element](fakeElement("e9"))
	if err != nil || el.ElementID() != "e9" {
		t.Errorf("Parse[core.Element] = %v, %v", el, err)
	}

	m, err := Parse[map[string]interface{}](map[string]interface{}{"top": 1.0})
	if err != nil || m["top"] != 1.0 {
		t.Errorf("Parse[map] = %v, %v", m, err)
	}
}

func TestParseCoercionError(t *testing.T) {
	_, err := Parse[int]("12px")
	if !errors.Is(err, core.ErrTypeCoercion) {
		t.Fatalf("error = %v, want ErrTypeCoercion", err)
	}

	var execErr *core.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatal("error should be an ExecutionError")
	}
	if execErr.Category != core.ErrCategoryTypeCoercion {
		t.Errorf("Category = %s", execErr.Category)
	}
	if execErr.Details["raw_type"] != "string" || execErr.Details["target_type"] != "int" {
		t.Errorf("Details = %v", execErr.Details)
	}

	if _, err := Parse[bool](1.0); !errors.Is(err, core.ErrTypeCoercion) {
		t.Errorf("Parse[bool](1.0) error = %v, want ErrTypeCoercion", err)
	}
}

func TestChainOrder(t *testing.T) {
	want := []string{"null", "numeric", "sequence", "direct_cast"}
	if diff := cmp.Diff(want, Default().Handlers()); diff != "" {
		t.Errorf("Default().Handlers() mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomChain(t *testing.T) {
	// Parses "12px" style CSS lengths before falling back to the defaults.
	pixels := HandlerFunc{
		Label: "pixels",
		Fn: func(_ *Chain, raw interface{}, target reflect.Type) (reflect.Value, bool, error) {
			s, ok := raw.(string)
			if !ok || target.Kind() != reflect.Int || len(s) < 3 || s[len(s)-2:] != "px" {
				return reflect.Value{}, false, nil
			}
			var n int
			for _, r := range s[:len(s)-2] {
				if r < '0' || r > '9' {
					return reflect.Value{}, false, nil
				}
				n = n*10 + int(r-'0')
			}
			return reflect.ValueOf(n), true, nil
		},
	}

	chain := New(pixels, Null{}, Numeric{}, Sequence{}, DirectCast{})

	n, err := As[int](chain, "12px")
	if err != nil || n != 12 {
		t.Errorf("As[int](\"12px\") = %d, %v", n, err)
	}
	n, err = As[int](chain, 8.0)
	if err != nil || n != 8 {
		t.Errorf("As[int](8.0) = %d, %v", n, err)
	}
	list, err := As[[]int](chain, []interface{}{"1px", 2.0})
	if err != nil {
		t.Fatalf("As[[]int] error = %v", err)
	}
	if diff := cmp.Diff([]int{1, 2}, list); diff != "" {
		t.Errorf("As[[]int] mismatch (-want +got):\n%s", diff)
	}

	if _, err := As[int](New(), 1.0); !errors.Is(err, core.ErrTypeCoercion) {
		t.Errorf("empty chain error = %v, want ErrTypeCoercion", err)
	}
}
