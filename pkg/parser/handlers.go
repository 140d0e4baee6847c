package parser

import (
	"encoding/json"
	"reflect"
)

// Null turns a nil result into nil for nullable targets and the zero value
// for everything else, so a missing boolean reads as false.
type Null struct{}

func (Null) Name() string { return "null" }

func (Null) Parse(_ *Chain, raw interface{}, target reflect.Type) (reflect.Value, bool, error) {
	if raw != nil {
		return reflect.Value{}, false, nil
	}
	return reflect.Zero(target), true, nil
}

// Numeric widens or narrows numbers. Script bridges hand every number back as
// a float64; fractional parts are truncated toward zero for integer targets.
type Numeric struct{}

func (Numeric) Name() string { return "numeric" }

func (Numeric) Parse(_ *Chain, raw interface{}, target reflect.Type) (reflect.Value, bool, error) {
	src, ok := numericValue(raw)
	if !ok {
		return reflect.Value{}, false, nil
	}

	elem := target
	if target.Kind() == reflect.Ptr {
		elem = target.Elem()
	}
	if !isNumberKind(elem.Kind()) {
		return reflect.Value{}, false, nil
	}

	v := src.Convert(elem)
	if target.Kind() == reflect.Ptr {
		p := reflect.New(elem)
		p.Elem().Set(v)
		return p, true, nil
	}
	return v, true, nil
}

func numericValue(raw interface{}) (reflect.Value, bool) {
	if n, ok := raw.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return reflect.ValueOf(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(f), true
	}
	v := reflect.ValueOf(raw)
	if !v.IsValid() || !isNumberKind(v.Kind()) {
		return reflect.Value{}, false
	}
	return v, true
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Sequence converts a []interface{} result element by element when the caller
// asks for a typed slice such as []string or []core.Element.
type Sequence struct{}

func (Sequence) Name() string { return "sequence" }

func (Sequence) Parse(c *Chain, raw interface{}, target reflect.Type) (reflect.Value, bool, error) {
	items, ok := raw.([]interface{})
	if !ok || target.Kind() != reflect.Slice || reflect.TypeOf(raw).AssignableTo(target) {
		return reflect.Value{}, false, nil
	}

	out := reflect.MakeSlice(target, len(items), len(items))
	for i, item := range items {
		v, err := c.Parse(item, target.Elem())
		if err != nil {
			return reflect.Value{}, false, err
		}
		out.Index(i).Set(v)
	}
	return out, true, nil
}

// DirectCast is the terminal handler: it accepts values already assignable to
// the target (or to the pointed-to type) and declines everything else.
type DirectCast struct{}

func (DirectCast) Name() string { return "direct_cast" }

func (DirectCast) Parse(_ *Chain, raw interface{}, target reflect.Type) (reflect.Value, bool, error) {
	v := reflect.ValueOf(raw)
	if !v.IsValid() {
		return reflect.Value{}, false, nil
	}
	if v.Type().AssignableTo(target) {
		return v, true, nil
	}
	// Named string and bool types.
	if v.Kind() == target.Kind() && (v.Kind() == reflect.String || v.Kind() == reflect.Bool) {
		return v.Convert(target), true, nil
	}
	if target.Kind() == reflect.Ptr && v.Type().AssignableTo(target.Elem()) {
		p := reflect.New(target.Elem())
		p.Elem().Set(v)
		return p, true, nil
	}
	return reflect.Value{}, false, nil
}
