package cdp

import "github.com/devicelab-dev/webquery/pkg/core"

// Element is a reference into the page's element registry.
type Element struct {
	id string
}

func (e *Element) ElementID() string { return e.id }

func (e *Element) String() string { return "cdp element " + e.id }

func decode(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = decode(item)
		}
		return out
	case map[string]interface{}:
		if id, ok := t[elementKey].(string); ok && len(t) == 1 {
			return &Element{id: id}
		}
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = decode(item)
		}
		return out
	default:
		return v
	}
}

func encode(v interface{}) interface{} {
	switch t := v.(type) {
	case core.Element:
		return map[string]interface{}{elementKey: t.ElementID()}
	case []core.Element:
		out := make([]interface{}, len(t))
		for i, el := range t {
			out[i] = encode(el)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = encode(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = encode(item)
		}
		return out
	default:
		return v
	}
}
