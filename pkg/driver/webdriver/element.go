package webdriver

import (
	"github.com/devicelab-dev/webquery/pkg/core"
)

// Element reference keys. Remote ends answer with the W3C key; JSON Wire
// Protocol ends use the legacy one.
const (
	w3cElementKey    = "element-6066-11e4-a52e-4f735466cecf"
	legacyElementKey = "ELEMENT"
)

// Element is a web element reference owned by a session.
type Element struct {
	id string
}

// NewElement wraps an element id returned by the remote end.
func NewElement(id string) *Element { return &Element{id: id} }

func (e *Element) ElementID() string { return e.id }

func (e *Element) String() string { return "webdriver element " + e.id }

func extractElementID(value map[string]interface{}) string {
	// W3C format
	if id, ok := value[w3cElementKey].(string); ok {
		return id
	}
	// Legacy format
	if id, ok := value[legacyElementKey].(string); ok {
		return id
	}
	return ""
}

// decode replaces element references in a script result with *Element,
// recursing into arrays and objects.
func decode(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = decode(item)
		}
		return out
	case map[string]interface{}:
		if len(t) <= 2 {
			if id := extractElementID(t); id != "" {
				return NewElement(id)
			}
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

// encode turns element arguments into wire references carrying both keys.
func encode(v interface{}) interface{} {
	switch t := v.(type) {
	case core.Element:
		return reference(t.ElementID())
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

func reference(id string) map[string]interface{} {
	return map[string]interface{}{
		w3cElementKey:    id,
		legacyElementKey: id,
	}
}
