// Package selector builds immutable DOM query expressions (native
// querySelectorAll, jQuery, Sizzle, link text, XPath) and the JavaScript
// needed to evaluate them in a page.
package selector

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/loader"
)

// Selector is a DOM query expression. Implementations are immutable: every
// derived selector is a new value.
type Selector interface {
	// Raw returns the selector text as given by the caller.
	Raw() string
	// Script returns the JavaScript expression evaluating the selector.
	Script() string
	// Expression returns Script in a form safe for member access and indexing.
	Expression() string
	// Resolver is appended to Expression to turn the result into a plain array.
	Resolver() string
	// CallFormat indexes one element out of the result: fmt.Sprintf(CallFormat(), Expression(), i).
	CallFormat() string
	Description() string
	// Prerequisite describes the page capability the script relies on.
	Prerequisite() loader.Loader
	// Root returns the same selector evaluated inside the element at CSS path.
	Root(path string) Selector
	Equal(other Selector) bool
	Hash() uint32
	// Err reports an argument error recorded while building the selector.
	Err() error
	String() string
}

// All returns the expression evaluating s to an array of elements.
func All(s Selector) string {
	return s.Expression() + s.Resolver()
}

// At returns the expression evaluating to the i-th element matched by s.
func At(s Selector, i int) string {
	return fmt.Sprintf(s.CallFormat(), s.Expression(), i)
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func required(param, value string) error {
	if blank(value) {
		return core.InvalidArgument(param, "must not be empty")
	}
	return nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
