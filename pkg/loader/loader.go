// Package loader describes third-party JavaScript libraries the selectors
// depend on and makes sure they are present on the page before use.
package loader

import (
	"strings"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/script"
)

// Default library locations.
const (
	JQueryURI = "https://code.jquery.com/jquery-latest.min.js"
	SizzleURI = "https://cdnjs.cloudflare.com/ajax/libs/sizzle/2.0.0/sizzle.min.js"
)

// Loader describes how to detect a library and, when injectable, how to load it.
// Loaders are plain values and safe to share.
type Loader struct {
	Name       string
	LibraryURI string // empty when the capability cannot be injected
	Variable   string // expression that evaluates to the library function
}

// JQuery returns the loader for the latest jQuery build.
func JQuery() Loader {
	return Loader{Name: "jQuery", LibraryURI: JQueryURI, Variable: "window.jQuery"}
}

// JQueryVersion returns a jQuery loader pinned to version, e.g. "1.11.0".
func JQueryVersion(version string) (Loader, error) {
	if strings.TrimSpace(version) == "" {
		return Loader{}, core.InvalidArgument("version", "must not be empty")
	}
	l := JQuery()
	l.LibraryURI = "https://code.jquery.com/jquery-" + strings.TrimSpace(version) + ".min.js"
	return l, nil
}

// Sizzle returns the loader for the Sizzle selector engine.
func Sizzle() Loader {
	return Loader{Name: "Sizzle", LibraryURI: SizzleURI, Variable: "window.Sizzle"}
}

// QuerySelectorSupport returns a loader that only checks for native
// document.querySelectorAll. It cannot be injected.
func QuerySelectorSupport() Loader {
	return Loader{Name: "querySelectorAll", Variable: "document.querySelectorAll"}
}

// Injectable reports whether LoadScript can produce a script.
func (l Loader) Injectable() bool {
	return l.LibraryURI != ""
}

// CheckScript returns the script answering "is the library present".
func (l Loader) CheckScript() string {
	return script.Detect(l.Variable)
}

// LoadScript returns the script that injects the library from uri.
func (l Loader) LoadScript(uri string) (string, error) {
	if !l.Injectable() {
		return "", core.ErrNotInjectable.
			WithMessage(l.Name + " cannot be injected").
			WithDetails(map[string]interface{}{"loader": l.Name})
	}
	if strings.TrimSpace(uri) == "" {
		return "", core.InvalidArgument("uri", "no "+l.Name+" URI given")
	}
	return script.Inject(uri), nil
}

// WithURI returns a copy of l loading from uri instead of the default location.
func (l Loader) WithURI(uri string) Loader {
	l.LibraryURI = uri
	return l
}

func (l Loader) String() string {
	return l.Name
}
