// Package script holds the JavaScript snippets used to detect and inject
// selector libraries and to query the DOM.
package script

import (
	"fmt"
	"strconv"
	"strings"
)

// DetectCode is a function expression answering "is lib a function".
const DetectCode = "(function(lib) { return typeof lib === 'function'; })"

// InjectCode is a function expression that appends a <script> tag for src to <head>.
const InjectCode = "(function(src) { " +
	"var script = document.createElement('script'); " +
	"script.src = src; " +
	"document.getElementsByTagName('head')[0].appendChild(script); " +
	"})"

// ElementPath resolves arguments[0] to a CSS path that uniquely addresses it,
// e.g. "html > body:nth-child(2) > div:nth-child(2)".
const ElementPath = `return (function(element) {
	var path = [];
	while (element && element.nodeType === 1) {
		var name = element.tagName.toLowerCase();
		var parent = element.parentNode;
		if (parent && parent.nodeType === 1) {
			var siblings = parent.children;
			for (var i = 0; i < siblings.length; i++) {
				if (siblings[i] === element) {
					name += ':nth-child(' + (i + 1) + ')';
					break;
				}
			}
		}
		path.unshift(name);
		element = parent;
	}
	return path.join(' > ');
})(arguments[0]);`

// ElementXPath resolves arguments[0] to an absolute XPath, e.g. "/html[1]/body[1]/div[2]".
const ElementXPath = `return (function(element) {
	var path = '';
	while (element && element.nodeType === 1) {
		var index = 1;
		var sibling = element.previousElementSibling;
		while (sibling) {
			if (sibling.tagName === element.tagName) {
				index++;
			}
			sibling = sibling.previousElementSibling;
		}
		path = '/' + element.tagName.toLowerCase() + '[' + index + ']' + path;
		element = element.parentNode;
	}
	return path;
})(arguments[0]);`

// ElementText returns the rendered text of arguments[0].
const ElementText = "return arguments[0].innerText || arguments[0].textContent;"

// ElementTagName returns the lower-cased tag name of arguments[0].
const ElementTagName = "return arguments[0].tagName.toLowerCase();"

// ElementAttribute returns attribute arguments[1] of arguments[0].
const ElementAttribute = "return arguments[0].getAttribute(arguments[1]);"

// Escape replaces single quotes with double quotes so s can be embedded in a
// single-quoted JavaScript string. The transform is lossy: a literal
// apostrophe in s becomes a double quote.
func Escape(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

// Quote wraps s in single quotes after Escape.
func Quote(s string) string {
	return "'" + Escape(s) + "'"
}

// Detect returns a script reporting whether expr is a function.
func Detect(expr string) string {
	return Return(DetectCode + "(" + expr + ")")
}

// Inject returns a script that loads the library at uri.
func Inject(uri string) string {
	return InjectCode + "(" + Quote(uri) + ");"
}

// QuerySelectorAll returns base.querySelectorAll('selector').
func QuerySelectorAll(base, selector string) string {
	return base + ".querySelectorAll(" + Quote(selector) + ")"
}

// Return turns expr into a statement handing its value back to the caller.
func Return(expr string) string {
	return "return " + expr + ";"
}

// Wrap formats expr into wrapper, e.g. Wrap("JSON.stringify(%s)", expr).
// An empty wrapper returns expr unchanged.
func Wrap(wrapper, expr string) string {
	if wrapper == "" {
		return expr
	}
	return fmt.Sprintf(wrapper, expr)
}

// Member appends ".member" to expr. An empty member returns expr unchanged.
func Member(expr, member string) string {
	if member == "" {
		return expr
	}
	return expr + "." + member
}

// Number renders n the way JavaScript source expects it.
func Number(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Bool renders b as a JavaScript literal.
func Bool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
