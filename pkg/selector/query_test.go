package selector

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/webquery/pkg/core"
)

func TestQueryScript(t *testing.T) {
	tests := []struct {
		name     string
		sel      *Query
		expected string
	}{
		{"document", QuerySelector("div"), "document.querySelectorAll('div')"},
		{"base element", QuerySelectorIn("div", "document.body"), "document.body.querySelectorAll('div')"},
		{"escape single quotes", QuerySelector("input[type='text']"), `document.querySelectorAll('input[type="text"]')`},
		{
			"base selector",
			QuerySelectorWithBase("span", QuerySelector("div")),
			"document.querySelectorAll('div').length === 0 ? [] : document.querySelectorAll('div')[0].querySelectorAll('span')",
		},
		{
			"nested base selector",
			QuerySelectorWithBase("a", QuerySelectorWithBase("span", QuerySelector("div"))),
			"(document.querySelectorAll('div').length === 0 ? [] : document.querySelectorAll('div')[0].querySelectorAll('span')).length === 0 ? [] : " +
				"(document.querySelectorAll('div').length === 0 ? [] : document.querySelectorAll('div')[0].querySelectorAll('span'))[0].querySelectorAll('a')",
		},
		{"class name", ClassName("active"), "document.querySelectorAll('.active')"},
		{"id", ID("main"), "document.querySelectorAll('#main')"},
		{"name", Name("email"), `document.querySelectorAll('*[name="email"]')`},
		{"name with apostrophe", Name("it's"), `document.querySelectorAll('*[name="it"s"]')`},
		{"tag name", TagName("li"), "document.querySelectorAll('li')"},
		{"css", CSS("ul > li"), "document.querySelectorAll('ul > li')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sel.Err(); err != nil {
				t.Fatalf("Err() = %v", err)
			}
			if got := tt.sel.Script(); got != tt.expected {
				t.Errorf("Script() =\n  %s\nwant\n  %s", got, tt.expected)
			}
		})
	}
}

func TestQueryRawAndDescription(t *testing.T) {
	tests := []struct {
		sel         *Query
		raw         string
		description string
	}{
		{QuerySelector("div"), "div", "By.QuerySelector: div"},
		{ClassName("active"), "active", "By.ClassName: active"},
		{ID("main"), "main", "By.Id: main"},
		{Name("email"), "email", "By.Name: email"},
		{TagName("li"), "li", "By.TagName: li"},
		{CSS("ul > li"), "ul > li", "By.CssSelector: ul > li"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if tt.sel.Raw() != tt.raw {
				t.Errorf("Raw() = %q, want %q", tt.sel.Raw(), tt.raw)
			}
			if tt.sel.Description() != tt.description {
				t.Errorf("Description() = %q, want %q", tt.sel.Description(), tt.description)
			}
		})
	}
}

func TestQueryInvalidArguments(t *testing.T) {
	tests := []struct {
		name  string
		sel   *Query
		param string
	}{
		{"empty selector", QuerySelector(""), "selector"},
		{"blank selector", QuerySelector("   "), "selector"},
		{"empty base element", QuerySelectorIn("div", ""), "baseElement"},
		{"nil base selector", QuerySelectorWithBase("div", nil), "baseSelector"},
		{"invalid base selector", QuerySelectorWithBase("div", QuerySelector(" ")), "selector"},
		{"empty class name", ClassName(""), "selector"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Err()
			if !errors.Is(err, core.ErrInvalidArgument) {
				t.Fatalf("Err() = %v, want invalid argument", err)
			}
			var execErr *core.ExecutionError
			errors.As(err, &execErr)
			if execErr.Param() != tt.param {
				t.Errorf("Param() = %q, want %q", execErr.Param(), tt.param)
			}
		})
	}
}

func TestNewQuery(t *testing.T) {
	q, err := NewQuery("div")
	if err != nil || q == nil {
		t.Fatalf("NewQuery() = %v, %v", q, err)
	}
	if _, err := NewQuery(""); err == nil {
		t.Error("NewQuery(\"\") should fail")
	}
	if _, err := NewQueryIn("div", " "); err == nil {
		t.Error("NewQueryIn() with blank base element should fail")
	}
	if _, err := NewQueryWithBase("div", nil); err == nil {
		t.Error("NewQueryWithBase() with nil base should fail")
	}
}

func TestQueryEquality(t *testing.T) {
	a := QuerySelectorWithBase("span", QuerySelector("div"))
	b := QuerySelectorWithBase("span", QuerySelector("div"))
	if !a.Equal(b) || !b.Equal(a) {
		t.Error("selectors built from the same parts should be equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal selectors should have equal hashes")
	}

	notEqual := []Selector{
		QuerySelector("span"),
		QuerySelectorWithBase("span", QuerySelector("p")),
		QuerySelectorIn("span", "document.body"),
		TagName("span"),
		JQuerySelector("span"),
		nil,
	}
	for _, other := range notEqual {
		if a.Equal(other) {
			t.Errorf("%v should not equal %v", a, other)
		}
	}

	if TagName("div").Equal(CSS("div")) {
		t.Error("different kinds should not be equal")
	}
}

func TestQueryRoot(t *testing.T) {
	rooted := TagName("span").Root("html > body > div:nth-child(2)")
	want := "document.querySelectorAll('html > body > div:nth-child(2)').length === 0 ? [] : " +
		"document.querySelectorAll('html > body > div:nth-child(2)')[0].querySelectorAll('span')"
	if rooted.Script() != want {
		t.Errorf("Root().Script() = %s, want %s", rooted.Script(), want)
	}
	if rooted.Description() != "By.TagName: span" {
		t.Errorf("Root() lost the kind, description = %q", rooted.Description())
	}
}

func TestQueryAtAndAll(t *testing.T) {
	q := QuerySelector("div")
	if got := At(q, 1); got != "document.querySelectorAll('div')[1]" {
		t.Errorf("At() = %s", got)
	}
	if got := All(q); got != "document.querySelectorAll('div')" {
		t.Errorf("All() = %s", got)
	}

	based := QuerySelectorWithBase("span", q)
	want := "(" + based.Script() + ")[0]"
	if got := At(based, 0); got != want {
		t.Errorf("At() on based query = %s, want %s", got, want)
	}
}
