package selector

import (
	"github.com/devicelab-dev/webquery/pkg/loader"
	"github.com/devicelab-dev/webquery/pkg/script"
)

// Sizzle is a selector evaluated by the Sizzle engine.
type Sizzle struct {
	raw     string
	context *Sizzle
	err     error
}

// SizzleSelector returns Sizzle('raw'), scoped to the first element of
// context when context is not nil.
func SizzleSelector(raw string, context *Sizzle) *Sizzle {
	s := &Sizzle{raw: raw, context: context, err: required("selector", raw)}
	if context != nil {
		s.err = firstErr(s.err, context.err)
	}
	return s
}

// NewSizzle is SizzleSelector with the argument error returned directly.
func NewSizzle(raw string, context *Sizzle) (*Sizzle, error) {
	s := SizzleSelector(raw, context)
	if s.err != nil {
		return nil, s.err
	}
	return s, nil
}

func (s *Sizzle) Raw() string         { return s.raw }
func (s *Sizzle) Context() *Sizzle    { return s.context }
func (s *Sizzle) Err() error          { return s.err }
func (s *Sizzle) Resolver() string    { return "" }
func (s *Sizzle) CallFormat() string  { return "%s[%d]" }
func (s *Sizzle) Expression() string  { return s.Script() }
func (s *Sizzle) String() string      { return s.Script() }
func (s *Sizzle) Description() string { return "By.SizzleSelector: " + s.raw }

func (s *Sizzle) Script() string {
	if s.context == nil {
		return "Sizzle(" + script.Quote(s.raw) + ")"
	}
	return "Sizzle(" + script.Quote(s.raw) + ", " + s.context.Script() + "[0])"
}

func (s *Sizzle) Prerequisite() loader.Loader {
	return loader.Sizzle()
}

func (s *Sizzle) Root(path string) Selector {
	return SizzleSelector(s.raw, SizzleSelector(path, nil))
}

func (s *Sizzle) Equal(other Selector) bool {
	o, ok := other.(*Sizzle)
	if !ok || s == nil || o == nil {
		return false
	}
	if s == o {
		return true
	}
	if s.raw != o.raw {
		return false
	}
	if s.context == nil || o.context == nil {
		return s.context == nil && o.context == nil
	}
	return s.context.Equal(o.context)
}

func (s *Sizzle) Hash() uint32 {
	if s.context == nil {
		return hashString(s.raw)
	}
	return hashString(s.raw) ^ s.context.Hash()
}
