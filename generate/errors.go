package generate

import "fmt"

// Kind classifies why a generation request failed.
type Kind string

const (
	KindParse    Kind = "parse"
	KindTimeout  Kind = "timeout"
	KindUpstream Kind = "upstream"
	KindConfig   Kind = "config"
)

// Error is returned by Generate for every failure. The course being edited is
// never touched when it is returned.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
