// Package planerror defines the typed errors the query planner raises.
//
// All planning failures are synchronous and abort planning; the planner never
// accumulates a list of errors the way a validator would. Every failure is
// represented by a single *Error carrying a Kind a caller can switch on
// without string matching.
package planerror

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Kind identifies why planning failed.
type Kind string

const (
	SubscriptionsUnsupported Kind = "SubscriptionsUnsupported"
	MissingOperation         Kind = "MissingOperation"
	UnknownOperation         Kind = "UnknownOperation"
	AmbiguousOperation       Kind = "AmbiguousOperation"
	UnknownField             Kind = "UnknownField"
	MissingOwningService     Kind = "MissingOwningService"
	MissingBaseService       Kind = "MissingBaseService"
	MissingKeys              Kind = "MissingKeys"
	SchemaMismatch           Kind = "SchemaMismatch"
)

// Location is a 1-indexed line/column position, matching the source lineage's
// errors.Location.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is the single error type the planner raises.
type Error struct {
	Kind      Kind       `json:"kind"`
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
	Path      []string   `json:"path,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	str := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	for _, loc := range e.Locations {
		str += fmt.Sprintf(" (%d:%d)", loc.Line, loc.Column)
	}
	if len(e.Path) > 0 {
		str += fmt.Sprintf(" path: %v", e.Path)
	}
	return str
}

var _ error = (*Error)(nil)

// New builds an Error with no position information, formatting its message
// through gqlerror.Errorf the way this lineage's own error helpers do.
func New(kind Kind, format string, args ...interface{}) *Error {
	ge := gqlerror.Errorf(format, args...)
	return &Error{Kind: kind, Message: ge.Message}
}

// AtNode builds an Error positioned at the given AST node's source
// location via gqlerror.ErrorPosf (gqlerror.ErrorLocf when pos carries no
// source). pos may be nil, in which case no Locations are attached.
func AtNode(kind Kind, pos *ast.Position, format string, args ...interface{}) *Error {
	if pos == nil {
		return New(kind, format, args...)
	}
	var ge *gqlerror.Error
	if pos.Src != nil {
		ge = gqlerror.ErrorPosf(pos, format, args...)
	} else {
		ge = gqlerror.ErrorLocf("", pos.Line, pos.Column, format, args...)
	}
	err := &Error{Kind: kind, Message: ge.Message}
	for _, l := range ge.Locations {
		err.Locations = append(err.Locations, Location{Line: l.Line, Column: l.Column})
	}
	return err
}

// WithPath returns a copy of err with Path set, used to annotate an error
// raised deep in subfield splitting with the response path it occurred at.
func (e *Error) WithPath(path []string) *Error {
	cp := *e
	cp.Path = path
	return &cp
}
