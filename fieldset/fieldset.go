// Package fieldset implements the field-set algebra the planner operates
// on: ordered containers of (parent type, field node, field definition)
// triples, with deterministic grouping by response name and parent type.
package fieldset

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Field is one (parent type, field node, field definition) triple.
type Field struct {
	ParentType *ast.Definition
	Node       *ast.Field
	Def        *ast.FieldDefinition
}

// ResponseName is the field's alias if present, otherwise its field name.
func (f Field) ResponseName() string {
	if f.Node.Alias != "" {
		return f.Node.Alias
	}
	return f.Node.Name
}

// Set is an ordered sequence of Fields.
type Set []Field

// Add appends f, preserving insertion order (§9: grouping stability).
func (s *Set) Add(f Field) {
	*s = append(*s, f)
}

// ResponseNameGroup is every Field sharing a response name, in the order
// they were first encountered.
type ResponseNameGroup struct {
	ResponseName string
	Fields       Set
}

// GroupByResponseName partitions s by response name, preserving the order
// in which each response name first appeared.
func GroupByResponseName(s Set) []ResponseNameGroup {
	var groups []ResponseNameGroup
	index := make(map[string]int)
	for _, f := range s {
		name := f.ResponseName()
		if i, ok := index[name]; ok {
			groups[i].Fields = append(groups[i].Fields, f)
			continue
		}
		index[name] = len(groups)
		groups = append(groups, ResponseNameGroup{ResponseName: name, Fields: Set{f}})
	}
	return groups
}

// ParentTypeGroup is every Field in a ResponseNameGroup sharing a parent
// type, in first-encountered order.
type ParentTypeGroup struct {
	ParentType *ast.Definition
	Fields     Set
}

// GroupByParentType partitions s by parent type name, preserving the order
// in which each parent type first appeared.
func GroupByParentType(s Set) []ParentTypeGroup {
	var groups []ParentTypeGroup
	index := make(map[string]int)
	for _, f := range s {
		name := ""
		if f.ParentType != nil {
			name = f.ParentType.Name
		}
		if i, ok := index[name]; ok {
			groups[i].Fields = append(groups[i].Fields, f)
			continue
		}
		index[name] = len(groups)
		groups = append(groups, ParentTypeGroup{ParentType: f.ParentType, Fields: Set{f}})
	}
	return groups
}

// MatchesField reports whether a and b are the same field selection for the
// purpose of @provides matching and dependent-group merging: same response
// name, same field name, and structurally identical arguments. Differences
// in selection set are never compared here — those are merged, not
// compared (§9).
func MatchesField(a, b Field) bool {
	if a.ResponseName() != b.ResponseName() {
		return false
	}
	if a.Node.Name != b.Node.Name {
		return false
	}
	return argumentsEqual(a.Node.Arguments, b.Node.Arguments)
}

func argumentsEqual(a, b ast.ArgumentList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
		if !valuesEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b *ast.Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	if a.Raw != b.Raw {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if a.Children[i].Name != b.Children[i].Name {
			return false
		}
		if !valuesEqual(a.Children[i].Value, b.Children[i].Value) {
			return false
		}
	}
	return true
}

// HasNonTypenameField reports whether s contains any field other than
// __typename.
func HasNonTypenameField(s Set) bool {
	for _, f := range s {
		if f.ResponseName() != "__typename" {
			return true
		}
	}
	return false
}

// ContainsField reports whether s has a Field under parentType matching
// field by MatchesField, used to test "already provided" membership.
func ContainsField(s Set, parentType *ast.Definition, field Field) bool {
	parentName := ""
	if parentType != nil {
		parentName = parentType.Name
	}
	for _, f := range s {
		fParentName := ""
		if f.ParentType != nil {
			fParentName = f.ParentType.Name
		}
		if fParentName != parentName {
			continue
		}
		if MatchesField(f, field) {
			return true
		}
	}
	return false
}
