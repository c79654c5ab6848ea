package queryplan

import (
	"sort"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/fieldset"
)

// SelectionNode is one node of a Fetch's selectionSet or requires tree, the
// plan's own serializable shape — independent of the *ast.Selection it was
// rendered from, since a plan outlives the document it was built from.
type SelectionNode interface {
	isSelectionNode()
}

// FieldSelection is a single field selection within a plan node's
// selectionSet.
type FieldSelection struct {
	Alias       string           `json:"alias,omitempty"`
	Name        string           `json:"name"`
	Arguments   []ArgumentValue  `json:"arguments,omitempty"`
	Selections  []SelectionNode  `json:"selections,omitempty"`
}

func (*FieldSelection) isSelectionNode() {}

// InlineFragmentSelection guards a group of selections by a runtime type
// check, rendered wherever a FieldSet held entries sharing a response name
// but differing parent types.
type InlineFragmentSelection struct {
	TypeCondition string          `json:"typeCondition,omitempty"`
	Selections    []SelectionNode `json:"selections,omitempty"`
}

func (*InlineFragmentSelection) isSelectionNode() {}

// ArgumentValue is one field argument, with its value rendered back to
// GraphQL literal syntax.
type ArgumentValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SelectionSetOf renders fields (a FieldSet already merged via
// fieldset.Render) into the plan's SelectionNode tree.
func SelectionSetOf(fields fieldset.Set) []SelectionNode {
	if len(fields) == 0 {
		return nil
	}
	return trimSelectionSet(fieldset.Render(fields))
}

func trimSelectionSet(sel ast.SelectionSet) []SelectionNode {
	if len(sel) == 0 {
		return nil
	}
	out := make([]SelectionNode, 0, len(sel))
	for _, s := range sel {
		switch node := s.(type) {
		case *ast.Field:
			out = append(out, &FieldSelection{
				Alias:      node.Alias,
				Name:       node.Name,
				Arguments:  trimArguments(node.Arguments),
				Selections: trimSelectionSet(node.SelectionSet),
			})
		case *ast.InlineFragment:
			out = append(out, &InlineFragmentSelection{
				TypeCondition: node.TypeCondition,
				Selections:    trimSelectionSet(node.SelectionSet),
			})
		}
	}
	return out
}

func trimArguments(args ast.ArgumentList) []ArgumentValue {
	if len(args) == 0 {
		return nil
	}
	out := make([]ArgumentValue, len(args))
	for i, a := range args {
		out[i] = ArgumentValue{Name: a.Name, Value: renderValue(a.Value)}
	}
	return out
}

func renderValue(v *ast.Value) string {
	if v == nil {
		return "null"
	}
	switch v.Kind {
	case ast.Variable:
		return "$" + v.Raw
	case ast.StringValue, ast.BlockValue:
		return strconv.Quote(v.Raw)
	case ast.IntValue, ast.FloatValue, ast.BooleanValue, ast.EnumValue, ast.NullValue:
		return v.Raw
	case ast.ListValue:
		out := "["
		for i, c := range v.Children {
			if i > 0 {
				out += ", "
			}
			out += renderValue(c.Value)
		}
		return out + "]"
	case ast.ObjectValue:
		children := make([]*ast.ChildValue, len(v.Children))
		copy(children, v.Children)
		sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
		out := "{"
		for i, c := range children {
			if i > 0 {
				out += ", "
			}
			out += c.Name + ": " + renderValue(c.Value)
		}
		return out + "}"
	default:
		return v.Raw
	}
}
