package fieldset

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Render converts a Set back into an ast.SelectionSet, deterministically:
// entries are grouped by response name and, within that, by parent type;
// entries sharing both are merged by concatenating (and de-duplicating)
// their child selections; entries sharing only a response name are each
// wrapped in an inline fragment guarded by their parent type's name, for
// the executor to pick at runtime via __typename.
//
// Render never emits a fragment spread — fragments are inlined during field
// collection and never reconstructed (§9).
func Render(fields Set) ast.SelectionSet {
	var out ast.SelectionSet
	for _, rng := range GroupByResponseName(fields) {
		ptGroups := GroupByParentType(rng.Fields)
		if len(ptGroups) == 1 {
			out = append(out, renderField(ptGroups[0].Fields))
			continue
		}
		for _, ptg := range ptGroups {
			typeName := ""
			if ptg.ParentType != nil {
				typeName = ptg.ParentType.Name
			}
			out = append(out, &ast.InlineFragment{
				TypeCondition: typeName,
				SelectionSet:  ast.SelectionSet{renderField(ptg.Fields)},
			})
		}
	}
	return out
}

// renderField merges every Field in fields (all sharing response name and
// parent type) into a single *ast.Field, preserving the representative
// node's alias, name, arguments, and directives, and recursively merging
// their child selection sets rather than picking one side on a conflict.
func renderField(fields Set) *ast.Field {
	representative := fields[0].Node
	merged := &ast.Field{
		Alias:            representative.Alias,
		Name:             representative.Name,
		Arguments:        representative.Arguments,
		Directives:       representative.Directives,
		Position:         representative.Position,
		Definition:       representative.Definition,
		ObjectDefinition: representative.ObjectDefinition,
	}
	merged.SelectionSet = mergeChildSelections(fields)
	return merged
}

// mergeChildSelections merges the child selection sets of every Field in
// fields. Plain fields are re-collected into a Set (keyed off each child's
// own Definition/ObjectDefinition, populated during collection) and run back
// through Render, so a response-name collision among grandchildren is
// normalized the same way a top-level collision is, all the way down.
// Inline fragments sharing a type condition have their selection sets merged
// the same way; fragment spreads are deduplicated by name, since Render
// never produces or receives one with a differing subtree to reconcile.
func mergeChildSelections(fields Set) ast.SelectionSet {
	sets := make([]ast.SelectionSet, len(fields))
	for i, f := range fields {
		sets[i] = f.Node.SelectionSet
	}
	return mergeSelectionSets(sets)
}

func mergeSelectionSets(sets []ast.SelectionSet) ast.SelectionSet {
	var flatFields Set
	var fragOrder []string
	fragsByType := make(map[string][]ast.SelectionSet)
	var spreads ast.SelectionSet
	seenSpread := make(map[string]bool)

	for _, set := range sets {
		for _, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				flatFields.Add(Field{ParentType: s.ObjectDefinition, Node: s, Def: s.Definition})
			case *ast.InlineFragment:
				if _, ok := fragsByType[s.TypeCondition]; !ok {
					fragOrder = append(fragOrder, s.TypeCondition)
				}
				fragsByType[s.TypeCondition] = append(fragsByType[s.TypeCondition], s.SelectionSet)
			case *ast.FragmentSpread:
				if seenSpread[s.Name] {
					continue
				}
				seenSpread[s.Name] = true
				spreads = append(spreads, s)
			}
		}
	}

	out := Render(flatFields)
	for _, typeCondition := range fragOrder {
		out = append(out, &ast.InlineFragment{
			TypeCondition: typeCondition,
			SelectionSet:  mergeSelectionSets(fragsByType[typeCondition]),
		})
	}
	return append(out, spreads...)
}
