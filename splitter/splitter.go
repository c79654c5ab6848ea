// Package splitter implements the core partitioning algorithm: turning a
// flattened FieldSet into a graph of per-service FetchGroups, following the
// federation routing rules encoded in the schema's base/owning service and
// key/requires/provides metadata.
package splitter

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/fetchgroup"
	"github.com/mrsunboss/apollo-server/fieldset"
	"github.com/mrsunboss/apollo-server/planctx"
	"github.com/mrsunboss/apollo-server/schema"
)

// GroupSelector chooses, for a single representative Field under an object
// type, the FetchGroup it belongs to.
type GroupSelector func(field fieldset.Field) (*fetchgroup.Group, error)

// SplitFields partitions fields into groups chosen by selectGroup, response
// name by response name and, within that, parent type by parent type.
// Abstract parent types are resolved per possible concrete type and merged
// back into a single selection when every concrete type routes to the same
// group.
func SplitFields(ctx *planctx.PlanningContext, path fieldset.Path, fields fieldset.Set, selectGroup GroupSelector) error {
	for _, rng := range fieldset.GroupByResponseName(fields) {
		for _, ptg := range fieldset.GroupByParentType(rng.Fields) {
			representative := ptg.Fields[0]
			if representative.ResponseName() == "__typename" {
				continue
			}
			if schema.IsIntrospectionType(namedTypeOf(representative.Def.Type)) {
				continue
			}

			if schema.IsAbstractType(ptg.ParentType) {
				if err := splitAbstractField(ctx, path, ptg, selectGroup); err != nil {
					return err
				}
				continue
			}

			group, err := selectGroup(representative)
			if err != nil {
				return err
			}
			completed, err := completeField(ctx, path, ptg.Fields, group)
			if err != nil {
				return err
			}
			group.Fields.Add(completed)
		}
	}
	return nil
}

func splitAbstractField(ctx *planctx.PlanningContext, path fieldset.Path, ptg fieldset.ParentTypeGroup, selectGroup GroupSelector) error {
	representativeNode := ptg.Fields[0].Node
	parentType := ptg.ParentType

	possibleTypes := ctx.GetPossibleTypes(parentType)

	fieldDefByType := make(map[string]*ast.FieldDefinition, len(possibleTypes))
	groupByType := make(map[string]*fetchgroup.Group, len(possibleTypes))
	groupTypeNames := make(map[*fetchgroup.Group][]string)
	var groupsOrder []*fetchgroup.Group
	seenGroup := make(map[*fetchgroup.Group]bool)

	for _, ct := range possibleTypes {
		fieldDef, err := ctx.GetFieldDef(ct, representativeNode)
		if err != nil {
			return err
		}
		g, err := selectGroup(fieldset.Field{ParentType: ct, Node: representativeNode, Def: fieldDef})
		if err != nil {
			return err
		}
		fieldDefByType[ct.Name] = fieldDef
		groupByType[ct.Name] = g
		groupTypeNames[g] = append(groupTypeNames[g], ct.Name)
		if !seenGroup[g] {
			seenGroup[g] = true
			groupsOrder = append(groupsOrder, g)
		}
	}

	if len(groupsOrder) == 1 && len(possibleTypes) > 0 {
		g := groupsOrder[0]
		fieldDef := fieldDefByType[possibleTypes[0].Name]
		completed, err := completeField(ctx, path, withParentAndDef(ptg.Fields, parentType, fieldDef), g)
		if err != nil {
			return err
		}
		g.Fields.Add(completed)
		return nil
	}

	for _, ct := range possibleTypes {
		g := groupByType[ct.Name]
		completed, err := completeField(ctx, path, withParentAndDef(ptg.Fields, ct, fieldDefByType[ct.Name]), g)
		if err != nil {
			return err
		}
		g.Fields.Add(completed)
	}
	return nil
}

// withParentAndDef rewrites every field in fields to carry parentType and
// def, keeping each field's original node (and so its own subselection) for
// merging by completeField.
func withParentAndDef(fields fieldset.Set, parentType *ast.Definition, def *ast.FieldDefinition) fieldset.Set {
	out := make(fieldset.Set, len(fields))
	for i, f := range fields {
		out[i] = fieldset.Field{ParentType: parentType, Node: f.Node, Def: def}
	}
	return out
}

// completeField finishes a group of fields that share a response name and
// parent type (duplicate selections of the same field, e.g. from separate
// fragments) after a group has been chosen for them: a leaf field is
// returned unchanged, a composite-typed field spawns a sub-group for the
// union of every duplicate's subselection and has that subselection spliced
// back into a single merged field, with any dependent groups the recursion
// created lifted onto parentGroup's own dependents.
func completeField(ctx *planctx.PlanningContext, path fieldset.Path, fields fieldset.Set, parentGroup *fetchgroup.Group) (fieldset.Field, error) {
	representative := fields[0]
	returnType := ctx.Schema.Definition(namedTypeOf(representative.Def.Type))
	if returnType == nil || !schema.IsCompositeType(returnType) {
		return representative, nil
	}

	fieldPath := fieldset.AddPath(path, representative.ResponseName(), representative.Def.Type)

	providedFields, err := ctx.GetProvidedFields(representative.ParentType, representative.Def, parentGroup.ServiceName)
	if err != nil {
		return fieldset.Field{}, err
	}

	subGroup := fetchgroup.NewDependent(parentGroup.ServiceName, fieldPath)
	subGroup.ProvidedFields = providedFields
	if schema.IsAbstractType(returnType) {
		subGroup.Fields.Add(fieldset.Field{
			ParentType: returnType,
			Node:       &ast.Field{Name: "__typename"},
			Def:        typenameDef,
		})
	}

	subfields, err := ctx.CollectSubfields(returnType, fields)
	if err != nil {
		return fieldset.Field{}, err
	}

	if err := SplitSubfields(ctx, fieldPath, subfields, subGroup); err != nil {
		return fieldset.Field{}, err
	}

	for _, dep := range subGroup.DependentGroups() {
		parentGroup.AddOtherDependent(dep)
	}

	newNode := cloneField(representative.Node)
	newNode.SelectionSet = fieldset.Render(subGroup.Fields)

	return fieldset.Field{ParentType: representative.ParentType, Node: newNode, Def: representative.Def}, nil
}

var typenameDef = &ast.FieldDefinition{
	Name: "__typename",
	Type: ast.NonNullNamedType("String", nil),
}

func cloneField(f *ast.Field) *ast.Field {
	clone := *f
	return &clone
}

func namedTypeOf(t *ast.Type) string {
	for cur := t; cur != nil; cur = cur.Elem {
		if cur.NamedType != "" {
			return cur.NamedType
		}
	}
	return ""
}
