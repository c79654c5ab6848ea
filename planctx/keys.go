package planctx

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/fieldset"
)

func typenameField(parentType *ast.Definition) fieldset.Field {
	return fieldset.Field{
		ParentType: parentType,
		Node:       &ast.Field{Name: "__typename"},
		Def:        typenameFieldDef,
	}
}

// GetKeyFields returns __typename plus, for every possible concrete type of
// parentType, the first key selection declared for service expanded under
// that concrete type. A type with no declared keys for service contributes
// only its __typename entry.
func (ctx *PlanningContext) GetKeyFields(parentType *ast.Definition, service string) (fieldset.Set, error) {
	var acc fieldset.Set
	acc.Add(typenameField(parentType))

	for _, ct := range ctx.GetPossibleTypes(parentType) {
		keys := ctx.Schema.Keys(ct.Name, service)
		if len(keys) == 0 {
			continue
		}
		expanded, err := ctx.expandFieldSet(ct, keys[0])
		if err != nil {
			return nil, err
		}
		acc = append(acc, expanded...)
	}
	return acc, nil
}

// GetRequiredFields is getKeyFields(parentType, service) concatenated with
// any @requires selection declared on parentType.fieldName, expanded under
// parentType.
func (ctx *PlanningContext) GetRequiredFields(parentType *ast.Definition, fieldName string, service string) (fieldset.Set, error) {
	keyFields, err := ctx.GetKeyFields(parentType, service)
	if err != nil {
		return nil, err
	}

	requires := ctx.Schema.Requires(parentType.Name, fieldName)
	if requires == nil {
		return keyFields, nil
	}
	expanded, err := ctx.expandFieldSet(parentType, requires)
	if err != nil {
		return nil, err
	}
	return append(keyFields, expanded...), nil
}

// GetProvidedFields returns the fields service can answer inline for
// parentType.fieldDef without a follow-up fetch: when fieldDef's named
// return type is composite, its key fields plus any @provides selection
// declared on parentType.fieldDef.Name, both expanded under the return
// type. Leaf-typed fields provide nothing.
func (ctx *PlanningContext) GetProvidedFields(parentType *ast.Definition, fieldDef *ast.FieldDefinition, service string) (fieldset.Set, error) {
	returnType := ctx.Schema.Definition(namedTypeOf(fieldDef.Type))
	if returnType == nil || !isCompositeKind(returnType) {
		return nil, nil
	}

	acc, err := ctx.GetKeyFields(returnType, service)
	if err != nil {
		return nil, err
	}

	provides := ctx.Schema.Provides(parentType.Name, fieldDef.Name)
	if provides == nil {
		return acc, nil
	}
	expanded, err := ctx.expandFieldSet(returnType, provides)
	if err != nil {
		return nil, err
	}
	return append(acc, expanded...), nil
}

func namedTypeOf(t *ast.Type) string {
	for cur := t; cur != nil; cur = cur.Elem {
		if cur.NamedType != "" {
			return cur.NamedType
		}
	}
	return ""
}

func isCompositeKind(def *ast.Definition) bool {
	return def.Kind == ast.Object || def.Kind == ast.Interface || def.Kind == ast.Union
}

// expandFieldSet flattens a _FieldSet selection (key/requires/provides) into
// a fieldset.Set under parentType. These selections come from the schema,
// not an operation document, so they never reference named fragments and
// carry no @skip/@include — only plain fields and inline fragments are
// possible here.
func (ctx *PlanningContext) expandFieldSet(parentType *ast.Definition, sel ast.SelectionSet) (fieldset.Set, error) {
	var acc fieldset.Set
	for _, s := range sel {
		switch node := s.(type) {
		case *ast.Field:
			def, err := ctx.GetFieldDef(parentType, node)
			if err != nil {
				return nil, err
			}
			acc.Add(fieldset.Field{ParentType: parentType, Node: node, Def: def})
		case *ast.InlineFragment:
			target := parentType
			if node.TypeCondition != "" {
				target = ctx.Schema.Definition(node.TypeCondition)
			}
			sub, err := ctx.expandFieldSet(target, node.SelectionSet)
			if err != nil {
				return nil, err
			}
			acc = append(acc, sub...)
		}
	}
	return acc, nil
}
