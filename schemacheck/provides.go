// Package schemacheck implements representative schema-validation rules a
// composition pipeline can run over a federated schema before handing it to
// the planner. Nothing here is invoked by the planner itself — these checks
// belong upstream, where a schema is still being composed and validated.
package schemacheck

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/planerror"
	"github.com/mrsunboss/apollo-server/schema"
)

// ProvidesFieldsHaveExternal walks every @provides selection in sch and
// confirms each field it names is declared @external on the service that
// owns the field carrying @provides. It returns every violation found
// rather than stopping at the first one, so a composition pipeline can
// report them all at once.
func ProvidesFieldsHaveExternal(sch *schema.Schema) []*planerror.Error {
	var violations []*planerror.Error

	for _, record := range sch.Fields() {
		if record.Provides == nil {
			continue
		}

		ownerType := sch.Definition(record.TypeName)
		if ownerType == nil {
			continue
		}
		fieldDef := ownerType.Fields.ForName(record.FieldName)
		if fieldDef == nil {
			continue
		}
		returnType := sch.Definition(schema.NamedTypeOf(fieldDef.Type))
		if returnType == nil {
			continue
		}

		service, _ := sch.OwningService(record.TypeName, record.FieldName)

		violations = append(violations, checkProvidesSelection(sch, returnType, service, record, record.Provides)...)
	}

	return violations
}

func checkProvidesSelection(sch *schema.Schema, parentType *ast.Definition, service string, record schema.FieldRecord, sel ast.SelectionSet) []*planerror.Error {
	var violations []*planerror.Error
	for _, s := range sel {
		switch node := s.(type) {
		case *ast.Field:
			if !sch.IsExternal(parentType.Name, service, node.Name) {
				violations = append(violations, planerror.AtNode(planerror.UnknownField, node.Position,
					"%s.%s @provides names %q on %q, which is not declared @external on service %q",
					record.TypeName, record.FieldName, node.Name, parentType.Name, service))
			}
		case *ast.InlineFragment:
			target := parentType
			if node.TypeCondition != "" {
				if def := sch.Definition(node.TypeCondition); def != nil {
					target = def
				}
			}
			violations = append(violations, checkProvidesSelection(sch, target, service, record, node.SelectionSet)...)
		}
	}
	return violations
}
