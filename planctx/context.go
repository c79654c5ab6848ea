package planctx

import (
	"github.com/jensneuse/abstractlogger"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/fieldset"
	"github.com/mrsunboss/apollo-server/planerror"
)

var typenameFieldDef = &ast.FieldDefinition{
	Name: "__typename",
	Type: ast.NonNullNamedType("String", nil),
}

var schemaFieldDef = &ast.FieldDefinition{
	Name: "__schema",
	Type: ast.NamedType("__Schema", nil),
}

var typeFieldDef = &ast.FieldDefinition{
	Name: "__type",
	Type: ast.NamedType("__Type", nil),
}

type fieldDefKey struct {
	parentType string
	fieldName  string
}

// PlanningContext is the cached, per-invocation accessor over a Schema and
// the OperationContext being planned. It owns no state that survives a
// single Planner.Plan call.
type PlanningContext struct {
	*OperationContext

	log abstractlogger.Logger

	fieldDefCache map[fieldDefKey]*ast.FieldDefinition
	varDefsByName map[string]*ast.VariableDefinition
}

// New creates a PlanningContext over opCtx. log may be abstractlogger.NoopLogger.
func New(opCtx *OperationContext, log abstractlogger.Logger) *PlanningContext {
	if log == nil {
		log = abstractlogger.NoopLogger
	}
	varDefs := make(map[string]*ast.VariableDefinition, len(opCtx.Operation.VariableDefinitions))
	for _, vd := range opCtx.Operation.VariableDefinitions {
		varDefs[vd.Variable] = vd
	}
	return &PlanningContext{
		OperationContext: opCtx,
		log:              log,
		fieldDefCache:    make(map[fieldDefKey]*ast.FieldDefinition),
		varDefsByName:    varDefs,
	}
}

// GetFieldDef resolves node's field definition under parentType, including
// the synthetic meta-fields __typename, __schema, and __type.
func (ctx *PlanningContext) GetFieldDef(parentType *ast.Definition, node *ast.Field) (*ast.FieldDefinition, error) {
	switch node.Name {
	case "__typename":
		return typenameFieldDef, nil
	case "__schema":
		return schemaFieldDef, nil
	case "__type":
		return typeFieldDef, nil
	}
	if parentType == nil {
		return nil, planerror.AtNode(planerror.UnknownField, node.Position,
			"field %q has no parent type to resolve against", node.Name)
	}

	key := fieldDefKey{parentType.Name, node.Name}
	if def, ok := ctx.fieldDefCache[key]; ok {
		return def, nil
	}

	def := parentType.Fields.ForName(node.Name)
	if def == nil {
		return nil, planerror.AtNode(planerror.UnknownField, node.Position,
			"unknown field %q on type %q", node.Name, parentType.Name)
	}
	ctx.fieldDefCache[key] = def
	return def, nil
}

// Log returns the logger this context was constructed with, never nil.
func (ctx *PlanningContext) Log() abstractlogger.Logger {
	return ctx.log
}

// GetPossibleTypes returns def itself for an object type, or its concrete
// implementations/members for an interface or union.
func (ctx *PlanningContext) GetPossibleTypes(def *ast.Definition) []*ast.Definition {
	if def == nil {
		return nil
	}
	return ctx.Schema.PossibleTypes(def.Name)
}

// GetBaseService returns the service owning typ's identity.
func (ctx *PlanningContext) GetBaseService(typ *ast.Definition) (string, bool) {
	if typ == nil {
		return "", false
	}
	return ctx.Schema.BaseService(typ.Name)
}

// GetOwningService returns the service resolving typ.field, falling back to
// typ's base service.
func (ctx *PlanningContext) GetOwningService(typ *ast.Definition, field *ast.Field) (string, bool) {
	if typ == nil {
		return "", false
	}
	return ctx.Schema.OwningService(typ.Name, field.Name)
}

// CollectFields flattens selectionSet into acc under parentType, inlining
// inline fragments and named fragment spreads. Unknown fragment names are
// silently skipped; each fragment name expands at most once per call via
// visitedFragments, preventing cycles.
func (ctx *PlanningContext) CollectFields(parentType *ast.Definition, selectionSet ast.SelectionSet, acc *fieldset.Set, visitedFragments map[string]bool) error {
	for _, sel := range selectionSet {
		switch s := sel.(type) {
		case *ast.Field:
			if !ctx.shouldInclude(s.Directives) {
				continue
			}
			def, err := ctx.GetFieldDef(parentType, s)
			if err != nil {
				return err
			}
			acc.Add(fieldset.Field{ParentType: parentType, Node: s, Def: def})

		case *ast.InlineFragment:
			if !ctx.shouldInclude(s.Directives) {
				continue
			}
			target := parentType
			if s.TypeCondition != "" {
				target = ctx.Schema.Definition(s.TypeCondition)
			}
			if err := ctx.CollectFields(target, s.SelectionSet, acc, visitedFragments); err != nil {
				return err
			}

		case *ast.FragmentSpread:
			if !ctx.shouldInclude(s.Directives) {
				continue
			}
			if visitedFragments[s.Name] {
				continue
			}
			visitedFragments[s.Name] = true

			frag, ok := ctx.Fragments[s.Name]
			if !ok {
				continue
			}
			if !ctx.shouldInclude(frag.Directives) {
				continue
			}
			target := parentType
			if frag.TypeCondition != "" {
				target = ctx.Schema.Definition(frag.TypeCondition)
			}
			if err := ctx.CollectFields(target, frag.SelectionSet, acc, visitedFragments); err != nil {
				return err
			}
		}
	}
	return nil
}

// CollectSubfields collapses the subfields of every Field in fields under
// the nominal returnType, sharing one visitedFragments set across all
// inputs. This deliberately loses per-runtime-type parent information —
// subfield planning re-derives runtime types through the splitter.
func (ctx *PlanningContext) CollectSubfields(returnType *ast.Definition, fields fieldset.Set) (fieldset.Set, error) {
	var acc fieldset.Set
	visited := make(map[string]bool)
	for _, f := range fields {
		if f.Node.SelectionSet == nil {
			continue
		}
		if err := ctx.CollectFields(returnType, f.Node.SelectionSet, &acc, visited); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// shouldInclude evaluates @skip/@include against the operation's variable
// default values. No request-time variable bindings reach the planner
// (§9); a variable with no default is treated as "include" — the
// conservative choice, since the executor can still prune further at
// request time.
func (ctx *PlanningContext) shouldInclude(directives ast.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := ctx.staticBoolArgument(skip, "if"); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := ctx.staticBoolArgument(include, "if"); ok && !v {
			return false
		}
	}
	return true
}

func (ctx *PlanningContext) staticBoolArgument(d *ast.Directive, name string) (value bool, ok bool) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return false, false
	}
	v := arg.Value
	if v.Kind == ast.Variable {
		vd := ctx.varDefsByName[v.Raw]
		if vd == nil || vd.DefaultValue == nil {
			return false, false
		}
		v = vd.DefaultValue
	}
	if v.Kind != ast.BooleanValue {
		return false, false
	}
	return v.Raw == "true", true
}
