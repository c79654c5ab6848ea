package planctx

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// VariableUsage is one occurrence of a variable within a selection set, with
// the type it is used as (taken from the argument definition at the usage
// site) and the default value that applies there.
type VariableUsage struct {
	Name         string
	Type         *ast.Type
	DefaultValue *ast.Value
}

// GetVariableUsages walks selectionSet and every argument and directive
// argument within it, recursively through subselections, collecting every
// distinct variable referenced. A variable used at more than one site keeps
// only its first-encountered usage (§9: usages are deduplicated by name, not
// merged).
//
// Results are not cached: ast.SelectionSet is a slice, not a valid map key,
// and the planner calls this once per fetch group rather than repeatedly
// over the same selection set.
func (ctx *PlanningContext) GetVariableUsages(selectionSet ast.SelectionSet) []VariableUsage {
	var usages []VariableUsage
	seen := make(map[string]bool)
	ctx.collectVariableUsages(selectionSet, &usages, seen)
	return usages
}

func (ctx *PlanningContext) collectVariableUsages(selectionSet ast.SelectionSet, usages *[]VariableUsage, seen map[string]bool) {
	for _, sel := range selectionSet {
		switch s := sel.(type) {
		case *ast.Field:
			var argDef ast.ArgumentDefinitionList
			if s.Definition != nil {
				argDef = s.Definition.Arguments
			}
			ctx.collectFromArguments(s.Arguments, argDef, usages, seen)
			ctx.collectFromDirectives(s.Directives, usages, seen)
			ctx.collectVariableUsages(s.SelectionSet, usages, seen)
		case *ast.InlineFragment:
			ctx.collectFromDirectives(s.Directives, usages, seen)
			ctx.collectVariableUsages(s.SelectionSet, usages, seen)
		case *ast.FragmentSpread:
			ctx.collectFromDirectives(s.Directives, usages, seen)
		}
	}
}

func (ctx *PlanningContext) collectFromDirectives(directives ast.DirectiveList, usages *[]VariableUsage, seen map[string]bool) {
	for _, d := range directives {
		ctx.collectFromArguments(d.Arguments, d.Definition.Arguments, usages, seen)
	}
}

func (ctx *PlanningContext) collectFromArguments(args ast.ArgumentList, defs ast.ArgumentDefinitionList, usages *[]VariableUsage, seen map[string]bool) {
	for _, arg := range args {
		var typ *ast.Type
		var schemaDefault *ast.Value
		if defs != nil {
			if def := defs.ForName(arg.Name); def != nil {
				typ = def.Type
				schemaDefault = def.DefaultValue
			}
		}
		ctx.collectFromValue(arg.Value, typ, schemaDefault, usages, seen)
	}
}

func (ctx *PlanningContext) collectFromValue(v *ast.Value, typ *ast.Type, schemaDefault *ast.Value, usages *[]VariableUsage, seen map[string]bool) {
	if v == nil {
		return
	}
	switch v.Kind {
	case ast.Variable:
		if seen[v.Raw] {
			return
		}
		seen[v.Raw] = true
		*usages = append(*usages, VariableUsage{
			Name:         v.Raw,
			Type:         typ,
			DefaultValue: ctx.defaultValueFor(v.Raw, schemaDefault),
		})
	case ast.ListValue:
		var elemType *ast.Type
		if typ != nil {
			elemType = typ.Elem
		}
		for _, c := range v.Children {
			ctx.collectFromValue(c.Value, elemType, nil, usages, seen)
		}
	case ast.ObjectValue:
		for _, c := range v.Children {
			fieldType, fieldDefault := ctx.inputFieldDefault(typ, c.Name)
			ctx.collectFromValue(c.Value, fieldType, fieldDefault, usages, seen)
		}
	}
}

// inputFieldDefault resolves the declared type and default value of the
// input field named name on the input object type, if typ names one.
func (ctx *PlanningContext) inputFieldDefault(typ *ast.Type, name string) (*ast.Type, *ast.Value) {
	if typ == nil {
		return nil, nil
	}
	def := ctx.Schema.Definition(namedTypeOf(typ))
	if def == nil {
		return nil, nil
	}
	fd := def.Fields.ForName(name)
	if fd == nil {
		return nil, nil
	}
	return fd.Type, fd.DefaultValue
}

// defaultValueFor resolves the default value that applies to a reference to
// varName: the operation's own variable-definition default takes precedence
// over the schema-declared default of the argument or input field the
// variable fills; the latter applies when the operation declares none (§9).
func (ctx *PlanningContext) defaultValueFor(varName string, schemaDefault *ast.Value) *ast.Value {
	if vd, ok := ctx.varDefsByName[varName]; ok && vd.DefaultValue != nil {
		return vd.DefaultValue
	}
	return schemaDefault
}
