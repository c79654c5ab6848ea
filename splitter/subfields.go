package splitter

import (
	"github.com/jensneuse/abstractlogger"

	"github.com/mrsunboss/apollo-server/fetchgroup"
	"github.com/mrsunboss/apollo-server/fieldset"
	"github.com/mrsunboss/apollo-server/planctx"
	"github.com/mrsunboss/apollo-server/planerror"
)

// SplitSubfields splits fields (the subselection of a single composite
// field) against parentGroup, using the federation routing rules: a field
// defined on its parent type's base service stays put (or merges into a
// dependent group keyed by its owner), and an extension field either joins
// a dependent group directly or hops through the base service first to
// obtain the keys the extension needs.
func SplitSubfields(ctx *planctx.PlanningContext, path fieldset.Path, fields fieldset.Set, parentGroup *fetchgroup.Group) error {
	selector := func(field fieldset.Field) (*fetchgroup.Group, error) {
		return routeSubfield(ctx, field, parentGroup)
	}
	return SplitFields(ctx, path, fields, selector)
}

func routeSubfield(ctx *planctx.PlanningContext, field fieldset.Field, parentGroup *fetchgroup.Group) (*fetchgroup.Group, error) {
	parentType := field.ParentType

	base, ok := ctx.GetBaseService(parentType)
	if !ok {
		return nil, planerror.AtNode(planerror.MissingBaseService, field.Node.Position,
			"type %q has no base service", parentType.Name)
	}
	owner, ok := ctx.GetOwningService(parentType, field.Node)
	if !ok {
		return nil, planerror.AtNode(planerror.MissingOwningService, field.Node.Position,
			"field %q.%q has no owning service", parentType.Name, field.Node.Name)
	}

	if owner == base {
		if owner == parentGroup.ServiceName || fieldset.ContainsField(parentGroup.ProvidedFields, parentType, field) {
			return parentGroup, nil
		}
		keyFields, err := ctx.GetKeyFields(parentType, owner)
		if err != nil {
			return nil, err
		}
		ctx.Log().Debug("routing field to direct dependent group",
			abstractlogger.String("type", parentType.Name),
			abstractlogger.String("field", field.Node.Name),
			abstractlogger.String("service", owner))
		return parentGroup.GetOrCreateDependent(owner, keyFields, func() *fetchgroup.Group {
			return fetchgroup.NewDependent(owner, parentGroup.MergeAt)
		}), nil
	}

	required, err := ctx.GetRequiredFields(parentType, field.Node.Name, owner)
	if err != nil {
		return nil, err
	}

	if fieldsSatisfiedBy(required, parentGroup) {
		ctx.Log().Debug("routing field to one-hop dependent group",
			abstractlogger.String("type", parentType.Name),
			abstractlogger.String("field", field.Node.Name),
			abstractlogger.String("service", owner))
		return parentGroup.GetOrCreateDependent(owner, required, func() *fetchgroup.Group {
			return fetchgroup.NewDependent(owner, parentGroup.MergeAt)
		}), nil
	}

	baseKeyFields, err := ctx.GetKeyFields(parentType, base)
	if err != nil {
		return nil, err
	}
	if !fieldset.HasNonTypenameField(baseKeyFields) {
		return nil, planerror.AtNode(planerror.MissingKeys, field.Node.Position,
			"type %q declares no usable key for its base service %q", parentType.Name, base)
	}

	ctx.Log().Debug("routing field through base service",
		abstractlogger.String("type", parentType.Name),
		abstractlogger.String("field", field.Node.Name),
		abstractlogger.String("base", base),
		abstractlogger.String("owner", owner))

	baseDep := parentGroup.GetOrCreateDependent(base, baseKeyFields, func() *fetchgroup.Group {
		return fetchgroup.NewDependent(base, parentGroup.MergeAt)
	})
	ownerDep := baseDep.GetOrCreateDependent(owner, required, func() *fetchgroup.Group {
		return fetchgroup.NewDependent(owner, baseDep.MergeAt)
	})
	return ownerDep, nil
}

// fieldsSatisfiedBy reports whether every non-__typename field in required
// is already among the fields group's service can answer inline, i.e.
// group's ProvidedFields.
func fieldsSatisfiedBy(required fieldset.Set, group *fetchgroup.Group) bool {
	for _, f := range required {
		if f.ResponseName() == "__typename" {
			continue
		}
		if !fieldset.ContainsField(group.ProvidedFields, f.ParentType, f) {
			return false
		}
	}
	return true
}
