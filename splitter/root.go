package splitter

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/fetchgroup"
	"github.com/mrsunboss/apollo-server/fieldset"
	"github.com/mrsunboss/apollo-server/planctx"
	"github.com/mrsunboss/apollo-server/planerror"
)

// SplitRootFields partitions a query's root FieldSet by owning service,
// emitting one group per service in first-occurrence order. The assembler
// runs these groups in parallel.
func SplitRootFields(ctx *planctx.PlanningContext, rootType *ast.Definition, fields fieldset.Set) ([]*fetchgroup.Group, error) {
	groups := make(map[string]*fetchgroup.Group)
	var order []string

	selector := func(field fieldset.Field) (*fetchgroup.Group, error) {
		owner, ok := ctx.GetOwningService(rootType, field.Node)
		if !ok {
			return nil, planerror.AtNode(planerror.MissingOwningService, field.Node.Position,
				"field %q.%q has no owning service", rootType.Name, field.Node.Name)
		}
		g, ok := groups[owner]
		if !ok {
			g = fetchgroup.New(owner)
			groups[owner] = g
			order = append(order, owner)
		}
		return g, nil
	}

	if err := SplitFields(ctx, nil, fields, selector); err != nil {
		return nil, err
	}

	out := make([]*fetchgroup.Group, len(order))
	for i, service := range order {
		out[i] = groups[service]
	}
	return out, nil
}

// SplitRootFieldsSerially partitions a mutation's root FieldSet into an
// ordered list of groups, cutting a new group whenever a root field's
// owning service differs from the trailing group's service. Adjacent root
// fields owned by the same service batch into one group; the assembler runs
// the resulting list in sequence.
func SplitRootFieldsSerially(ctx *planctx.PlanningContext, rootType *ast.Definition, fields fieldset.Set) ([]*fetchgroup.Group, error) {
	var order []*fetchgroup.Group

	for _, rng := range fieldset.GroupByResponseName(fields) {
		for _, ptg := range fieldset.GroupByParentType(rng.Fields) {
			representative := ptg.Fields[0]
			if representative.ResponseName() == "__typename" {
				continue
			}

			owner, ok := ctx.GetOwningService(rootType, representative.Node)
			if !ok {
				return nil, planerror.AtNode(planerror.MissingOwningService, representative.Node.Position,
					"field %q.%q has no owning service", rootType.Name, representative.Node.Name)
			}

			var trailing *fetchgroup.Group
			if len(order) > 0 {
				trailing = order[len(order)-1]
			}
			if trailing == nil || trailing.ServiceName != owner {
				trailing = fetchgroup.New(owner)
				order = append(order, trailing)
			}

			completed, err := completeField(ctx, nil, ptg.Fields, trailing)
			if err != nil {
				return nil, err
			}
			trailing.Fields.Add(completed)
		}
	}
	return order, nil
}
