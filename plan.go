package graphql

import (
	"github.com/jensneuse/abstractlogger"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/fetchgroup"
	"github.com/mrsunboss/apollo-server/fieldset"
	"github.com/mrsunboss/apollo-server/planctx"
	"github.com/mrsunboss/apollo-server/planerror"
	"github.com/mrsunboss/apollo-server/queryplan"
	"github.com/mrsunboss/apollo-server/schema"
	"github.com/mrsunboss/apollo-server/splitter"
)

// BuildOperationContext resolves document's target operation (the one named
// operationName, or its sole operation) against sch, ready to hand to a
// Planner's Plan method.
func BuildOperationContext(sch *schema.Schema, document *ast.QueryDocument, operationName string) (*planctx.OperationContext, error) {
	return planctx.BuildOperationContext(sch, document, operationName)
}

// Planner splits operations against a fixed, federation-annotated schema
// into a QueryPlan. It is stateless between calls and safe to reuse
// concurrently across many Plan invocations — planning performs no I/O and
// holds no lock.
type Planner struct {
	opts PlannerOptions
}

// NewPlanner validates opts and returns a Planner bound to opts.Schema.
func NewPlanner(opts PlannerOptions) (*Planner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = abstractlogger.NoopLogger
	}
	return &Planner{opts: opts}, nil
}

// Plan builds a QueryPlan for opCtx: collecting its root field set,
// partitioning it into per-service fetch groups following the federation
// routing rules, and assembling the resulting graph into a PlanNode tree.
func (p *Planner) Plan(opCtx *planctx.OperationContext) (*queryplan.QueryPlan, error) {
	if opCtx.Schema != p.opts.Schema {
		return nil, planerror.New(planerror.SchemaMismatch,
			"operation context was built against a different schema than this planner is bound to")
	}

	ctx := planctx.New(opCtx, p.opts.Logger)

	rootType, err := rootTypeFor(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Log().Debug("planning operation", abstractlogger.String("operation", string(opCtx.Operation.Operation)))

	var rootFields fieldset.Set
	if err := ctx.CollectFields(rootType, opCtx.Operation.SelectionSet, &rootFields, make(map[string]bool)); err != nil {
		return nil, err
	}

	isMutation := opCtx.Operation.Operation == ast.Mutation

	var groups []*fetchgroup.Group
	if isMutation {
		groups, err = splitter.SplitRootFieldsSerially(ctx, rootType, rootFields)
	} else {
		groups, err = splitter.SplitRootFields(ctx, rootType, rootFields)
	}
	if err != nil {
		return nil, err
	}
	ctx.Log().Debug("split into root fetch groups", abstractlogger.Int("groups", len(groups)))

	return queryplan.Assemble(ctx, groups, isMutation)
}

func rootTypeFor(ctx *planctx.PlanningContext) (*ast.Definition, error) {
	switch ctx.Operation.Operation {
	case ast.Query:
		return ctx.Schema.Raw.Query, nil
	case ast.Mutation:
		return ctx.Schema.Raw.Mutation, nil
	default:
		return nil, planerror.New(planerror.SubscriptionsUnsupported, "unsupported operation kind %q", ctx.Operation.Operation)
	}
}
