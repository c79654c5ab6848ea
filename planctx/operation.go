// Package planctx builds the operation context and the per-invocation
// planning context the splitter and assembler run against: resolving the
// target operation, collecting named fragments, and caching schema lookups
// over the lifetime of a single plan call.
package planctx

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/planerror"
	"github.com/mrsunboss/apollo-server/schema"
)

// OperationContext is the resolved operation plus every named fragment in
// the document it was taken from.
type OperationContext struct {
	Schema    *schema.Schema
	Operation *ast.OperationDefinition
	Fragments map[string]*ast.FragmentDefinition
}

// BuildOperationContext resolves the operation to plan from document: the
// one matching operationName if given, otherwise the document's sole
// operation. Subscriptions are rejected here, before any planning work
// begins.
func BuildOperationContext(sch *schema.Schema, document *ast.QueryDocument, operationName string) (*OperationContext, error) {
	fragments := make(map[string]*ast.FragmentDefinition, len(document.Fragments))
	for _, frag := range document.Fragments {
		fragments[frag.Name] = frag
	}

	op, err := selectOperation(document, operationName)
	if err != nil {
		return nil, err
	}

	if op.Operation == ast.Subscription {
		return nil, planerror.AtNode(planerror.SubscriptionsUnsupported, op.Position,
			"subscriptions are not supported by the query planner")
	}

	return &OperationContext{
		Schema:    sch,
		Operation: op,
		Fragments: fragments,
	}, nil
}

func selectOperation(document *ast.QueryDocument, operationName string) (*ast.OperationDefinition, error) {
	if operationName != "" {
		for _, op := range document.Operations {
			if op.Name == operationName {
				return op, nil
			}
		}
		return nil, planerror.New(planerror.UnknownOperation, "unknown operation %q", operationName)
	}

	switch len(document.Operations) {
	case 0:
		return nil, planerror.New(planerror.MissingOperation, "document contains no operation definitions")
	case 1:
		return document.Operations[0], nil
	default:
		return nil, planerror.New(planerror.AmbiguousOperation,
			"document contains %d operations; an operation name is required", len(document.Operations))
	}
}
