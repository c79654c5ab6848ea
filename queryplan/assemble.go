package queryplan

import (
	"fmt"

	"github.com/mrsunboss/apollo-server/fetchgroup"
	"github.com/mrsunboss/apollo-server/fieldset"
	"github.com/mrsunboss/apollo-server/planctx"
)

// Assemble turns the root FetchGroups the splitter produced into a
// QueryPlan: queries wrap their (parallel, independent) root groups in a
// Parallel node, mutations wrap their (ordered) root groups in a Sequence.
func Assemble(ctx *planctx.PlanningContext, groups []*fetchgroup.Group, isMutation bool) (*QueryPlan, error) {
	if len(groups) == 0 {
		return &QueryPlan{}, nil
	}

	nodes := make([]PlanNode, 0, len(groups))
	for _, g := range groups {
		node, err := executionNodeForGroup(ctx, g)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	var root PlanNode
	var err error
	if isMutation {
		root, err = flatWrapSequence(nodes)
	} else {
		root, err = flatWrapParallel(nodes)
	}
	if err != nil {
		return nil, err
	}
	return &QueryPlan{Node: root}, nil
}

func executionNodeForGroup(ctx *planctx.PlanningContext, group *fetchgroup.Group) (PlanNode, error) {
	rendered := fieldset.Render(group.Fields)

	fetchNode := &Fetch{
		ServiceName:    group.ServiceName,
		SelectionSet:   SelectionSetOf(group.Fields),
		Requires:       SelectionSetOf(group.RequiredFields),
		VariableUsages: variableNames(ctx.GetVariableUsages(rendered)),
	}

	var node PlanNode = fetchNode
	if len(group.MergeAt) > 0 {
		node = &Flatten{Path: group.MergeAt.Strings(), Node: fetchNode}
	}

	deps := group.DependentGroups()
	if len(deps) == 0 {
		return node, nil
	}

	depNodes := make([]PlanNode, 0, len(deps))
	for _, dep := range deps {
		depNode, err := executionNodeForGroup(ctx, dep)
		if err != nil {
			return nil, err
		}
		depNodes = append(depNodes, depNode)
	}

	depNode, err := flatWrapParallel(depNodes)
	if err != nil {
		return nil, err
	}
	return flatWrapSequence([]PlanNode{node, depNode})
}

func variableNames(usages []planctx.VariableUsage) []string {
	if len(usages) == 0 {
		return nil
	}
	names := make([]string, len(usages))
	for i, u := range usages {
		names[i] = u.Name
	}
	return names
}

// flatWrapSequence wraps nodes in a Sequence, splicing in the children of
// any nested Sequence rather than nesting it one level deeper.
func flatWrapSequence(nodes []PlanNode) (PlanNode, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("queryplan: flatWrapSequence called with no nodes")
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	flat := make([]PlanNode, 0, len(nodes))
	for _, n := range nodes {
		if seq, ok := n.(*Sequence); ok {
			flat = append(flat, seq.Nodes...)
			continue
		}
		flat = append(flat, n)
	}
	return &Sequence{Nodes: flat}, nil
}

// flatWrapParallel wraps nodes in a Parallel, splicing in the children of
// any nested Parallel rather than nesting it one level deeper.
func flatWrapParallel(nodes []PlanNode) (PlanNode, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("queryplan: flatWrapParallel called with no nodes")
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	flat := make([]PlanNode, 0, len(nodes))
	for _, n := range nodes {
		if par, ok := n.(*Parallel); ok {
			flat = append(flat, par.Nodes...)
			continue
		}
		flat = append(flat, n)
	}
	return &Parallel{Nodes: flat}, nil
}
