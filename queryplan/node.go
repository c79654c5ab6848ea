// Package queryplan holds the planner's output shape: a tree of Fetch,
// Flatten, Sequence, and Parallel nodes wrapped in a QueryPlan, each
// JSON-serializable with an explicit "kind" discriminator for the gateway
// executor that ultimately walks the tree.
package queryplan

import "encoding/json"

// PlanNode is one node of the plan tree.
type PlanNode interface {
	isPlanNode()
}

// Fetch issues one operation against a single service.
type Fetch struct {
	ServiceName    string
	SelectionSet   []SelectionNode
	Requires       []SelectionNode
	VariableUsages []string
}

func (*Fetch) isPlanNode() {}

func (f *Fetch) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind           string          `json:"kind"`
		ServiceName    string          `json:"serviceName"`
		SelectionSet   []SelectionNode `json:"selectionSet"`
		Requires       []SelectionNode `json:"requires,omitempty"`
		VariableUsages []string        `json:"variableUsages,omitempty"`
	}{
		Kind:           "Fetch",
		ServiceName:    f.ServiceName,
		SelectionSet:   f.SelectionSet,
		Requires:       f.Requires,
		VariableUsages: f.VariableUsages,
	})
}

// Flatten wraps node, splicing its result into the parent response at path.
type Flatten struct {
	Path []string
	Node PlanNode
}

func (*Flatten) isPlanNode() {}

func (f *Flatten) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string   `json:"kind"`
		Path []string `json:"path"`
		Node PlanNode `json:"node"`
	}{Kind: "Flatten", Path: f.Path, Node: f.Node})
}

// Sequence runs its nodes in order; later nodes may depend on earlier ones.
type Sequence struct {
	Nodes []PlanNode
}

func (*Sequence) isPlanNode() {}

func (s *Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string     `json:"kind"`
		Nodes []PlanNode `json:"nodes"`
	}{Kind: "Sequence", Nodes: s.Nodes})
}

// Parallel runs its nodes concurrently; order is immaterial.
type Parallel struct {
	Nodes []PlanNode
}

func (*Parallel) isPlanNode() {}

func (p *Parallel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string     `json:"kind"`
		Nodes []PlanNode `json:"nodes"`
	}{Kind: "Parallel", Nodes: p.Nodes})
}

// QueryPlan is the root of a plan tree. Node is nil only for an operation
// with nothing to fetch (a pure introspection query, for instance).
type QueryPlan struct {
	Node PlanNode
}

// MarshalJSON renders the plan as {"kind":"QueryPlan","node":...}, omitting
// node entirely when the plan is empty.
func (qp *QueryPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string   `json:"kind"`
		Node PlanNode `json:"node,omitempty"`
	}{Kind: "QueryPlan", Node: qp.Node})
}
