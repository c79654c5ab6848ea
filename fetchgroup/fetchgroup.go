// Package fetchgroup implements the mutable FetchGroup graph the splitter
// builds: one node per service fetch, linked to the dependent fetches that
// need its result, assembled into a PlanNode tree once splitting completes.
package fetchgroup

import (
	"github.com/mrsunboss/apollo-server/fieldset"
)

// Group is one planned fetch against a single service. It is mutated in
// place throughout splitting and becomes immutable once the plan tree is
// assembled from it.
type Group struct {
	// ServiceName is fixed at construction and never changes.
	ServiceName string

	// Fields is the selection this group will fetch.
	Fields fieldset.Set

	// RequiredFields are the input fields this group needs from its parent:
	// entity keys plus any @requires selection. Empty for a root group.
	RequiredFields fieldset.Set

	// ProvidedFields are fields the parent group already supplies inline via
	// @provides, used to avoid creating a redundant dependent group for
	// them.
	ProvidedFields fieldset.Set

	// MergeAt is the response path at which the executor splices this
	// group's result into its parent's, empty for a root group.
	MergeAt fieldset.Path

	depOrder  []string
	depByName map[string]*Group
	other     []*Group
}

// New creates a root group for serviceName with no merge path.
func New(serviceName string) *Group {
	return &Group{
		ServiceName: serviceName,
		depByName:   make(map[string]*Group),
	}
}

// NewDependent creates a dependent group for serviceName, inheriting
// mergeAt from its parent (a dependent fetch lands at the same response
// path as the fetch that spawned it).
func NewDependent(serviceName string, mergeAt fieldset.Path) *Group {
	g := New(serviceName)
	g.MergeAt = mergeAt
	return g
}

// GetOrCreateDependent returns the existing dependent group keyed by
// service, creating one via newGroup if none exists yet. Either way,
// requiredFields is appended to the group's RequiredFields and to the
// parent's own Fields — the parent must fetch the keys it hands off.
func (g *Group) GetOrCreateDependent(service string, requiredFields fieldset.Set, newGroup func() *Group) *Group {
	dep, ok := g.depByName[service]
	if !ok {
		dep = newGroup()
		g.depByName[service] = dep
		g.depOrder = append(g.depOrder, service)
	}
	dep.RequiredFields = append(dep.RequiredFields, requiredFields...)
	g.Fields = append(g.Fields, requiredFields...)
	return dep
}

// AddOtherDependent records child as a group lifted from recursive subfield
// planning: it depends on g's own fetch completing, not on the sub-group
// that produced it.
func (g *Group) AddOtherDependent(child *Group) {
	g.other = append(g.other, child)
}

// DependentGroups returns every group depending on g's result: the
// service-keyed dependents in first-creation order, followed by the lifted
// ones in the order they were added.
func (g *Group) DependentGroups() []*Group {
	out := make([]*Group, 0, len(g.depOrder)+len(g.other))
	for _, service := range g.depOrder {
		out = append(out, g.depByName[service])
	}
	out = append(out, g.other...)
	return out
}
