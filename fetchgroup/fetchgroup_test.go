package fetchgroup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/fetchgroup"
	"github.com/mrsunboss/apollo-server/fieldset"
)

func TestNewCreatesRootGroupWithNoMergePath(t *testing.T) {
	g := fetchgroup.New("users")
	assert.Equal(t, "users", g.ServiceName)
	assert.Empty(t, g.MergeAt)
	assert.Empty(t, g.DependentGroups())
}

func TestNewDependentInheritsMergeAt(t *testing.T) {
	path := fieldset.Path{"me"}
	g := fetchgroup.NewDependent("reviews", path)
	assert.Equal(t, path, g.MergeAt)
}

func TestGetOrCreateDependentReusesExistingGroup(t *testing.T) {
	parent := fetchgroup.New("users")
	keyFields := fieldset.Set{{Node: &ast.Field{Name: "id"}}}

	var created int
	newGroup := func() *fetchgroup.Group {
		created++
		return fetchgroup.NewDependent("reviews", parent.MergeAt)
	}

	first := parent.GetOrCreateDependent("reviews", keyFields, newGroup)
	second := parent.GetOrCreateDependent("reviews", keyFields, newGroup)

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)
	assert.Len(t, first.RequiredFields, 2, "requiredFields appended on every call, not deduplicated")
	assert.Len(t, parent.Fields, 2, "parent must fetch the keys it hands off, once per call")
}

func TestDependentGroupsOrdersServiceKeyedBeforeLifted(t *testing.T) {
	parent := fetchgroup.New("users")
	keyFields := fieldset.Set{{Node: &ast.Field{Name: "id"}}}

	reviews := parent.GetOrCreateDependent("reviews", keyFields, func() *fetchgroup.Group {
		return fetchgroup.NewDependent("reviews", parent.MergeAt)
	})
	products := parent.GetOrCreateDependent("products", keyFields, func() *fetchgroup.Group {
		return fetchgroup.NewDependent("products", parent.MergeAt)
	})
	lifted := fetchgroup.NewDependent("inventory", parent.MergeAt)
	parent.AddOtherDependent(lifted)

	deps := parent.DependentGroups()
	assert.Equal(t, []*fetchgroup.Group{reviews, products, lifted}, deps)
}
