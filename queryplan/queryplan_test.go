package queryplan_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/fetchgroup"
	"github.com/mrsunboss/apollo-server/fieldset"
	"github.com/mrsunboss/apollo-server/planctx"
	"github.com/mrsunboss/apollo-server/queryplan"
	"github.com/mrsunboss/apollo-server/schema"
)

const sdl = `
	type Query {
		me: User
	}

	type User {
		id: ID!
		name: String!
		reviews: [Review]
	}

	type Review {
		id: ID!
		body: String!
	}
`

func fixtureContext(t *testing.T) *planctx.PlanningContext {
	t.Helper()
	raw := gqlparser.MustLoadSchema(&ast.Source{Name: "fixture", Input: sdl})
	sch, err := schema.New(raw, schema.Config{
		BaseServices: []schema.BaseServiceConfig{
			{TypeName: "User", ServiceName: "users"},
			{TypeName: "Review", ServiceName: "reviews"},
		},
		Keys: []schema.KeyConfig{
			{TypeName: "User", ServiceName: "users", SelectionSet: "id"},
		},
		FieldOwners: []schema.FieldOwnerConfig{
			{TypeName: "Query", FieldName: "me", ServiceName: "users"},
		},
	})
	require.NoError(t, err)

	doc, err := gqlparser.LoadQuery(sch.Raw, `{ me { id name } }`)
	require.Nil(t, err)

	opCtx, err := planctx.BuildOperationContext(sch, doc, "")
	require.NoError(t, err)

	return planctx.New(opCtx, nil)
}

func TestSelectionSetOfRendersFieldsAndArguments(t *testing.T) {
	ctx := fixtureContext(t)
	userDef := ctx.Schema.Definition("User")
	idDef := userDef.Fields.ForName("id")

	fields := fieldset.Set{{
		ParentType: userDef,
		Node: &ast.Field{
			Name: "id",
			Arguments: ast.ArgumentList{
				{Name: "format", Value: &ast.Value{Kind: ast.StringValue, Raw: "short"}},
			},
		},
		Def: idDef,
	}}

	nodes := queryplan.SelectionSetOf(fields)
	require.Len(t, nodes, 1)

	field, ok := nodes[0].(*queryplan.FieldSelection)
	require.True(t, ok)
	assert.Equal(t, "id", field.Name)
	require.Len(t, field.Arguments, 1)
	assert.Equal(t, "format", field.Arguments[0].Name)
	assert.Equal(t, `"short"`, field.Arguments[0].Value)
}

func TestSelectionSetOfEmptyIsNil(t *testing.T) {
	assert.Nil(t, queryplan.SelectionSetOf(nil))
}

func TestAssembleEmptyGroupsReturnsEmptyPlan(t *testing.T) {
	ctx := fixtureContext(t)
	plan, err := queryplan.Assemble(ctx, nil, false)
	require.NoError(t, err)
	assert.Nil(t, plan.Node)
}

func TestAssembleQueryWrapsMultipleRootGroupsInParallel(t *testing.T) {
	ctx := fixtureContext(t)
	userDef := ctx.Schema.Definition("User")

	g1 := fetchgroup.New("users")
	g1.Fields.Add(fieldset.Field{ParentType: userDef, Node: &ast.Field{Name: "id"}, Def: userDef.Fields.ForName("id")})
	g2 := fetchgroup.New("reviews")
	g2.Fields.Add(fieldset.Field{ParentType: userDef, Node: &ast.Field{Name: "id"}, Def: userDef.Fields.ForName("id")})

	plan, err := queryplan.Assemble(ctx, []*fetchgroup.Group{g1, g2}, false)
	require.NoError(t, err)

	_, isParallel := plan.Node.(*queryplan.Parallel)
	assert.True(t, isParallel)
}

func TestAssembleMutationWrapsMultipleRootGroupsInSequence(t *testing.T) {
	ctx := fixtureContext(t)
	userDef := ctx.Schema.Definition("User")

	g1 := fetchgroup.New("users")
	g1.Fields.Add(fieldset.Field{ParentType: userDef, Node: &ast.Field{Name: "id"}, Def: userDef.Fields.ForName("id")})
	g2 := fetchgroup.New("reviews")
	g2.Fields.Add(fieldset.Field{ParentType: userDef, Node: &ast.Field{Name: "id"}, Def: userDef.Fields.ForName("id")})

	plan, err := queryplan.Assemble(ctx, []*fetchgroup.Group{g1, g2}, true)
	require.NoError(t, err)

	_, isSequence := plan.Node.(*queryplan.Sequence)
	assert.True(t, isSequence)
}

func TestAssembleSingleGroupIsNotWrapped(t *testing.T) {
	ctx := fixtureContext(t)
	userDef := ctx.Schema.Definition("User")

	g1 := fetchgroup.New("users")
	g1.Fields.Add(fieldset.Field{ParentType: userDef, Node: &ast.Field{Name: "id"}, Def: userDef.Fields.ForName("id")})

	plan, err := queryplan.Assemble(ctx, []*fetchgroup.Group{g1}, false)
	require.NoError(t, err)

	_, isFetch := plan.Node.(*queryplan.Fetch)
	assert.True(t, isFetch)
}

func TestAssembleDependentGroupProducesFlattenInsideSequence(t *testing.T) {
	ctx := fixtureContext(t)
	userDef := ctx.Schema.Definition("User")
	reviewDef := ctx.Schema.Definition("Review")

	root := fetchgroup.New("users")
	root.Fields.Add(fieldset.Field{ParentType: userDef, Node: &ast.Field{Name: "id"}, Def: userDef.Fields.ForName("id")})

	dep := root.GetOrCreateDependent("reviews", fieldset.Set{
		{ParentType: userDef, Node: &ast.Field{Name: "id"}, Def: userDef.Fields.ForName("id")},
	}, func() *fetchgroup.Group {
		return fetchgroup.NewDependent("reviews", fieldset.Path{"me"})
	})
	dep.Fields.Add(fieldset.Field{ParentType: reviewDef, Node: &ast.Field{Name: "body"}, Def: reviewDef.Fields.ForName("body")})

	plan, err := queryplan.Assemble(ctx, []*fetchgroup.Group{root}, false)
	require.NoError(t, err)

	seq, ok := plan.Node.(*queryplan.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Nodes, 2)

	_, isFetch := seq.Nodes[0].(*queryplan.Fetch)
	assert.True(t, isFetch)

	flatten, ok := seq.Nodes[1].(*queryplan.Flatten)
	require.True(t, ok)
	assert.Equal(t, []string{"me"}, flatten.Path)
}

func TestFetchMarshalsWithKindDiscriminator(t *testing.T) {
	fetch := &queryplan.Fetch{ServiceName: "users"}
	data, err := json.Marshal(fetch)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Fetch", decoded["kind"])
	assert.Equal(t, "users", decoded["serviceName"])
}

func TestQueryPlanMarshalsWithoutNodeWhenEmpty(t *testing.T) {
	plan := &queryplan.QueryPlan{}
	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "QueryPlan", decoded["kind"])
	_, hasNode := decoded["node"]
	assert.False(t, hasNode)
}
