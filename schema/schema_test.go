package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mrsunboss/apollo-server/schema"
)

const sdl = `
	type Query {
		me: User
		topProducts: [Product]
	}

	type Mutation {
		updateUserName(id: ID!, name: String!): User
	}

	type User {
		id: ID!
		name: String!
		reviews: [Review]
	}

	type Review {
		id: ID!
		body: String!
		author: User!
		product: Product!
	}

	type Product {
		upc: String!
		name: String!
		price: Int!
		reviews: [Review]
	}
`

func mustSchema(t *testing.T, cfg schema.Config) *schema.Schema {
	t.Helper()
	raw := gqlparser.MustLoadSchema(&ast.Source{Name: "fixture", Input: sdl})
	sch, err := schema.New(raw, cfg)
	require.NoError(t, err)
	return sch
}

func fixtureConfig() schema.Config {
	return schema.Config{
		BaseServices: []schema.BaseServiceConfig{
			{TypeName: "User", ServiceName: "users"},
			{TypeName: "Review", ServiceName: "reviews"},
			{TypeName: "Product", ServiceName: "products"},
		},
		Keys: []schema.KeyConfig{
			{TypeName: "User", ServiceName: "users", SelectionSet: "id"},
			{TypeName: "User", ServiceName: "reviews", SelectionSet: "id"},
			{TypeName: "Product", ServiceName: "products", SelectionSet: "upc"},
			{TypeName: "Product", ServiceName: "reviews", SelectionSet: "upc"},
		},
		Externals: []schema.ExternalConfig{
			{TypeName: "User", ServiceName: "reviews", FieldName: "id"},
			{TypeName: "Product", ServiceName: "reviews", FieldName: "upc"},
		},
		FieldOwners: []schema.FieldOwnerConfig{
			{TypeName: "User", FieldName: "reviews", ServiceName: "reviews"},
			{TypeName: "Product", FieldName: "reviews", ServiceName: "reviews"},
		},
	}
}

func TestNewRejectsNilSchema(t *testing.T) {
	_, err := schema.New(nil, schema.Config{})
	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	raw := gqlparser.MustLoadSchema(&ast.Source{Input: sdl})
	_, err := schema.New(raw, schema.Config{
		Keys: []schema.KeyConfig{{TypeName: "User"}},
	})
	assert.Error(t, err)
}

func TestBaseServiceAndOwningServiceFallback(t *testing.T) {
	sch := mustSchema(t, fixtureConfig())

	base, ok := sch.BaseService("User")
	require.True(t, ok)
	assert.Equal(t, "users", base)

	owner, ok := sch.OwningService("User", "name")
	require.True(t, ok)
	assert.Equal(t, "users", owner, "field with no explicit owner falls back to base service")

	owner, ok = sch.OwningService("User", "reviews")
	require.True(t, ok)
	assert.Equal(t, "reviews", owner)
}

func TestKeysReturnsDeclarationOrder(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Keys = append(cfg.Keys, schema.KeyConfig{TypeName: "User", ServiceName: "users", SelectionSet: "id name"})
	sch := mustSchema(t, cfg)

	keys := sch.Keys("User", "users")
	require.Len(t, keys, 2)
	assert.Len(t, keys[0], 1, "first declared key for users is just id")
	assert.Len(t, keys[1], 2)
}

func TestIsExternal(t *testing.T) {
	sch := mustSchema(t, fixtureConfig())
	assert.True(t, sch.IsExternal("User", "reviews", "id"))
	assert.False(t, sch.IsExternal("User", "reviews", "name"))
}

func TestRequiresAndProvides(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Requires = []schema.FieldSelectionConfig{
		{TypeName: "Review", FieldName: "author", SelectionSet: "id"},
	}
	cfg.Provides = []schema.FieldSelectionConfig{
		{TypeName: "Review", FieldName: "author", SelectionSet: "name"},
	}
	sch := mustSchema(t, cfg)

	requires := sch.Requires("Review", "author")
	require.Len(t, requires, 1)

	provides := sch.Provides("Review", "author")
	require.Len(t, provides, 1)

	assert.Nil(t, sch.Requires("Review", "body"))
}

func TestPossibleTypesForObjectIsItself(t *testing.T) {
	sch := mustSchema(t, fixtureConfig())
	types := sch.PossibleTypes("User")
	require.Len(t, types, 1)
	assert.Equal(t, "User", types[0].Name)
}

func TestFieldsExposesEveryAnnotatedField(t *testing.T) {
	cfg := fixtureConfig()
	sch := mustSchema(t, cfg)
	records := sch.Fields()
	assert.Len(t, records, len(cfg.FieldOwners))
}

func TestNamedTypeOfUnwrapsWrappers(t *testing.T) {
	listOfNonNull := ast.ListType(ast.NonNullNamedType("Review", nil), nil)
	assert.Equal(t, "Review", schema.NamedTypeOf(listOfNonNull))
}

func TestIsIntrospectionType(t *testing.T) {
	assert.True(t, schema.IsIntrospectionType("__Schema"))
	assert.False(t, schema.IsIntrospectionType("User"))
}
