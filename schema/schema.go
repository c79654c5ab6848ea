// Package schema wraps a composed GraphQL schema with the federation
// metadata the planner needs: which service owns a type's identity, which
// service resolves a given field, and the key/requires/provides selections
// that thread data between services.
//
// The schema itself is expected to already be composed and validated by a
// collaborator upstream of the planner; this package does not validate
// directive placement or field shape, only attaches the metadata a composer
// hands it.
package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// KeyConfig declares one @key selection usable to enter TypeName from
// ServiceName. Multiple KeyConfigs for the same (TypeName, ServiceName) are
// kept in declaration order; getKeyFields uses only the first (§9).
type KeyConfig struct {
	TypeName     string `validate:"required"`
	ServiceName  string `validate:"required"`
	SelectionSet string `validate:"required"`
}

// ExternalConfig declares a field ServiceName does not resolve itself but
// needs to reference (typically because it appears in one of its @requires
// or @key selections).
type ExternalConfig struct {
	TypeName    string `validate:"required"`
	ServiceName string `validate:"required"`
	FieldName   string `validate:"required"`
}

// FieldOwnerConfig declares the service that resolves TypeName.FieldName. A
// field with no FieldOwnerConfig inherits the type's base service.
type FieldOwnerConfig struct {
	TypeName    string `validate:"required"`
	FieldName   string `validate:"required"`
	ServiceName string `validate:"required"`
}

// BaseServiceConfig declares the service that owns TypeName's identity.
type BaseServiceConfig struct {
	TypeName    string `validate:"required"`
	ServiceName string `validate:"required"`
}

// FieldSelectionConfig declares an @requires or @provides selection attached
// to TypeName.FieldName.
type FieldSelectionConfig struct {
	TypeName     string `validate:"required"`
	FieldName    string `validate:"required"`
	SelectionSet string `validate:"required"`
}

// Config is the full set of federation metadata a schema-composition
// collaborator hands the planner, prior to it being attached to types and
// fields of the underlying *ast.Schema.
type Config struct {
	BaseServices []BaseServiceConfig    `validate:"dive"`
	FieldOwners  []FieldOwnerConfig     `validate:"dive"`
	Keys         []KeyConfig            `validate:"dive"`
	Externals    []ExternalConfig       `validate:"dive"`
	Requires     []FieldSelectionConfig `validate:"dive"`
	Provides     []FieldSelectionConfig `validate:"dive"`
}

type typeMetadata struct {
	baseService string
	keys        map[string][]ast.SelectionSet // service -> key selection sets, declaration order
	externals   map[string]map[string]bool    // service -> field name -> true
}

type fieldMetadata struct {
	serviceName string
	requires    ast.SelectionSet
	provides    ast.SelectionSet
}

type fieldKey struct {
	typeName  string
	fieldName string
}

// Schema is an *ast.Schema plus the federation metadata attached to it.
type Schema struct {
	Raw *ast.Schema

	types  map[string]*typeMetadata
	fields map[fieldKey]*fieldMetadata
}

var validate = newValidator()

func newValidator() *validator.Validate {
	return validator.New()
}

// New attaches cfg to raw, parsing every raw selection-set string in cfg
// into an ast.SelectionSet via the query grammar (a _FieldSet scalar is
// just a brace-wrapped selection).
func New(raw *ast.Schema, cfg Config) (*Schema, error) {
	if raw == nil {
		return nil, fmt.Errorf("schema: raw *ast.Schema is required")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("schema: invalid federation configuration: %w", err)
	}

	s := &Schema{
		Raw:    raw,
		types:  make(map[string]*typeMetadata),
		fields: make(map[fieldKey]*fieldMetadata),
	}

	for _, bs := range cfg.BaseServices {
		s.typeMeta(bs.TypeName).baseService = bs.ServiceName
	}
	for _, ext := range cfg.Externals {
		tm := s.typeMeta(ext.TypeName)
		if tm.externals[ext.ServiceName] == nil {
			tm.externals[ext.ServiceName] = make(map[string]bool)
		}
		tm.externals[ext.ServiceName][ext.FieldName] = true
	}
	for _, k := range cfg.Keys {
		sel, err := parseFieldSet(k.SelectionSet)
		if err != nil {
			return nil, fmt.Errorf("schema: parsing key for %s@%s: %w", k.TypeName, k.ServiceName, err)
		}
		tm := s.typeMeta(k.TypeName)
		tm.keys[k.ServiceName] = append(tm.keys[k.ServiceName], sel)
	}
	for _, fo := range cfg.FieldOwners {
		s.fieldMeta(fo.TypeName, fo.FieldName).serviceName = fo.ServiceName
	}
	for _, r := range cfg.Requires {
		sel, err := parseFieldSet(r.SelectionSet)
		if err != nil {
			return nil, fmt.Errorf("schema: parsing requires for %s.%s: %w", r.TypeName, r.FieldName, err)
		}
		s.fieldMeta(r.TypeName, r.FieldName).requires = sel
	}
	for _, p := range cfg.Provides {
		sel, err := parseFieldSet(p.SelectionSet)
		if err != nil {
			return nil, fmt.Errorf("schema: parsing provides for %s.%s: %w", p.TypeName, p.FieldName, err)
		}
		s.fieldMeta(p.TypeName, p.FieldName).provides = sel
	}

	return s, nil
}

func (s *Schema) typeMeta(typeName string) *typeMetadata {
	tm, ok := s.types[typeName]
	if !ok {
		tm = &typeMetadata{
			keys:      make(map[string][]ast.SelectionSet),
			externals: make(map[string]map[string]bool),
		}
		s.types[typeName] = tm
	}
	return tm
}

func (s *Schema) fieldMeta(typeName, fieldName string) *fieldMetadata {
	key := fieldKey{typeName, fieldName}
	fm, ok := s.fields[key]
	if !ok {
		fm = &fieldMetadata{}
		s.fields[key] = fm
	}
	return fm
}

// parseFieldSet parses a _FieldSet scalar's raw string ("id organizationId")
// into an ast.SelectionSet by wrapping it in braces and reusing the query
// grammar, the same trick this lineage's own directive-fields scalars rely
// on (there is no bespoke field-set grammar).
func parseFieldSet(raw string) (ast.SelectionSet, error) {
	src := &ast.Source{Input: "{ " + raw + " }", Name: "fieldset"}
	doc, err := parser.ParseQuery(src)
	if err != nil {
		return nil, err
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("expected exactly one operation in field-set %q", raw)
	}
	return doc.Operations[0].SelectionSet, nil
}

// Definition returns the schema type definition for typeName, or nil.
func (s *Schema) Definition(typeName string) *ast.Definition {
	return s.Raw.Types[typeName]
}

// BaseService returns the service that owns typeName's identity.
func (s *Schema) BaseService(typeName string) (string, bool) {
	tm, ok := s.types[typeName]
	if !ok || tm.baseService == "" {
		return "", false
	}
	return tm.baseService, true
}

// OwningService returns the service that resolves typeName.fieldName,
// falling back to the type's base service when the field has no explicit
// owner.
func (s *Schema) OwningService(typeName, fieldName string) (string, bool) {
	if fm, ok := s.fields[fieldKey{typeName, fieldName}]; ok && fm.serviceName != "" {
		return fm.serviceName, true
	}
	return s.BaseService(typeName)
}

// Keys returns every declared key selection set for typeName usable from
// service, in declaration order.
func (s *Schema) Keys(typeName, service string) []ast.SelectionSet {
	tm, ok := s.types[typeName]
	if !ok {
		return nil
	}
	return tm.keys[service]
}

// IsExternal reports whether typeName.fieldName is declared @external on
// service.
func (s *Schema) IsExternal(typeName, service, fieldName string) bool {
	tm, ok := s.types[typeName]
	if !ok {
		return false
	}
	return tm.externals[service] != nil && tm.externals[service][fieldName]
}

// Requires returns the @requires selection attached to typeName.fieldName,
// or nil.
func (s *Schema) Requires(typeName, fieldName string) ast.SelectionSet {
	if fm, ok := s.fields[fieldKey{typeName, fieldName}]; ok {
		return fm.requires
	}
	return nil
}

// Provides returns the @provides selection attached to typeName.fieldName,
// or nil.
func (s *Schema) Provides(typeName, fieldName string) ast.SelectionSet {
	if fm, ok := s.fields[fieldKey{typeName, fieldName}]; ok {
		return fm.provides
	}
	return nil
}

// PossibleTypes returns the concrete object types typeName can resolve to:
// for an interface or union, its implementations/members; for an object
// type, itself.
func (s *Schema) PossibleTypes(typeName string) []*ast.Definition {
	def := s.Definition(typeName)
	if def == nil {
		return nil
	}
	if def.Kind == ast.Object {
		return []*ast.Definition{def}
	}
	return s.Raw.PossibleTypes[typeName]
}

// FieldRecord is one field's attached federation metadata, exposed for
// collaborators (such as schemacheck) that need to walk every field rather
// than look one up by name.
type FieldRecord struct {
	TypeName    string
	FieldName   string
	ServiceName string
	Requires    ast.SelectionSet
	Provides    ast.SelectionSet
}

// Fields returns every field with federation metadata attached, in no
// particular order.
func (s *Schema) Fields() []FieldRecord {
	out := make([]FieldRecord, 0, len(s.fields))
	for key, fm := range s.fields {
		out = append(out, FieldRecord{
			TypeName:    key.typeName,
			FieldName:   key.fieldName,
			ServiceName: fm.serviceName,
			Requires:    fm.requires,
			Provides:    fm.provides,
		})
	}
	return out
}

// NamedTypeOf returns the innermost named type of t, unwrapping list and
// non-null wrappers.
func NamedTypeOf(t *ast.Type) string {
	for cur := t; cur != nil; cur = cur.Elem {
		if cur.NamedType != "" {
			return cur.NamedType
		}
	}
	return ""
}

// IsAbstractType reports whether def is an interface or union.
func IsAbstractType(def *ast.Definition) bool {
	return def != nil && (def.Kind == ast.Interface || def.Kind == ast.Union)
}

// IsCompositeType reports whether def can carry a selection set.
func IsCompositeType(def *ast.Definition) bool {
	return def != nil && (def.Kind == ast.Object || def.Kind == ast.Interface || def.Kind == ast.Union)
}

// IsIntrospectionType reports whether typeName is a GraphQL introspection
// type the planner must never route to a service.
func IsIntrospectionType(typeName string) bool {
	switch typeName {
	case "__Schema", "__Type", "__Field", "__InputValue", "__EnumValue", "__Directive", "__TypeKind", "__DirectiveLocation":
		return true
	default:
		return false
	}
}
