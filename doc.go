// Package graphql is a federated GraphQL query planner: given a composed
// schema annotated with per-service ownership, key, requires, and provides
// metadata, it turns a single GraphQL operation into a tree of Fetch,
// Flatten, Sequence, and Parallel nodes a gateway executor can run against
// the underlying services.
//
// The planner itself performs no I/O, reads no configuration beyond
// PlannerOptions, and is safe to reuse across many Plan calls. Supporting
// concerns live in their own packages: schema (federation metadata),
// fieldset (the field-set algebra), planctx (operation and planning
// context), fetchgroup (the mutable fetch-group graph), splitter (the
// routing algorithm), queryplan (the plan tree and its JSON shape), and
// schemacheck (composition-time schema validation rules the planner itself
// never runs).
package graphql
