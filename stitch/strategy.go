package stitch

// StrategyKind tags a merged field's resolution strategy, per the Merged
// Type Map of spec §3.
type StrategyKind int

const (
	// StrategyUpstreamDelegated means this field's owning schema resolves
	// it: a root Query/Mutation field of this kind triggers a real
	// delegate() call; a nested field of this kind is satisfied by data
	// already fetched as part of its parent's delegation (spec §1 rules
	// out per-field query planning across upstreams, so a single
	// delegation fetches an entire same-origin subtree).
	StrategyUpstreamDelegated StrategyKind = iota
	// StrategyLinkResolver means an operator-bound resolver computes this
	// field's value, possibly itself calling delegate().
	StrategyLinkResolver
	// StrategyPassthroughScalar is StrategyUpstreamDelegated specialized
	// to a scalar-typed field: its value is just read off the
	// already-fetched parent object.
	StrategyPassthroughScalar
	// StrategyEnumIdentity is StrategyUpstreamDelegated specialized to an
	// enum-typed field.
	StrategyEnumIdentity
	// StrategyUnionTypeResolver is StrategyUpstreamDelegated specialized
	// to a field whose return type is a union or interface: its
	// abstract-type resolution is delegated to the owning upstream's own
	// resolveType rather than reimplemented locally (spec §4.4 "Tie-break
	// for abstract types").
	StrategyUnionTypeResolver
	// StrategyMissingLinkResolver marks a field introduced only by
	// `extend` with no link resolver bound yet. Resolving it is a runtime
	// error (spec §4.2, §7 MissingLinkResolver) until the binder replaces
	// this strategy with StrategyLinkResolver.
	StrategyMissingLinkResolver
)

// FieldMeta is the bookkeeping the Type Merger and Link Resolver Binder
// attach to every merged field, independent of the executable
// graphql.Field (which only needs a Resolve closure to run).
type FieldMeta struct {
	Strategy     StrategyKind
	OriginSchema string
	Spec         *ResolverSpec
	IsExtension  bool
}
