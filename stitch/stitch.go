// Package stitch merges independently defined GraphQL schemas into a
// single executable schema whose resolvers transparently delegate back to
// the schema that originally owns each field, plus operator-defined
// "link" fields that join types across schema boundaries.
package stitch

import (
	"context"

	"github.com/samsarahq/go/oops"

	"github.com/justinanastos/graphql-tools/graphql"
	"github.com/justinanastos/graphql-tools/logger"
)

// Config is mergeSchemas's configuration (spec §6), given as a single Go
// struct literal rather than a config-file format — there's no separate
// file format to support.
type Config struct {
	// Contributions is the ordered list of schemas to merge (spec §4.1).
	Contributions []Contribution

	// OnTypeConflict resolves type-name collisions (spec §4.2). Nil means
	// "keep existing".
	OnTypeConflict OnTypeConflict

	// Resolvers is either a ResolverMap or a factory func(*MergeInfo)
	// ResolverMap (spec §6, §9 "dynamic resolver registration via a
	// factory").
	Resolvers interface{}

	// Logger receives a warning for each error an upstream reports during
	// a delegation, without aborting the request, the way the teacher's own
	// ambient logger does. Other run-time errors are not logged. Defaults
	// to logger.New().
	Logger logger.Logger
}

// MergedSchema is the executable schema mergeSchemas produces: the live
// graphql.Schema plus the engine backing every delegated field.
type MergedSchema struct {
	Schema *graphql.Schema
	engine *engine
}

// Execute runs operation against the merged schema, threading variables
// through the request's context so that any delegate() call made while
// resolving it — however deep — can still project the original
// operation's variables (spec §4.4 step 6).
func (m *MergedSchema) Execute(ctx context.Context, operation *graphql.Operation, variables map[string]interface{}, root interface{}) *graphql.Response {
	ctx = withRequestVariables(ctx, variables)
	ctx = withRequestVariableTypes(ctx, operation.VariableDefinitions)
	return graphql.Execute(ctx, m.Schema, operation, variables, root)
}

// MergeSchemas builds a MergedSchema from cfg, implementing the
// Schema Recorder, Type Merger, Link Resolver Binder, and the two-phase
// build spec §9 describes for wiring up the Delegation Engine.
func MergeSchemas(cfg Config) (*MergedSchema, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.New()
	}

	invs := make([]*inventory, 0, len(cfg.Contributions))
	upstreams := map[string]*upstream{}
	for i, c := range cfg.Contributions {
		inv, err := recordContribution(i, c)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)

		up := &upstream{name: c.Name, fetch: c.Fetch}
		if c.Schema != nil {
			up.schema = c.Schema
		}
		upstreams[c.Name] = up
	}

	arena, err := mergeInventories(invs, cfg.OnTypeConflict)
	if err != nil {
		return nil, err
	}

	catalog, err := buildTypeArena(arena)
	if err != nil {
		return nil, err
	}

	// A contribution described only by SDL (no local Schema) still needs a
	// graphql.Schema handle for upstream.rootObject's argument-type
	// lookups; synthesize one holding only this origin's own root fields,
	// since the merged catalog's Query/Mutation objects mix in every
	// other contribution's fields too.
	for _, up := range upstreams {
		if up.schema == nil {
			up.schema = &graphql.Schema{
				Query:    rootForOrigin(catalog, "Query", up.name),
				Mutation: rootForOrigin(catalog, "Mutation", up.name),
			}
		}
	}

	eng := &engine{upstreams: upstreams, catalog: catalog, log: log}

	resolvers, err := resolveResolverMap(cfg.Resolvers, eng)
	if err != nil {
		return nil, err
	}
	if resolvers != nil {
		if err := bindResolvers(catalog, resolvers); err != nil {
			return nil, err
		}
	}

	wireResolvers(catalog, eng)

	query, _ := catalog.types["Query"].(*graphql.Object)
	mutation, _ := catalog.types["Mutation"].(*graphql.Object)
	schema := &graphql.Schema{Query: query, Mutation: mutation}

	return &MergedSchema{Schema: schema, engine: eng}, nil
}

// rootForOrigin builds a synthetic root Object exposing only rootName's
// fields that originate from schemaName, for use as a remote Fetcher
// contribution's own Schema handle.
func rootForOrigin(catalog *typeCatalog, rootName, schemaName string) *graphql.Object {
	root, ok := catalog.types[rootName].(*graphql.Object)
	if !ok {
		return nil
	}
	fields := map[string]*graphql.Field{}
	for fieldName, field := range root.Fields {
		if meta := catalog.meta[rootName][fieldName]; meta != nil && meta.OriginSchema == schemaName {
			fields[fieldName] = field
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &graphql.Object{Name: rootName, Fields: fields}
}

func resolveResolverMap(resolvers interface{}, eng *engine) (ResolverMap, error) {
	switch r := resolvers.(type) {
	case nil:
		return nil, nil
	case ResolverMap:
		return r, nil
	case map[string]map[string]*ResolverSpec:
		return ResolverMap(r), nil
	case func(*MergeInfo) ResolverMap:
		return r(&MergeInfo{Delegate: eng.delegate}), nil
	case func(*MergeInfo) map[string]map[string]*ResolverSpec:
		return ResolverMap(r(&MergeInfo{Delegate: eng.delegate})), nil
	default:
		return nil, oops.Errorf("stitch: Resolvers must be a ResolverMap or a func(*MergeInfo) ResolverMap, got %T", resolvers)
	}
}

// wireResolvers is phase 2 of the two-phase build (spec §9): now that
// every field's strategy is final, bind the actual Go Resolve closure for
// each one.
func wireResolvers(catalog *typeCatalog, eng *engine) {
	for typeName, t := range catalog.types {
		var fields map[string]*graphql.Field
		switch t := t.(type) {
		case *graphql.Object:
			fields = t.Fields
		case *graphql.Interface:
			fields = t.Fields
		default:
			continue
		}

		isRoot := typeName == "Query" || typeName == "Mutation"
		opType := graphql.OperationQuery
		if typeName == "Mutation" {
			opType = graphql.OperationMutation
		}

		for fieldName, field := range fields {
			meta := catalog.meta[typeName][fieldName]
			if meta == nil {
				continue
			}
			field.Resolve = buildResolve(typeName, fieldName, meta, isRoot, opType, eng)
		}
	}
}

func buildResolve(typeName, fieldName string, meta *FieldMeta, isRoot bool, opType graphql.OperationType, eng *engine) func(context.Context, interface{}, map[string]interface{}, *graphql.SelectionSet) (interface{}, error) {
	switch meta.Strategy {
	case StrategyLinkResolver:
		spec := meta.Spec
		return func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
			info := &MergeInfo{Delegate: eng.delegate, SelectionSet: selectionSet}
			return spec.Resolve(ctx, source, args, info)
		}

	case StrategyMissingLinkResolver:
		return func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
			return nil, &MissingLinkResolverError{TypeName: typeName, FieldName: fieldName}
		}

	default: // StrategyUpstreamDelegated, StrategyPassthroughScalar, StrategyEnumIdentity, StrategyUnionTypeResolver
		if isRoot {
			return func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
				return eng.delegate(ctx, opType, fieldName, args, selectionSet)
			}
		}
		return func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
			return passthroughFromParent(source, fieldName)
		}
	}
}

// passthroughFromParent reads a nested field's value straight off its
// already-fetched parent: the whole same-origin subtree was already
// retrieved by the ancestor root delegation's single sub-operation (spec
// §1 rules out per-field query planning across upstreams), so no second
// delegation is needed here.
func passthroughFromParent(source interface{}, fieldName string) (interface{}, error) {
	m, ok := source.(map[string]interface{})
	if !ok {
		return nil, oops.Errorf("stitch: field %q: parent value is %T, not a fetched object", fieldName, source)
	}
	return m[fieldName], nil
}
