package stitch

import (
	"context"

	"github.com/samsarahq/go/oops"

	"github.com/justinanastos/graphql-tools/graphql"
	"github.com/justinanastos/graphql-tools/sdl"
)

// ResolverSpec is an operator-registered resolver for a linked field
// (spec §3 "Resolver Spec"): an optional fragment declaring the parent
// fields the resolver depends on, plus the resolve function itself.
type ResolverSpec struct {
	// Fragment is the fragment-annotation source, e.g. "{ propertyId }"
	// (spec §4.3). Optional.
	Fragment string

	// parsedFragment is Fragment parsed once at bind time into the
	// engine's own SelectionSet shape (spec §9 "parse it once").
	parsedFragment *graphql.SelectionSet

	// Resolve computes the field's value. It may return a plain value or
	// the result of calling info.Delegate.
	Resolve func(ctx context.Context, parent interface{}, args map[string]interface{}, info *MergeInfo) (interface{}, error)
}

// ResolverMap is the shape `mergeSchemas`'s `resolvers` option produces,
// directly or via a factory (spec §6): type name to field name to spec.
type ResolverMap map[string]map[string]*ResolverSpec

// bindResolvers is the Link Resolver Binder (spec §4.3): it validates
// that every registered (type, field) pair exists in the merged map,
// parses each spec's fragment annotation once, and replaces the field's
// resolution strategy with StrategyLinkResolver.
func bindResolvers(catalog *typeCatalog, resolvers ResolverMap) error {
	for typeName, fields := range resolvers {
		fieldsOfType, ok := catalog.meta[typeName]
		if !ok {
			return oops.Errorf("stitch: resolver registered for unknown type %q", typeName)
		}
		for fieldName, spec := range fields {
			meta, ok := fieldsOfType[fieldName]
			if !ok {
				return oops.Errorf("stitch: resolver registered for unknown field %q on type %q", fieldName, typeName)
			}
			if spec.Fragment != "" {
				parsed, err := sdl.ParseFragmentAnnotation(spec.Fragment)
				if err != nil {
					return oops.Wrapf(err, "stitch: parsing fragment annotation for %s.%s", typeName, fieldName)
				}
				spec.parsedFragment = parsed
			}
			meta.Strategy = StrategyLinkResolver
			meta.Spec = spec
		}
	}
	return nil
}
