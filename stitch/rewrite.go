package stitch

import "github.com/justinanastos/graphql-tools/graphql"

// rewriteForType is the selection-set rewriting algorithm of spec §4.4,
// expressed as a pure function over the tagged-variant SelectionSet AST
// (spec §9 "model the GraphQL document as tagged variants ... implement
// rewrite passes as pure functions returning new trees").
//
// Given the caller's selection set ss and the target schema's type typeName
// (the "R" of spec §4.4), it prunes fields R doesn't define, drops and
// inlines LinkResolver fields, and recurses into retained composite
// fields against their own declared return type.
func rewriteForType(ss *graphql.SelectionSet, typeName string, catalog *typeCatalog) *graphql.SelectionSet {
	out := &graphql.SelectionSet{}
	sawTypename := false

	for _, sel := range ss.Selections {
		if sel.Name == "__typename" {
			sawTypename = true
			out.Selections = append(out.Selections, sel)
			continue
		}

		meta, ok := catalog.meta[typeName][sel.Name]
		if !ok {
			// step 1: prune fields not present on R.
			continue
		}

		if meta.Strategy == StrategyLinkResolver || meta.Strategy == StrategyMissingLinkResolver {
			// step 2: drop fields re-satisfied by their own resolver.
			if meta.Spec != nil && meta.Spec.parsedFragment != nil {
				// step 3: inline the fragment's required projection at
				// this same parent scope.
				out.Selections = append(out.Selections, meta.Spec.parsedFragment.Selections...)
				out.Fragments = append(out.Fragments, meta.Spec.parsedFragment.Fragments...)
			}
			continue
		}

		// step 4: preserve alias and arguments verbatim.
		kept := &graphql.Selection{Name: sel.Name, Alias: sel.Alias, Arguments: sel.Arguments}
		if sel.SelectionSet != nil {
			if retType, ok := catalog.fieldReturnTypeName(typeName, sel.Name); ok {
				kept.SelectionSet = rewriteForType(sel.SelectionSet, retType, catalog)
			} else {
				kept.SelectionSet = sel.SelectionSet
			}
		}
		out.Selections = append(out.Selections, kept)
	}

	for _, frag := range ss.Fragments {
		// Tie-break for abstract types: retain inline fragments whose
		// condition names a type that exists in T and is a possible
		// member of typeName; drop the rest.
		if !catalog.typeExists(frag.On) {
			continue
		}
		if !catalog.isPossibleType(typeName, frag.On) {
			continue
		}
		out.Fragments = append(out.Fragments, &graphql.Fragment{
			On:           frag.On,
			SelectionSet: rewriteForType(frag.SelectionSet, frag.On, catalog),
		})
	}

	if !sawTypename && catalog.isAbstractType(typeName) {
		// A delegated abstract-typed value comes back as a plain resolved
		// map with none of the origin schema's own discriminator fields
		// left on it, so the merged catalog's ResolveType for this type
		// reads __typename instead (see wrapDelegatedResolveType). Inject
		// it here, whether or not the caller asked for it, so it's always
		// on the wire.
		out.Selections = append(out.Selections, &graphql.Selection{Name: "__typename"})
		sawTypename = true
	}

	if out.IsEmpty() {
		// Empty-selection safety: inject __typename so the synthesized
		// document stays valid.
		out.Selections = append(out.Selections, &graphql.Selection{Name: "__typename"})
	}

	return out
}

// collectUsedVariableNames walks every selection and fragment in ss,
// recording every variable referenced by an argument anywhere within —
// step 6 of spec §4.4's rewrite algorithm.
func collectUsedVariableNames(ss *graphql.SelectionSet, used map[string]bool) {
	if ss == nil {
		return
	}
	for _, sel := range ss.Selections {
		for _, arg := range sel.Arguments {
			graphql.CollectVariableNames(arg, used)
		}
		collectUsedVariableNames(sel.SelectionSet, used)
	}
	for _, frag := range ss.Fragments {
		collectUsedVariableNames(frag.SelectionSet, used)
	}
}
