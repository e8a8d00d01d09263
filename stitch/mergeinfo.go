package stitch

import (
	"context"

	"github.com/justinanastos/graphql-tools/graphql"
)

// DelegateFunc is the stitching engine's one runtime primitive (spec
// §4.4): synthesize and execute a standalone sub-operation against the
// upstream schema that owns targetRootField, returning the value at
// data[targetRootField].
type DelegateFunc func(ctx context.Context, opType graphql.OperationType, targetRootField string, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error)

// MergeInfo is the resolver-side handle combining the host engine's
// per-field execution info with the stitching engine's delegate
// primitive (spec §3 "Merged Info Object", GLOSSARY).
type MergeInfo struct {
	// Delegate lets a link resolver cross a schema boundary.
	Delegate DelegateFunc
	// SelectionSet is the caller's requested sub-selection for the field
	// currently being resolved.
	SelectionSet *graphql.SelectionSet
}
