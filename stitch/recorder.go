package stitch

import (
	"github.com/samsarahq/go/oops"

	"github.com/justinanastos/graphql-tools/graphql"
	"github.com/justinanastos/graphql-tools/sdl"
)

// Contribution is one schema handed to MergeSchemas: either (a) an
// already-built executable schema or (b) an SDL string that may contain
// `extend type …` declarations (spec §4.1).
type Contribution struct {
	// Name labels the contribution for error messages and is the origin
	// tag stored on every type/field it introduces.
	Name string

	// Schema is set for an (a)-style contribution.
	Schema *graphql.Schema

	// SDL is set for a (b)-style contribution.
	SDL string

	// Fetch, if set, means Schema describes a remote schema's shape only:
	// execution is never run against Schema directly but forwarded to
	// Fetch (spec §6 "Upstream schema contract").
	Fetch Fetcher
}

var sharedScalarNames = map[string]bool{
	"String": true, "Int": true, "Float": true, "Boolean": true, "ID": true,
}

// typeEntry is one recorded named type: its origin contribution and
// either the live graphql.Type it came from (contribution (a)) or its
// parsed SDL definition (contribution (b)).
type typeEntry struct {
	name        string
	origin      string
	live        graphql.Type
	sdlDef      *sdl.TypeDef
	isExtension bool
	shared      bool

	// extensionFields names the fields added onto this entry by a
	// deferred `extend` (set by applyExtension in merge.go), so
	// buildTypeArena knows which of sdlDef.Fields are genuinely new
	// versus (for a live entry) fields that already existed.
	extensionFields map[string]bool
}

// inventory is the Schema Recorder's normalized output for one
// contribution (spec §2.1): every named type it introduces, plus any
// `extend` declarations deferred for the Type Merger.
type inventory struct {
	contributionName string
	types            map[string]*typeEntry
	extends          []*typeEntry
}

// recordContribution is the Schema Recorder (spec §4.1).
func recordContribution(index int, c Contribution) (*inventory, error) {
	inv := &inventory{contributionName: c.Name, types: map[string]*typeEntry{}}

	switch {
	case c.Schema != nil:
		recordExecutableSchema(inv, c)
	case c.SDL != "":
		parsed, err := sdl.ParseSDL(c.Name, c.SDL)
		if err != nil {
			return nil, &SDLParseError{ContributionIndex: index, ContributionName: c.Name, Cause: err}
		}
		for _, def := range parsed.Types {
			def := def
			entry := &typeEntry{
				name:        def.Name,
				origin:      c.Name,
				sdlDef:      &def,
				isExtension: def.IsExtension,
				shared:      sharedScalarNames[def.Name],
			}
			if def.IsExtension {
				inv.extends = append(inv.extends, entry)
				continue
			}
			inv.types[def.Name] = entry
		}
	default:
		return nil, oops.Errorf("stitch: contribution %d (%s) has neither Schema nor SDL set", index, c.Name)
	}

	return inv, nil
}

// recordExecutableSchema walks an already-built schema's type graph
// (spec §4.1(a)), recording every reachable named type under its origin.
func recordExecutableSchema(inv *inventory, c Contribution) {
	seen := map[string]bool{}
	var walk func(t graphql.Type)
	walk = func(t graphql.Type) {
		switch t := t.(type) {
		case *graphql.Object:
			if seen[t.Name] {
				return
			}
			seen[t.Name] = true
			inv.types[t.Name] = &typeEntry{name: t.Name, origin: c.Name, live: t}
			for _, f := range t.Fields {
				walk(graphql.Unwrap(f.Type))
			}
		case *graphql.Interface:
			if seen[t.Name] {
				return
			}
			seen[t.Name] = true
			inv.types[t.Name] = &typeEntry{name: t.Name, origin: c.Name, live: t}
			for _, f := range t.Fields {
				walk(graphql.Unwrap(f.Type))
			}
			for _, p := range t.PossibleTypes {
				walk(p)
			}
		case *graphql.Union:
			if seen[t.Name] {
				return
			}
			seen[t.Name] = true
			inv.types[t.Name] = &typeEntry{name: t.Name, origin: c.Name, live: t}
			for _, p := range t.Types {
				walk(p)
			}
		case *graphql.Enum:
			if seen[t.Name] {
				return
			}
			seen[t.Name] = true
			inv.types[t.Name] = &typeEntry{name: t.Name, origin: c.Name, live: t}
		case *graphql.Scalar:
			if seen[t.Name] {
				return
			}
			seen[t.Name] = true
			inv.types[t.Name] = &typeEntry{name: t.Name, origin: c.Name, live: t, shared: sharedScalarNames[t.Name]}
		}
	}

	if c.Schema.Query != nil {
		walk(c.Schema.Query)
	}
	if c.Schema.Mutation != nil {
		walk(c.Schema.Mutation)
	}
}
