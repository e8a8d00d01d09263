package stitch

import (
	"context"

	"github.com/samsarahq/go/oops"

	"github.com/justinanastos/graphql-tools/graphql"
	"github.com/justinanastos/graphql-tools/sdl"
)

// Resolution is a conflict callback's verdict: which of the two
// conflicting definitions becomes the merged map's winner.
type Resolution int

const (
	KeepExisting Resolution = iota
	KeepIncoming
)

// Conflict describes a type-name collision handed to OnTypeConflict
// (spec §4.2). Returning a freshly synthesized third definition is left
// operator-defined by spec §9's Open Questions; this callback shape picks
// between the two contributed definitions rather than accepting an
// arbitrary merged one — an operator needing a true three-way merge
// should pre-merge that type's SDL themselves before contributing it.
type Conflict struct {
	TypeName       string
	ExistingSchema string
	IncomingSchema string
}

// OnTypeConflict is the operator-supplied tie-breaker invoked on a
// type-name collision. A nil callback defaults to "keep existing" (spec
// §4.2).
type OnTypeConflict func(Conflict) Resolution

// typeArena is the Type Merger's output before the merged definitions are
// built into live graphql.Type values: winning typeEntry per name, plus
// every contribution's field names recorded under the type (even a
// loser's), so a field's true origin is still known after a conflict
// (spec §4.2 "the loser's origin is nevertheless retained").
type typeArena struct {
	entries      map[string]*typeEntry
	fieldOrigins map[string]map[string]string

	// rootFields carries every contribution's actual Query/Mutation field
	// definitions, keyed by root name then field name. Unlike every other
	// type name, "Query" and "Mutation" are never a same-name collision
	// between contributions to pick a winner from — every contribution
	// adds its own disjoint set of root fields, so the merged root is
	// always the union of all of them (spec §2's Type Merger folds
	// inventories into "a single merged type map", and a schema's root
	// query/mutation type is itself just another merged type whose
	// fields happen to come from many origins at once).
	rootFields map[string]map[string]*rootFieldSource
}

// rootFieldSource is one contribution's definition of a single Query or
// Mutation field, kept in whichever shape it was recorded in (live or
// SDL) until buildTypeArena resolves it against the final catalog.
type rootFieldSource struct {
	origin      string
	liveField   *graphql.Field
	sdlField    *sdl.FieldDef
	isExtension bool
}

func isRootTypeName(name string) bool {
	return name == "Query" || name == "Mutation"
}

func recordRootFields(arena *typeArena, entry *typeEntry) {
	if !isRootTypeName(entry.name) {
		return
	}
	byField, ok := arena.rootFields[entry.name]
	if !ok {
		byField = map[string]*rootFieldSource{}
		arena.rootFields[entry.name] = byField
	}
	switch {
	case entry.live != nil:
		obj, ok := entry.live.(*graphql.Object)
		if !ok {
			return
		}
		for fname, f := range obj.Fields {
			if _, exists := byField[fname]; !exists {
				byField[fname] = &rootFieldSource{origin: entry.origin, liveField: f}
			}
		}
	case entry.sdlDef != nil:
		for i := range entry.sdlDef.Fields {
			fd := &entry.sdlDef.Fields[i]
			if _, exists := byField[fd.Name]; !exists {
				byField[fd.Name] = &rootFieldSource{origin: entry.origin, sdlField: fd, isExtension: entry.isExtension}
			}
		}
	}
}

// mergeInventories is the Type Merger (spec §4.2).
func mergeInventories(invs []*inventory, onConflict OnTypeConflict) (*typeArena, error) {
	arena := &typeArena{
		entries:      map[string]*typeEntry{},
		fieldOrigins: map[string]map[string]string{},
		rootFields:   map[string]map[string]*rootFieldSource{},
	}
	var deferredExtends []*typeEntry

	for _, inv := range invs {
		for name, entry := range inv.types {
			recordFieldOrigins(arena, entry)
			recordRootFields(arena, entry)

			existing, ok := arena.entries[name]
			switch {
			case !ok:
				arena.entries[name] = entry
			case existing.shared:
				// shared built-ins are recorded once; conflicts among
				// them are not reported (spec §4.1).
			case entry.shared:
			case isRootTypeName(name):
				// Root field definitions themselves are unioned via
				// rootFields above; arena.entries just needs *some*
				// placeholder entry of the right name so pass 1 of
				// buildTypeArena knows a "Query"/"Mutation" type exists.
			default:
				resolution := KeepExisting
				if onConflict != nil {
					resolution = onConflict(Conflict{TypeName: name, ExistingSchema: existing.origin, IncomingSchema: entry.origin})
				}
				if resolution == KeepIncoming {
					arena.entries[name] = entry
				}
			}
		}
		deferredExtends = append(deferredExtends, inv.extends...)
	}

	for _, ext := range deferredExtends {
		if isRootTypeName(ext.name) {
			recordRootFields(arena, ext)
			continue
		}
		target, ok := arena.entries[ext.name]
		if !ok {
			return nil, &DanglingExtensionError{TypeName: ext.name, FromSchema: ext.origin}
		}
		applyExtension(target, ext)
	}

	return arena, nil
}

func recordFieldOrigins(arena *typeArena, entry *typeEntry) {
	var names []string
	switch {
	case entry.live != nil:
		switch t := entry.live.(type) {
		case *graphql.Object:
			for f := range t.Fields {
				names = append(names, f)
			}
		case *graphql.Interface:
			for f := range t.Fields {
				names = append(names, f)
			}
		}
	case entry.sdlDef != nil:
		for _, f := range entry.sdlDef.Fields {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return
	}
	byField, ok := arena.fieldOrigins[entry.name]
	if !ok {
		byField = map[string]string{}
		arena.fieldOrigins[entry.name] = byField
	}
	for _, f := range names {
		if _, exists := byField[f]; !exists {
			byField[f] = entry.origin
		}
	}
}

// applyExtension appends ext's fields (or union members, or enum values)
// onto target's pending SDL definition. Extension fields carry no
// upstream origin (spec §4.2) — they need a link resolver, bound later by
// bindResolvers, or they report StrategyMissingLinkResolver at execution.
func applyExtension(target, ext *typeEntry) {
	if target.sdlDef == nil {
		// target came from an executable schema: synthesize a pending
		// SDL definition to carry the extension's additions, merged onto
		// the live type's fields during buildTypeArena.
		target.sdlDef = &sdl.TypeDef{Name: target.name}
	}
	if ext.sdlDef == nil {
		return
	}
	target.sdlDef.Fields = append(target.sdlDef.Fields, ext.sdlDef.Fields...)
	target.sdlDef.PossibleTypes = append(target.sdlDef.PossibleTypes, ext.sdlDef.PossibleTypes...)
	target.sdlDef.EnumValues = append(target.sdlDef.EnumValues, ext.sdlDef.EnumValues...)
	if target.extensionFields == nil {
		target.extensionFields = map[string]bool{}
	}
	for _, f := range ext.sdlDef.Fields {
		target.extensionFields[f.Name] = true
	}
}

// typeCatalog is the Merged Type Map (spec §3): the live, executable
// graphql.Type for every merged name, plus per-field resolution metadata.
type typeCatalog struct {
	types map[string]graphql.Type
	meta  map[string]map[string]*FieldMeta
}

func (c *typeCatalog) typeExists(name string) bool {
	_, ok := c.types[name]
	return ok
}

func (c *typeCatalog) fieldReturnTypeName(typeName, fieldName string) (string, bool) {
	switch t := c.types[typeName].(type) {
	case *graphql.Object:
		f, ok := t.Fields[fieldName]
		if !ok {
			return "", false
		}
		return graphql.Unwrap(f.Type).String(), true
	case *graphql.Interface:
		f, ok := t.Fields[fieldName]
		if !ok {
			return "", false
		}
		return graphql.Unwrap(f.Type).String(), true
	}
	return "", false
}

// rootFieldOrigin returns the upstream schema that owns fieldName on the
// Query or Mutation root, used by delegate() to route a call by root
// field name alone (spec §4.4).
func (c *typeCatalog) rootFieldOrigin(opType graphql.OperationType, fieldName string) (string, bool) {
	rootName := "Query"
	if opType == graphql.OperationMutation {
		rootName = "Mutation"
	}
	fm, ok := c.meta[rootName][fieldName]
	if !ok || fm.OriginSchema == "" {
		return "", false
	}
	return fm.OriginSchema, true
}

// isAbstractType reports whether name is a Union or Interface in the
// merged catalog — used by rewriteForType to decide whether a
// delegated subtree needs __typename forced onto the wire so the
// catalog's own ResolveType (see wrapDelegatedResolveType) has a
// discriminator to read.
func (c *typeCatalog) isAbstractType(name string) bool {
	switch c.types[name].(type) {
	case *graphql.Union, *graphql.Interface:
		return true
	default:
		return false
	}
}

func (c *typeCatalog) isPossibleType(abstractName, concreteName string) bool {
	if abstractName == concreteName {
		return true
	}
	switch t := c.types[abstractName].(type) {
	case *graphql.Union:
		_, ok := t.Types[concreteName]
		return ok
	case *graphql.Interface:
		_, ok := t.PossibleTypes[concreteName]
		return ok
	}
	return false
}

// buildTypeArena is phase 1 of the two-phase build spec §9 describes:
// convert every merged typeEntry into a live, name-indexed graphql.Type
// and assign each of its fields a starting FieldMeta. Field Resolve
// closures aren't wired yet — that happens once the Delegation Engine
// exists (stitch.go), since root-delegated fields need it.
func buildTypeArena(arena *typeArena) (*typeCatalog, error) {
	catalog := &typeCatalog{types: map[string]graphql.Type{}, meta: map[string]map[string]*FieldMeta{}}

	// Pass 1: create empty, named containers so cyclic field types can
	// resolve through the arena instead of recursive construction (spec
	// §9 "name-indexed arena").
	for name, entry := range arena.entries {
		if isRootTypeName(name) {
			// Query/Mutation are always freshly built from arena.rootFields
			// (below), never aliased to any one contribution's own root
			// object — see rootFieldSource's doc comment.
			catalog.types[name] = &graphql.Object{Name: name, Fields: map[string]*graphql.Field{}}
			continue
		}
		if entry.live != nil {
			switch t := entry.live.(type) {
			case *graphql.Union:
				// A merged field of this type may come back either from
				// this contribution's own live execution (source still
				// shaped the way t.ResolveType expects) or from an
				// upstream delegation, whose resolved value is a plain
				// map carrying __typename instead of the contribution's
				// own discriminator. Clone rather than alias so the
				// contribution's original Union — and its own direct
				// execution — is unaffected.
				catalog.types[name] = &graphql.Union{Name: t.Name, Types: t.Types, ResolveType: wrapDelegatedResolveType(t.ResolveType)}
			case *graphql.Interface:
				possibleTypes := make(map[string]*graphql.Object, len(t.PossibleTypes))
				for k, v := range t.PossibleTypes {
					possibleTypes[k] = v
				}
				catalog.types[name] = &graphql.Interface{Name: t.Name, Fields: t.Fields, PossibleTypes: possibleTypes, ResolveType: wrapDelegatedResolveType(t.ResolveType)}
			default:
				catalog.types[name] = entry.live
			}
			continue
		}
		switch entry.sdlDef.Kind {
		case sdl.KindObject:
			catalog.types[name] = &graphql.Object{Name: name, Fields: map[string]*graphql.Field{}, Interfaces: entry.sdlDef.Interfaces}
		case sdl.KindInterface:
			catalog.types[name] = &graphql.Interface{Name: name, Fields: map[string]*graphql.Field{}, PossibleTypes: map[string]*graphql.Object{}}
		case sdl.KindUnion:
			catalog.types[name] = &graphql.Union{Name: name, Types: map[string]*graphql.Object{}}
		case sdl.KindEnum:
			catalog.types[name] = &graphql.Enum{Name: name, Values: map[string]interface{}{}, ReverseMap: map[interface{}]string{}}
		case sdl.KindScalar:
			catalog.types[name] = &graphql.Scalar{Name: name}
		default:
			return nil, oops.Errorf("stitch: type %q has unsupported kind %q", name, entry.sdlDef.Kind)
		}
	}

	// Pass 2: populate fields/members now that every name resolves.
	for name, entry := range arena.entries {
		if isRootTypeName(name) {
			if err := populateRootFields(catalog, name, arena.rootFields[name]); err != nil {
				return nil, err
			}
			continue
		}

		meta := map[string]*FieldMeta{}
		catalog.meta[name] = meta

		for field, origin := range arena.fieldOrigins[name] {
			meta[field] = &FieldMeta{Strategy: StrategyUpstreamDelegated, OriginSchema: origin}
		}

		if entry.live != nil {
			if err := refineLiveFieldMeta(catalog, name, meta); err != nil {
				return nil, err
			}
			if len(entry.extensionFields) > 0 {
				if err := applyExtensionFieldsToLive(catalog, name, entry, meta); err != nil {
					return nil, err
				}
			}
			continue
		}

		if err := populateSDLType(catalog, name, entry.sdlDef, meta, entry.extensionFields); err != nil {
			return nil, err
		}
	}

	// Wire interface possible-types now that every Object exists.
	for name, t := range catalog.types {
		obj, ok := t.(*graphql.Object)
		if !ok {
			continue
		}
		for _, ifaceName := range obj.Interfaces {
			if iface, ok := catalog.types[ifaceName].(*graphql.Interface); ok {
				iface.PossibleTypes[name] = obj
			}
		}
	}

	return catalog, nil
}

// wrapDelegatedResolveType adapts a contribution's own ResolveType so it
// also works against a value that arrived via upstream delegation rather
// than the contribution's own direct execution. delegate() hands back an
// already-resolved map[string]interface{} (the upstream's flattened JSON),
// which carries none of the contribution's original discriminator field —
// only __typename, forced onto the wire by rewriteForType's abstract-scope
// injection. Fall back to the original resolver for any source that isn't
// such a map, so a contribution's schema still behaves exactly as before
// when driven directly (spec's "original schema still works after merge").
func wrapDelegatedResolveType(original func(context.Context, interface{}) (string, error)) func(context.Context, interface{}) (string, error) {
	return func(ctx context.Context, source interface{}) (string, error) {
		if m, ok := source.(map[string]interface{}); ok {
			if typeName, ok := m["__typename"].(string); ok {
				return typeName, nil
			}
		}
		return original(ctx, source)
	}
}

func refineLiveFieldMeta(catalog *typeCatalog, typeName string, meta map[string]*FieldMeta) error {
	var fields map[string]*graphql.Field
	switch t := catalog.types[typeName].(type) {
	case *graphql.Object:
		fields = t.Fields
	case *graphql.Interface:
		fields = t.Fields
	default:
		return nil
	}
	for fieldName, field := range fields {
		fm, ok := meta[fieldName]
		if !ok {
			continue
		}
		switch graphql.Unwrap(field.Type).(type) {
		case *graphql.Scalar:
			fm.Strategy = StrategyPassthroughScalar
		case *graphql.Enum:
			fm.Strategy = StrategyEnumIdentity
		case *graphql.Union, *graphql.Interface:
			fm.Strategy = StrategyUnionTypeResolver
		}
	}
	return nil
}

// populateRootFields builds the merged Query/Mutation object's fields from
// every contribution's root field definitions, cloning each one (rather
// than reusing a contribution's own *graphql.Field) so wireResolvers can
// later install a delegating Resolve closure without mutating that
// contribution's original schema object.
func populateRootFields(catalog *typeCatalog, rootName string, sources map[string]*rootFieldSource) error {
	obj, _ := catalog.types[rootName].(*graphql.Object)
	if obj == nil {
		return nil
	}
	meta := map[string]*FieldMeta{}
	catalog.meta[rootName] = meta

	for fieldName, src := range sources {
		var typ graphql.Type
		var args map[string]graphql.Type
		var err error

		if src.liveField != nil {
			typ = src.liveField.Type
			if src.liveField.Args != nil {
				args = make(map[string]graphql.Type, len(src.liveField.Args))
				for k, v := range src.liveField.Args {
					args[k] = v
				}
			}
		} else if src.sdlField != nil {
			typ, err = resolveTypeRef(catalog, src.sdlField.Type)
			if err != nil {
				return oops.Wrapf(err, "stitch: root field %s.%s", rootName, fieldName)
			}
			if len(src.sdlField.Args) > 0 {
				args = make(map[string]graphql.Type, len(src.sdlField.Args))
				for _, a := range src.sdlField.Args {
					at, err := resolveTypeRef(catalog, a.Type)
					if err != nil {
						return oops.Wrapf(err, "stitch: root field %s.%s argument %s", rootName, fieldName, a.Name)
					}
					args[a.Name] = at
				}
			}
		} else {
			continue
		}

		obj.Fields[fieldName] = &graphql.Field{Name: fieldName, Args: args, Type: typ}
		if src.isExtension {
			meta[fieldName] = &FieldMeta{Strategy: StrategyMissingLinkResolver, IsExtension: true}
		} else {
			meta[fieldName] = &FieldMeta{Strategy: StrategyUpstreamDelegated, OriginSchema: src.origin}
		}
	}
	return nil
}

// applyExtensionFieldsToLive adds extend-contributed fields onto a
// cloned copy of a live Object/Interface's Fields map, so contributors'
// original schema objects are never mutated by merging.
func applyExtensionFieldsToLive(catalog *typeCatalog, name string, entry *typeEntry, meta map[string]*FieldMeta) error {
	if entry.sdlDef == nil || len(entry.sdlDef.Fields) == 0 {
		return nil
	}
	switch t := catalog.types[name].(type) {
	case *graphql.Object:
		cloned := &graphql.Object{Name: t.Name, Interfaces: t.Interfaces, Fields: map[string]*graphql.Field{}}
		for k, v := range t.Fields {
			cloned.Fields[k] = v
		}
		for _, fd := range entry.sdlDef.Fields {
			if !entry.extensionFields[fd.Name] {
				continue
			}
			typ, err := resolveTypeRef(catalog, fd.Type)
			if err != nil {
				return err
			}
			cloned.Fields[fd.Name] = &graphql.Field{Name: fd.Name, Type: typ}
			meta[fd.Name] = &FieldMeta{Strategy: StrategyMissingLinkResolver, IsExtension: true}
		}
		catalog.types[name] = cloned
	case *graphql.Interface:
		fields := make(map[string]*graphql.Field, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = v
		}
		t.Fields = fields
		for _, fd := range entry.sdlDef.Fields {
			if !entry.extensionFields[fd.Name] {
				continue
			}
			typ, err := resolveTypeRef(catalog, fd.Type)
			if err != nil {
				return err
			}
			t.Fields[fd.Name] = &graphql.Field{Name: fd.Name, Type: typ}
			meta[fd.Name] = &FieldMeta{Strategy: StrategyMissingLinkResolver, IsExtension: true}
		}
	}
	return nil
}

func populateSDLType(catalog *typeCatalog, name string, def *sdl.TypeDef, meta map[string]*FieldMeta, extensionFields map[string]bool) error {
	switch t := catalog.types[name].(type) {
	case *graphql.Object:
		for _, fd := range def.Fields {
			typ, err := resolveTypeRef(catalog, fd.Type)
			if err != nil {
				return oops.Wrapf(err, "stitch: field %s.%s", name, fd.Name)
			}
			args := map[string]graphql.Type{}
			for _, a := range fd.Args {
				at, err := resolveTypeRef(catalog, a.Type)
				if err != nil {
					return oops.Wrapf(err, "stitch: argument %s.%s(%s)", name, fd.Name, a.Name)
				}
				args[a.Name] = at
			}
			t.Fields[fd.Name] = &graphql.Field{Name: fd.Name, Args: args, Type: typ}
			if extensionFields[fd.Name] {
				meta[fd.Name] = &FieldMeta{Strategy: StrategyMissingLinkResolver, IsExtension: true}
			} else if fm, ok := meta[fd.Name]; ok {
				switch graphql.Unwrap(typ).(type) {
				case *graphql.Scalar:
					fm.Strategy = StrategyPassthroughScalar
				case *graphql.Enum:
					fm.Strategy = StrategyEnumIdentity
				case *graphql.Union, *graphql.Interface:
					fm.Strategy = StrategyUnionTypeResolver
				}
			}
		}
	case *graphql.Interface:
		for _, fd := range def.Fields {
			typ, err := resolveTypeRef(catalog, fd.Type)
			if err != nil {
				return err
			}
			t.Fields[fd.Name] = &graphql.Field{Name: fd.Name, Type: typ}
		}
	case *graphql.Union:
		for _, member := range def.PossibleTypes {
			obj, ok := catalog.types[member].(*graphql.Object)
			if !ok {
				return oops.Errorf("stitch: union %s names unknown member type %q", name, member)
			}
			t.Types[member] = obj
		}
	case *graphql.Enum:
		for _, v := range def.EnumValues {
			t.Values[v] = v
			t.ReverseMap[v] = v
		}
	}
	return nil
}

func resolveTypeRef(catalog *typeCatalog, ref sdl.TypeRef) (graphql.Type, error) {
	if ref.List != nil {
		inner, err := resolveTypeRef(catalog, *ref.List)
		if err != nil {
			return nil, err
		}
		var t graphql.Type = &graphql.List{Type: inner}
		if ref.NonNull {
			t = &graphql.NonNull{Type: t}
		}
		return t, nil
	}
	named, ok := catalog.types[ref.Name]
	if !ok {
		return nil, oops.Errorf("stitch: unknown type %q", ref.Name)
	}
	if ref.NonNull {
		return &graphql.NonNull{Type: named}, nil
	}
	return named, nil
}
