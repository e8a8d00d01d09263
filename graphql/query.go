package graphql

import "fmt"

// OperationType is either a query or a mutation; the stitching engine
// never federates subscriptions (see spec Non-goals).
type OperationType string

const (
	OperationQuery    OperationType = "query"
	OperationMutation OperationType = "mutation"
)

// Value is a GraphQL argument value as it appears in a document, before
// variable substitution: either a literal or a reference to a variable
// declared on the enclosing operation. Keeping the two distinct (rather
// than eagerly resolving variables) is what lets the delegation engine
// compute which of the caller's variables are actually used by a
// rewritten selection (spec §4.4 step 6).
type Value interface {
	isValue()
}

// Literal is a plain value: a string, number, bool, nil, or a nested
// []Value or map[string]Value whose elements Resolve resolves in turn.
type Literal struct {
	Value interface{}
}

func (Literal) isValue() {}

// VariableRef refers to a variable declared on the enclosing operation.
type VariableRef struct {
	Name string
}

func (VariableRef) isValue() {}

// Resolve substitutes variable references with their values from the
// operation's variables map, producing the plain Go value a resolver
// expects to receive.
func Resolve(v Value, variables map[string]interface{}) (interface{}, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Literal:
		switch inner := v.Value.(type) {
		case []Value:
			out := make([]interface{}, len(inner))
			for i, elem := range inner {
				resolved, err := Resolve(elem, variables)
				if err != nil {
					return nil, err
				}
				out[i] = resolved
			}
			return out, nil
		case map[string]Value:
			out := make(map[string]interface{}, len(inner))
			for k, elem := range inner {
				resolved, err := Resolve(elem, variables)
				if err != nil {
					return nil, err
				}
				out[k] = resolved
			}
			return out, nil
		default:
			return v.Value, nil
		}
	case VariableRef:
		value, ok := variables[v.Name]
		if !ok {
			return nil, fmt.Errorf("missing variable %q", v.Name)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("unknown value kind %T", v)
	}
}

// ResolveArguments resolves every argument in args against variables.
func ResolveArguments(args map[string]Value, variables map[string]interface{}) (map[string]interface{}, error) {
	if args == nil {
		return nil, nil
	}
	resolved := make(map[string]interface{}, len(args))
	for name, v := range args {
		value, err := Resolve(v, variables)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		resolved[name] = value
	}
	return resolved, nil
}

// CollectVariableNames appends every variable referenced anywhere within v
// to used.
func CollectVariableNames(v Value, used map[string]bool) {
	switch v := v.(type) {
	case VariableRef:
		used[v.Name] = true
	case Literal:
		switch inner := v.Value.(type) {
		case []Value:
			for _, elem := range inner {
				CollectVariableNames(elem, used)
			}
		case map[string]Value:
			for _, elem := range inner {
				CollectVariableNames(elem, used)
			}
		}
	}
}

// Selection is one field selected within a SelectionSet.
//
// The selection
//
//	mine: bookings(limit: 1) { id }
//
// has Name "bookings" (the field to query), Alias "mine" (the name used in
// the output), Arguments {"limit": Literal{1}}, and a sub-SelectionSet {id}.
type Selection struct {
	Name         string
	Alias        string
	Arguments    map[string]Value
	SelectionSet *SelectionSet
}

// ResponseKey is the key this selection occupies in the result object:
// the alias if one was given, otherwise the field name.
func (s *Selection) ResponseKey() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// Fragment is an inline, type-conditioned selection set: "... on On { ... }".
// Named fragment spreads are normalized into Fragment values when a
// document is parsed (see sdl/sdl.go's convertSelectionSet), so SelectionSet never
// needs to carry separate named-fragment-spread nodes.
type Fragment struct {
	On           string
	SelectionSet *SelectionSet
}

// SelectionSet is a GraphQL selection set: a list of fields plus a list of
// type-conditioned inline fragments. Selections and Fragments are kept
// separate (rather than interleaved in document order) because that's
// what every rewrite pass in package stitch needs to reason about: "what
// fields are selected unconditionally" vs. "what's selected only if the
// concrete type matches".
type SelectionSet struct {
	Selections []*Selection
	Fragments  []*Fragment
}

// ShallowCopy returns a SelectionSet with freshly allocated Selections and
// Fragments slices (but shared element pointers), so callers can append
// without mutating the original.
func (s *SelectionSet) ShallowCopy() *SelectionSet {
	if s == nil {
		return nil
	}
	cp := &SelectionSet{}
	if s.Selections != nil {
		cp.Selections = append([]*Selection{}, s.Selections...)
	}
	if s.Fragments != nil {
		cp.Fragments = append([]*Fragment{}, s.Fragments...)
	}
	return cp
}

// IsEmpty reports whether the selection set selects nothing at all.
func (s *SelectionSet) IsEmpty() bool {
	return s == nil || (len(s.Selections) == 0 && len(s.Fragments) == 0)
}

// VariableDefinition is one "$name: Type = default" declaration on an
// operation.
type VariableDefinition struct {
	Name         string
	Type         Type
	DefaultValue Value
}

// Operation is a standalone query or mutation document: exactly the shape
// the delegation engine synthesizes and hands to a host engine's Execute.
type Operation struct {
	Type                OperationType
	Name                string
	VariableDefinitions []*VariableDefinition
	SelectionSet        *SelectionSet
}
