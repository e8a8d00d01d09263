// Package graphql provides the host execution engine that the stitching
// engine (package stitch) treats as a black box: a type system, a
// selection-set AST, and an executor that walks a query against a root
// value. It plays the same role here that samsarahq/thunder's graphql
// package plays for thunder's own schemabuilder-generated schemas.
package graphql

import (
	"context"
	"fmt"
)

// Type represents a GraphQL type. Every concrete type below is either a
// leaf (Scalar, Enum), a wrapper (List, NonNull), or a composite type
// (Object, Interface, Union).
type Type interface {
	String() string

	// isType is a no-op used to tag the known implementations of Type so
	// that arbitrary values can't satisfy the interface by accident.
	isType()
}

// Scalar is a leaf value passed through to the response unchanged.
type Scalar struct {
	Name string
}

func (s *Scalar) isType()        {}
func (s *Scalar) String() string { return s.Name }

// Enum is a leaf value with a fixed set of named members.
type Enum struct {
	Name   string
	Values map[string]interface{}
	// ReverseMap is used to translate an upstream-resolved value back to
	// its member name when the merged schema owns the enum identity.
	ReverseMap map[interface{}]string
}

func (e *Enum) isType()        {}
func (e *Enum) String() string { return e.Name }

// Field describes one field of an Object or Interface.
//
// A Field is responsible for computing its own value: Resolve receives the
// already-resolved parent value, the field's coerced arguments, and the
// requested sub-selection, and returns the value for this field (or an
// error). The stitching engine installs different kinds of Resolve
// functions depending on a field's resolution strategy (see
// stitch.StrategyKind); plain fields default to reading the value straight off
// the parent.
type Field struct {
	Name string

	// Args declares the field's argument signature: argument name to
	// declared type. The executor does not check incoming arguments
	// against it; the delegation engine uses it to type freshly
	// synthesized variables.
	Args map[string]Type

	// Type is the field's declared result type.
	Type Type

	Resolve func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *SelectionSet) (interface{}, error)
}

// Object is a composite type with a known, fixed set of fields.
type Object struct {
	Name       string
	Fields     map[string]*Field
	Interfaces []string
}

func (o *Object) isType()        {}
func (o *Object) String() string { return o.Name }

// Interface is a composite abstract type: a field typed as an Interface
// may resolve to any Object implementing it. ResolveType identifies the
// concrete Object for a given source value.
type Interface struct {
	Name         string
	Fields       map[string]*Field
	PossibleTypes map[string]*Object
	ResolveType  func(ctx context.Context, source interface{}) (string, error)
}

func (i *Interface) isType()        {}
func (i *Interface) String() string { return i.Name }

// Union is a composite abstract type with no fields of its own: a value
// must belong to one of Types.
type Union struct {
	Name        string
	Types       map[string]*Object
	ResolveType func(ctx context.Context, source interface{}) (string, error)
}

func (u *Union) isType()        {}
func (u *Union) String() string { return u.Name }

// List is a homogeneous collection of another type.
type List struct {
	Type Type
}

func (l *List) isType()        {}
func (l *List) String() string { return fmt.Sprintf("[%s]", l.Type) }

// NonNull marks a type as required; a nil value at this point is a
// coercion error rather than a null result.
type NonNull struct {
	Type Type
}

func (n *NonNull) isType()        {}
func (n *NonNull) String() string { return fmt.Sprintf("%s!", n.Type) }

// Verify every concrete type satisfies Type.
var (
	_ Type = &Scalar{}
	_ Type = &Enum{}
	_ Type = &Object{}
	_ Type = &Interface{}
	_ Type = &Union{}
	_ Type = &List{}
	_ Type = &NonNull{}
)

// Unwrap strips NonNull and List wrappers to reach the underlying named
// type. It's used wherever code needs to know "what composite or leaf
// type is this field ultimately, ignoring list/required modifiers".
func Unwrap(t Type) Type {
	for {
		switch inner := t.(type) {
		case *NonNull:
			t = inner.Type
		case *List:
			t = inner.Type
		default:
			return t
		}
	}
}

// Schema is an executable type system: a Query root and an optional
// Mutation root.
type Schema struct {
	Query    *Object
	Mutation *Object
}

// RootObject returns the root object for the given operation kind.
func (s *Schema) RootObject(op OperationType) (*Object, error) {
	switch op {
	case OperationQuery:
		if s.Query == nil {
			return nil, fmt.Errorf("schema has no query root")
		}
		return s.Query, nil
	case OperationMutation:
		if s.Mutation == nil {
			return nil, fmt.Errorf("schema has no mutation root")
		}
		return s.Mutation, nil
	default:
		return nil, fmt.Errorf("unknown operation type %q", op)
	}
}
