// Package sdl is the one external collaborator the stitching engine
// assumes but doesn't own (spec §1/§6): it turns SDL contribution
// strings and fragment-annotation strings into the stitching engine's own
// neutral, name-indexed shapes, using github.com/vektah/gqlparser/v2 to do
// the actual lexing/parsing.
//
// Everything here is engine-agnostic: TypeRef and FieldDef name other
// types by string rather than holding graphql.Type pointers directly,
// because a contribution can reference a type defined by a later
// contribution (or never locally defined, only through extend). Binding
// those names into a live graphql.Type arena is package stitch's job
// (merge.go), not this package's.
package sdl

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/justinanastos/graphql-tools/graphql"
)

// Kind identifies the GraphQL type-system kind of a TypeDef.
type Kind string

const (
	KindObject    Kind = "OBJECT"
	KindInterface Kind = "INTERFACE"
	KindUnion     Kind = "UNION"
	KindEnum      Kind = "ENUM"
	KindScalar    Kind = "SCALAR"
)

// TypeRef is a type reference as written in SDL: a named type optionally
// wrapped in List/NonNull modifiers. It mirrors gqlparser's ast.Type
// one-for-one so the conversion below is a direct copy.
type TypeRef struct {
	Name    string
	List    *TypeRef
	NonNull bool
}

func (r TypeRef) String() string {
	if r.List != nil {
		if r.NonNull {
			return fmt.Sprintf("[%s]!", r.List)
		}
		return fmt.Sprintf("[%s]", r.List)
	}
	if r.NonNull {
		return r.Name + "!"
	}
	return r.Name
}

// ArgDef is one declared argument of a FieldDef.
type ArgDef struct {
	Name string
	Type TypeRef
}

// FieldDef is one declared field of an object or interface contribution.
type FieldDef struct {
	Name string
	Args []ArgDef
	Type TypeRef
}

// TypeDef is one type declaration (or extension) contributed by a schema.
type TypeDef struct {
	Kind Kind
	Name string

	Fields        []FieldDef        // OBJECT, INTERFACE
	Interfaces    []string          // OBJECT: interfaces it implements
	PossibleTypes []string          // UNION: member type names
	EnumValues    []string          // ENUM

	// IsExtension marks a `extend type Name { ... }` declaration: its
	// fields are additive to a type defined (locally or elsewhere) under
	// the same name, and per spec §4.2 every field it introduces needs a
	// link resolver bound before the merged schema is usable.
	IsExtension bool
}

// SchemaContribution is one schema's SDL parsed into the stitching
// engine's neutral shape: every type it declares or extends, plus which
// of its object types serve as the query/mutation roots.
type SchemaContribution struct {
	Name         string
	Types        []TypeDef
	QueryType    string
	MutationType string
}

// ParseSDL parses one schema's SDL contribution (spec §4.1(b)): ordinary
// type declarations plus `extend type` declarations. name labels the
// contribution for error messages (normally the upstream schema's own
// name) and is not itself part of the GraphQL grammar.
func ParseSDL(name, source string) (*SchemaContribution, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, fmt.Errorf("sdl: parsing schema %q: %w", name, err)
	}

	contribution := &SchemaContribution{Name: name, QueryType: "Query", MutationType: "Mutation"}

	if doc.Schema != nil {
		for _, def := range doc.Schema {
			if def.Query != "" {
				contribution.QueryType = def.Query
			}
			if def.Mutation != "" {
				contribution.MutationType = def.Mutation
			}
		}
	}

	for _, def := range doc.Definitions {
		contribution.Types = append(contribution.Types, convertDefinition(def, false))
	}
	for _, def := range doc.Extensions {
		contribution.Types = append(contribution.Types, convertDefinition(def, true))
	}

	return contribution, nil
}

func convertDefinition(def *ast.Definition, isExtension bool) TypeDef {
	td := TypeDef{Name: def.Name, IsExtension: isExtension}

	switch def.Kind {
	case ast.Object:
		td.Kind = KindObject
		td.Interfaces = append([]string{}, def.Interfaces...)
	case ast.Interface:
		td.Kind = KindInterface
	case ast.Union:
		td.Kind = KindUnion
		td.PossibleTypes = append([]string{}, def.Types...)
	case ast.Enum:
		td.Kind = KindEnum
		for _, v := range def.EnumValues {
			td.EnumValues = append(td.EnumValues, v.Name)
		}
	case ast.Scalar:
		td.Kind = KindScalar
	default:
		td.Kind = Kind(def.Kind)
	}

	for _, f := range def.Fields {
		fd := FieldDef{Name: f.Name, Type: convertType(f.Type)}
		for _, a := range f.Arguments {
			fd.Args = append(fd.Args, ArgDef{Name: a.Name, Type: convertType(a.Type)})
		}
		td.Fields = append(td.Fields, fd)
	}

	return td
}

func convertType(t *ast.Type) TypeRef {
	if t == nil {
		return TypeRef{}
	}
	if t.NamedType != "" {
		return TypeRef{Name: t.NamedType, NonNull: t.NonNull}
	}
	elem := convertType(t.Elem)
	return TypeRef{List: &elem, NonNull: t.NonNull}
}

// ParseFragmentAnnotation parses the string-form fragment annotation on a
// link resolver spec (spec §4.3), e.g. `"{ propertyId }"`, into the
// stitching engine's own SelectionSet shape: the required-field
// projection the Delegation Engine must preserve when pruning a parent
// object's selection.
//
// Annotations are static field projections, never wired to a live
// operation's variables, so any variable reference inside one is itself a
// configuration error.
func ParseFragmentAnnotation(source string) (*graphql.SelectionSet, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: "query { ... " + wrapFragmentName + " } fragment " + wrapFragmentName + " on __Annotation " + source})
	if err != nil {
		return nil, fmt.Errorf("sdl: parsing fragment annotation %q: %w", source, err)
	}
	frag := doc.Fragments.ForName(wrapFragmentName)
	if frag == nil {
		return nil, fmt.Errorf("sdl: fragment annotation %q did not parse to a fragment body", source)
	}
	return convertSelectionSet(frag.SelectionSet, doc.Fragments)
}

const wrapFragmentName = "__annotation"

func convertSelectionSet(ss ast.SelectionSet, fragments ast.FragmentDefinitionList) (*graphql.SelectionSet, error) {
	out := &graphql.SelectionSet{}
	for _, sel := range ss {
		switch sel := sel.(type) {
		case *ast.Field:
			converted, err := convertField(sel, fragments)
			if err != nil {
				return nil, err
			}
			out.Selections = append(out.Selections, converted)
		case *ast.InlineFragment:
			sub, err := convertSelectionSet(sel.SelectionSet, fragments)
			if err != nil {
				return nil, err
			}
			out.Fragments = append(out.Fragments, &graphql.Fragment{On: sel.TypeCondition, SelectionSet: sub})
		case *ast.FragmentSpread:
			def := fragments.ForName(sel.Name)
			if def == nil {
				return nil, fmt.Errorf("sdl: reference to undefined fragment %q", sel.Name)
			}
			sub, err := convertSelectionSet(def.SelectionSet, fragments)
			if err != nil {
				return nil, err
			}
			out.Fragments = append(out.Fragments, &graphql.Fragment{On: def.TypeCondition, SelectionSet: sub})
		default:
			return nil, fmt.Errorf("sdl: unknown selection node %T", sel)
		}
	}
	return out, nil
}

func convertField(f *ast.Field, fragments ast.FragmentDefinitionList) (*graphql.Selection, error) {
	sel := &graphql.Selection{Name: f.Name, Alias: f.Alias}
	if len(f.Arguments) > 0 {
		sel.Arguments = make(map[string]graphql.Value, len(f.Arguments))
		for _, arg := range f.Arguments {
			value, err := convertValue(arg.Value)
			if err != nil {
				return nil, fmt.Errorf("sdl: argument %q: %w", arg.Name, err)
			}
			sel.Arguments[arg.Name] = value
		}
	}
	if len(f.SelectionSet) > 0 {
		sub, err := convertSelectionSet(f.SelectionSet, fragments)
		if err != nil {
			return nil, err
		}
		sel.SelectionSet = sub
	}
	return sel, nil
}

func convertValue(v *ast.Value) (graphql.Value, error) {
	if v == nil {
		return graphql.Literal{Value: nil}, nil
	}
	switch v.Kind {
	case ast.Variable:
		return nil, fmt.Errorf("sdl: variable $%s is not allowed in a fragment annotation", v.Raw)
	case ast.IntValue, ast.FloatValue, ast.StringValue, ast.BlockValue, ast.BooleanValue, ast.EnumValue:
		value, err := v.Value(nil)
		if err != nil {
			return nil, err
		}
		return graphql.Literal{Value: value}, nil
	case ast.NullValue:
		return graphql.Literal{Value: nil}, nil
	case ast.ListValue:
		items := make([]graphql.Value, len(v.Children))
		for i, c := range v.Children {
			item, err := convertValue(c.Value)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return graphql.Literal{Value: items}, nil
	case ast.ObjectValue:
		fields := make(map[string]graphql.Value, len(v.Children))
		for _, c := range v.Children {
			field, err := convertValue(c.Value)
			if err != nil {
				return nil, err
			}
			fields[c.Name] = field
		}
		return graphql.Literal{Value: fields}, nil
	default:
		return nil, fmt.Errorf("sdl: unknown value kind %v", v.Kind)
	}
}
