package graphql

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Response is the result of executing an Operation: the data it produced
// (possibly partial, with nulls where a field errored) plus the field
// errors encountered along the way.
type Response struct {
	Data   interface{}
	Errors []error
}

// Execute runs operation against schema starting from root, resolving
// fields depth-first with sibling fields of an object fanned out
// concurrently.
//
// This is the host execution engine spec §1 treats as a black box:
// package stitch never reaches into it beyond calling Execute and reading
// back a Response.
func Execute(ctx context.Context, schema *Schema, operation *Operation, variables map[string]interface{}, root interface{}) *Response {
	rootType, err := schema.RootObject(operation.Type)
	if err != nil {
		return &Response{Errors: []error{err}}
	}

	e := &executor{variables: variables}
	data, err := e.executeObject(ctx, rootType, root, operation.SelectionSet)

	resp := &Response{Data: data}
	if err != nil {
		resp.Errors = append(resp.Errors, err)
	}
	resp.Errors = append(resp.Errors, e.errors...)
	return resp
}

type executor struct {
	variables map[string]interface{}

	mu     sync.Mutex
	errors []error
}

func (e *executor) recordError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = append(e.errors, err)
}

func safeResolve(ctx context.Context, field *Field, source interface{}, args map[string]interface{}, selectionSet *SelectionSet) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			buf = buf[:runtime.Stack(buf, false)]
			err = fmt.Errorf("graphql: panic resolving field %q: %v\n%s\n%s", field.Name, r, buf, debug.Stack())
			result = nil
		}
	}()
	return field.Resolve(ctx, source, args, selectionSet)
}

// flatten merges an object's directly-selected fields with the fields of
// every fragment whose type condition applies to typeName, producing the
// ordered list of selections an executor must resolve for a value of that
// concrete type.
func flatten(selectionSet *SelectionSet, typeName string) []*Selection {
	out := append([]*Selection{}, selectionSet.Selections...)
	for _, fragment := range selectionSet.Fragments {
		if fragment.On == typeName {
			out = append(out, flatten(fragment.SelectionSet, typeName)...)
		}
	}
	return out
}

func (e *executor) executeObject(ctx context.Context, typ *Object, source interface{}, selectionSet *SelectionSet) (interface{}, error) {
	if source == nil {
		return nil, nil
	}

	selections := flatten(selectionSet, typ.Name)
	values := make([]interface{}, len(selections))

	group, gctx := errgroup.WithContext(ctx)
	for i, selection := range selections {
		i, selection := i, selection
		if selection.Name == "__typename" {
			values[i] = typ.Name
			continue
		}
		field, ok := typ.Fields[selection.Name]
		if !ok {
			return nil, NewClientError("type %q has no field %q", typ.Name, selection.Name)
		}
		group.Go(func() error {
			args, err := ResolveArguments(selection.Arguments, e.variables)
			if err != nil {
				e.recordError(nestPathError(selection.ResponseKey(), NewClientError("coercing arguments for %q: %s", selection.Name, err)))
				return nil
			}
			resolved, err := safeResolve(gctx, field, source, args, selection.SelectionSet)
			if err != nil {
				e.recordError(nestPathError(selection.ResponseKey(), err))
				return nil
			}
			value, err := e.execute(gctx, field.Type, resolved, selection.SelectionSet)
			if err != nil {
				e.recordError(nestPathError(selection.ResponseKey(), err))
				return nil
			}
			values[i] = value
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, len(selections))
	for i, selection := range selections {
		fields[selection.ResponseKey()] = values[i]
	}
	return fields, nil
}

// narrowToType returns the selections and fragments of ss that apply to a
// concrete typeName: unconditional selections other than __typename (which
// executeAbstract adds back itself) plus the contents of any fragment whose
// condition is exactly typeName. No possible-types expansion is done: a
// fragment conditioned on an abstract type name is not applied.
func narrowToType(ss *SelectionSet, typeName string) *SelectionSet {
	out := &SelectionSet{}
	for _, s := range ss.Selections {
		if s.Name != "__typename" {
			out.Selections = append(out.Selections, s)
		}
	}
	for _, f := range ss.Fragments {
		if f.On == typeName {
			out.Selections = append(out.Selections, f.SelectionSet.Selections...)
			out.Fragments = append(out.Fragments, f.SelectionSet.Fragments...)
		}
	}
	return out
}

func (e *executor) executeAbstract(ctx context.Context, possible map[string]*Object, resolveType func(context.Context, interface{}) (string, error), source interface{}, selectionSet *SelectionSet) (interface{}, error) {
	typeName, err := resolveType(ctx, source)
	if err != nil {
		return nil, err
	}
	concrete, ok := possible[typeName]
	if !ok {
		return nil, NewSafeError("resolveType returned unknown type %q", typeName)
	}

	wantsTypename := false
	for _, s := range selectionSet.Selections {
		if s.Name == "__typename" {
			wantsTypename = true
		}
	}

	value, err := e.executeObject(ctx, concrete, source, narrowToType(selectionSet, typeName))
	if err != nil {
		return nil, err
	}
	if wantsTypename {
		if fields, ok := value.(map[string]interface{}); ok {
			fields["__typename"] = typeName
		}
	}
	return value, nil
}

func (e *executor) executeList(ctx context.Context, typ *List, source interface{}, selectionSet *SelectionSet) (interface{}, error) {
	items, ok := source.([]interface{})
	if !ok {
		return nil, NewSafeError("expected a list, got %T", source)
	}

	out := make([]interface{}, len(items))
	group, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		group.Go(func() error {
			resolved, err := e.execute(gctx, typ.Type, item, selectionSet)
			if err != nil {
				return nestPathError(fmt.Sprint(i), err)
			}
			out[i] = resolved
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *executor) execute(ctx context.Context, typ Type, source interface{}, selectionSet *SelectionSet) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch typ := typ.(type) {
	case *Scalar:
		return source, nil
	case *Enum:
		if source == nil {
			return nil, nil
		}
		name, ok := typ.ReverseMap[source]
		if !ok {
			return nil, NewSafeError("value %v is not a member of enum %q", source, typ.Name)
		}
		return name, nil
	case *Object:
		return e.executeObject(ctx, typ, source, selectionSet)
	case *Interface:
		if source == nil {
			return nil, nil
		}
		return e.executeAbstract(ctx, typ.PossibleTypes, typ.ResolveType, source, selectionSet)
	case *Union:
		if source == nil {
			return nil, nil
		}
		return e.executeAbstract(ctx, typ.Types, typ.ResolveType, source, selectionSet)
	case *List:
		if source == nil {
			return nil, nil
		}
		return e.executeList(ctx, typ, source, selectionSet)
	case *NonNull:
		value, err := e.execute(ctx, typ.Type, source, selectionSet)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, NewSafeError("non-null field resolved to null")
		}
		return value, nil
	default:
		return nil, fmt.Errorf("graphql: unknown type %T", typ)
	}
}
