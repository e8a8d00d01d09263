package stitch

import (
	"context"
	"fmt"

	"github.com/samsarahq/go/oops"

	"github.com/justinanastos/graphql-tools/graphql"
	"github.com/justinanastos/graphql-tools/logger"
	"github.com/justinanastos/graphql-tools/opentracingkit"
)

type variablesCtxKeyType struct{}

var variablesCtxKey = variablesCtxKeyType{}

// withRequestVariables makes the incoming operation's variables available
// to every delegate() call made while resolving it, however deep in the
// tree — needed for step 6 of spec §4.4's rewrite algorithm, which
// projects a subset of the *original* operation's variables.
func withRequestVariables(ctx context.Context, variables map[string]interface{}) context.Context {
	return context.WithValue(ctx, variablesCtxKey, variables)
}

func requestVariables(ctx context.Context) map[string]interface{} {
	v, _ := ctx.Value(variablesCtxKey).(map[string]interface{})
	return v
}

type variableTypesCtxKeyType struct{}

var variableTypesCtxKey = variableTypesCtxKeyType{}

// withRequestVariableTypes makes the incoming operation's declared
// variable types available alongside their values (withRequestVariables),
// so a caller variable re-threaded through delegate() keeps its real type
// instead of going out as an untyped "$name" — which printOperation would
// otherwise emit with no type declaration, an invalid document for a
// remote Fetcher.
func withRequestVariableTypes(ctx context.Context, defs []*graphql.VariableDefinition) context.Context {
	types := make(map[string]graphql.Type, len(defs))
	for _, vd := range defs {
		types[vd.Name] = vd.Type
	}
	return context.WithValue(ctx, variableTypesCtxKey, types)
}

func requestVariableType(ctx context.Context, name string) graphql.Type {
	types, _ := ctx.Value(variableTypesCtxKey).(map[string]graphql.Type)
	return types[name]
}

// upstream is one recorded contributing schema as the Delegation Engine
// sees it: either locally executable or remote via a Fetcher (spec §6).
type upstream struct {
	name   string
	schema *graphql.Schema
	fetch  Fetcher
}

func (u *upstream) rootObject(opType graphql.OperationType) (*graphql.Object, error) {
	root, err := u.schema.RootObject(opType)
	if err != nil {
		return nil, &DelegationTargetMissingError{TargetSchema: u.name, RootField: string(opType)}
	}
	return root, nil
}

func (u *upstream) execute(ctx context.Context, op *graphql.Operation, variables map[string]interface{}) *graphql.Response {
	if u.fetch != nil {
		return u.fetch(ctx, printOperation(op), variables)
	}
	return graphql.Execute(ctx, u.schema, op, variables, nil)
}

// engine is the Delegation Engine (spec §2.4, §4.4): it owns read-only
// references to every upstream and the merged type catalog, and exposes
// delegate as the one runtime primitive link resolvers and root-field
// resolvers call to cross a schema boundary. It holds no mutable state
// that outlives a single delegate() call (spec §5).
type engine struct {
	upstreams map[string]*upstream
	catalog   *typeCatalog
	log       logger.Logger
}

// delegate implements spec §4.4: synthesize a standalone operation
// targeting targetRootField's owning schema from the caller's
// selectionSet, execute it, and return the value at
// data[targetRootField].
func (e *engine) delegate(ctx context.Context, opType graphql.OperationType, targetRootField string, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
	originSchema, ok := e.catalog.rootFieldOrigin(opType, targetRootField)
	if !ok {
		return nil, &DelegationTargetMissingError{TargetSchema: "<merged>", RootField: targetRootField}
	}

	up, ok := e.upstreams[originSchema]
	if !ok {
		return nil, &DelegationTargetMissingError{TargetSchema: originSchema, RootField: targetRootField}
	}
	root, err := up.rootObject(opType)
	if err != nil {
		return nil, err
	}
	originField, ok := root.Fields[targetRootField]
	if !ok {
		return nil, &DelegationTargetMissingError{TargetSchema: up.name, RootField: targetRootField}
	}

	span, ctx := opentracingkit.MaybeStartSpanFromContext(ctx, "stitch.delegate")
	span.SetTag("stitch.target_schema", up.name)
	span.SetTag("stitch.root_field", targetRootField)
	defer span.Finish()

	retTypeName := graphql.Unwrap(originField.Type).String()
	rewritten := rewriteForType(selectionSet, retTypeName, e.catalog)

	usedVarNames := map[string]bool{}
	collectUsedVariableNames(rewritten, usedVarNames)
	originalVars := requestVariables(ctx)

	var varDefs []*graphql.VariableDefinition
	freshArgs := map[string]graphql.Value{}
	payload := map[string]interface{}{}

	i := 0
	for name, argType := range originField.Args {
		value, provided := args[name]
		if !provided {
			continue
		}
		varName := fmt.Sprintf("a%d", i)
		i++
		varDefs = append(varDefs, &graphql.VariableDefinition{Name: varName, Type: argType})
		freshArgs[name] = graphql.VariableRef{Name: varName}
		payload[varName] = value
	}

	for name := range usedVarNames {
		value, ok := originalVars[name]
		if !ok {
			opentracingkit.LogError(span, oops.Errorf("missing variable %q", name))
			return nil, &VariableCoercionError{Variable: name, TargetSchema: up.name}
		}
		payload[name] = value
		varDefs = append(varDefs, &graphql.VariableDefinition{Name: name, Type: requestVariableType(ctx, name)})
	}

	op := &graphql.Operation{
		Type:                opType,
		VariableDefinitions: varDefs,
		SelectionSet: &graphql.SelectionSet{
			Selections: []*graphql.Selection{
				{Name: targetRootField, Arguments: freshArgs, SelectionSet: rewritten},
			},
		},
	}

	resp := up.execute(ctx, op, payload)

	var value interface{}
	if m, ok := resp.Data.(map[string]interface{}); ok {
		value = m[targetRootField]
	}

	if len(resp.Errors) > 0 {
		for _, respErr := range resp.Errors {
			e.log.Warn("stitch: upstream execution error", "schema", up.name, "field", targetRootField, "error", respErr.Error())
		}
		opentracingkit.LogError(span, resp.Errors[0])
		return value, &UpstreamExecutionError{TargetSchema: up.name, Cause: resp.Errors[0]}
	}

	return value, nil
}
