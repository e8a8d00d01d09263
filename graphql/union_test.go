package graphql_test

import (
	"context"
	"testing"

	"github.com/justinanastos/graphql-tools/graphql"
	"github.com/stretchr/testify/require"
)

type vehicle struct {
	Name  string
	Speed int64
}

type asset struct {
	Name         string
	BatteryLevel int64
}

func vehicleType() *graphql.Object {
	return &graphql.Object{
		Name: "Vehicle",
		Fields: map[string]*graphql.Field{
			"name":  identityField("name", &graphql.Scalar{Name: "String"}),
			"speed": identityField("speed", &graphql.Scalar{Name: "Int"}),
		},
	}
}

func assetType() *graphql.Object {
	return &graphql.Object{
		Name: "Asset",
		Fields: map[string]*graphql.Field{
			"name":         identityField("name", &graphql.Scalar{Name: "String"}),
			"batteryLevel": identityField("batteryLevel", &graphql.Scalar{Name: "Int"}),
		},
	}
}

func identityField(name string, typ graphql.Type) *graphql.Field {
	return &graphql.Field{
		Name: name,
		Type: typ,
		Resolve: func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
			switch s := source.(type) {
			case vehicle:
				if name == "name" {
					return s.Name, nil
				}
				return s.Speed, nil
			case asset:
				if name == "name" {
					return s.Name, nil
				}
				return s.BatteryLevel, nil
			default:
				return nil, nil
			}
		},
	}
}

func gatewayUnion() *graphql.Union {
	return &graphql.Union{
		Name: "Gateway",
		Types: map[string]*graphql.Object{
			"Vehicle": vehicleType(),
			"Asset":   assetType(),
		},
		ResolveType: func(ctx context.Context, source interface{}) (string, error) {
			switch source.(type) {
			case vehicle:
				return "Vehicle", nil
			case asset:
				return "Asset", nil
			default:
				return "", graphql.NewSafeError("gateway: unresolvable concrete type %T", source)
			}
		},
	}
}

func runSingleFieldQuery(t *testing.T, fieldName string, fieldType graphql.Type, resolve func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error), selectionSet *graphql.SelectionSet) *graphql.Response {
	t.Helper()
	query := &graphql.Object{
		Name: "Query",
		Fields: map[string]*graphql.Field{
			fieldName: {Name: fieldName, Type: fieldType, Resolve: resolve},
		},
	}
	schema := &graphql.Schema{Query: query}
	op := &graphql.Operation{
		Type: graphql.OperationQuery,
		SelectionSet: &graphql.SelectionSet{
			Selections: []*graphql.Selection{
				{Name: fieldName, SelectionSet: selectionSet},
			},
		},
	}
	return graphql.Execute(context.Background(), schema, op, nil, nil)
}

func TestUnionTypeResolvesByConcreteType(t *testing.T) {
	resp := runSingleFieldQuery(t, "gateway", gatewayUnion(),
		func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
			return asset{Name: "b", BatteryLevel: 5}, nil
		},
		&graphql.SelectionSet{
			Selections: []*graphql.Selection{{Name: "__typename"}},
			Fragments: []*graphql.Fragment{
				{On: "Asset", SelectionSet: &graphql.SelectionSet{Selections: []*graphql.Selection{
					{Name: "name"}, {Name: "batteryLevel"},
				}}},
				{On: "Vehicle", SelectionSet: &graphql.SelectionSet{Selections: []*graphql.Selection{
					{Name: "name"}, {Name: "speed"},
				}}},
			},
		},
	)
	require.Empty(t, resp.Errors)
	require.Equal(t, map[string]interface{}{
		"gateway": map[string]interface{}{
			"name": "b", "batteryLevel": int64(5), "__typename": "Asset",
		},
	}, resp.Data)
}

func TestUnionTypeUnresolvableReportsFieldError(t *testing.T) {
	resp := runSingleFieldQuery(t, "gateway", gatewayUnion(),
		func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
			return 5, nil
		},
		&graphql.SelectionSet{Fragments: []*graphql.Fragment{
			{On: "Asset", SelectionSet: &graphql.SelectionSet{}},
		}},
	)
	require.NotEmpty(t, resp.Errors)
}

func TestUnionList(t *testing.T) {
	resp := runSingleFieldQuery(t, "items", &graphql.List{Type: gatewayUnion()},
		func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
			return []interface{}{
				asset{Name: "b", BatteryLevel: 5},
				vehicle{Name: "a", Speed: 50},
			}, nil
		},
		&graphql.SelectionSet{
			Fragments: []*graphql.Fragment{
				{On: "Asset", SelectionSet: &graphql.SelectionSet{Selections: []*graphql.Selection{{Name: "name"}, {Name: "batteryLevel"}}}},
				{On: "Vehicle", SelectionSet: &graphql.SelectionSet{Selections: []*graphql.Selection{{Name: "name"}, {Name: "speed"}}}},
			},
		},
	)
	require.Empty(t, resp.Errors)
	require.Equal(t, map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"name": "b", "batteryLevel": int64(5)},
			map[string]interface{}{"name": "a", "speed": int64(50)},
		},
	}, resp.Data)
}

func TestInterfaceTypeResolvesByConcreteType(t *testing.T) {
	iface := &graphql.Interface{
		Name: "Gateway",
		PossibleTypes: map[string]*graphql.Object{
			"Vehicle": vehicleType(),
			"Asset":   assetType(),
		},
		ResolveType: gatewayUnion().ResolveType,
	}
	resp := runSingleFieldQuery(t, "gateway", iface,
		func(ctx context.Context, source interface{}, args map[string]interface{}, selectionSet *graphql.SelectionSet) (interface{}, error) {
			return vehicle{Name: "a", Speed: 50}, nil
		},
		&graphql.SelectionSet{Fragments: []*graphql.Fragment{
			{On: "Vehicle", SelectionSet: &graphql.SelectionSet{Selections: []*graphql.Selection{{Name: "name"}, {Name: "speed"}}}},
		}},
	)
	require.Empty(t, resp.Errors)
	require.Equal(t, map[string]interface{}{
		"gateway": map[string]interface{}{"name": "a", "speed": int64(50)},
	}, resp.Data)
}
