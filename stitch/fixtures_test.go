package stitch_test

import (
	"context"
	"fmt"

	"github.com/justinanastos/graphql-tools/graphql"
)

// These fixtures realize the property/booking/directory domain from the
// literal end-to-end scenarios: a property-listing schema, a booking
// schema, and a customer-directory schema exposing an abstract Customer
// type. Every object's resolved value is a plain map[string]interface{}
// so a field's Resolve can just read its own key off the parent.

func mapField(name string, typ graphql.Type) *graphql.Field {
	return &graphql.Field{
		Name: name,
		Type: typ,
		Resolve: func(ctx context.Context, source interface{}, args map[string]interface{}, ss *graphql.SelectionSet) (interface{}, error) {
			m, ok := source.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("fixture: %s: source is %T, not a map", name, source)
			}
			return m[name], nil
		},
	}
}

var (
	idType     = &graphql.NonNull{Type: &graphql.Scalar{Name: "ID"}}
	stringType = &graphql.NonNull{Type: &graphql.Scalar{Name: "String"}}
)

// --- property schema ---

var propertyData = map[string]map[string]interface{}{
	"p1": {"id": "p1", "name": "Prop One"},
	"p2": {"id": "p2", "name": "Prop Two"},
}

func propertyObjectType() *graphql.Object {
	return &graphql.Object{
		Name: "Property",
		Fields: map[string]*graphql.Field{
			"id":   mapField("id", idType),
			"name": mapField("name", stringType),
		},
	}
}

func buildPropertySchema() *graphql.Schema {
	property := propertyObjectType()
	query := &graphql.Object{
		Name: "Query",
		Fields: map[string]*graphql.Field{
			"propertyById": {
				Name: "propertyById",
				Args: map[string]graphql.Type{"id": idType},
				Type: property,
				Resolve: func(ctx context.Context, source interface{}, args map[string]interface{}, ss *graphql.SelectionSet) (interface{}, error) {
					return propertyData[args["id"].(string)], nil
				},
			},
		},
	}
	return &graphql.Schema{Query: query}
}

// --- booking schema ---

var customerRecords = map[string]map[string]interface{}{
	"cust-1": {"name": "Original Customer"},
	"cust-4": {"name": "Exampler Customer"},
}

var bookingStore = []map[string]interface{}{
	{"id": "b1", "propertyId": "p1", "customer": customerRecords["cust-1"], "startTime": "2026-01-01", "endTime": "2026-01-02"},
	{"id": "b4", "propertyId": "p2", "customer": customerRecords["cust-4"], "startTime": "2026-02-01", "endTime": "2026-02-03"},
}

func bookingObjectType() *graphql.Object {
	customer := &graphql.Object{
		Name: "Customer",
		Fields: map[string]*graphql.Field{
			"name": mapField("name", stringType),
		},
	}
	return &graphql.Object{
		Name: "Booking",
		Fields: map[string]*graphql.Field{
			"id":         mapField("id", idType),
			"propertyId": mapField("propertyId", idType),
			"startTime":  mapField("startTime", stringType),
			"endTime":    mapField("endTime", stringType),
			"customer":   mapField("customer", customer),
		},
	}
}

func findBooking(store []map[string]interface{}, id string) map[string]interface{} {
	for _, b := range store {
		if b["id"] == id {
			return b
		}
	}
	return nil
}

func buildBookingSchema() *graphql.Schema {
	booking := bookingObjectType()
	bookingInput := &graphql.Scalar{Name: "BookingInput"}

	// Each built schema gets its own copy of the seed bookings, so a booking
	// added through one schema's addBooking is not seen by schemas built
	// later in other tests.
	store := append([]map[string]interface{}{}, bookingStore...)

	query := &graphql.Object{
		Name: "Query",
		Fields: map[string]*graphql.Field{
			"bookingById": {
				Name: "bookingById",
				Args: map[string]graphql.Type{"id": idType},
				Type: booking,
				Resolve: func(ctx context.Context, source interface{}, args map[string]interface{}, ss *graphql.SelectionSet) (interface{}, error) {
					return findBooking(store, args["id"].(string)), nil
				},
			},
			"bookingsByProperty": {
				Name: "bookingsByProperty",
				Args: map[string]graphql.Type{"propertyId": idType, "limit": &graphql.Scalar{Name: "Int"}},
				Type: &graphql.List{Type: booking},
				Resolve: func(ctx context.Context, source interface{}, args map[string]interface{}, ss *graphql.SelectionSet) (interface{}, error) {
					var out []interface{}
					for _, b := range store {
						if b["propertyId"] == args["propertyId"] {
							out = append(out, b)
						}
					}
					if limit, ok := args["limit"].(int); ok && limit >= 0 && limit < len(out) {
						out = out[:limit]
					}
					return out, nil
				},
			},
		},
	}

	mutation := &graphql.Object{
		Name: "Mutation",
		Fields: map[string]*graphql.Field{
			"addBooking": {
				Name: "addBooking",
				Args: map[string]graphql.Type{"input": &graphql.NonNull{Type: bookingInput}},
				Type: booking,
				Resolve: func(ctx context.Context, source interface{}, args map[string]interface{}, ss *graphql.SelectionSet) (interface{}, error) {
					input := args["input"].(map[string]interface{})
					record := map[string]interface{}{
						"id":         input["id"],
						"propertyId": input["propertyId"],
						"customer":   customerRecords["cust-1"],
						"startTime":  input["startTime"],
						"endTime":    input["endTime"],
					}
					store = append(store, record)
					return record, nil
				},
			},
		},
	}

	return &graphql.Schema{Query: query, Mutation: mutation}
}

// --- directory schema: abstract Customer (Person|Organization), Person.vehicle (Bike|Car) ---

var directoryData = map[string]map[string]interface{}{
	"c1": {"kind": "Person", "name": "Jordan Rivera", "vehicle": map[string]interface{}{"kind": "Bike", "bikeType": "road"}},
}

func buildDirectorySchema() *graphql.Schema {
	bike := &graphql.Object{Name: "Bike", Fields: map[string]*graphql.Field{"bikeType": mapField("bikeType", stringType)}}
	car := &graphql.Object{Name: "Car", Fields: map[string]*graphql.Field{"licensePlate": mapField("licensePlate", stringType)}}

	vehicle := &graphql.Union{
		Name:  "Vehicle",
		Types: map[string]*graphql.Object{"Bike": bike, "Car": car},
		ResolveType: func(ctx context.Context, source interface{}) (string, error) {
			m := source.(map[string]interface{})
			return m["kind"].(string), nil
		},
	}

	person := &graphql.Object{
		Name: "Person",
		Fields: map[string]*graphql.Field{
			"name":    mapField("name", stringType),
			"vehicle": mapField("vehicle", vehicle),
		},
	}
	org := &graphql.Object{
		Name:   "Organization",
		Fields: map[string]*graphql.Field{"legalName": mapField("legalName", stringType)},
	}

	customer := &graphql.Union{
		Name:  "Customer",
		Types: map[string]*graphql.Object{"Person": person, "Organization": org},
		ResolveType: func(ctx context.Context, source interface{}) (string, error) {
			m := source.(map[string]interface{})
			return m["kind"].(string), nil
		},
	}

	query := &graphql.Object{
		Name: "Query",
		Fields: map[string]*graphql.Field{
			"customerById": {
				Name: "customerById",
				Args: map[string]graphql.Type{"id": idType},
				Type: customer,
				Resolve: func(ctx context.Context, source interface{}, args map[string]interface{}, ss *graphql.SelectionSet) (interface{}, error) {
					return directoryData[args["id"].(string)], nil
				},
			},
		},
	}
	return &graphql.Schema{Query: query}
}

func sel(name string, sub *graphql.SelectionSet) *graphql.Selection {
	return &graphql.Selection{Name: name, SelectionSet: sub}
}

func selArgs(name string, args map[string]graphql.Value, sub *graphql.SelectionSet) *graphql.Selection {
	return &graphql.Selection{Name: name, Arguments: args, SelectionSet: sub}
}

func ss(sels ...*graphql.Selection) *graphql.SelectionSet {
	return &graphql.SelectionSet{Selections: sels}
}
