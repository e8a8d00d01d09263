package stitch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/justinanastos/graphql-tools/graphql"
)

// Fetcher is the pluggable seam for a remotely-callable upstream schema
// (spec §6 "Upstream schema contract"): it takes a synthesized document
// and variables and returns the same shape a local Execute would. This
// package never implements network transport itself — that's an external
// collaborator per spec §1.
type Fetcher func(ctx context.Context, document string, variables map[string]interface{}) *graphql.Response

// printOperation renders a synthesized Operation back to GraphQL query
// text for a Fetcher to send over the wire (spec §9 "Remote schemas ...
// synthesize root resolvers that call the fetcher").
func printOperation(op *graphql.Operation) string {
	var b strings.Builder
	b.WriteString(string(op.Type))
	if len(op.VariableDefinitions) > 0 {
		b.WriteString("(")
		for i, vd := range op.VariableDefinitions {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("$" + vd.Name)
			if vd.Type != nil {
				b.WriteString(": " + vd.Type.String())
			}
		}
		b.WriteString(")")
	}
	b.WriteString(" ")
	printSelectionSet(&b, op.SelectionSet)
	return b.String()
}

func printSelectionSet(b *strings.Builder, ss *graphql.SelectionSet) {
	b.WriteString("{ ")
	for _, sel := range ss.Selections {
		if sel.Alias != "" && sel.Alias != sel.Name {
			b.WriteString(sel.Alias + ": ")
		}
		b.WriteString(sel.Name)
		if len(sel.Arguments) > 0 {
			b.WriteString("(")
			i := 0
			for name, v := range sel.Arguments {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s: %s", name, printValue(v)))
				i++
			}
			b.WriteString(")")
		}
		if sel.SelectionSet != nil && !sel.SelectionSet.IsEmpty() {
			b.WriteString(" ")
			printSelectionSet(b, sel.SelectionSet)
		}
		b.WriteString(" ")
	}
	for _, frag := range ss.Fragments {
		b.WriteString("... on " + frag.On + " ")
		printSelectionSet(b, frag.SelectionSet)
		b.WriteString(" ")
	}
	b.WriteString("}")
}

func printValue(v graphql.Value) string {
	switch v := v.(type) {
	case graphql.VariableRef:
		return "$" + v.Name
	case graphql.Literal:
		return printLiteralValue(v.Value)
	default:
		return "null"
	}
}

// printLiteralValue renders a Literal's inner Go value (a string, number,
// bool, nil, or — per graphql.Resolve's documented shapes — a nested
// []graphql.Value/map[string]graphql.Value) as GraphQL value syntax.
// Strings need quoting: printed bare via %v they'd produce an unquoted
// bareword, an invalid document for any literal argument that survives
// rewriteForType into a remote delegation.
func printLiteralValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case []graphql.Value:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = printValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]graphql.Value:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, printValue(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}
