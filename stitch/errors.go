package stitch

import "fmt"

// SDLParseError reports a malformed SDL contribution (spec §7), fatal at
// merge time.
type SDLParseError struct {
	ContributionIndex int
	ContributionName  string
	Cause             error
}

func (e *SDLParseError) Error() string {
	return fmt.Sprintf("stitch: contribution %d (%s): malformed SDL: %s", e.ContributionIndex, e.ContributionName, e.Cause)
}

func (e *SDLParseError) Unwrap() error { return e.Cause }

// DanglingExtensionError reports an `extend type` that targets a type no
// contribution ever introduced (spec §7), fatal at merge time.
type DanglingExtensionError struct {
	TypeName   string
	FromSchema string
}

func (e *DanglingExtensionError) Error() string {
	return fmt.Sprintf("stitch: %s extends unknown type %q", e.FromSchema, e.TypeName)
}

// MergeConflictError reports a type-name collision the merge couldn't
// resolve. Under the default "keep existing" policy this should never
// occur; it exists for completeness per spec §7.
type MergeConflictError struct {
	TypeName       string
	ExistingSchema string
	IncomingSchema string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("stitch: unresolved conflict for type %q between %s and %s", e.TypeName, e.ExistingSchema, e.IncomingSchema)
}

// MissingLinkResolverError is a run-time error: execution reached a field
// introduced only by `extend` with no link resolver ever bound (spec §7).
// It satisfies graphql.SanitizedError so it reports cleanly to clients.
type MissingLinkResolverError struct {
	TypeName  string
	FieldName string
}

func (e *MissingLinkResolverError) Error() string {
	return fmt.Sprintf("stitch: no link resolver bound for %s.%s", e.TypeName, e.FieldName)
}

func (e *MissingLinkResolverError) SanitizedError() string { return e.Error() }

// DelegationTargetMissingError is a run-time error: delegate was called
// with a root field that doesn't exist on the named upstream's operation
// root (spec §7).
type DelegationTargetMissingError struct {
	TargetSchema string
	RootField    string
}

func (e *DelegationTargetMissingError) Error() string {
	return fmt.Sprintf("stitch: %s has no root field %q", e.TargetSchema, e.RootField)
}

func (e *DelegationTargetMissingError) SanitizedError() string { return e.Error() }

// UpstreamExecutionError wraps the first error reported by an upstream
// schema's own execution and is recorded in the outer response as the
// delegating field's error (spec §7). Because it is a
// graphql.SanitizedError, the host executor records it without a field
// path prefix.
type UpstreamExecutionError struct {
	TargetSchema string
	Cause        error
}

func (e *UpstreamExecutionError) Error() string {
	return fmt.Sprintf("stitch: upstream %s: %s", e.TargetSchema, e.Cause)
}

func (e *UpstreamExecutionError) SanitizedError() string { return e.Error() }

func (e *UpstreamExecutionError) Unwrap() error { return e.Cause }

// VariableCoercionError is a run-time error (spec §7). delegate raises it
// when a variable referenced by a rewritten selection has no value in the
// incoming request's variables; variable values are not checked against
// the upstream schema's declared types.
type VariableCoercionError struct {
	Variable     string
	TargetSchema string
	Cause        error
}

func (e *VariableCoercionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stitch: variable %q for %s: %s", e.Variable, e.TargetSchema, e.Cause)
	}
	return fmt.Sprintf("stitch: variable %q is not defined for delegation to %s", e.Variable, e.TargetSchema)
}

func (e *VariableCoercionError) SanitizedError() string { return e.Error() }
