// Package ctxopt defines the invocation context threaded explicitly through
// every engine operation (spec §3 "Invocation Context"). It is deliberately
// a plain immutable value, never installed in thread-local or global
// storage — see spec §9 "Global lifecycle flags".
package ctxopt

import "go.uber.org/zap"

// SanityLevel controls how strict Matches is willing to be.
type SanityLevel int

const (
	// SanityNone accepts any descriptor-declared strictness.
	SanityNone SanityLevel = iota
	// SanityLooselyCompatible allows CompareLoose descriptors to differ.
	SanityLooselyCompatible
	// SanityExactMatch requires every comparable descriptor to match.
	SanityExactMatch
)

func (l SanityLevel) String() string {
	switch l {
	case SanityNone:
		return "None"
	case SanityLooselyCompatible:
		return "LooselyCompatible"
	case SanityExactMatch:
		return "ExactMatch"
	default:
		return "Unknown"
	}
}

// RegistryHandle is the subset of internal/registry.Registry the context
// needs to carry. Declared here (rather than importing internal/registry)
// so ctxopt stays a leaf package with nothing depending back on it for a
// cycle.
type RegistryHandle interface {
	Clone() RegistryHandle
}

// Context is the value-typed bundle threaded through Configure/Serialize/
// Match/Prepare/Validate. Cheap to clone: every field here is either a
// scalar or a handle, never an owned buffer.
type Context struct {
	// Delimiter separates top-level option pairs. Embedded contexts force
	// ';' regardless of what the caller set here.
	Delimiter byte

	// InputStringsEscaped, when true, unescapes string values before
	// parsing them.
	InputStringsEscaped bool

	// IgnoreUnknownOptions silently drops unknown keys instead of
	// rejecting them.
	IgnoreUnknownOptions bool

	// IgnoreUnknownObjects turns an unresolved polymorphic id into a nil
	// child instead of failing.
	IgnoreUnknownObjects bool

	// SanityLevel bounds how strict Matches is allowed to be.
	SanityLevel SanityLevel

	// InvokePrepareOptions, when true, makes ConfigureFromMap call
	// PrepareOptions after a successful full apply.
	InvokePrepareOptions bool

	// Registry is the current object factory registry. Clone it before
	// mutating inside a nested configure path (spec §5 "Shared
	// resources").
	Registry RegistryHandle

	// Env is an opaque platform/host handle passed to factories.
	Env interface{}

	// InfoLog is the diagnostic sink used by Prepare-time operations on
	// pluggable subsystems. May be nil; Logger() returns a no-op logger
	// in that case.
	InfoLog *zap.SugaredLogger
}

// Default returns the context used when a caller has no special
// requirements: ';' delimiter, unescaped input, unknown options rejected,
// ExactMatch sanity, prepare invoked implicitly.
func Default() Context {
	return Context{
		Delimiter:            ';',
		SanityLevel:          SanityExactMatch,
		InvokePrepareOptions: true,
	}
}

// Logger returns ctx.InfoLog, or a discarding logger if none was set.
func (ctx Context) Logger() *zap.SugaredLogger {
	if ctx.InfoLog != nil {
		return ctx.InfoLog
	}
	return zap.NewNop().Sugar()
}

// Embedded returns a clone of ctx with the delimiter forced to ';' and
// prepare hooks suspended, the form used whenever an operation recurses
// into a nested value (struct braces, vector elements, polymorphic
// children) — spec's "Embedded context".
func (ctx Context) Embedded() Context {
	next := ctx
	next.Delimiter = ';'
	next.InvokePrepareOptions = false
	return next
}

// WithoutPrepare returns a clone with InvokePrepareOptions cleared, used
// when a descriptor is flagged DontPrepare.
func (ctx Context) WithoutPrepare() Context {
	next := ctx
	next.InvokePrepareOptions = false
	return next
}

// WithIgnoreUnknownOptions returns a clone with IgnoreUnknownOptions set,
// used by the two-phase DB/CF parse pattern (spec §7) where an inner parse
// must reject unknown keys while the outer caller ultimately tolerates
// them by routing to a different group.
func (ctx Context) WithIgnoreUnknownOptions(v bool) Context {
	next := ctx
	next.IgnoreUnknownOptions = v
	return next
}

// CloneRegistry returns a clone of ctx whose Registry is a clone of
// ctx.Registry (the receiver is left untouched), required before any nested
// configure path registers new factories so sibling configurations never
// observe a partial registration (spec §5).
func (ctx Context) CloneRegistry() Context {
	next := ctx
	if ctx.Registry != nil {
		next.Registry = ctx.Registry.Clone()
	}
	return next
}
