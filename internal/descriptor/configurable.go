package descriptor

import "ckv/internal/ctxopt"

// ConfigurableObject is the minimal surface a Configurable (spec §3) must
// expose for another Configurable to hold it as a Struct/Configurable/
// Customizable child field. The full public Configurable API (spec §4.5)
// lives in internal/configurable; this narrower interface is declared
// here, in the leaf package, so that internal/registry and internal/option
// can both depend on it without importing internal/configurable and
// creating an import cycle (option is used *by* configurable).
type ConfigurableObject interface {
	// ConfigureFromMap applies every key in m. Keys this object's groups
	// don't recognize are either rejected or collected into the returned
	// unused map, depending on ctx.IgnoreUnknownOptions.
	ConfigureFromMap(ctx ctxopt.Context, m map[string]string) (unused map[string]string, err error)
	// ConfigureOption applies a single name=value setting.
	ConfigureOption(ctx ctxopt.Context, name, value string) error
	// GetOptionString serializes every serializable descriptor.
	GetOptionString(ctx ctxopt.Context) (string, error)
	// Matches performs structural equality against another
	// ConfigurableObject of the same concrete type, honoring
	// ctx.SanityLevel. mismatch names the first differing dotted path.
	Matches(ctx ctxopt.Context, other ConfigurableObject) (equal bool, mismatch string, err error)
	// PrepareOptions applies invariants and instantiates lazily built
	// children. Idempotent.
	PrepareOptions(ctx ctxopt.Context) error
	// ValidateOptions cross-checks invariants; must not mutate.
	ValidateOptions(ctx ctxopt.Context) error
	// GetID returns the registry identifier this object was constructed
	// with. Empty for plain Configurable (non-Customizable) objects.
	GetID() string
}

// Factory constructs a new ConfigurableObject for a given registry id.
type Factory func(ctx ctxopt.Context) (ConfigurableObject, error)
