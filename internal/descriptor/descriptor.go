package descriptor

import (
	"fmt"

	"ckv/internal/ctxopt"
)

// Descriptor is an immutable record of metadata for one option field. Its
// accessors come in three mutually-exclusive shapes, selected by Tag:
//   - scalar primitive tags use Get/Set (a boxed typed accessor);
//   - Struct uses SubRecord (a pointer to an always-present, embedded-
//     by-value nested record);
//   - Configurable/Customizable use ChildGet/ChildSet (the owned child,
//     which may be nil until first configured).
// Parse/Serialize/Equals, when all three are set, fully override
// whichever of the above the tag would otherwise drive (spec §3
// invariant: "the three closures are either all present or all absent").
type Descriptor struct {
	Name         string
	Tag          TypeTag
	Verification VerificationKind
	Flags        Flags
	SanityLevel  ctxopt.SanityLevel // lowest context sanity level at which this descriptor compares
	Comment      string

	// Get/Set is the typed accessor for scalar primitive tags, built
	// with Field. Boxed as interface{} so one Descriptor type serves
	// every field type uniformly in a Table. This is the spec §9
	// replacement for a raw byte offset: the field's Go type is checked
	// at every access instead of being reinterpreted from a pointer.
	Get func(record interface{}) interface{}
	Set func(record interface{}, value interface{}) error

	// SubRecord returns a pointer to the nested record for a Struct
	// descriptor. Built with SubField; never nil, since the nested
	// record is embedded by value in its owner.
	SubRecord func(record interface{}) interface{}
	Alloc     func() interface{} // reserved for pointer-flagged structs

	// ChildGet/ChildSet access the owned child for Configurable/
	// Customizable descriptors. Built with ChildField.
	ChildGet func(record interface{}) ConfigurableObject
	ChildSet func(record interface{}, child ConfigurableObject)

	// FixedFactory constructs the child for a plain Configurable
	// descriptor (fixed concrete type, not registry-resolved).
	FixedFactory Factory

	// Parse/Serialize/Equals, when all non-nil, fully override the tag's
	// primitive/composite codec (spec §3 invariant).
	Parse     func(ctx ctxopt.Context, record interface{}, token string) error
	Serialize func(ctx ctxopt.Context, record interface{}) (string, error)
	Equals    func(ctx ctxopt.Context, a, b interface{}) (bool, error)

	// Sub is the nested descriptor table: for Struct, the nested
	// record's fields; for Configurable/Customizable, the table used
	// once a concrete child type is known is owned by the child itself,
	// not here.
	Sub *Table

	// Element is the per-element descriptor for Vector tags.
	Element *Descriptor
	// ElementSep is the Vector element separator (default ':').
	ElementSep byte
	// MakeSlice builds a concrete []T from parsed element values, and
	// Elems does the reverse, unpacking a boxed []T back into its
	// elements. Built together with Get/Set by VectorField, so Vector
	// descriptors never need reflection to cross the interface{} boundary.
	MakeSlice func(elems []interface{}) interface{}
	Elems     func(sliceValue interface{}) []interface{}

	// EnumNames maps the serialized token to its value, and EnumValues
	// is its inverse, for Enum and the fixed domain-enum tags.
	EnumNames  map[string]int64
	EnumValues map[int64]string

	// CustomizableTag names the registry type tag (spec §4.6 "T") used
	// to resolve a Customizable descriptor's factory.
	CustomizableTag string

	// AliasOf names the descriptor an Alias-verification descriptor
	// redirects its storage to. Alias descriptors never serialize or
	// compare themselves (spec §3 invariant).
	AliasOf string
}

// HasCustomCodec reports whether this descriptor fully overrides the tag
// codec, per the all-or-nothing invariant in spec §3.
func (d *Descriptor) HasCustomCodec() bool {
	return d.Parse != nil && d.Serialize != nil && d.Equals != nil
}

// Field builds a typed Get/Set accessor pair for a scalar field of type T
// on an owning record of type R, given a function that projects a
// pointer to that field out of *R.
func Field[R any, T any](project func(*R) *T) (
	get func(record interface{}) interface{},
	set func(record interface{}, value interface{}) error,
) {
	get = func(record interface{}) interface{} {
		r, ok := record.(*R)
		if !ok {
			panic(fmt.Sprintf("descriptor: Get called with %T, want %T", record, r))
		}
		return *project(r)
	}
	set = func(record interface{}, value interface{}) error {
		r, ok := record.(*R)
		if !ok {
			return fmt.Errorf("descriptor: Set called with %T, want %T", record, r)
		}
		v, ok := value.(T)
		if !ok {
			return fmt.Errorf("descriptor: value %v has type %T, want %T", value, value, v)
		}
		*project(r) = v
		return nil
	}
	return get, set
}

// SubField builds the SubRecord accessor for a Struct descriptor: a
// pointer to a nested record of type T embedded by value inside the
// owning record of type R.
func SubField[R any, T any](project func(*R) *T) func(record interface{}) interface{} {
	return func(record interface{}) interface{} {
		r, ok := record.(*R)
		if !ok {
			panic(fmt.Sprintf("descriptor: SubRecord called with %T, want %T", record, r))
		}
		return project(r)
	}
}

// ChildField builds the ChildGet/ChildSet accessor pair for a
// Configurable/Customizable descriptor: an interface-typed field holding
// the current owned child (nil until configured).
func ChildField[R any](project func(*R) *ConfigurableObject) (
	get func(record interface{}) ConfigurableObject,
	set func(record interface{}, child ConfigurableObject),
) {
	get = func(record interface{}) ConfigurableObject {
		r, ok := record.(*R)
		if !ok {
			panic(fmt.Sprintf("descriptor: ChildGet called with %T, want %T", record, r))
		}
		return *project(r)
	}
	set = func(record interface{}, child ConfigurableObject) {
		r, ok := record.(*R)
		if !ok {
			panic(fmt.Sprintf("descriptor: ChildSet called with %T, want %T", record, r))
		}
		*project(r) = child
	}
	return
}

// VectorField builds the Get/Set/MakeSlice/Elems quartet for a Vector
// descriptor whose field is a []T embedded in the owning record of type R.
func VectorField[R any, T any](project func(*R) *[]T) (
	get func(record interface{}) interface{},
	set func(record interface{}, value interface{}) error,
	makeSlice func(elems []interface{}) interface{},
	elems func(sliceValue interface{}) []interface{},
) {
	get = func(record interface{}) interface{} {
		r, ok := record.(*R)
		if !ok {
			panic(fmt.Sprintf("descriptor: Get called with %T, want %T", record, r))
		}
		return *project(r)
	}
	set = func(record interface{}, value interface{}) error {
		r, ok := record.(*R)
		if !ok {
			return fmt.Errorf("descriptor: Set called with %T, want %T", record, r)
		}
		v, ok := value.([]T)
		if !ok {
			return fmt.Errorf("descriptor: value %v has type %T, want %T", value, value, v)
		}
		*project(r) = v
		return nil
	}
	makeSlice = func(parsed []interface{}) interface{} {
		out := make([]T, len(parsed))
		for i, p := range parsed {
			v, ok := p.(T)
			if !ok {
				panic(fmt.Sprintf("descriptor: vector element %v has type %T, want %T", p, p, v))
			}
			out[i] = v
		}
		return out
	}
	elems = func(sliceValue interface{}) []interface{} {
		v, ok := sliceValue.([]T)
		if !ok {
			panic(fmt.Sprintf("descriptor: Elems called with %T, want []%T", sliceValue, v))
		}
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out
	}
	return
}

// NewEnum builds the EnumNames/EnumValues pair from a name->value map.
func NewEnum(names map[string]int64) (map[string]int64, map[int64]string) {
	values := make(map[int64]string, len(names))
	for k, v := range names {
		values[v] = k
	}
	return names, values
}
