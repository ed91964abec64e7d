package descriptor

import "strings"

// Table is an option-name -> Descriptor mapping that additionally
// resolves dotted paths ("foo.bar") per spec §3 "Descriptor table":
// first the exact key is tried, then, failing that, the path is split on
// its first '.' and, if the parent descriptor is Struct or Configurable/
// Customizable, the parent plus the unconsumed remainder are reported for
// the caller (internal/option.ParseOption) to resolve one level at a
// time.
//
// Table preserves registration order so GetOptionString's emission order
// is a stable enumeration (spec §5 "Ordering", §9 Open Question #2),
// rather than depending on Go's randomized map iteration.
type Table struct {
	byName map[string]*Descriptor
	order  []string
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Descriptor)}
}

// Add registers a descriptor under name, preserving insertion order.
// Panics on a duplicate name: descriptor tables are built once, at
// package init time, by the option-group author, so a collision is a
// programming error, not a runtime condition to recover from.
func (t *Table) Add(name string, d *Descriptor) *Table {
	if _, exists := t.byName[name]; exists {
		panic("descriptor: duplicate option name " + name)
	}
	d.Name = name
	t.byName[name] = d
	t.order = append(t.order, name)
	return t
}

// Names returns the registered option names in registration order.
func (t *Table) Names() []string {
	return t.order
}

// Get returns the descriptor registered under the exact name (no dotted
// resolution), for table-wide iteration.
func (t *Table) Get(name string) (*Descriptor, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Lookup resolves name, trying the exact key first and then, for a dotted
// path, splitting on the first '.' and reporting the immediate
// Struct/Configurable/Customizable parent plus the unconsumed remainder.
// It deliberately does not recurse past that first dot: a Struct parent's
// nested fields are resolved by the caller re-entering ParseOption against
// d.Sub with the projected sub-record (so the accessor closures always see
// the record type they were built for), and a Configurable/Customizable
// parent's remainder is resolved against its child once a concrete type is
// known.
func (t *Table) Lookup(name string) (*Descriptor, string, bool) {
	if d, ok := t.byName[name]; ok {
		return d, "", true
	}
	dot := strings.IndexByte(name, '.')
	if dot < 0 {
		return nil, "", false
	}
	parentName, rest := name[:dot], name[dot+1:]
	parent, ok := t.byName[parentName]
	if !ok {
		return nil, "", false
	}
	if parent.Tag != Struct && parent.Tag != Configurable && parent.Tag != Customizable {
		return nil, "", false
	}
	return parent, rest, true
}
