// Package orderedmap implements a generic map that iterates in insertion order.
// ssa.Program uses it to remember the order in which phi nodes were placed at each
// block (spec.md §4.3): that order is the order diagnostics and golden-file dumps
// report phis in, so it has to survive gob round-tripping the same as any other
// field of a cached Program.
package orderedmap

// Pair is a key-value entry stored in the map, in insertion order.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// OrderedMap is a map that supports iteration in insertion order. It is an
// _internal_ helper and only implements the operations ssa.Program's phi table
// needs: insert-or-overwrite (Store) and ordered iteration (Pairs). There is no
// Load/Value accessor because nothing in this module looks up a phi by variable
// name outside of iterating the table it came from.
//
// Note the design is a little different from usual ordered map implementations. It
// might be more intuitive to keep an inner map and a separate slice of keys in
// insertion order, or to fully unexport the fields to avoid a leaky abstraction.
// Both require custom gob codec logic, which disallows reusing the same gob
// Encoder across calls (the stdlib does not pass the parent encoder via the
// GobEncode interface) and costs more in serialized size.
type OrderedMap[K comparable, V any] struct {
	// Pairs is the list of pairs in insertion order. It should _never_ be modified
	// directly (use Store instead), but can be used for read-only purposes (e.g.
	// iterating a block's phis in placement order). Exported so gob can serialize it.
	Pairs []*Pair[K, V]
	// inner maps a key to its Pair, for O(1) Store. Unexported so gob skips it.
	inner map[K]*Pair[K, V]
}

// New creates a new OrderedMap.
func New[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{inner: make(map[K]*Pair[K, V])}
}

// Store stores the value for the key, overwriting the previous value (without
// disturbing its position in Pairs) if the key already exists.
func (m *OrderedMap[K, V]) Store(key K, value V) {
	m.rehydrate()

	if p := m.inner[key]; p != nil {
		p.Value = value
		return
	}
	p := &Pair[K, V]{Key: key, Value: value}
	m.Pairs = append(m.Pairs, p)
	m.inner[key] = p
}

// rehydrate ensures the inner map is up-to-date with Pairs. This matters after the
// OrderedMap has round-tripped through gob: the unexported inner map is not
// serialized, so a freshly decoded value has Pairs populated but inner nil.
// rehydrate must run before any access to inner.
func (m *OrderedMap[K, V]) rehydrate() {
	if len(m.Pairs) == len(m.inner) {
		return
	}

	m.inner = make(map[K]*Pair[K, V], len(m.Pairs))
	for _, p := range m.Pairs {
		m.inner[p.Key] = p
	}
}
