package core

// OrderedMap is a string-keyed map that iterates in insertion order of the
// first occurrence of each key. Ranked views tie-break on this order, so
// aggregation results built on it are deterministic for a given record set.
type OrderedMap[V any] struct {
	keys []string
	vals map[string]V
}

func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{vals: make(map[string]V)}
}

// Set stores v under key, appending the key on first sight.
func (m *OrderedMap[V]) Set(key string, v V) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value for key and whether it is present.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not modify it.
func (m *OrderedMap[V]) Keys() []string {
	return m.keys
}

func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Totals is an insertion-ordered running sum per category name.
type Totals struct {
	m *OrderedMap[float64]
}

func NewTotals() *Totals {
	return &Totals{m: NewOrderedMap[float64]()}
}

// Add accumulates v into the named total.
func (t *Totals) Add(name string, v float64) {
	cur, _ := t.m.Get(name)
	t.m.Set(name, cur+v)
}

// Get returns the current total for name, zero when absent.
func (t *Totals) Get(name string) float64 {
	v, _ := t.m.Get(name)
	return v
}

func (t *Totals) Keys() []string { return t.m.Keys() }
func (t *Totals) Len() int       { return t.m.Len() }
