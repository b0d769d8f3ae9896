package epub

// Metadata stores the package metadata as a mapping from key to an
// ordered sequence of values. EPUB metadata fields may repeat (multiple
// authors, identifiers, subjects), so a key never collapses to a single
// value. Keys preserve insertion order for deterministic retrieval.
//
// Dublin Core elements are keyed by their local name ("title",
// "creator", "language", ...); <meta> elements are keyed by their name
// or property attribute. Unrecognized elements are preserved under
// their own local name rather than dropped.
type Metadata struct {
	keys   []string
	values map[string][]string
}

func (m *Metadata) add(key, value string) {
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = append(m.values[key], value)
}

// Get returns all values recorded for key, in document order.
// Returns nil when the key is absent.
func (m Metadata) Get(key string) []string {
	return append([]string(nil), m.values[key]...)
}

// First returns the first value recorded for key.
func (m Metadata) First(key string) (string, bool) {
	vs := m.values[key]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Keys returns all metadata keys in insertion order.
func (m Metadata) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of distinct keys.
func (m Metadata) Len() int {
	return len(m.keys)
}
