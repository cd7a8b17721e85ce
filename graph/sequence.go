package graph

// Sequence is the ordered list of node keys a capture path consists of.
// Next and Prev return "" at sequence boundaries or when the key is not
// part of the sequence; that is a legitimate outcome, not an error.
type Sequence interface {
	// Key returns the sequence's unique key
	Key() string
	// Next returns the successor of the given node key, or ""
	Next(key string) string
	// Prev returns the predecessor of the given node key, or ""
	Prev(key string) string
}

// MemorySequence is an in-memory Sequence over a fixed ordered key slice
type MemorySequence struct {
	key   string
	keys  []string
	index map[string]int
}

// NewMemorySequence builds a sequence from node keys in capture order
func NewMemorySequence(key string, keys []string) *MemorySequence {
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	return &MemorySequence{key: key, keys: keys, index: index}
}

// Key returns the sequence's unique key
func (s *MemorySequence) Key() string { return s.key }

// Keys returns the node keys in capture order
func (s *MemorySequence) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Next returns the successor of key, or "" at the end or if key is absent
func (s *MemorySequence) Next(key string) string {
	i, ok := s.index[key]
	if !ok || i+1 >= len(s.keys) {
		return ""
	}
	return s.keys[i+1]
}

// Prev returns the predecessor of key, or "" at the start or if key is absent
func (s *MemorySequence) Prev(key string) string {
	i, ok := s.index[key]
	if !ok || i == 0 {
		return ""
	}
	return s.keys[i-1]
}
