package indexing

// IDAssigner hands out surrogate ids starting at 1 in first-seen order.
// One assigner belongs to one indexing run and is not safe for concurrent use.
type IDAssigner struct {
	ids map[string]int
}

// NewIDAssigner creates an empty assigner.
func NewIDAssigner() *IDAssigner {
	return &IDAssigner{ids: make(map[string]int)}
}

// Assign returns the id of key, allocating the next one on first sight.
func (a *IDAssigner) Assign(key string) int {
	if id, ok := a.ids[key]; ok {
		return id
	}
	id := len(a.ids) + 1
	a.ids[key] = id
	return id
}

// Lookup returns the id of a key seen before.
func (a *IDAssigner) Lookup(key string) (int, bool) {
	id, ok := a.ids[key]
	return id, ok
}

// Len returns the number of assigned ids.
func (a *IDAssigner) Len() int { return len(a.ids) }
