package core

// collection keeps records addressable by id while preserving insertion order,
// which is the order the snapshot document stores them in.
type collection[T any] struct {
	items map[string]T
	order []string
}

func newCollection[T any]() collection[T] {
	return collection[T]{items: make(map[string]T)}
}

func collectionFrom[T any](records []T, idOf func(T) string) collection[T] {
	c := collection[T]{items: make(map[string]T, len(records)), order: make([]string, 0, len(records))}
	for _, r := range records {
		c.put(idOf(r), r)
	}
	return c
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// put inserts or replaces. Replacement keeps the original position.
func (c *collection[T]) put(id string, v T) {
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// trimFront drops the oldest entries until at most limit remain.
func (c *collection[T]) trimFront(limit int) int {
	excess := len(c.order) - limit
	if excess <= 0 {
		return 0
	}
	for _, id := range c.order[:excess] {
		delete(c.items, id)
	}
	c.order = append([]string(nil), c.order[excess:]...)
	return excess
}

func (c *collection[T]) len() int { return len(c.order) }

// each visits records in insertion order until fn returns false.
func (c *collection[T]) each(fn func(id string, v T) bool) {
	for _, id := range c.order {
		if !fn(id, c.items[id]) {
			return
		}
	}
}

func (c *collection[T]) list(cloneFn func(T) T) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, cloneFn(c.items[id]))
	}
	return out
}

func (c *collection[T]) clone(cloneFn func(T) T) collection[T] {
	cp := collection[T]{items: make(map[string]T, len(c.items)), order: append([]string(nil), c.order...)}
	for id, v := range c.items {
		cp.items[id] = cloneFn(v)
	}
	return cp
}
