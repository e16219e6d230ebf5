// Package cache implements the content-addressed interning used by one
// encode pass: every distinct value is stored once and later insertions
// of an equal value return the slot of the first one.
//
// A Cache must not be shared between concurrent encodes.
package cache

type Cache struct {
	d map[Kind]map[Digest]int
}

func New() *Cache {
	return &Cache{d: make(map[Kind]map[Digest]int)}
}

func (c *Cache) Add(kind Kind, d Digest, index int) {
	m, ok := c.d[kind]
	if !ok {
		m = make(map[Digest]int)
		c.d[kind] = m
	}
	m[d] = index
}

func (c *Cache) Get(kind Kind, d Digest) (int, bool) {
	index, ok := c.d[kind][d]
	return index, ok
}

func (c *Cache) Len(kind Kind) int {
	return len(c.d[kind])
}

// StoreIfAbsent returns the slot already holding a value equal to p, or
// calls alloc to store it and remembers the new slot. stored reports
// whether alloc was called.
func (c *Cache) StoreIfAbsent(p Payload, alloc func() (int, error)) (index int, stored bool, err error) {
	d, err := Sum(p)
	if err != nil {
		return 0, false, err
	}
	if index, ok := c.Get(p.Kind(), d); ok {
		return index, false, nil
	}
	index, err = alloc()
	if err != nil {
		return 0, false, err
	}
	c.Add(p.Kind(), d, index)
	return index, true, nil
}
