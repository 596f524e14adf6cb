package search

// Closed is the hash-indexed closed list: node-hash -> canonical
// closed NodeRef, with reopen-on-better-g semantics.
type Closed struct {
	arena  *Arena
	byHash map[uint64][]NodeRef
}

// NewClosed builds an empty closed list over arena.
func NewClosed(arena *Arena) *Closed {
	return &Closed{arena: arena, byHash: make(map[uint64][]NodeRef)}
}

// Verdict is the result of a closed-list probe.
type Verdict int

const (
	// NotClosed means no equal state has been closed; the caller should
	// insert newRef once it finishes expanding.
	NotClosed Verdict = iota
	// RedundantClosed means an equal state was already closed on a better
	// or equal path; the caller must discard newRef.
	RedundantClosed
	// Reopened means an equal state was closed on a strictly worse path;
	// the stale entry has been evicted and the caller should proceed to
	// expand newRef and then Insert it.
	Reopened
)

// IsClosed looks up newRef's state by hash + equality. If an equal state is
// already closed with g <=
// newRef's g, reports RedundantClosed (caller discards newRef, still
// holding its own reference — the caller is responsible for releasing it
// via Arena.Release). If the existing entry has strictly worse g, it is
// evicted (its closed-list reference released) and Reopened is reported so
// the caller may proceed and eventually insert newRef. Otherwise NotClosed.
func (c *Closed) IsClosed(newRef NodeRef) Verdict {
	n := c.arena.Get(newRef)
	h := n.State().Hash()
	bucket := c.byHash[h]

	for i, ref := range bucket {
		existing := c.arena.Get(ref)
		if existing == nil || !existing.State().Equal(n.State()) {
			continue
		}
		if existing.G() <= n.G() {
			return RedundantClosed
		}
		bucket[i] = bucket[len(bucket)-1]
		c.byHash[h] = bucket[:len(bucket)-1]
		c.arena.ReleaseClosed(ref)
		return Reopened
	}
	return NotClosed
}

// Insert adds ref to the closed list, taking the implicit closed-list
// reference.
func (c *Closed) Insert(ref NodeRef) {
	n := c.arena.Get(ref)
	h := n.State().Hash()
	c.byHash[h] = append(c.byHash[h], ref)
	c.arena.MarkClosed(ref)
}

// Teardown releases every closed-list reference, allowing the arena to
// reclaim any node with no remaining heap references.
func (c *Closed) Teardown() {
	for h, bucket := range c.byHash {
		for _, ref := range bucket {
			c.arena.ReleaseClosed(ref)
		}
		delete(c.byHash, h)
	}
}
