package openlist

// Double is the double alternating heap: a primary bounded heap ordered by
// the standard comparator and a smaller secondary bounded heap ordered by
// an alternate comparator (novelty-first). Pops alternate between the two
// heaps on a fixed interval.
type Double struct {
	primary   *Bounded
	secondary *Bounded

	interval   int // a counter modulo interval selects the pop source; default 2
	popCounter int
}

// NewDouble builds a double heap: the primary has capacity 2^(depth+1)-1
// under primaryLess, the secondary has capacity 2^(depth-1)-1 under
// altLess. interval is the modulo period: a counter modulo interval
// selects which heap to pop from next. With interval=2, pops strictly
// alternate primary, secondary, primary, secondary...
func NewDouble(primaryLess, altLess Comparator, depth, interval int) *Double {
	if interval < 1 {
		interval = 2
	}
	secondaryDepth := depth - 2
	if secondaryDepth < 0 {
		secondaryDepth = 0
	}
	return &Double{
		primary:   NewBounded(primaryLess, depth),
		secondary: NewBounded(altLess, secondaryDepth),
		interval:  interval,
	}
}

// InsertResult reports what, if anything, was evicted from each heap by an
// Insert call. A non-nil Evicted* that equals the inserted item itself
// means that heap rejected the newcomer outright.
type InsertResult struct {
	InPrimary   bool
	Evicted1    Item
	InSecondary bool
	Evicted2    Item
}

// Insert offers it to both heaps independently.
func (d *Double) Insert(it Item) InsertResult {
	var res InsertResult
	res.Evicted1 = d.primary.Insert(it)
	res.InPrimary = res.Evicted1 == nil || res.Evicted1 != it
	res.Evicted2 = d.secondary.Insert(it)
	res.InSecondary = res.Evicted2 == nil || res.Evicted2 != it
	return res
}

// Pop removes and returns the next item, selecting the source heap by
// popCounter modulo interval (the last slot in the cycle draws from
// secondary), and returns which heap it came from (true = secondary).
// Falls back to whichever heap is non-empty if the preferred one has
// nothing to offer.
func (d *Double) Pop() (it Item, fromSecondary bool) {
	useSecondary := d.popCounter%d.interval == d.interval-1
	d.popCounter++

	if useSecondary && !d.secondary.Empty() {
		return d.secondary.Pop(), true
	}
	if !d.primary.Empty() {
		return d.primary.Pop(), false
	}
	if !d.secondary.Empty() {
		return d.secondary.Pop(), true
	}
	return nil, false
}

// Empty reports whether both heaps are empty.
func (d *Double) Empty() bool { return d.primary.Empty() && d.secondary.Empty() }

// Size returns the primary heap's occupancy (the canonical "open list
// size" for budget accounting).
func (d *Double) Size() int { return d.primary.Size() }
