package openlist

import "container/heap"

// Standard is a plain binary heap open list built on container/heap.
type Standard struct {
	items []Item
	less  Comparator
}

// NewStandard builds an empty heap ordered by less.
func NewStandard(less Comparator) *Standard {
	return &Standard{less: less}
}

func (s *Standard) Len() int           { return len(s.items) }
func (s *Standard) Less(i, j int) bool { return s.less(s.items[i], s.items[j]) }
func (s *Standard) Swap(i, j int)      { s.items[i], s.items[j] = s.items[j], s.items[i] }

func (s *Standard) Push(x any) { s.items = append(s.items, x.(Item)) }

func (s *Standard) Pop() any {
	old := s.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	s.items = old[:n-1]
	return it
}

// Insert adds it to the heap.
func (s *Standard) Insert(it Item) { heap.Push(s, it) }

// PopTop removes and returns the highest-priority item, or nil if empty.
func (s *Standard) PopTop() Item {
	if s.Len() == 0 {
		return nil
	}
	return heap.Pop(s).(Item)
}

// Top returns the highest-priority item without removing it, or nil if
// empty.
func (s *Standard) Top() Item {
	if s.Len() == 0 {
		return nil
	}
	return s.items[0]
}

// fix restores heap order after an out-of-band mutation at index i (used
// by Pruned's linear-scan removal).
func (s *Standard) fix(i int) { heap.Fix(s, i) }

// Empty reports whether the heap holds no items.
func (s *Standard) Empty() bool { return s.Len() == 0 }

// Size returns the number of items currently held.
func (s *Standard) Size() int { return s.Len() }
