package ferret

import (
	"math"
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════════
// DETERMINISTIC SKIP LIST
// ═══════════════════════════════════════════════════════════════════════════════
// This is NOT the coin-flip tower skip list of a general-purpose ordered set.
// Posting lists are built once per index generation and never mutated after
// publication, so there is nothing to gain from randomized levels and a lot
// to lose: two builds of the same corpus would install different skip
// structures, which makes serialized indexes non-reproducible and search
// benchmarks non-repeatable.
//
// Instead, a SkipList here is a plain ascending slice plus ONE extra layer of
// forward pointers, sized directly from the list's length P:
//
//	F = ⌈√P⌉          number of forward pointers
//	S = ⌊P/F⌋         stride between them
//
// Pointers live at indices {0, S, 2S, ...} (never the last element) and each
// one jumps S slots ahead. A search walks the base list but, whenever it
// sits on a pointer whose target is still short of the key being sought, it
// takes the jump instead of stepping one element at a time — the same
// amortized O(√P) skip as the probabilistic design, with no randomness and
// no rebuild-to-rebuild drift.
//
// Pointers are rebuilt by Finalize after the structural size changes (i.e.
// once, right after a build or merge completes); they are not maintained
// incrementally by Insert.
// ═══════════════════════════════════════════════════════════════════════════════

// Comparator orders two elements like bytes.Compare: negative if a<b, zero
// if equal, positive if a>b.
type Comparator[T any] func(a, b T) int

// SkipList is an ascending sequence of T with √P-stride forward pointers.
type SkipList[T any] struct {
	elems   []T
	cmp     Comparator[T]
	forward []int // forward[i] is the index to jump to from i, or -1
}

// NewSkipList returns an empty skip list ordered by cmp.
func NewSkipList[T any](cmp Comparator[T]) *SkipList[T] {
	return &SkipList[T]{cmp: cmp}
}

// Len reports the number of elements.
func (s *SkipList[T]) Len() int { return len(s.elems) }

// At returns the element at index i.
func (s *SkipList[T]) At(i int) T { return s.elems[i] }

// Insert places v in sorted position, replacing an element the comparator
// considers equal. Insert invalidates any installed forward pointers —
// callers must call Finalize again once insertion is done.
func (s *SkipList[T]) Insert(v T) {
	i := sort.Search(len(s.elems), func(i int) bool { return s.cmp(s.elems[i], v) >= 0 })
	if i < len(s.elems) && s.cmp(s.elems[i], v) == 0 {
		s.elems[i] = v
		return
	}
	s.elems = append(s.elems, v)
	copy(s.elems[i+1:], s.elems[i:])
	s.elems[i] = v
	s.forward = nil
}

// Finalize (re)installs the √P forward pointers described above. Call once
// after the element slice reaches its final size; it is a no-op cost to call
// again on an unchanged list.
func (s *SkipList[T]) Finalize() {
	p := len(s.elems)
	s.forward = make([]int, p)
	for i := range s.forward {
		s.forward[i] = -1
	}
	if p < 2 {
		return
	}
	f := int(math.Ceil(math.Sqrt(float64(p))))
	if f < 1 {
		f = 1
	}
	stride := p / f
	if stride < 1 {
		stride = 1
	}
	for i := 0; i < f && i*stride < p-1; i++ {
		idx := i * stride
		target := idx + stride
		if target > p-1 {
			target = p - 1
		}
		s.forward[idx] = target
	}
}

// advanceTo moves cursor i forward (using forward pointers where they don't
// overshoot) until s.At(i) >= target, or i reaches Len().
func advanceTo[T any](s *SkipList[T], i int, cmp Comparator[T], target T) int {
	for i < s.Len() && cmp(s.At(i), target) < 0 {
		if s.forward != nil && s.forward[i] != -1 && cmp(s.At(s.forward[i]), target) < 0 {
			i = s.forward[i]
		} else {
			i++
		}
	}
	return i
}

// Intersect returns the √P-accelerated merge of elements present in both a
// and b, per the comparator. The AND evaluator calls this with the smaller
// list first for the fewest skip hops.
func Intersect[T any](a, b *SkipList[T], cmp Comparator[T]) *SkipList[T] {
	out := NewSkipList[T](cmp)
	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		c := cmp(a.At(i), b.At(j))
		switch {
		case c == 0:
			out.elems = append(out.elems, a.At(i))
			i++
			j++
		case c < 0:
			i = advanceTo(a, i+1, cmp, b.At(j))
		default:
			j = advanceTo(b, j+1, cmp, a.At(i))
		}
	}
	out.Finalize()
	return out
}

// Union returns the √P-accelerated merge of all elements present in a or b.
func Union[T any](a, b *SkipList[T], cmp Comparator[T]) *SkipList[T] {
	out := NewSkipList[T](cmp)
	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		c := cmp(a.At(i), b.At(j))
		switch {
		case c == 0:
			out.elems = append(out.elems, a.At(i))
			i++
			j++
		case c < 0:
			out.elems = append(out.elems, a.At(i))
			i++
		default:
			out.elems = append(out.elems, b.At(j))
			j++
		}
	}
	for ; i < a.Len(); i++ {
		out.elems = append(out.elems, a.At(i))
	}
	for ; j < b.Len(); j++ {
		out.elems = append(out.elems, b.At(j))
	}
	out.Finalize()
	return out
}

// Difference returns the elements of a not present in b (a \ b), skip-
// accelerated over b.
func Difference[T any](a, b *SkipList[T], cmp Comparator[T]) *SkipList[T] {
	out := NewSkipList[T](cmp)
	i, j := 0, 0
	for i < a.Len() {
		if j >= b.Len() {
			out.elems = append(out.elems, a.At(i))
			i++
			continue
		}
		c := cmp(a.At(i), b.At(j))
		switch {
		case c == 0:
			i++
			j++
		case c < 0:
			out.elems = append(out.elems, a.At(i))
			i++
		default:
			j = advanceTo(b, j+1, cmp, a.At(i))
		}
	}
	out.Finalize()
	return out
}
