package extsort

import (
	"sort"

	psort "github.com/exascience/pargo/sort"
)

// stableSorter adapts a slice plus comparison function to pargo's parallel
// stable merge sort.
type stableSorter[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (s stableSorter[T]) Len() int { return len(s.items) }

func (s stableSorter[T]) Less(i, j int) bool { return s.less(s.items[i], s.items[j]) }

func (s stableSorter[T]) Swap(i, j int) { s.items[i], s.items[j] = s.items[j], s.items[i] }

func (s stableSorter[T]) SequentialSort(i, j int) {
	section := s.items[i:j]
	sort.SliceStable(section, func(a, b int) bool {
		return s.less(section[a], section[b])
	})
}

func (s stableSorter[T]) NewTemp() psort.StableSorter {
	return stableSorter[T]{items: make([]T, len(s.items)), less: s.less}
}

func (s stableSorter[T]) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s.items, source.(stableSorter[T]).items
	return func(i, j, n int) {
		copy(dst[i:i+n], src[j:j+n])
	}
}

// stableSort sorts items in place with a parallel stable sort. The result
// is the same total order a sequential stable sort would produce.
func stableSort[T any](items []T, less func(a, b T) bool) {
	psort.StableSort(stableSorter[T]{items: items, less: less})
}
