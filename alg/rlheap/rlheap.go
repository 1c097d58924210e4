// Package rlheap sorts a heap in place.
//
// The beam agenda keeps its worst candidate at the root of a
// container/heap so a bounded agenda can evict in O(log n). Sort then orders
// the survivors without allocating, best first.
package rlheap

import (
	"container/heap"
)

// Sort heap-sorts h in place. h must already satisfy the heap invariants
// (heap.Init or heap.Push); afterwards the element Less ranks lowest is at
// the end and the one it ranks highest is at index 0.
func Sort(h heap.Interface) {
	for i := h.Len() - 1; i > 0; i-- {
		// pop without reslicing
		h.Swap(0, i)
		down(h, 0, i)
	}
}

func down(h heap.Interface, i, n int) {
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 { // j1 < 0 after int overflow
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && h.Less(j2, j1) {
			j = j2 // right child
		}
		if !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		i = j
	}
}
