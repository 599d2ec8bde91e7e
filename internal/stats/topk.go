package stats

import (
	"container/heap"
	"sort"

	"github.com/fenilsonani/file-organizer/internal/scanner"
)

// fileHeap is a min-heap on size; the smallest kept file sits at the root
type fileHeap []scanner.FileEntry

func (h fileHeap) Len() int { return len(h) }
func (h fileHeap) Less(i, j int) bool {
	if h[i].Size != h[j].Size {
		return h[i].Size < h[j].Size
	}
	return h[i].Path > h[j].Path
}
func (h fileHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *fileHeap) Push(x any) { *h = append(*h, x.(scanner.FileEntry)) }

func (h *fileHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK keeps the k largest files offered to it
type TopK struct {
	k int
	h fileHeap
}

// NewTopK creates a tracker holding at most k files
func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	return &TopK{k: k, h: make(fileHeap, 0, k)}
}

// Offer admits e when below capacity or when it is larger than the
// smallest file kept, evicting that file
func (t *TopK) Offer(e scanner.FileEntry) {
	if t.k == 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, e)
		return
	}
	if e.Size > t.h[0].Size {
		t.h[0] = e
		heap.Fix(&t.h, 0)
	}
}

// Len returns the number of files kept
func (t *TopK) Len() int {
	return len(t.h)
}

// Sorted returns the kept files largest first, ties by path, with Index
// renumbered from zero
func (t *TopK) Sorted() []scanner.FileEntry {
	out := make([]scanner.FileEntry, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].Path < out[j].Path
	})
	for i := range out {
		out[i].Index = i
	}
	return out
}
