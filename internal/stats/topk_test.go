package stats

import (
	"testing"

	"github.com/fenilsonani/file-organizer/internal/scanner"
)

func entry(path string, size int64) scanner.FileEntry {
	return scanner.FileEntry{Path: path, Name: path, Size: size}
}

func TestTopKEvictsSmallest(t *testing.T) {
	top := NewTopK(3)
	for i, size := range []int64{5, 1, 9, 3, 7, 2} {
		top.Offer(entry(string(rune('a'+i)), size))
	}

	got := top.Sorted()
	want := []int64{9, 7, 5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Size != want[i] {
			t.Errorf("position %d size = %d, want %d", i, got[i].Size, want[i])
		}
		if got[i].Index != i {
			t.Errorf("position %d index = %d", i, got[i].Index)
		}
	}
}

func TestTopKTieDoesNotEvict(t *testing.T) {
	top := NewTopK(2)
	top.Offer(entry("first", 4))
	top.Offer(entry("second", 4))
	top.Offer(entry("third", 4))

	got := top.Sorted()
	if got[0].Path != "first" || got[1].Path != "second" {
		t.Errorf("equal-size entry replaced an earlier one: %v", got)
	}
}

func TestTopKZeroCapacity(t *testing.T) {
	top := NewTopK(0)
	top.Offer(entry("x", 1))
	if top.Len() != 0 {
		t.Errorf("Len() = %d, want 0", top.Len())
	}
}
