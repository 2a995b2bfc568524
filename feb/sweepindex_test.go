package feb

import (
	"math/rand"
	"sort"
	"testing"
)

func TestSweepIndexAscendingOrder(t *testing.T) {
	idx := newSweepIndex()
	src := rand.New(rand.NewSource(1))
	keys := make([]AlignedAddr, 200)
	for i := range keys {
		keys[i] = AlignedAddr(src.Uint64())
		idx.add(keys[i])
	}

	got := idx.ascendingKeys()
	if len(got) != len(keys) {
		t.Fatalf("ascendingKeys returned %d keys, want %d", len(got), len(keys))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }) {
		t.Fatal("ascendingKeys did not return keys in ascending order")
	}

	want := append([]AlignedAddr(nil), keys...)
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestSweepIndexRemove(t *testing.T) {
	idx := newSweepIndex()
	idx.add(1)
	idx.add(2)
	idx.add(3)
	idx.remove(2)
	got := idx.ascendingKeys()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("ascendingKeys after remove = %v, want [1 3]", got)
	}
}

func TestMapLockedForEachVisitsAscending(t *testing.T) {
	m := newMapLocked()
	for _, k := range []AlignedAddr{30, 10, 20} {
		m.insert(k, newAddrStat(true))
	}
	var visited []AlignedAddr
	m.forEach(func(key AlignedAddr, rec *AddrStat) {
		visited = append(visited, key)
	})
	want := []AlignedAddr{10, 20, 30}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}
}
