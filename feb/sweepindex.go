package feb

import (
	"github.com/google/btree"

	"github.com/vanadium-archive/qfeb/fastlock"
)

// alignedAddrItem adapts AlignedAddr to btree.Item's ordering contract.
type alignedAddrItem AlignedAddr

func (a alignedAddrItem) Less(than btree.Item) bool {
	return a < than.(alignedAddrItem)
}

// sweepIndex maintains an ordered view of the live keys in one stripe of
// the coarse-locked map. Go's map iteration order is randomized, which
// makes maintenance-sweep test assertions awkward to pin down; an
// ordered index lets forEach visit a stripe's addresses in deterministic
// ascending order at a small bookkeeping cost on insert/remove. The
// lock-free map has no equivalent index: the safe-reclamation contract
// already makes no ordering promise for its traversal (spec.md §4.7
// tolerates per-stripe order being implementation-defined).
type sweepIndex struct {
	mu   fastlock.Lock
	tree *btree.BTree
}

// btreeDegree is the branching factor passed to btree.New. The stripe's
// own key count is small enough that this is not performance-sensitive;
// the value matches the degree used throughout the google/btree package's
// own examples.
const btreeDegree = 32

func newSweepIndex() *sweepIndex {
	return &sweepIndex{tree: btree.New(btreeDegree)}
}

func (s *sweepIndex) add(key AlignedAddr) {
	s.mu.Lock()
	s.tree.ReplaceOrInsert(alignedAddrItem(key))
	s.mu.Unlock()
}

func (s *sweepIndex) remove(key AlignedAddr) {
	s.mu.Lock()
	s.tree.Delete(alignedAddrItem(key))
	s.mu.Unlock()
}

// ascendingKeys returns a snapshot of the index's keys in ascending
// order.
func (s *sweepIndex) ascendingKeys() []AlignedAddr {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]AlignedAddr, 0, s.tree.Len())
	s.tree.Ascend(func(it btree.Item) bool {
		keys = append(keys, AlignedAddr(it.(alignedAddrItem)))
		return true
	})
	return keys
}
