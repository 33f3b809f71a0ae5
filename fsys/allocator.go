package fsys

import (
	"github.com/boljen/go-bitmap"

	fserrors "github.com/PatSmuk/cheekyfs/errors"
)

// blockAllocator tracks which blocks are available for DATA payload
// allocation (spec.md §3, "Free-block map"). Internally a bit is set once a
// block is claimed — the same polarity dargueta-disko's
// drivers/common.Allocator uses — so "free" is simply the negation of "set".
type blockAllocator struct {
	used bitmap.Bitmap
}

func newBlockAllocator() *blockAllocator {
	return &blockAllocator{used: bitmap.New(MaxBlocks)}
}

// MarkUsed claims a block, regardless of its previous state. Used while
// rebuilding the map at mount time and when reserving the header/FCB blocks.
func (a *blockAllocator) MarkUsed(id BlockID) {
	a.used.Set(int(id), true)
}

// MarkFree releases a block back to the pool.
func (a *blockAllocator) MarkFree(id BlockID) {
	a.used.Set(int(id), false)
}

// IsFree reports whether a block is available for allocation.
func (a *blockAllocator) IsFree(id BlockID) bool {
	return !a.used.Get(int(id))
}

// ResetAllFree marks every block in the device as available. Called at the
// start of every Initialize (spec.md §4.4).
func (a *blockAllocator) ResetAllFree() {
	a.used = bitmap.New(MaxBlocks)
}

// Allocate claims and returns the first free block it finds, scanning from
// index 0 (spec.md §4.2, allocation step 1). It returns ErrNoMoreBlocks if
// the device has no free blocks left at all.
func (a *blockAllocator) Allocate() (BlockID, error) {
	for i := 0; i < MaxBlocks; i++ {
		if a.IsFree(BlockID(i)) {
			a.MarkUsed(BlockID(i))
			return BlockID(i), nil
		}
	}
	return NoBlock, fserrors.ErrNoMoreBlocks
}
