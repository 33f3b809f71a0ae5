package fsys

import "log"

// directoryTable holds the in-memory, doubly-traversable child lists for
// every directory FCB (spec.md §3, "Directory list node"; §4.3). The
// reference implementation models this as a hand-rolled doubly linked list
// of heap nodes; cheekyfs uses an index-based intrusive list instead (spec.md
// §9 recommends exactly this), since the file table already gives every FCB
// a stable identity to key by — no separate node ownership is needed.
//
// Never persisted: it's rebuilt at mount time from every FCB's ParentID
// (spec.md §4.4 step 4).
type directoryTable struct {
	children   map[FileID][]FileID
	generation map[FileID]uint64
}

func newDirectoryTable() *directoryTable {
	return &directoryTable{
		children:   make(map[FileID][]FileID),
		generation: make(map[FileID]uint64),
	}
}

// reset discards every child list. Called when Initialize is invoked on an
// already-initialized FileSystem (spec.md §4.4, "free_directory_lists").
func (d *directoryTable) reset() {
	d.children = make(map[FileID][]FileID)
	d.generation = make(map[FileID]uint64)
}

// Children returns the ordered list of a directory's child FileIDs. The
// returned slice must not be mutated by the caller.
func (d *directoryTable) Children(dir FileID) []FileID {
	return d.children[dir]
}

// Generation returns the current change counter for a directory, bumped on
// every Add/Remove. Open directory descriptors compare against this to
// notice their cursor was invalidated by a concurrent mutation (spec.md §9,
// "Open-file cursor invalidation").
func (d *directoryTable) Generation(dir FileID) uint64 {
	return d.generation[dir]
}

// Add appends child to dir's child list (insertion order is preserved, per
// spec.md §4.3).
func (d *directoryTable) Add(dir, child FileID) {
	d.children[dir] = append(d.children[dir], child)
	d.generation[dir]++
}

// Remove splices child out of dir's child list. A child that isn't actually
// present is logged but not treated as an error, matching spec.md §4.3
// ("Missing children are logged but not errors").
func (d *directoryTable) Remove(dir, child FileID) {
	list := d.children[dir]
	for i, id := range list {
		if id == child {
			d.children[dir] = append(list[:i], list[i+1:]...)
			d.generation[dir]++
			return
		}
	}
	log.Printf("cheekyfs: tried to remove file %d from directory %d, but it wasn't a child", child, dir)
}
