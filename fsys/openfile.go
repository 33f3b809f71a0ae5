package fsys

// dirCursor tracks a directory descriptor's position in ReadDir iteration
// (spec.md §4.4 "readdir"; §9 "Open-file cursor invalidation"). Rather than
// a raw pointer into the child list — the reference implementation's
// dangling-pointer bug — the cursor is re-resolved by last-returned FileID
// against the live child list on every call, and carries a snapshot of the
// directory's generation counter so a mutation spliced in since the last
// call can be detected instead of silently skipping or repeating an entry.
// If the last-returned entry has itself been removed, iteration resumes at
// the position that entry held.
type dirCursor struct {
	started      bool
	index        int
	lastReturned FileID
	generation   uint64
}

// openFileEntry is one slot of the open-file table (spec.md §3, "Open-file
// entry"). An unoccupied slot has inUse == false.
type openFileEntry struct {
	inUse  bool
	fileID FileID
	cursor dirCursor
}
