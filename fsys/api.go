package fsys

import (
	"io"

	fserrors "github.com/PatSmuk/cheekyfs/errors"
)

// DirEntry is one entry returned by ReadDir.
type DirEntry struct {
	Name string
	Type FileType
}

// resolve walks path from the root directory and returns the FileID it
// names (spec.md §4.1). The root itself resolves to RootFileID.
func (fs *FileSystem) resolve(path string) (FileID, error) {
	components, err := splitPath(path)
	if err != nil {
		return NoParent, err
	}

	current := RootFileID
	for _, name := range components {
		found := NoParent
		for _, child := range fs.dirs.Children(current) {
			if fs.files[child].NameString() == name {
				found = child
				break
			}
		}
		if found == NoParent {
			return NoParent, fserrors.ErrFileNotFound
		}
		current = found
	}
	return current, nil
}

// resolveParent splits path into the FileID of its containing directory and
// the final component's name, for use by Create and Delete.
func (fs *FileSystem) resolveParent(path string) (FileID, string, error) {
	components, err := splitPath(path)
	if err != nil {
		return NoParent, "", err
	}
	if len(components) == 0 {
		return NoParent, "", fserrors.ErrInvalidPath.WithMessage("root has no parent")
	}

	current := RootFileID
	for _, name := range components[:len(components)-1] {
		found := NoParent
		for _, child := range fs.dirs.Children(current) {
			if fs.files[child].NameString() == name {
				found = child
				break
			}
		}
		if found == NoParent {
			return NoParent, "", fserrors.ErrFileNotFound
		}
		current = found
	}
	if !fs.files[current].IsDir() {
		return NoParent, "", fserrors.ErrBadFileType
	}
	return current, components[len(components)-1], nil
}

// checkFD validates a file descriptor against the open-file table.
func (fs *FileSystem) checkFD(fd int) (*openFileEntry, error) {
	if fd < 0 || fd >= MaxOpenFiles || !fs.open[fd].inUse {
		return nil, fserrors.ErrBadFD
	}
	return &fs.open[fd], nil
}

// Open resolves path and claims a slot in the open-file table, returning a
// descriptor for subsequent Read, Write, ReadDir, and Close calls (spec.md
// §4.4, "open").
func (fs *FileSystem) Open(path string) (int, error) {
	id, err := fs.resolve(path)
	if err != nil {
		return -1, err
	}

	for fd := range fs.open {
		if !fs.open[fd].inUse {
			fs.open[fd] = openFileEntry{inUse: true, fileID: id}
			return fd, nil
		}
	}
	return -1, fserrors.ErrTooManyOpen
}

// Close releases a descriptor back to the open-file table (spec.md §4.4,
// "close").
func (fs *FileSystem) Close(fd int) error {
	if _, err := fs.checkFD(fd); err != nil {
		return err
	}
	fs.open[fd] = openFileEntry{}
	return nil
}

// Read copies len(buf) bytes starting at byte offset start within the open
// file's data into buf (spec.md §4.4, "read"). A single call may never span
// more than one on-disk block (ErrBlockFault), matching the block-device
// contract the whole filesystem is built on.
func (fs *FileSystem) Read(fd int, start uint32, buf []byte) (int, error) {
	entry, err := fs.checkFD(fd)
	if err != nil {
		return 0, err
	}
	fcb := &fs.files[entry.fileID]
	if !fcb.IsData() {
		return 0, fserrors.ErrBadFileType
	}
	if start > fcb.Size {
		return 0, fserrors.ErrInvalidStartLoc
	}
	// start == size, length == 0 is the boundary case spec.md §8 calls out as
	// a trivial success rather than an out-of-range read.
	if len(buf) == 0 {
		return 0, nil
	}

	blockIndex := int(start) / BlockSize
	inBlockOffset := int(start) % BlockSize
	if inBlockOffset+len(buf) > BlockSize {
		return 0, fserrors.ErrBlockFault
	}
	if start+uint32(len(buf)) > fcb.Size {
		return 0, fserrors.ErrNotEnoughData
	}
	if blockIndex >= len(fcb.Blocks) || fcb.Blocks[blockIndex] == NoBlock {
		return 0, fserrors.ErrNotEnoughData
	}

	block := make([]byte, BlockSize)
	if err := fs.device.GetBlock(int(fcb.Blocks[blockIndex]), block); err != nil {
		return 0, fserrors.ErrBlockIO.WrapError(err)
	}
	n := copy(buf, block[inBlockOffset:inBlockOffset+len(buf)])
	return n, nil
}

// Write copies data into the open file, either overwriting in place at byte
// offset start or, when start is -1, appending (spec.md §4.4, "write",
// "Append mode" — the only way to grow a file; original_source/src/sfs_write.c:33-53).
// Overwriting never grows the file: start+len(data) must already fit within
// the file's current size, or ErrNotEnoughData is returned
// (sfs_write.c:56-57). Appending always lands at the current end of file and
// may allocate a new block. Neither mode may span more than one on-disk
// block (ErrBlockFault).
//
// The FCB is always persisted after a successful write, whether or not the
// file grew (spec.md §9, "Post-write FCB persistence" — the reference
// implementation only does this on growth, which loses in-place edits across
// a crash).
func (fs *FileSystem) Write(fd int, start int32, data []byte) (int, error) {
	entry, err := fs.checkFD(fd)
	if err != nil {
		return 0, err
	}
	fcb := &fs.files[entry.fileID]
	if !fcb.IsData() {
		return 0, fserrors.ErrBadFileType
	}
	if len(data) == 0 {
		return 0, nil
	}

	appending := start == -1
	var offset uint32
	if appending {
		offset = fcb.Size
	} else {
		if start < 0 {
			return 0, fserrors.ErrInvalidStartLoc
		}
		offset = uint32(start)
		if offset+uint32(len(data)) > fcb.Size {
			return 0, fserrors.ErrNotEnoughData
		}
	}

	blockIndex := int(offset) / BlockSize
	inBlockOffset := int(offset) % BlockSize
	if inBlockOffset+len(data) > BlockSize {
		return 0, fserrors.ErrBlockFault
	}

	occupied := 0
	for _, b := range fcb.Blocks {
		if b != NoBlock {
			occupied++
		}
	}

	var blockID BlockID
	switch {
	case blockIndex < occupied:
		blockID = fcb.Blocks[blockIndex]
	case appending && blockIndex == occupied:
		blockID, err = fs.allocateDataBlock(fcb)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fserrors.ErrInvalidStartLoc
	}

	block := make([]byte, BlockSize)
	if err := fs.device.GetBlock(int(blockID), block); err != nil {
		return 0, fserrors.ErrBlockIO.WrapError(err)
	}
	n := copy(block[inBlockOffset:], data)
	if err := fs.device.PutBlock(int(blockID), block); err != nil {
		return 0, fserrors.ErrBlockIO.WrapError(err)
	}

	if appending {
		if end := offset + uint32(n); end > fcb.Size {
			fcb.Size = end
		}
	}
	if err := fs.saveFCB(entry.fileID); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadDir returns the next entry of an open directory descriptor, or io.EOF
// once every child has been returned (spec.md §4.4, "readdir").
func (fs *FileSystem) ReadDir(fd int) (DirEntry, error) {
	entry, err := fs.checkFD(fd)
	if err != nil {
		return DirEntry{}, err
	}
	fcb := &fs.files[entry.fileID]
	if !fcb.IsDir() {
		return DirEntry{}, fserrors.ErrBadFileType
	}

	children := fs.dirs.Children(entry.fileID)
	currentGen := fs.dirs.Generation(entry.fileID)
	cur := &entry.cursor

	idx := cur.index
	if cur.started && cur.generation != currentGen {
		found := -1
		for i, c := range children {
			if c == cur.lastReturned {
				found = i
				break
			}
		}
		if found >= 0 {
			idx = found + 1
		} else {
			// The last-returned child was removed, so the entries after it
			// moved up one place.
			idx--
			if idx > len(children) {
				idx = len(children)
			}
		}
	}

	if idx >= len(children) {
		cur.index = idx
		cur.generation = currentGen
		return DirEntry{}, io.EOF
	}

	child := children[idx]
	childFCB := &fs.files[child]

	cur.started = true
	cur.index = idx + 1
	cur.lastReturned = child
	cur.generation = currentGen

	return DirEntry{Name: childFCB.NameString(), Type: childFCB.Type}, nil
}

// syncParentSize recomputes a directory's Size (its child count) and
// persists it (spec.md §9, "Parent-size persistence" — the reference
// implementation updates the in-memory count but only ever writes the
// parent FCB back out on an unrelated later save, so a crash right after
// create/delete loses the new count).
func (fs *FileSystem) syncParentSize(parent FileID) error {
	fs.files[parent].Size = uint32(len(fs.dirs.Children(parent)))
	return fs.saveFCB(parent)
}

// Create makes a new, empty file or directory at path (spec.md §4.4,
// "create"). The parent directory named by path must already exist.
func (fs *FileSystem) Create(path string, fileType FileType) error {
	if fileType != TypeData && fileType != TypeDir {
		return fserrors.ErrInvalidType
	}

	parentID, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}

	for _, child := range fs.dirs.Children(parentID) {
		if fs.files[child].NameString() == name {
			return fserrors.ErrNameTaken
		}
	}

	id := fs.findEmptyFCB()
	if id == -1 {
		return fserrors.ErrFileSystemFull
	}

	var fcb FCB
	fcb.Type = fileType
	fcb.SetName(name)
	fcb.ParentID = parentID
	for i := range fcb.Blocks {
		fcb.Blocks[i] = NoBlock
	}
	fs.files[id] = fcb

	if err := fs.saveFCB(id); err != nil {
		return err
	}
	fs.dirs.Add(parentID, id)

	return fs.syncParentSize(parentID)
}

// isOpen reports whether any open-file descriptor currently refers to id.
func (fs *FileSystem) isOpen(id FileID) bool {
	for _, entry := range fs.open {
		if entry.inUse && entry.fileID == id {
			return true
		}
	}
	return false
}

// Delete removes the file or empty directory named by path (spec.md §4.4,
// "delete"). Deleting the root directory is never permitted (spec.md §9,
// "Protecting the root directory" — the reference implementation has no
// such guard and will corrupt the file table if asked to delete file 0).
func (fs *FileSystem) Delete(path string) error {
	id, err := fs.resolve(path)
	if err != nil {
		return err
	}
	if id == RootFileID {
		return fserrors.ErrCantDeleteRoot
	}

	fcb := &fs.files[id]
	if fcb.IsDir() && len(fs.dirs.Children(id)) > 0 {
		return fserrors.ErrDirNotEmpty
	}
	if fs.isOpen(id) {
		return fserrors.ErrFileOpen
	}

	if fcb.IsData() {
		if err := fs.releaseDataBlocks(fcb); err != nil {
			return err
		}
	}

	parentID := fcb.ParentID
	fs.dirs.Remove(parentID, id)

	fs.files[id] = FCB{Type: TypeNone, ParentID: NoParent}
	for i := range fs.files[id].Blocks {
		fs.files[id].Blocks[i] = NoBlock
	}
	if err := fs.saveFCB(id); err != nil {
		return err
	}

	return fs.syncParentSize(parentID)
}

// GetSize returns the file's size in bytes, or a directory's child count
// (spec.md §4.4, "getsize").
func (fs *FileSystem) GetSize(path string) (uint32, error) {
	id, err := fs.resolve(path)
	if err != nil {
		return 0, err
	}
	return fs.files[id].Size, nil
}

// GetType returns whether path names a regular file or a directory (spec.md
// §4.4, "gettype").
func (fs *FileSystem) GetType(path string) (FileType, error) {
	id, err := fs.resolve(path)
	if err != nil {
		return TypeNone, err
	}
	return fs.files[id].Type, nil
}
