package fsys

import (
	"github.com/PatSmuk/cheekyfs/block"
	fserrors "github.com/PatSmuk/cheekyfs/errors"
)

// fcbsPerBlock (F in spec.md §3) is how many FCB records fit in one block.
const fcbsPerBlock = BlockSize / fcbRecordSize

// FileSystem is a mounted cheekyfs image: the file table, directory lists,
// free-block map, and open-file table spec.md §5 describes as "process-wide
// globals" are instead fields of this handle (spec.md §9, "Global state"),
// so nothing here is shared across independently mounted images.
type FileSystem struct {
	device  block.Device
	files   [MaxFiles]FCB
	dirs    *directoryTable
	free    *blockAllocator
	open    [MaxOpenFiles]openFileEntry
	mounted bool
}

// New returns an unmounted FileSystem. Initialize must be called before any
// other method.
func New() *FileSystem {
	return &FileSystem{
		dirs: newDirectoryTable(),
		free: newBlockAllocator(),
	}
}

// homeBlock returns the block an FCB's record lives in (spec.md §3, "FCB
// placement on disk"): block(id) = 1 + id/F.
func homeBlock(id FileID) BlockID {
	return BlockID(1 + int(id)/fcbsPerBlock)
}

// recordOffset returns the byte offset of an FCB's record within its home
// block: offset(id) = (id mod F) * sizeof(FCB).
func recordOffset(id FileID) int {
	return (int(id) % fcbsPerBlock) * fcbRecordSize
}

// loadFCB reads a single FCB from its home block on the device.
func (fs *FileSystem) loadFCB(id FileID) (FCB, error) {
	buf := make([]byte, BlockSize)
	if err := fs.device.GetBlock(int(homeBlock(id)), buf); err != nil {
		return FCB{}, fserrors.ErrBlockIO.WrapError(err)
	}
	offset := recordOffset(id)
	return decodeFCB(buf[offset : offset+fcbRecordSize])
}

// saveFCB writes fs.files[id] back to its home block: read the block,
// overwrite the FCB's offset region, write the block back (spec.md §4.2,
// "save_file").
func (fs *FileSystem) saveFCB(id FileID) error {
	buf := make([]byte, BlockSize)
	block := homeBlock(id)
	if err := fs.device.GetBlock(int(block), buf); err != nil {
		return fserrors.ErrBlockIO.WrapError(err)
	}

	record, err := fs.files[id].encode()
	if err != nil {
		return err
	}
	offset := recordOffset(id)
	copy(buf[offset:offset+fcbRecordSize], record)

	if err := fs.device.PutBlock(int(block), buf); err != nil {
		return fserrors.ErrBlockIO.WrapError(err)
	}
	return nil
}

// findEmptyFCB returns the FileID of the first unused file table slot, or
// -1 if the table is full (spec.md §4.2, "find_empty_file").
func (fs *FileSystem) findEmptyFCB() FileID {
	for i := 0; i < MaxFiles; i++ {
		if fs.files[i].IsNone() {
			return FileID(i)
		}
	}
	return -1
}

// Initialize mounts or formats the image (spec.md §4.4). With erase == false
// on an already-formatted image, this mounts it, validating every invariant
// in spec.md §3; any violation returns ErrInvalidDataFile. With erase == true,
// or on an unformatted image (block 0's first byte is zero), a fresh
// filesystem consisting of a single empty root directory is created.
//
// Calling Initialize again on an already-mounted FileSystem first releases
// every directory's child list, matching the reference implementation's
// free_directory_lists() cleanup on repeated initialization.
func (fs *FileSystem) Initialize(device block.Device, erase bool) error {
	if err := checkLayoutPreconditions(); err != nil {
		return err
	}

	fs.device = device

	if fs.mounted {
		fs.dirs.reset()
		fs.open = [MaxOpenFiles]openFileEntry{}
	}
	fs.mounted = true
	fs.free.ResetAllFree()

	block0 := make([]byte, BlockSize)
	if err := fs.device.GetBlock(0, block0); err != nil {
		return fserrors.ErrBlockIO.WrapError(err)
	}
	fs.free.MarkUsed(0)

	if block0[0] != 0 && !erase {
		return fs.mountExisting(block0)
	}
	return fs.createFresh(erase)
}

// checkLayoutPreconditions enforces the static assumptions spec.md §4.4
// requires every Initialize call to re-check.
func checkLayoutPreconditions() error {
	if !fserrors.Sane() {
		return fserrors.ErrAdjustErrorCodes
	}

	fileBlocks := MaxFiles / fcbsPerBlock
	if MaxFiles%fcbsPerBlock != 0 {
		fileBlocks++
	}
	if fileBlocks >= MaxBlocks-1 {
		return fserrors.ErrNotEnoughBlocksForFiles
	}
	if BlockSize < fcbRecordSize {
		return fserrors.ErrBlocksTooSmallForFile
	}
	return nil
}

func (fs *FileSystem) createFresh(erase bool) error {
	var root FCB
	root.Type = TypeDir
	root.SetName("/")
	root.Size = 0
	root.ParentID = NoParent
	for i := range root.Blocks {
		root.Blocks[i] = NoBlock
	}
	fs.files[RootFileID] = root

	header := newHeader()
	headerBlock, err := header.encode()
	if err != nil {
		return err
	}
	if err := fs.device.PutBlock(0, headerBlock); err != nil {
		return fserrors.ErrBlockIO.WrapError(err)
	}

	if err := fs.saveFCB(RootFileID); err != nil {
		return err
	}

	if erase {
		zero := make([]byte, BlockSize)
		for i := 2; i < MaxBlocks; i++ {
			if err := fs.device.PutBlock(i, zero); err != nil {
				return fserrors.ErrBlockIO.WrapError(err)
			}
		}
	}

	for i := FileID(1); i < MaxFiles; i++ {
		fcb := FCB{Type: TypeNone, ParentID: NoParent}
		for b := range fcb.Blocks {
			fcb.Blocks[b] = NoBlock
		}
		fs.files[i] = fcb
		if err := fs.saveFCB(i); err != nil {
			return err
		}
	}

	for i := FileID(0); i < MaxFiles; i++ {
		fs.free.MarkUsed(homeBlock(i))
	}
	return nil
}

// mountExisting validates and loads an already-formatted image (spec.md
// §4.4, "Mount existing"): the header must match this build's layout
// constants, every FCB must satisfy the invariants in spec.md §3, and only
// then is the in-memory directory table and free-block map rebuilt from what
// was read. Any problem collapses to a single ErrInvalidDataFile wrapping
// every individual violation found, so a caller gets a complete diagnostic
// rather than just the first failure.
func (fs *FileSystem) mountExisting(block0 []byte) error {
	header, err := decodeHeader(block0)
	if err != nil {
		return fserrors.ErrInvalidDataFile.WrapError(err)
	}
	if problems := header.validate(); len(problems) > 0 {
		return fserrors.ErrInvalidDataFile.WrapError(joinErrors(problems))
	}

	for i := FileID(0); i < MaxFiles; i++ {
		fcb, err := fs.loadFCB(i)
		if err != nil {
			return fserrors.ErrInvalidDataFile.WrapError(err)
		}
		fs.files[i] = fcb
		fs.free.MarkUsed(homeBlock(i))
	}

	if problems := validateFileTable(fs.files[:]); len(problems) > 0 {
		return fserrors.ErrInvalidDataFile.WrapError(joinErrors(problems))
	}

	for i := FileID(1); i < MaxFiles; i++ {
		fcb := &fs.files[i]
		if fcb.IsNone() {
			continue
		}
		fs.dirs.Add(fcb.ParentID, i)
		if fcb.IsData() {
			for _, b := range fcb.Blocks {
				if b != NoBlock {
					fs.free.MarkUsed(b)
				}
			}
		}
	}

	return nil
}

// allocateDataBlock claims a new data block for fcb and appends it to the
// FCB's block list (spec.md §4.2, write allocation order): first the FCB's
// own per-file slot is checked (ErrFileFull if every Blocks entry is already
// in use), then a block is claimed from the device-wide free map
// (ErrNoMoreBlocks if none remain).
func (fs *FileSystem) allocateDataBlock(fcb *FCB) (BlockID, error) {
	slot := -1
	for i, b := range fcb.Blocks {
		if b == NoBlock {
			slot = i
			break
		}
	}
	if slot == -1 {
		return NoBlock, fserrors.ErrFileFull
	}

	id, err := fs.free.Allocate()
	if err != nil {
		return NoBlock, err
	}
	fcb.Blocks[slot] = id
	return id, nil
}

// releaseDataBlocks zeroes and frees every data block owned by fcb, then
// clears its block list. Used by deletion (spec.md §4.4, "delete").
func (fs *FileSystem) releaseDataBlocks(fcb *FCB) error {
	zero := make([]byte, BlockSize)
	for i, b := range fcb.Blocks {
		if b == NoBlock {
			continue
		}
		if err := fs.device.PutBlock(int(b), zero); err != nil {
			return fserrors.ErrBlockIO.WrapError(err)
		}
		fs.free.MarkFree(b)
		fcb.Blocks[i] = NoBlock
	}
	return nil
}
