// Package fsys implements the CHEEKY/SNEAKY fixed-size filesystem described
// in spec.md: a bounded collection of regular files and directories packed
// into a single block.Device image, addressed through ten POSIX-like
// operations (spec.md §1, §4.4).
package fsys

// Compile-time constants (spec.md §3). These are given for reference
// compatibility; changing any of them changes the on-disk layout and must be
// accompanied by a bump of headerVersion.
const (
	// BlockSize is the size, in bytes, of a single block on the backing
	// block.Device.
	BlockSize = 128

	// MaxBlocks is the total number of blocks the backing device exposes.
	MaxBlocks = 512

	// MaxFiles is the number of file control block slots in the file table,
	// including the root directory.
	MaxFiles = 64

	// MaxBlocksPerFile bounds how many data blocks a single DATA file may
	// occupy, and therefore its maximum size (MaxBlocksPerFile * BlockSize).
	MaxBlocksPerFile = 4

	// MaxPathComponentLength is the longest a single path component (a name
	// between two slashes) may be.
	MaxPathComponentLength = 6

	// MaxOpenFiles bounds the size of the open-file table.
	MaxOpenFiles = 4

	// headerVersion is bumped whenever the on-disk layout of the header or
	// FCB changes in a way existing images can't be read across.
	headerVersion = 1

	// magic1 and magic2 bracket the header (spec.md §6) so a mount can tell
	// an unformatted or foreign image apart from a real one, and catch
	// field-size drift between builds.
	magic1 = "CHEEKY "
	magic2 = "SNEAKY "
)

// NoBlock is the BlockID sentinel meaning "no block assigned".
const NoBlock BlockID = -1

// NoParent is the FileID sentinel meaning "no parent directory" — valid only
// for the root directory.
const NoParent FileID = -1

// RootFileID is the FileID of the root directory, which is always file 0
// (spec.md §3, invariant I1).
const RootFileID FileID = 0
