package fsys

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// joinErrors collapses a slice of independent validation problems into one
// error, using hashicorp/go-multierror the way mount-time validation
// aggregates them across the ambient stack's error-handling convention:
// every problem is preserved and reported together rather than only the
// first.
func joinErrors(problems []error) error {
	var result *multierror.Error
	for _, p := range problems {
		result = multierror.Append(result, p)
	}
	return result
}

// validateFileTable checks every invariant spec.md §3 places on the file
// table as a whole, once the raw FCBs have been read off the device but
// before any of them are trusted. It returns every violation found.
func validateFileTable(files []FCB) []error {
	var problems []error

	root := files[RootFileID]
	if !root.IsDir() {
		problems = append(problems, fmt.Errorf("file 0 is not a directory (invariant I1)"))
	}
	if root.NameString() != "/" {
		problems = append(problems, fmt.Errorf("file 0 is not named \"/\" (invariant I1)"))
	}
	if root.ParentID != NoParent {
		problems = append(problems, fmt.Errorf("root directory has a parent (got %d, want NoParent)", root.ParentID))
	}

	childCount := map[FileID]uint32{}
	for _, f := range files {
		if f.IsData() || f.IsDir() {
			childCount[f.ParentID]++
		}
	}
	seen := map[BlockID]bool{}
	for i := range files {
		fcb := &files[i]
		id := FileID(i)

		switch fcb.Type {
		case TypeNone, TypeData, TypeDir:
		default:
			problems = append(problems, fmt.Errorf("file %d: invalid type tag %d", id, fcb.Type))
			continue
		}

		if fcb.IsNone() {
			continue
		}

		if id != RootFileID {
			if fcb.ParentID < 0 || int(fcb.ParentID) >= len(files) {
				problems = append(problems, fmt.Errorf("file %d: parent id %d out of range", id, fcb.ParentID))
			} else if fcb.ParentID == id {
				problems = append(problems, fmt.Errorf("file %d: is its own parent (invariant I2)", id))
			} else if !files[fcb.ParentID].IsDir() {
				problems = append(problems, fmt.Errorf("file %d: parent %d is not a directory", id, fcb.ParentID))
			}
		}

		if fcb.IsDir() {
			if childCount[id] != fcb.Size {
				problems = append(problems, fmt.Errorf("file %d: directory size %d but %d children (invariant I5)", id, fcb.Size, childCount[id]))
			}
			for _, b := range fcb.Blocks {
				if b != NoBlock {
					problems = append(problems, fmt.Errorf("file %d: directory has a non-empty block list (invariant: DIR blocks always NoBlock)", id))
					break
				}
			}
			continue
		}

		// TypeData from here down.
		blockCount := 0
		sawHole := false
		for _, b := range fcb.Blocks {
			if b == NoBlock {
				sawHole = true
				continue
			}
			if sawHole {
				problems = append(problems, fmt.Errorf("file %d: block list is not left-justified (invariant I3)", id))
			}
			firstDataBlock := int(homeBlock(MaxFiles-1)) + 1
			if int(b) < firstDataBlock || int(b) >= MaxBlocks {
				problems = append(problems, fmt.Errorf("file %d: block id %d out of range", id, b))
			}
			if seen[b] {
				problems = append(problems, fmt.Errorf("file %d: block id %d used twice", id, b))
			}
			seen[b] = true
			blockCount++
		}

		// Invariant I4 is an equality, not a bound: a file with no blocks
		// must have size 0, and a file with any blocks must have exactly
		// size/BlockSize + 1 of them (original_source/src/sfs_initialize.c:162-167).
		if blockCount == 0 {
			if fcb.Size != 0 {
				problems = append(problems, fmt.Errorf("file %d: size %d but no blocks allocated (invariant I4)", id, fcb.Size))
			}
		} else if want := int(fcb.Size)/BlockSize + 1; want != blockCount {
			problems = append(problems, fmt.Errorf("file %d: size %d requires exactly %d blocks, got %d (invariant I4)", id, fcb.Size, want, blockCount))
		}
	}

	return problems
}
