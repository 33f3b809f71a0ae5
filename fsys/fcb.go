package fsys

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/noxer/bytewriter"
)

// FCB is a file control block: the fixed-size, per-file record spec.md §3
// describes. The DIR variant's child-list head is never represented here —
// it's transient, in-memory-only state the FileSystem rebuilds at mount time
// from every other FCB's ParentID (spec.md §3, "Never persisted").
type FCB struct {
	Type     FileType
	Name     [MaxPathComponentLength + 1]byte
	Size     uint32
	ParentID FileID
	// Blocks holds the data blocks backing a TypeData file, compact and
	// left-justified (spec.md invariant I3). It is meaningless for TypeDir
	// and TypeNone and every entry is NoBlock for them, both in memory and
	// on disk.
	Blocks [MaxBlocksPerFile]BlockID
}

// fcbRecordSize is sizeof(FCB) in the reference implementation's terms: 1
// byte type tag, name+terminator, a 4-byte size, a 1-byte parent ID, and
// MaxBlocksPerFile 2-byte block IDs.
const fcbRecordSize = 1 + (MaxPathComponentLength + 1) + 4 + 1 + (MaxBlocksPerFile * 2)

// NameString returns the FCB's name as a Go string with the null padding
// trimmed off.
func (fcb *FCB) NameString() string {
	n := bytes.IndexByte(fcb.Name[:], 0)
	if n < 0 {
		n = len(fcb.Name)
	}
	return string(fcb.Name[:n])
}

// SetName copies name into the fixed-size Name field. The caller is
// responsible for having validated name's length already (see path.go).
func (fcb *FCB) SetName(name string) {
	fcb.Name = [MaxPathComponentLength + 1]byte{}
	copy(fcb.Name[:], name)
}

// IsNone reports whether this slot is unused.
func (fcb *FCB) IsNone() bool { return fcb.Type == TypeNone }

// IsData reports whether this FCB describes a regular data file. Write (in
// api.go) uses this predicate explicitly rather than a raw type-tag comparison,
// unlike the reference implementation's `file->type == 1` bug (spec.md §9,
// "Type-tag comparison bug").
func (fcb *FCB) IsData() bool { return fcb.Type == TypeData }

// IsDir reports whether this FCB describes a directory.
func (fcb *FCB) IsDir() bool { return fcb.Type == TypeDir }

// encode serializes the FCB into a fresh fcbRecordSize-byte buffer. For
// directories, the (unused) Blocks field is written as all-NoBlock so that
// on-disk bytes at that offset never accidentally look like valid block IDs;
// spec.md calls for the transient child-list pointer to be zeroed, and since
// Go's FCB has no such pointer field to begin with, filling Blocks with
// NoBlock is the direct analog.
func (fcb *FCB) encode() ([]byte, error) {
	buf := make([]byte, fcbRecordSize)
	w := bytewriter.New(buf)

	if err := binary.Write(w, binary.LittleEndian, uint8(fcb.Type)); err != nil {
		return nil, err
	}
	if _, err := w.Write(fcb.Name[:]); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.LittleEndian, fcb.Size); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.LittleEndian, int8(fcb.ParentID)); err != nil {
		return nil, err
	}

	blocks := fcb.Blocks
	if fcb.IsDir() || fcb.IsNone() {
		blocks = [MaxBlocksPerFile]BlockID{}
		for i := range blocks {
			blocks[i] = NoBlock
		}
	}
	for _, b := range blocks {
		if err := binary.Write(w, binary.LittleEndian, int16(b)); err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// decodeFCB parses an fcbRecordSize-byte record back into an FCB.
func decodeFCB(buf []byte) (FCB, error) {
	if len(buf) < fcbRecordSize {
		return FCB{}, fmt.Errorf("fcb record too short: need %d bytes, got %d", fcbRecordSize, len(buf))
	}

	r := bytes.NewReader(buf)
	var fcb FCB

	var typeTag uint8
	if err := binary.Read(r, binary.LittleEndian, &typeTag); err != nil {
		return FCB{}, err
	}
	fcb.Type = FileType(typeTag)

	if _, err := r.Read(fcb.Name[:]); err != nil {
		return FCB{}, err
	}

	if err := binary.Read(r, binary.LittleEndian, &fcb.Size); err != nil {
		return FCB{}, err
	}

	var parentID int8
	if err := binary.Read(r, binary.LittleEndian, &parentID); err != nil {
		return FCB{}, err
	}
	fcb.ParentID = FileID(parentID)

	for i := range fcb.Blocks {
		var b int16
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return FCB{}, err
		}
		fcb.Blocks[i] = BlockID(b)
	}

	return fcb, nil
}
