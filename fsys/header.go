package fsys

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/noxer/bytewriter"
)

// fsHeader is the metadata record stored in block 0 (spec.md §3, §6). It's
// used to validate that a mounted image was produced by a build of cheekyfs
// with the same layout assumptions as the one doing the mounting.
type fsHeader struct {
	Magic1                 [8]byte
	Version                uint32
	FCBSize                uint32
	BlockSize              uint32
	MaxBlocks              uint32
	MaxFiles               uint32
	MaxBlocksPerFile       uint32
	MaxPathComponentLength uint32
	Magic2                 [8]byte
}

const headerRecordSize = 8 + 4*7 + 8

func newHeader() fsHeader {
	var h fsHeader
	copy(h.Magic1[:], magic1)
	copy(h.Magic2[:], magic2)
	h.Version = headerVersion
	h.FCBSize = fcbRecordSize
	h.BlockSize = BlockSize
	h.MaxBlocks = MaxBlocks
	h.MaxFiles = MaxFiles
	h.MaxBlocksPerFile = MaxBlocksPerFile
	h.MaxPathComponentLength = MaxPathComponentLength
	return h
}

// encode serializes the header into a full BlockSize-byte block, zero-padded
// after the header fields.
func (h *fsHeader) encode() ([]byte, error) {
	buf := make([]byte, BlockSize)
	w := bytewriter.New(buf)

	fields := []any{
		h.Magic1, h.Version, h.FCBSize, h.BlockSize, h.MaxBlocks,
		h.MaxFiles, h.MaxBlocksPerFile, h.MaxPathComponentLength, h.Magic2,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func decodeHeader(buf []byte) (fsHeader, error) {
	if len(buf) < headerRecordSize {
		return fsHeader{}, fmt.Errorf(
			"header record too short: need %d bytes, got %d", headerRecordSize, len(buf))
	}

	r := bytes.NewReader(buf)
	var h fsHeader
	fields := []any{
		&h.Magic1, &h.Version, &h.FCBSize, &h.BlockSize, &h.MaxBlocks,
		&h.MaxFiles, &h.MaxBlocksPerFile, &h.MaxPathComponentLength, &h.Magic2,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return fsHeader{}, err
		}
	}
	return h, nil
}

// validate checks every field against this build's compile-time constants
// (spec.md §4.4, "Mount existing" step 1). It returns every mismatch it
// finds rather than bailing on the first, so callers can report a full
// diagnostic.
func (h *fsHeader) validate() []error {
	var problems []error

	want := newHeader()
	if h.Magic1 != want.Magic1 {
		problems = append(problems, fmt.Errorf("magic1 mismatch: got %q", h.Magic1))
	}
	if h.Magic2 != want.Magic2 {
		problems = append(problems, fmt.Errorf("magic2 mismatch: got %q", h.Magic2))
	}
	if h.Version != want.Version {
		problems = append(problems, fmt.Errorf("version mismatch: got %d, want %d", h.Version, want.Version))
	}
	if h.FCBSize != want.FCBSize {
		problems = append(problems, fmt.Errorf("FCB size mismatch: got %d, want %d", h.FCBSize, want.FCBSize))
	}
	if h.BlockSize != want.BlockSize {
		problems = append(problems, fmt.Errorf("block size mismatch: got %d, want %d", h.BlockSize, want.BlockSize))
	}
	if h.MaxBlocks != want.MaxBlocks {
		problems = append(problems, fmt.Errorf("max blocks mismatch: got %d, want %d", h.MaxBlocks, want.MaxBlocks))
	}
	if h.MaxFiles != want.MaxFiles {
		problems = append(problems, fmt.Errorf("max files mismatch: got %d, want %d", h.MaxFiles, want.MaxFiles))
	}
	if h.MaxBlocksPerFile != want.MaxBlocksPerFile {
		problems = append(problems, fmt.Errorf("max blocks per file mismatch: got %d, want %d", h.MaxBlocksPerFile, want.MaxBlocksPerFile))
	}
	if h.MaxPathComponentLength != want.MaxPathComponentLength {
		problems = append(problems, fmt.Errorf("max path component length mismatch: got %d, want %d", h.MaxPathComponentLength, want.MaxPathComponentLength))
	}
	return problems
}
