package block

import (
	"io"

	"github.com/xaionaro-go/bytesextra"
)

// MemDevice is a Device backed entirely by an in-memory byte slice, used by
// tests and by short-lived cheekyfs images that don't need to outlive the
// process. It wraps the slice as an io.ReadWriteSeeker the same way
// dargueta-disko's testing helpers and block cache do, via
// bytesextra.NewReadWriteSeeker.
type MemDevice struct {
	blockSize   int
	totalBlocks int
	stream      io.ReadWriteSeeker
}

// NewMemDevice allocates a zero-filled image of blockSize*totalBlocks bytes
// and returns a Device over it.
func NewMemDevice(blockSize, totalBlocks int) *MemDevice {
	data := make([]byte, blockSize*totalBlocks)
	return &MemDevice{
		blockSize:   blockSize,
		totalBlocks: totalBlocks,
		stream:      bytesextra.NewReadWriteSeeker(data),
	}
}

// WrapMemDevice builds a Device over an existing byte slice without copying
// it, for tests that want to inspect or pre-seed the backing bytes.
func WrapMemDevice(data []byte, blockSize int) *MemDevice {
	return &MemDevice{
		blockSize:   blockSize,
		totalBlocks: len(data) / blockSize,
		stream:      bytesextra.NewReadWriteSeeker(data),
	}
}

func (d *MemDevice) BlockSize() int   { return d.blockSize }
func (d *MemDevice) TotalBlocks() int { return d.totalBlocks }

func (d *MemDevice) GetBlock(id int, buf []byte) error {
	if err := CheckBounds(d, id, buf); err != nil {
		return err
	}
	if _, err := d.stream.Seek(int64(id*d.blockSize), io.SeekStart); err != nil {
		return err
	}
	_, err := io.ReadFull(d.stream, buf[:d.blockSize])
	return err
}

func (d *MemDevice) PutBlock(id int, buf []byte) error {
	if err := CheckBounds(d, id, buf); err != nil {
		return err
	}
	if _, err := d.stream.Seek(int64(id*d.blockSize), io.SeekStart); err != nil {
		return err
	}
	_, err := d.stream.Write(buf[:d.blockSize])
	return err
}
