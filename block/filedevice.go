package block

import (
	"io"
	"os"
)

// FileDevice is a Device backed by an *os.File, the usual way a cheekyfs
// image is persisted across process runs. It performs no buffering or
// caching of its own — every GetBlock/PutBlock is a direct seek-and-read or
// seek-and-write, in keeping with spec.md's "no caching" Non-goal (which
// binds the filesystem layer above, but there's no reason for the device
// adapter to second-guess it either).
type FileDevice struct {
	blockSize   int
	totalBlocks int
	file        *os.File
}

// OpenFileDevice opens (or creates) path as a fixed totalBlocks*blockSize
// byte image. If the file is smaller than that, it's extended with zeros.
func OpenFileDevice(path string, blockSize, totalBlocks int) (*FileDevice, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	wantSize := int64(blockSize) * int64(totalBlocks)
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() < wantSize {
		if err := file.Truncate(wantSize); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &FileDevice{blockSize: blockSize, totalBlocks: totalBlocks, file: file}, nil
}

func (d *FileDevice) BlockSize() int   { return d.blockSize }
func (d *FileDevice) TotalBlocks() int { return d.totalBlocks }

func (d *FileDevice) GetBlock(id int, buf []byte) error {
	if err := CheckBounds(d, id, buf); err != nil {
		return err
	}
	if _, err := d.file.Seek(int64(id*d.blockSize), io.SeekStart); err != nil {
		return err
	}
	_, err := io.ReadFull(d.file, buf[:d.blockSize])
	return err
}

func (d *FileDevice) PutBlock(id int, buf []byte) error {
	if err := CheckBounds(d, id, buf); err != nil {
		return err
	}
	if _, err := d.file.Seek(int64(id*d.blockSize), io.SeekStart); err != nil {
		return err
	}
	_, err := d.file.Write(buf[:d.blockSize])
	return err
}

// Close releases the underlying file handle.
func (d *FileDevice) Close() error {
	return d.file.Close()
}
