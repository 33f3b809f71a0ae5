package block_test

import (
	"path/filepath"
	"testing"

	"github.com/PatSmuk/cheekyfs/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemDeviceRoundTrip(t *testing.T) {
	dev := block.NewMemDevice(128, 4)

	out := make([]byte, 128)
	for i := range out {
		out[i] = byte(i)
	}
	require.NoError(t, dev.PutBlock(2, out))

	in := make([]byte, 128)
	require.NoError(t, dev.GetBlock(2, in))
	assert.Equal(t, out, in)

	// Other blocks remain untouched (zero-filled).
	require.NoError(t, dev.GetBlock(0, in))
	assert.Equal(t, make([]byte, 128), in)
}

func TestMemDeviceOutOfRange(t *testing.T) {
	dev := block.NewMemDevice(128, 4)
	buf := make([]byte, 128)

	assert.Error(t, dev.GetBlock(-1, buf))
	assert.Error(t, dev.GetBlock(4, buf))
	assert.Error(t, dev.PutBlock(4, buf))
}

func TestFileDeviceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	dev, err := block.OpenFileDevice(path, 128, 4)
	require.NoError(t, err)
	defer dev.Close()

	assert.Equal(t, 4, dev.TotalBlocks())
	assert.Equal(t, 128, dev.BlockSize())

	payload := []byte("hello, cheeky world! padded out to one block-----------------------------------------------------------------")
	buf := make([]byte, 128)
	copy(buf, payload)

	require.NoError(t, dev.PutBlock(1, buf))

	readBack := make([]byte, 128)
	require.NoError(t, dev.GetBlock(1, readBack))
	assert.Equal(t, buf, readBack)
}
