package fsys

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PatSmuk/cheekyfs/block"
	fserrors "github.com/PatSmuk/cheekyfs/errors"
)

func newTestFS(t *testing.T) *FileSystem {
	t.Helper()
	device := block.NewMemDevice(BlockSize, MaxBlocks)
	fs := New()
	require.NoError(t, fs.Initialize(device, true))
	return fs
}

func TestInitializeCreatesEmptyRoot(t *testing.T) {
	fs := newTestFS(t)
	size, err := fs.GetSize("/")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), size)

	typ, err := fs.GetType("/")
	require.NoError(t, err)
	assert.Equal(t, TypeDir, typ)
}

func TestInitializeFormatsEmptyDevice(t *testing.T) {
	device := block.NewMemDevice(BlockSize, MaxBlocks)
	fs := New()
	require.NoError(t, fs.Initialize(device, false))

	typ, err := fs.GetType("/")
	require.NoError(t, err)
	assert.Equal(t, TypeDir, typ)
}

func TestRemountValidatesExistingImage(t *testing.T) {
	device := block.NewMemDevice(BlockSize, MaxBlocks)
	fs := New()
	require.NoError(t, fs.Initialize(device, true))
	require.NoError(t, fs.Create("/greeting", TypeData))

	fs2 := New()
	require.NoError(t, fs2.Initialize(device, false))

	typ, err := fs2.GetType("/greeting")
	require.NoError(t, err)
	assert.Equal(t, TypeData, typ)
}

func TestCreateAndDeleteFile(t *testing.T) {
	fs := newTestFS(t)

	require.NoError(t, fs.Create("/hello", TypeData))
	typ, err := fs.GetType("/hello")
	require.NoError(t, err)
	assert.Equal(t, TypeData, typ)

	require.NoError(t, fs.Delete("/hello"))
	_, err = fs.GetType("/hello")
	assert.ErrorIs(t, err, fserrors.ErrFileNotFound)
}

func TestCreateNameTaken(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	err := fs.Create("/a", TypeData)
	assert.ErrorIs(t, err, fserrors.ErrNameTaken)
}

func TestCreateMissingParent(t *testing.T) {
	fs := newTestFS(t)
	err := fs.Create("/nope/a", TypeData)
	assert.ErrorIs(t, err, fserrors.ErrFileNotFound)
}

func TestDeleteRootForbidden(t *testing.T) {
	fs := newTestFS(t)
	err := fs.Delete("/")
	assert.ErrorIs(t, err, fserrors.ErrCantDeleteRoot)
}

func TestDeleteNonEmptyDir(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/dir", TypeDir))
	require.NoError(t, fs.Create("/dir/file", TypeData))

	err := fs.Delete("/dir")
	assert.ErrorIs(t, err, fserrors.ErrDirNotEmpty)
}

func TestDeleteOpenFileForbidden(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	err = fs.Delete("/a")
	assert.ErrorIs(t, err, fserrors.ErrFileOpen)

	require.NoError(t, fs.Close(fd))
	require.NoError(t, fs.Delete("/a"))
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	payload := []byte("hello, cheeky world")
	n, err := fs.Write(fd, -1, payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	size, err := fs.GetSize("/a")
	require.NoError(t, err)
	assert.Equal(t, uint32(len(payload)), size)

	out := make([]byte, len(payload))
	n, err = fs.Read(fd, 0, out)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, out)
}

func TestWriteAcrossMultipleBlocks(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	first := make([]byte, BlockSize)
	for i := range first {
		first[i] = byte(i)
	}
	_, err = fs.Write(fd, -1, first)
	require.NoError(t, err)

	second := []byte("more data in block two")
	_, err = fs.Write(fd, -1, second)
	require.NoError(t, err)

	out := make([]byte, len(second))
	_, err = fs.Read(fd, uint32(BlockSize), out)
	require.NoError(t, err)
	assert.Equal(t, second, out)
}

func TestWriteBlockFault(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	tooBig := make([]byte, BlockSize+1)
	_, err = fs.Write(fd, -1, tooBig)
	assert.ErrorIs(t, err, fserrors.ErrBlockFault)
}

func TestWriteFileFullOnceAllSlotsUsed(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	block := make([]byte, BlockSize)
	for i := 0; i < MaxBlocksPerFile; i++ {
		_, err := fs.Write(fd, -1, block)
		require.NoError(t, err)
	}

	_, err = fs.Write(fd, -1, []byte("x"))
	assert.ErrorIs(t, err, fserrors.ErrFileFull)
}

func TestWriteAppendAtMinusOneGrowsFile(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	first, err := fs.Write(fd, -1, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, first)

	second, err := fs.Write(fd, -1, []byte("def"))
	require.NoError(t, err)
	assert.Equal(t, 3, second)

	size, err := fs.GetSize("/a")
	require.NoError(t, err)
	assert.Equal(t, uint32(6), size)

	out := make([]byte, 6)
	_, err = fs.Read(fd, 0, out)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), out)
}

func TestWriteOverwriteNeverGrowsFile(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	_, err = fs.Write(fd, -1, []byte("abcd"))
	require.NoError(t, err)

	// start+len(data) > size: spec/original_source/src/sfs_write.c:56-57
	// reject this as ErrNotEnoughData rather than silently growing the file.
	_, err = fs.Write(fd, 2, make([]byte, 10))
	assert.ErrorIs(t, err, fserrors.ErrNotEnoughData)

	size, err := fs.GetSize("/a")
	require.NoError(t, err)
	assert.Equal(t, uint32(4), size)

	n, err := fs.Write(fd, 2, []byte("XY"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := make([]byte, 4)
	_, err = fs.Read(fd, 0, out)
	require.NoError(t, err)
	assert.Equal(t, []byte("abXY"), out)

	size, err = fs.GetSize("/a")
	require.NoError(t, err)
	assert.Equal(t, uint32(4), size)
}

func TestReadNotEnoughData(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	_, err = fs.Write(fd, -1, []byte("abc"))
	require.NoError(t, err)

	out := make([]byte, 10)
	_, err = fs.Read(fd, 0, out)
	assert.ErrorIs(t, err, fserrors.ErrNotEnoughData)
}

func TestReadZeroLengthAtEndOfFileIsNoOp(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	fd, err := fs.Open("/a")
	require.NoError(t, err)

	_, err = fs.Write(fd, -1, []byte("abc"))
	require.NoError(t, err)

	n, err := fs.Read(fd, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReadDirListsChildrenInCreationOrder(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	require.NoError(t, fs.Create("/b", TypeDir))
	require.NoError(t, fs.Create("/c", TypeData))

	fd, err := fs.Open("/")
	require.NoError(t, err)

	var names []string
	for {
		entry, err := fs.ReadDir(fd)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestReadDirSurvivesMutationMidIteration(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, fs.Create("/a", TypeData))
	require.NoError(t, fs.Create("/b", TypeData))
	require.NoError(t, fs.Create("/c", TypeData))

	fd, err := fs.Open("/")
	require.NoError(t, err)

	first, err := fs.ReadDir(fd)
	require.NoError(t, err)
	assert.Equal(t, "a", first.Name)

	require.NoError(t, fs.Delete("/a"))

	var rest []string
	for {
		entry, err := fs.ReadDir(fd)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rest = append(rest, entry.Name)
	}
	assert.Subset(t, []string{"b", "c"}, rest)
}

func TestGetSizeAndTypeOnMissingPath(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.GetSize("/missing")
	assert.ErrorIs(t, err, fserrors.ErrFileNotFound)
	_, err = fs.GetType("/missing")
	assert.ErrorIs(t, err, fserrors.ErrFileNotFound)
}

func TestOpenTooManyFiles(t *testing.T) {
	fs := newTestFS(t)
	for i := 0; i < MaxOpenFiles; i++ {
		_, err := fs.Open("/")
		require.NoError(t, err)
	}
	_, err := fs.Open("/")
	assert.ErrorIs(t, err, fserrors.ErrTooManyOpen)
}

func TestCloseBadFD(t *testing.T) {
	fs := newTestFS(t)
	err := fs.Close(0)
	assert.ErrorIs(t, err, fserrors.ErrBadFD)
}

func TestInvalidPaths(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.resolve("relative")
	assert.ErrorIs(t, err, fserrors.ErrInvalidPath)

	_, err = fs.resolve("//double")
	assert.ErrorIs(t, err, fserrors.ErrInvalidPath)

	_, err = fs.resolve("/trailing/")
	assert.ErrorIs(t, err, fserrors.ErrInvalidPath)
}

func TestCreateNameTooLong(t *testing.T) {
	fs := newTestFS(t)
	err := fs.Create("/waytoolongname", TypeData)
	assert.ErrorIs(t, err, fserrors.ErrInvalidName)
}
