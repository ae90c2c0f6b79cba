package cocodos

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thorpej/cocofs/errors"
	cocotest "github.com/thorpej/cocofs/testing"
)

func TestChain(t *testing.T) {
	image := Format()
	putChain(image, 4, 34, 35, 10)

	granules, err := image.Chain(34)
	require.NoError(t, err)
	assert.Equal(t, []Granule{34, 35, 10}, granules)
}

func TestFileSize(t *testing.T) {
	tests := []struct {
		Name        string
		Granules    []Granule
		LastSectors uint
		LastBytes   uint16
		Expected    uint
	}{
		{"one byte", []Granule{34}, 1, 1, 1},
		{"one full sector", []Granule{34}, 1, 256, 256},
		{"one full granule", []Granule{34}, 9, 256, 2304},
		{"three granules", []Granule{34, 35, 36}, 2, 200, 2*2304 + 256 + 200},
		{"clamped last bytes", []Granule{34}, 2, 1000, 512},
		{"zero last bytes", []Granule{34}, 2, 0, 256},
		{"no sectors in last granule", []Granule{34, 35}, 0, 256, 2304},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			image := Format()
			putChain(image, test.LastSectors, test.Granules...)
			entry := putEntry(t, image, 0, "F.DAT", test.Granules[0], test.LastBytes)

			size, err := image.FileSize(&entry)
			require.NoError(t, err)
			assert.EqualValues(t, test.Expected, size)
		})
	}
}

func TestFileSize__CycleTerminates(t *testing.T) {
	image := Format()
	image.SetMapEntry(34, LinkEntry(35))
	image.SetMapEntry(35, LinkEntry(36))
	image.SetMapEntry(36, LinkEntry(34))
	entry := putEntry(t, image, 0, "LOOP.DAT", 34, 256)

	size, err := image.FileSize(&entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainCycle)
	assert.ErrorIs(t, err, errors.ErrFileSystemCorrupted)
	assert.EqualValues(t, maxChainSteps*BytesPerGranule, size, "walk wasn't bounded")
}

func TestFileSize__SelfLink(t *testing.T) {
	image := Format()
	image.SetMapEntry(0, LinkEntry(0))
	entry := putEntry(t, image, 0, "SELF", 0, 256)

	_, err := image.FileSize(&entry)
	assert.ErrorIs(t, err, ErrChainCycle)
}

func TestFileSize__InvalidEntryReturnsPartialSize(t *testing.T) {
	image := Format()
	image.SetMapEntry(34, LinkEntry(35))
	image.SetMapEntry(35, MapEntry(0x80))
	entry := putEntry(t, image, 0, "BAD.DAT", 34, 256)

	size, err := image.FileSize(&entry)
	require.Error(t, err)
	assert.EqualValues(t, BytesPerGranule, size)
	assert.ErrorIs(t, err, errors.ErrFileSystemCorrupted)
	assert.False(t, stderrors.Is(err, ErrChainCycle))

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, 1, chainErr.Step)
	assert.EqualValues(t, 35, chainErr.Granule)
	assert.EqualValues(t, 0x80, chainErr.Entry)
}

func TestFileSize__HighBytesAreNotTerminal(t *testing.T) {
	image := Format()
	image.SetMapEntry(10, MapEntry(0xd3))
	entry := putEntry(t, image, 0, "ODD.DAT", 10, 16)

	size, err := image.FileSize(&entry)
	assert.EqualValues(t, 0, size)
	assert.ErrorIs(t, err, errors.ErrFileSystemCorrupted)

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, 0, chainErr.Step)
	assert.EqualValues(t, 0xd3, chainErr.Entry)
}

func TestFileSize__FreeGranuleInChain(t *testing.T) {
	image := Format()
	image.SetMapEntry(34, LinkEntry(35))
	entry := putEntry(t, image, 0, "HOLE.DAT", 34, 256)

	_, err := image.FileSize(&entry)
	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, "free granule in chain", chainErr.Reason)
}

func TestFileSize__HeadOutOfRange(t *testing.T) {
	image := Format()
	entry := putEntry(t, image, 0, "FAR.DAT", 200, 256)

	_, err := image.FileSize(&entry)
	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, "invalid granule", chainErr.Reason)
	assert.EqualValues(t, 200, chainErr.Granule)
}

func TestWriteFileTo(t *testing.T) {
	image := Format()
	content := cocotest.RandomContent(t, 2*BytesPerGranule+300)
	putChain(image, 2, 34, 35, 36)
	copy(image.granuleData(34), content[:BytesPerGranule])
	copy(image.granuleData(35), content[BytesPerGranule:2*BytesPerGranule])
	copy(image.granuleData(36), content[2*BytesPerGranule:])
	entry := putEntry(t, image, 0, "RAND.BIN", 34, 300-256)

	var buffer bytes.Buffer
	n, err := image.WriteFileTo(&entry, &buffer)
	require.NoError(t, err)
	assert.EqualValues(t, len(content), n)
	assert.Equal(t, content, buffer.Bytes())
}

func TestWriteFileTo__ZeroSectorsInLastGranule(t *testing.T) {
	image := Format()
	putChain(image, 0, 34, 35)
	entry := putEntry(t, image, 0, "ZERO.DAT", 34, 256)

	var buffer bytes.Buffer
	n, err := image.WriteFileTo(&entry, &buffer)
	assert.ErrorIs(t, err, errors.ErrFileSystemCorrupted)
	assert.EqualValues(t, BytesPerGranule, n, "first granule should've been written")
}

func TestWriteFileTo__WriteError(t *testing.T) {
	image := Format()
	putChain(image, 9, 34, 35)
	entry := putEntry(t, image, 0, "BIG.DAT", 34, 256)

	sink := &cocotest.LimitedWriter{Limit: 1000}
	n, err := image.WriteFileTo(&entry, sink)
	assert.ErrorIs(t, err, errors.ErrIOFailed)
	assert.ErrorIs(t, err, cocotest.ErrInjected)
	assert.EqualValues(t, 1000, n)
}

func TestReadFile__Cycle(t *testing.T) {
	image := Format()
	image.SetMapEntry(10, LinkEntry(11))
	image.SetMapEntry(11, LinkEntry(10))
	entry := putEntry(t, image, 0, "LOOP.DAT", 10, 256)

	_, err := image.ReadFile(&entry)
	assert.ErrorIs(t, err, ErrChainCycle)
}
