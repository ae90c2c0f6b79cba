package cocodos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thorpej/cocofs/errors"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		Input string
		Name  string
		Ext   string
	}{
		{"hello.c", "HELLO   ", "C  "},
		{"TEST.DAT", "TEST    ", "DAT"},
		{"README", "README  ", "   "},
		{"MixEd1.b_s", "MIXED1  ", "B_S"},
		{"a.b.c", "A       ", "B.C"},
		{"trail.", "TRAIL   ", "   "},
	}

	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			name, ext, err := NormalizeName(test.Input)
			require.NoError(t, err)
			assert.Equal(t, test.Name, string(name[:]))
			assert.Equal(t, test.Ext, string(ext[:]))
		})
	}
}

func TestNormalizeName__TooLong(t *testing.T) {
	_, _, err := NormalizeName("longfilename.c")
	assert.ErrorIs(t, err, errors.ErrNameTooLong)

	_, _, err = NormalizeName("file.text")
	assert.ErrorIs(t, err, errors.ErrNameTooLong)

	_, _, err = NormalizeName("eightchr.ext")
	assert.NoError(t, err)
}

func TestDirectoryEntry__EncodeDecode(t *testing.T) {
	image := Format()
	entry := putEntry(t, image, 7, "PROG.BIN", 42, 0x1234)

	raw := image.directorySlot(7)
	assert.Equal(t, "PROG    BIN", string(raw[0:11]))
	assert.EqualValues(t, TypeData, raw[11])
	assert.EqualValues(t, EncodingBinary, raw[12])
	assert.EqualValues(t, 42, raw[13])
	assert.Equal(t, []byte{0x12, 0x34}, raw[14:16], "last sector bytes must be big-endian")
	for i := 16; i < DirectoryEntrySize; i++ {
		assert.EqualValuesf(t, 0xff, raw[i], "reserved byte %d was modified", i)
	}

	decoded, err := image.ReadDirectoryEntry(7)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
	assert.Equal(t, "PROG.BIN", decoded.FileName())
}

func TestDirectoryEntry__InvalidSlot(t *testing.T) {
	image := Format()
	_, err := image.ReadDirectoryEntry(TotalDirectoryEntries)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	err = image.WriteDirectoryEntry(DirectoryEntry{Slot: -1})
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestDirectoryEntry__FileName(t *testing.T) {
	image := Format()
	entry := putEntry(t, image, 0, "NOEXT", 0, 1)
	assert.Equal(t, "NOEXT", entry.FileName())
}

func TestDirectoryEntry__ClampedLastSectorBytes(t *testing.T) {
	entry := DirectoryEntry{LastSectorBytes: 300}
	assert.EqualValues(t, BytesPerSector, entry.ClampedLastSectorBytes())

	entry.LastSectorBytes = 17
	assert.EqualValues(t, 17, entry.ClampedLastSectorBytes())

	entry.LastSectorBytes = 0
	assert.EqualValues(t, 0, entry.ClampedLastSectorBytes())
}

func TestFileTypeAndEncodingNames(t *testing.T) {
	assert.Equal(t, "Basic", TypeBasic.String())
	assert.Equal(t, "Text", TypeText.String())
	assert.Equal(t, "<type 0x07>", FileType(7).String())
	assert.Equal(t, "ASCII", EncodingASCII.String())
	assert.Equal(t, "<encoding 0x01>", Encoding(1).String())

	fileType, ok := ParseFileType("code")
	assert.True(t, ok)
	assert.Equal(t, TypeCode, fileType)

	encoding, ok := ParseEncoding("Ascii")
	assert.True(t, ok)
	assert.Equal(t, EncodingASCII, encoding)

	_, ok = ParseFileType("binary")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	image := Format()
	putEntry(t, image, 3, "HELLO.BAS", 0, 1)

	found, err := image.LookupName("hello.bas")
	require.NoError(t, err)
	assert.Equal(t, 3, found.Slot)

	_, err = image.LookupName("HELLO.BIN")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLookup__FirstMatchWins(t *testing.T) {
	image := Format()
	putEntry(t, image, 10, "DUP.DAT", 1, 1)
	putEntry(t, image, 4, "DUP.DAT", 2, 1)

	found, err := image.LookupName("DUP.DAT")
	require.NoError(t, err)
	assert.Equal(t, 4, found.Slot)
	assert.EqualValues(t, 2, found.FirstGranule)
}

func TestLookup__SkipsFreeSlotsOnly(t *testing.T) {
	image := Format()
	entry := putEntry(t, image, 2, "ODD.DAT", 1, 1)
	entry.Type = FileType(0x42)
	require.NoError(t, image.WriteDirectoryEntry(entry))

	found, err := image.LookupName("ODD.DAT")
	require.NoError(t, err)
	assert.Equal(t, 2, found.Slot)
	assert.Empty(t, image.Files(), "a slot with an unknown type isn't a file")
}

func TestFindFreeSlot(t *testing.T) {
	image := Format()
	slot, err := image.FindFreeSlot()
	require.NoError(t, err)
	assert.Equal(t, 0, slot)

	putEntry(t, image, 0, "A", 0, 1)
	putEntry(t, image, 1, "B", 0, 1)
	slot, err = image.FindFreeSlot()
	require.NoError(t, err)
	assert.Equal(t, 2, slot)
}

func TestFindFreeSlot__Full(t *testing.T) {
	image := Format()
	for slot := 0; slot < TotalDirectoryEntries; slot++ {
		putEntry(t, image, slot, "X", 0, 1)
	}

	_, err := image.FindFreeSlot()
	assert.ErrorIs(t, err, ErrDirectoryFull)
	assert.ErrorIs(t, err, errors.ErrNoSpaceOnDevice)
}

func TestFreeSlot(t *testing.T) {
	image := Format()
	putEntry(t, image, 5, "GONE.TXT", 9, 12)
	image.directorySlot(5)[20] = 0

	image.FreeSlot(5)
	for i, b := range image.directorySlot(5) {
		assert.EqualValuesf(t, 0xff, b, "byte %d of freed slot", i)
	}
	entry, err := image.ReadDirectoryEntry(5)
	require.NoError(t, err)
	assert.True(t, entry.IsFree())
}
