package cocodos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometryConstants(t *testing.T) {
	assert.Equal(t, 161280, ImageSize)
	assert.Equal(t, 2304, BytesPerGranule)
	assert.Equal(t, 68, TotalGranules)
	assert.Equal(t, 72, TotalDirectoryEntries)
	assert.Equal(t, 156672, UsableBytes)
}

func TestMetadataOffsets(t *testing.T) {
	assert.EqualValues(t, 17*4608+256, granuleMapOffset)
	assert.EqualValues(t, 17*4608+512, directoryOffset)
}

func TestGranuleOffset(t *testing.T) {
	tests := []struct {
		Granule Granule
		Track   uint
		Offset  uint
	}{
		{0, 0, 0},
		{1, 0, 2304},
		{2, 1, 4608},
		{33, 16, 16*4608 + 2304},
		// Granule 34 is the first one after the directory track.
		{34, 18, 18 * 4608},
		{35, 18, 18*4608 + 2304},
		{67, 34, 34*4608 + 2304},
	}

	for _, test := range tests {
		assert.Equalf(t, test.Track, GranuleToTrack(test.Granule), "track of granule %d", test.Granule)
		assert.Equalf(t, test.Offset, GranuleOffset(test.Granule), "offset of granule %d", test.Granule)
	}
}

func TestGranuleOffset__NeverTouchesDirectoryTrack(t *testing.T) {
	start := TrackOffset(DirectoryTrack)
	end := start + BytesPerTrack
	for g := Granule(0); g < TotalGranules; g++ {
		offset := GranuleOffset(g)
		assert.Falsef(
			t,
			offset+BytesPerGranule > start && offset < end,
			"granule %d at offset %d overlaps the directory track",
			g,
			offset)
	}
}

func TestSectorOffset(t *testing.T) {
	assert.EqualValues(t, 0, SectorOffset(1))
	assert.EqualValues(t, 256, SectorOffset(2))
	assert.EqualValues(t, 17*256, SectorOffset(18))
}

func TestGranulesNeeded(t *testing.T) {
	assert.EqualValues(t, 0, GranulesNeeded(0))
	assert.EqualValues(t, 1, GranulesNeeded(1))
	assert.EqualValues(t, 1, GranulesNeeded(2304))
	assert.EqualValues(t, 2, GranulesNeeded(2305))
	assert.EqualValues(t, 3, GranulesNeeded(5000))
	assert.EqualValues(t, 68, GranulesNeeded(UsableBytes))
}
