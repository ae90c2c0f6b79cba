package cocodos

const (
	TotalTracks       = 35
	SectorsPerTrack   = 18
	BytesPerSector    = 256
	SectorsPerGranule = 9
	GranulesPerTrack  = SectorsPerTrack / SectorsPerGranule
	BytesPerTrack     = SectorsPerTrack * BytesPerSector
	BytesPerGranule   = SectorsPerGranule * BytesPerSector

	// ImageSize is the size of a complete disk image, metadata included.
	ImageSize = TotalTracks * SectorsPerTrack * BytesPerSector

	// DirectoryTrack is the track holding the granule map and the directory.
	// It's not part of the granule index space.
	DirectoryTrack = 17

	// TotalGranules is the number of granules available for file data.
	TotalGranules = (TotalTracks - 1) * GranulesPerTrack

	// GranuleMapSector is the sector of the directory track holding the
	// granule map. Sectors are numbered from 1.
	GranuleMapSector = 2

	FirstDirectorySector = 3
	LastDirectorySector  = 11
	DirectorySectors     = LastDirectorySector - FirstDirectorySector + 1

	DirectoryEntrySize    = 32
	TotalDirectoryEntries = (DirectorySectors * BytesPerSector) / DirectoryEntrySize

	// UsableBytes is the total capacity available to files.
	UsableBytes = TotalGranules * BytesPerGranule
)

// Granule is the index of an allocation unit, in the range [0, TotalGranules).
type Granule uint8

// IsValid reports whether the granule index is within the granule index space.
func (g Granule) IsValid() bool {
	return uint(g) < TotalGranules
}

// TrackOffset returns the byte offset of the beginning of `track` in the image.
func TrackOffset(track uint) uint {
	return track * BytesPerTrack
}

// SectorOffset returns the byte offset of `sector` from the beginning of its
// track. Sectors are numbered 1 - 18.
func SectorOffset(sector uint) uint {
	return (sector - 1) * BytesPerSector
}

// GranuleToTrack returns the track a granule lives on. Granules skip over the
// directory track.
func GranuleToTrack(g Granule) uint {
	track := uint(g) / GranulesPerTrack
	if track >= DirectoryTrack {
		track++
	}
	return track
}

// GranuleOffset returns the absolute byte offset of the beginning of a granule
// in the image.
func GranuleOffset(g Granule) uint {
	offset := TrackOffset(GranuleToTrack(g))
	if g&1 != 0 {
		// Second of the two granules on this track.
		offset += BytesPerGranule
	}
	return offset
}

var granuleMapOffset = TrackOffset(DirectoryTrack) + SectorOffset(GranuleMapSector)
var directoryOffset = TrackOffset(DirectoryTrack) + SectorOffset(FirstDirectorySector)

// GranulesNeeded returns the number of granules required to store `length`
// bytes.
func GranulesNeeded(length int64) uint {
	return uint((length + BytesPerGranule - 1) / BytesPerGranule)
}
