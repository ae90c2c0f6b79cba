package cocodos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// putEntry writes a directory entry for a Data/Binary file directly into the
// image, bypassing the allocator.
func putEntry(t *testing.T, image *Image, slot int, fullName string, head Granule, lastBytes uint16) DirectoryEntry {
	name, ext, err := NormalizeName(fullName)
	require.NoError(t, err)

	entry := DirectoryEntry{
		Slot:            slot,
		Name:            name,
		Extension:       ext,
		Type:            TypeData,
		Encoding:        EncodingBinary,
		FirstGranule:    head,
		LastSectorBytes: lastBytes,
	}
	require.NoError(t, image.WriteDirectoryEntry(entry))
	return entry
}

// putChain links the given granules together in order, ending with a terminal
// entry using `lastSectors` sectors.
func putChain(image *Image, lastSectors uint, granules ...Granule) {
	for i, g := range granules {
		if i+1 < len(granules) {
			image.SetMapEntry(g, LinkEntry(granules[i+1]))
		} else {
			image.SetMapEntry(g, TerminalEntry(lastSectors))
		}
	}
	image.Rescan()
}
