package cocodos

import "fmt"

// MapEntry is a single byte of the granule map.
type MapEntry uint8

// EntryKind classifies a [MapEntry].
type EntryKind int

const (
	EntryInvalid EntryKind = iota
	EntryFree
	EntryLink
	EntryTerminal
)

const (
	FreeEntry = MapEntry(0xff)

	terminalTag  = 0xc0
	terminalMask = 0xf0
	sectorsMask  = 0x0f

	// provisionalEntry marks a granule claimed by an in-progress allocation.
	// It's not a legal on-disk value, so nothing that decodes the map will
	// mistake it for part of a file.
	provisionalEntry = MapEntry(0xfe)
)

// LinkEntry returns the map entry pointing at `next`.
func LinkEntry(next Granule) MapEntry {
	return MapEntry(next)
}

// TerminalEntry returns the map entry for the last granule of a file, with
// `sectorsUsed` sectors of it in use.
func TerminalEntry(sectorsUsed uint) MapEntry {
	return MapEntry(terminalTag | (sectorsUsed & sectorsMask))
}

// Kind decodes the entry's tag.
func (e MapEntry) Kind() EntryKind {
	switch {
	case e == FreeEntry:
		return EntryFree
	case uint(e) < TotalGranules:
		return EntryLink
	case e&terminalMask == terminalTag && uint(e&sectorsMask) <= SectorsPerGranule:
		return EntryTerminal
	default:
		return EntryInvalid
	}
}

// IsValid is true for free entries, terminal entries, and links to granules
// that exist.
func (e MapEntry) IsValid() bool {
	return e.Kind() != EntryInvalid
}

// Next returns the granule a link entry points to. It's meaningless for other
// kinds of entries.
func (e MapEntry) Next() Granule {
	return Granule(e)
}

// SectorsUsed returns the number of sectors used in the last granule of a
// file. It's meaningless for anything other than a terminal entry.
func (e MapEntry) SectorsUsed() uint {
	return uint(e & sectorsMask)
}

func (k EntryKind) String() string {
	switch k {
	case EntryFree:
		return "free"
	case EntryLink:
		return "link"
	case EntryTerminal:
		return "terminal"
	default:
		return "invalid"
	}
}

func (e MapEntry) String() string {
	switch e.Kind() {
	case EntryFree:
		return "free"
	case EntryLink:
		return fmt.Sprintf("-> %d", e.Next())
	case EntryTerminal:
		return fmt.Sprintf("last, nsec=%d", e.SectorsUsed())
	default:
		return fmt.Sprintf("invalid 0x%02x", uint8(e))
	}
}
