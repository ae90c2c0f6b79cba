package cocodos

import (
	"fmt"
	"io"

	"github.com/thorpej/cocofs/errors"
)

// ErrDiskFull is returned when there aren't enough free granules for a file.
var ErrDiskFull = errors.NewWithMessage(errors.ENOSPC, "not enough free granules")

// FileInfo is the directory information for a file being added to an image.
type FileInfo struct {
	Name      RawName
	Extension RawExtension
	Type      FileType
	Encoding  Encoding
}

func (info *FileInfo) fileName() string {
	entry := DirectoryEntry{Name: info.Name, Extension: info.Extension}
	return entry.FileName()
}

// allocationStart is where the search for free granules begins. The directory
// is in the middle of the disk and every file access starts there, so granules
// near it mean shorter seeks.
const allocationStart = Granule(TotalGranules / 2)

// AddFile creates a new file of `length` bytes, read from `content`.
//
// This is all-or-nothing. If anything goes wrong, including `content` running
// out before `length` bytes are read, the granule map, free granule count,
// directory and granule contents are restored to exactly what they were
// before the call.
func (image *Image) AddFile(content io.Reader, length int64, info FileInfo) (DirectoryEntry, error) {
	if length <= 0 {
		return DirectoryEntry{}, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%s: can't store a file of %d bytes", info.fileName(), length))
	}
	if length > UsableBytes {
		return DirectoryEntry{}, errors.ErrFileTooLarge.WithMessage(
			fmt.Sprintf(
				"%s: %d bytes exceeds disk capacity of %d", info.fileName(), length, UsableBytes))
	}

	if _, err := image.Lookup(info.Name, info.Extension); err == nil {
		return DirectoryEntry{}, errors.ErrExists.WithMessage(info.fileName())
	}

	granulesNeeded := GranulesNeeded(length)
	if granulesNeeded > image.freeGranules {
		return DirectoryEntry{}, ErrDiskFull.WithMessage(
			fmt.Sprintf(
				"%s: needs %d granules, %d free",
				info.fileName(),
				granulesNeeded,
				image.freeGranules))
	}

	slot, err := image.FindFreeSlot()
	if err != nil {
		return DirectoryEntry{}, ErrDirectoryFull.WithMessage(info.fileName())
	}

	tx := image.Begin()
	defer tx.Rollback()
	tx.ClaimSlot(slot)

	// Allocate one granule at a time, always resuming the search right after
	// the last one, to keep the file as contiguous as possible. This can't run
	// out because we already checked the free count.
	next := allocationStart
	for i := uint(0); i < granulesNeeded; i++ {
		g, err := tx.AllocateGranule(next)
		if err != nil {
			return DirectoryEntry{}, err
		}
		next = g + 1
	}

	granules := tx.Claimed()
	remaining := length
	var lastSectorBytes uint16
	for i, g := range granules {
		chunk := remaining
		if chunk > BytesPerGranule {
			chunk = BytesPerGranule
		}

		buffer := image.granuleData(g)
		_, err := io.ReadFull(content, buffer[:chunk])
		if err != nil {
			return DirectoryEntry{}, errors.ErrIOFailed.Wrap(
				fmt.Errorf(
					"%s: failed reading bytes %d-%d: %w",
					info.fileName(),
					length-remaining,
					length-remaining+chunk,
					err))
		}

		if i+1 < len(granules) {
			image.SetMapEntry(g, LinkEntry(granules[i+1]))
			remaining -= chunk
			continue
		}

		// This is the last granule of the file. Zero out whatever's left of it
		// and record how much of it is in use.
		for j := chunk; j < BytesPerGranule; j++ {
			buffer[j] = 0
		}

		sectorsUsed := uint((chunk + BytesPerSector - 1) / BytesPerSector)
		image.SetMapEntry(g, TerminalEntry(sectorsUsed))

		lastSectorBytes = uint16(chunk % BytesPerSector)
		if lastSectorBytes == 0 {
			lastSectorBytes = BytesPerSector
		}
		remaining -= chunk
	}

	entry := DirectoryEntry{
		Slot:            slot,
		Name:            info.Name,
		Extension:       info.Extension,
		Type:            info.Type,
		Encoding:        info.Encoding,
		FirstGranule:    granules[0],
		LastSectorBytes: lastSectorBytes,
	}
	if err = image.WriteDirectoryEntry(entry); err != nil {
		return DirectoryEntry{}, err
	}

	tx.Commit()
	return entry, nil
}
