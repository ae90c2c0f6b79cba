package cocodos

import (
	"bytes"
	"fmt"
	"io"

	"github.com/thorpej/cocofs/errors"
)

// maxChainSteps bounds every walk of a granule chain. A legitimate chain can't
// be longer than the number of granules on the disk, so anything that takes
// more steps than this must be revisiting granules.
const maxChainSteps = TotalGranules + 1

// ErrChainCycle is returned when a granule chain doesn't terminate within
// [maxChainSteps] steps.
var ErrChainCycle = errors.ErrFileSystemCorrupted.WithMessage("granule list cycle detected")

// ChainError describes a structural defect found while following a granule
// chain. It unwraps to [errors.ErrFileSystemCorrupted].
type ChainError struct {
	// Step is the position in the chain, counting from 0 at the first granule.
	Step    int
	Granule Granule
	Entry   MapEntry
	Reason  string
	err     errors.DriverError
}

func (e *ChainError) Error() string {
	return e.err.Error()
}

func (e *ChainError) Unwrap() error {
	return e.err
}

func newChainError(step int, g Granule, entry MapEntry, reason string) *ChainError {
	var message string
	if g.IsValid() {
		message = fmt.Sprintf(
			"%s at step %d: granule %d -> 0x%02x", reason, step, g, uint8(entry))
	} else {
		message = fmt.Sprintf("%s at step %d: granule %d", reason, step, g)
	}
	return &ChainError{
		Step:    step,
		Granule: g,
		Entry:   entry,
		Reason:  reason,
		err:     errors.ErrFileSystemCorrupted.WithMessage(message),
	}
}

// CheckChainGranule validates one granule of a file's chain: the index must be
// in range and its map entry must be a link or a terminal. This is the
// validation primitive shared by every chain traversal.
func (image *Image) CheckChainGranule(step int, g Granule) (MapEntry, error) {
	if !g.IsValid() {
		return FreeEntry, newChainError(step, g, FreeEntry, "invalid granule")
	}

	entry := image.MapEntry(g)
	switch entry.Kind() {
	case EntryLink, EntryTerminal:
		return entry, nil
	case EntryFree:
		return entry, newChainError(step, g, entry, "free granule in chain")
	default:
		return entry, newChainError(step, g, entry, "invalid granule map entry")
	}
}

// ChainVisitor is called for each granule of a chain, in order. Returning an
// error stops the walk and the error is passed back to the caller.
type ChainVisitor func(step int, g Granule, entry MapEntry) error

// WalkChain follows the chain beginning at `head`, calling `visit` for each
// granule. It stops after the terminal granule, at the first structural
// defect, or once the walk exceeds the number of granules on the disk.
func (image *Image) WalkChain(head Granule, visit ChainVisitor) error {
	g := head
	for step := 0; ; step++ {
		if step >= maxChainSteps {
			return ErrChainCycle
		}

		entry, err := image.CheckChainGranule(step, g)
		if err != nil {
			return err
		}
		if err = visit(step, g, entry); err != nil {
			return err
		}
		if entry.Kind() == EntryTerminal {
			return nil
		}
		g = entry.Next()
	}
}

// Chain returns the granules of the file starting at `head`, in order.
func (image *Image) Chain(head Granule) ([]Granule, error) {
	var granules []Granule
	err := image.WalkChain(head, func(_ int, g Granule, _ MapEntry) error {
		granules = append(granules, g)
		return nil
	})
	return granules, err
}

// terminalBytes gives the number of bytes of the last granule that belong to
// the file.
func terminalBytes(entry MapEntry, dirent *DirectoryEntry) uint {
	sectors := entry.SectorsUsed()
	if sectors == 0 {
		return 0
	}
	return sectors*BytesPerSector - (BytesPerSector - dirent.ClampedLastSectorBytes())
}

// FileSize computes the size of a file by walking its chain.
//
// If the chain is damaged, the size of the part that could be walked is
// returned along with the error. Directory listings can show that truncated
// size; anything that needs accuracy must check the error.
func (image *Image) FileSize(dirent *DirectoryEntry) (uint, error) {
	size := uint(0)
	err := image.WalkChain(
		dirent.FirstGranule,
		func(_ int, _ Granule, entry MapEntry) error {
			if entry.Kind() == EntryTerminal {
				size += terminalBytes(entry, dirent)
			} else {
				size += BytesPerGranule
			}
			return nil
		},
	)
	return size, err
}

// WriteFileTo copies the contents of a file to `sink`, one granule at a time.
// The return value is the number of bytes written.
//
// If an error occurs, whatever was already written to `sink` stays there.
func (image *Image) WriteFileTo(dirent *DirectoryEntry, sink io.Writer) (int64, error) {
	total := int64(0)
	err := image.WalkChain(
		dirent.FirstGranule,
		func(step int, g Granule, entry MapEntry) error {
			length := uint(BytesPerGranule)
			if entry.Kind() == EntryTerminal {
				if entry.SectorsUsed() < 1 {
					return newChainError(step, g, entry, "unexpected sector count in last granule")
				}
				length = terminalBytes(entry, dirent)
			}

			n, err := sink.Write(image.granuleData(g)[:length])
			total += int64(n)
			if err != nil {
				return errors.ErrIOFailed.Wrap(err)
			}
			if uint(n) != length {
				return errors.ErrIOFailed.Wrap(io.ErrShortWrite)
			}
			return nil
		},
	)
	return total, err
}

// ReadFile returns the contents of a file.
func (image *Image) ReadFile(dirent *DirectoryEntry) ([]byte, error) {
	size, err := image.FileSize(dirent)
	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	buffer.Grow(int(size))
	_, err = image.WriteFileTo(dirent, &buffer)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
