package cocodos

import (
	"bytes"
	"fmt"
	"io"

	"github.com/boljen/go-bitmap"
	"github.com/thorpej/cocofs/errors"
)

// Image is an in-memory CoCo DOS disk image. The granule map and directory are
// accessed through offsets into the single image buffer; there is never more
// than one copy of the file system's state.
//
// An Image is not safe for concurrent use.
type Image struct {
	data         []byte
	freeGranules uint
}

func newImage() *Image {
	return &Image{data: make([]byte, ImageSize)}
}

// Format creates a new, empty image.
//
// Every byte of a freshly formatted image is 0xFF. That marks all of the
// granule map entries as free, and it's what an unused directory entry looks
// like as well. CoCo disks don't appear to use the separate granule
// allocation table in sector 1 of the directory track.
func Format() *Image {
	image := newImage()
	for i := range image.data {
		image.data[i] = 0xff
	}
	image.freeGranules = TotalGranules
	return image
}

// Load reads an image from `source`. It returns the number of bytes actually
// read. If the source holds fewer than [ImageSize] bytes, the rest of the image
// is left zeroed and no error is returned; it's up to the caller to decide
// whether a short image deserves a warning.
func Load(source io.Reader) (*Image, int, error) {
	image := newImage()

	bytesRead, err := io.ReadFull(source, image.data)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, bytesRead, errors.ErrIOFailed.Wrap(err)
	}

	image.freeGranules = image.CountFreeGranules()
	return image, bytesRead, nil
}

// LoadBytes creates an image from a copy of `raw`. Like [Load], short input is
// padded with zeroes. Input longer than [ImageSize] is an error.
func LoadBytes(raw []byte) (*Image, error) {
	if len(raw) > ImageSize {
		return nil, errors.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf("image is %d bytes, expected at most %d", len(raw), ImageSize))
	}
	image, _, err := Load(bytes.NewReader(raw))
	return image, err
}

// Save writes the entire image to `sink` in a single write.
func (image *Image) Save(sink io.Writer) error {
	n, err := sink.Write(image.data)
	if err != nil {
		return errors.ErrIOFailed.Wrap(err)
	}
	if n != len(image.data) {
		return errors.ErrIOFailed.Wrap(io.ErrShortWrite)
	}
	return nil
}

// Bytes returns the raw image. Modifying the returned slice modifies the image
// directly, bypassing the free granule accounting.
func (image *Image) Bytes() []byte {
	return image.data
}

// FreeGranules returns the number of free granules, as maintained by the
// operations that modify the image.
func (image *Image) FreeGranules() uint {
	return image.freeGranules
}

// FreeBytes returns the number of bytes available for new files.
func (image *Image) FreeBytes() uint {
	return image.freeGranules * BytesPerGranule
}

// CountFreeGranules scans the granule map and counts the free entries. Unlike
// [Image.FreeGranules], this never relies on cached state.
func (image *Image) CountFreeGranules() uint {
	free := uint(0)
	for _, entry := range image.granuleMap() {
		if MapEntry(entry) == FreeEntry {
			free++
		}
	}
	return free
}

// FreeBitmap returns a bitmap with one bit per granule, set if the granule map
// marks that granule free.
func (image *Image) FreeBitmap() bitmap.Bitmap {
	free := bitmap.New(TotalGranules)
	for i, entry := range image.granuleMap() {
		free.Set(i, MapEntry(entry) == FreeEntry)
	}
	return free
}

// MapEntry returns the granule map entry for `g`, which must be valid.
func (image *Image) MapEntry(g Granule) MapEntry {
	return MapEntry(image.data[granuleMapOffset+uint(g)])
}

// SetMapEntry overwrites a granule map entry without any bookkeeping. It exists
// for tools and tests that need to construct damaged images; use [Image.Rescan]
// afterwards to bring the free granule count back in sync.
func (image *Image) SetMapEntry(g Granule, entry MapEntry) {
	image.data[granuleMapOffset+uint(g)] = byte(entry)
}

// Rescan recomputes the free granule count from the granule map.
func (image *Image) Rescan() {
	image.freeGranules = image.CountFreeGranules()
}

// granuleMap returns a slice of the image covering the granule map.
func (image *Image) granuleMap() []byte {
	return image.data[granuleMapOffset : granuleMapOffset+TotalGranules]
}

// granuleData returns a slice of the image covering one granule's sectors.
func (image *Image) granuleData(g Granule) []byte {
	start := GranuleOffset(g)
	return image.data[start : start+BytesPerGranule]
}

// GranuleData returns a copy of the contents of granule `g`.
func (image *Image) GranuleData(g Granule) []byte {
	return bytes.Clone(image.granuleData(g))
}

// directorySlot returns a slice of the image covering one directory entry.
func (image *Image) directorySlot(slot int) []byte {
	start := directoryOffset + uint(slot)*DirectoryEntrySize
	return image.data[start : start+DirectoryEntrySize]
}
