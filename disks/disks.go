// Package disks reads and writes CoCo disk image files.
//
// An image file is either a raw dump of the disk or, if its name ends in
// [compression.Extension], the same bytes RLE8-encoded and gzipped. Either way
// the whole image is read or written in one go.
package disks

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/thorpej/cocofs/errors"
	"github.com/thorpej/cocofs/file_systems/cocodos"
	"github.com/thorpej/cocofs/utilities/compression"
)

// Representation is how an image is stored in its file.
type Representation int

const (
	Raw Representation = iota
	Compressed
)

func (r Representation) String() string {
	if r == Compressed {
		return "compressed"
	}
	return "raw"
}

// RepresentationForPath picks the representation implied by a file name.
func RepresentationForPath(path string) Representation {
	if compression.IsCompressedName(path) {
		return Compressed
	}
	return Raw
}

// ImageFile is a disk image stored on the host file system.
type ImageFile struct {
	Path           string
	Representation Representation
}

// NewImageFile returns an ImageFile for `path`, with the representation
// determined by its name.
func NewImageFile(path string) ImageFile {
	return ImageFile{Path: path, Representation: RepresentationForPath(path)}
}

func wrapOSError(err error) errors.DriverError {
	if os.IsNotExist(err) {
		return errors.ErrNotFound.Wrap(err)
	}
	if os.IsPermission(err) {
		return errors.ErrNotPermitted.Wrap(err)
	}
	return errors.ErrIOFailed.Wrap(err)
}

// Load reads the image. The returned int is the number of bytes of image data
// found; if it's less than [cocodos.ImageSize] the image was padded with
// zeroes.
func (f ImageFile) Load() (*cocodos.Image, int, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, 0, wrapOSError(err)
	}
	defer file.Close()

	if f.Representation == Raw {
		return cocodos.Load(file)
	}

	raw, err := compression.DecompressImageToBytes(file)
	if err != nil {
		return nil, 0, errors.ErrInvalidFileSystem.Wrap(
			fmt.Errorf("%s: can't decompress image: %w", f.Path, err))
	}
	image, err := cocodos.LoadBytes(raw)
	if err != nil {
		return nil, 0, err
	}
	return image, len(raw), nil
}

// Save writes the entire image to the file, creating it if necessary.
//
// For a raw image this is a single write of the whole buffer. A failure partway
// through can leave the file half-written.
func (f ImageFile) Save(image *cocodos.Image, perm fs.FileMode) error {
	file, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return wrapOSError(err)
	}

	if f.Representation == Raw {
		err = image.Save(file)
	} else {
		var compressed []byte
		compressed, err = compression.CompressImageBytes(image.Bytes())
		if err == nil {
			_, err = file.Write(compressed)
		}
		if err != nil {
			err = errors.ErrIOFailed.Wrap(err)
		}
	}

	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = wrapOSError(closeErr)
	}
	return err
}

// Convert writes the image in `f` to `dest`, changing its representation to
// the one of `dest`.
func (f ImageFile) Convert(dest ImageFile) error {
	image, _, err := f.Load()
	if err != nil {
		return err
	}
	return dest.Save(image, 0o644)
}
