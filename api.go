// Package cocofs manipulates TRS-80 Color Computer (CoCo DOS) floppy disk
// images.
//
// A [Volume] pairs an in-memory image with the file it came from and provides
// the operations of the cocofs command line tool. Each mutating operation
// changes the image in memory and then writes the whole image back out.
package cocofs

import (
	"io"
	"log/slog"
	"os"

	"github.com/thorpej/cocofs/disks"
	"github.com/thorpej/cocofs/file_systems/cocodos"
)

// Volume is an image loaded from, or about to be written to, an image file.
//
// A Volume is not safe for concurrent use, and nothing prevents another process
// from modifying the image file while it's in use.
type Volume struct {
	file   disks.ImageFile
	image  *cocodos.Image
	logger *slog.Logger
	// stdout receives listings and dumps.
	stdout io.Writer
}

// Options configures a Volume. The zero value is usable.
type Options struct {
	// Logger is used for diagnostics. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Stdout is where listings and dumps are written. If nil, os.Stdout is
	// used.
	Stdout io.Writer
}

func newVolume(file disks.ImageFile, image *cocodos.Image, options Options) *Volume {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stdout := options.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Volume{file: file, image: image, logger: logger, stdout: stdout}
}

// Mount loads an existing image file.
//
// An image file shorter than a full disk isn't an error. The missing part of
// the image is treated as zeroes and a warning is logged.
func Mount(file disks.ImageFile, options Options) (*Volume, error) {
	image, bytesRead, err := file.Load()
	if err != nil {
		return nil, err
	}

	volume := newVolume(file, image, options)
	if bytesRead < cocodos.ImageSize {
		volume.logger.Warn(
			"image file is short",
			"path", file.Path,
			"bytes_read", bytesRead,
			"expected", cocodos.ImageSize)
	}
	volume.logger.Debug(
		"mounted image",
		"path", file.Path,
		"representation", file.Representation.String(),
		"free_granules", image.FreeGranules())
	return volume, nil
}

// Create returns a Volume holding a freshly formatted image. Nothing is written
// to `file` until [Volume.Flush] is called.
func Create(file disks.ImageFile, options Options) *Volume {
	return newVolume(file, cocodos.Format(), options)
}

// Image returns the in-memory image.
func (v *Volume) Image() *cocodos.Image {
	return v.image
}

// File returns the image file the volume is bound to.
func (v *Volume) File() disks.ImageFile {
	return v.file
}

// Flush writes the entire image to the image file.
func (v *Volume) Flush() error {
	err := v.file.Save(v.image, 0o644)
	if err != nil {
		v.logger.Error("failed to write image", "path", v.file.Path, "error", err)
		return err
	}
	v.logger.Debug(
		"wrote image",
		"path", v.file.Path,
		"free_granules", v.image.FreeGranules())
	return nil
}
