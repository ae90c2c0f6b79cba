package testing

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thorpej/cocofs/utilities/compression"
	"github.com/xaionaro-go/bytesextra"
)

// LoadDiskImage takes a compressed disk image and returns a stream to access the
// uncompressed data.
//
//   - Writes to the stream do not affect `compressedImageBytes`.
//   - The stream's size is fixed to `expectedSize`. Writing past the end is an
//     error.
func LoadDiskImage(t *testing.T, compressedImageBytes []byte, expectedSize uint) io.ReadWriteSeeker {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	imageBytes, err := compression.DecompressImageToBytes(bytes.NewReader(compressedImageBytes))
	require.NoError(t, err)
	require.EqualValues(t, expectedSize, len(imageBytes), "uncompressed image is wrong size")
	return bytesextra.NewReadWriteSeeker(imageBytes)
}

// NewImageStream returns a fixed-size stream over a copy of `imageBytes`.
func NewImageStream(imageBytes []byte) io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(bytes.Clone(imageBytes))
}

// FilledImage returns `size` bytes all set to `fill`.
func FilledImage(size uint, fill byte) []byte {
	return bytes.Repeat([]byte{fill}, int(size))
}
