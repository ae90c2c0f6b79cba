package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
)

// Extension is the file name suffix used for compressed images.
const Extension = ".rle.gz"

// IsCompressedName reports whether a file name indicates a compressed image.
func IsCompressedName(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), Extension)
}

// CompressImage run-length encodes a raw image from `input` and gzips the
// result into `output`. It returns the number of bytes of RLE8 data produced,
// before gzip.
func CompressImage(input io.Reader, output io.Writer) (int64, error) {
	// Images are small enough that the best compression level costs nothing
	// noticeable.
	gzWriter, err := gzip.NewWriterLevel(output, gzip.BestCompression)
	if err != nil {
		return 0, err
	}

	n, err := EncodeRLE8(input, gzWriter)
	if err != nil {
		gzWriter.Close()
		return n, err
	}
	return n, gzWriter.Close()
}

// DecompressImage reverses [CompressImage]. It returns the size of the raw image
// written to `output`.
func DecompressImage(input io.Reader, output io.Writer) (int64, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return 0, err
	}
	defer gzReader.Close()
	return DecodeRLE8(gzReader, output)
}

// CompressImageBytes is [CompressImage] for an image already in memory.
func CompressImageBytes(raw []byte) ([]byte, error) {
	var buffer bytes.Buffer
	if _, err := CompressImage(bytes.NewReader(raw), &buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DecompressImageToBytes is [DecompressImage] returning the raw image in a new
// byte slice.
func DecompressImageToBytes(input io.Reader) ([]byte, error) {
	var buffer bytes.Buffer
	if _, err := DecompressImage(input, &buffer); err != nil {
		return nil, err
	}
	if buffer.Len() == 0 {
		return []byte{}, nil
	}
	return buffer.Bytes(), nil
}
