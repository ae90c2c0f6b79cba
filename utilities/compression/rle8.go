package compression

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// maxGroupLength is the longest run one RLE8 group can describe: the pair plus
// up to 255 repeats.
const maxGroupLength = 257

// EncodeRLE8 run-length encodes everything from `input` into `output`. It
// returns the number of bytes written.
func EncodeRLE8(input io.Reader, output io.Writer) (int64, error) {
	runs := NewRunReader(input)
	written := int64(0)

	for {
		run, err := runs.NextRun()
		if errors.Is(err, io.EOF) {
			return written, nil
		} else if err != nil {
			return written, fmt.Errorf("error reading input: %w", err)
		}

		for run.Length >= 2 {
			groupLength := run.Length
			if groupLength > maxGroupLength {
				groupLength = maxGroupLength
			}

			n, err := output.Write([]byte{run.Value, run.Value, byte(groupLength - 2)})
			written += int64(n)
			if err != nil {
				return written, fmt.Errorf("failed to write to output: %w", err)
			}
			run.Length -= groupLength
		}

		if run.Length == 1 {
			n, err := output.Write([]byte{run.Value})
			written += int64(n)
			if err != nil {
				return written, fmt.Errorf("failed to write to output: %w", err)
			}
		}
	}
}

// DecodeRLE8 expands RLE8 data from `input` into `output`. It returns the number
// of bytes written. Input that ends right after a pair, where the repeat count
// should be, is an error wrapping io.ErrUnexpectedEOF.
func DecodeRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	previous := -1
	written := int64(0)

	for {
		current, err := source.ReadByte()
		if errors.Is(err, io.EOF) {
			return written, nil
		} else if err != nil {
			return written, fmt.Errorf("error reading input: %w", err)
		}

		var expanded []byte
		if int(current) == previous {
			repeats, err := source.ReadByte()
			if errors.Is(err, io.EOF) {
				return written, fmt.Errorf(
					"%w: missing repeat count after two 0x%02x bytes",
					io.ErrUnexpectedEOF,
					current)
			} else if err != nil {
				return written, fmt.Errorf("error reading input: %w", err)
			}

			// The first byte of the pair was already written out on its own,
			// so this is one fewer than the group's total length.
			expanded = bytes.Repeat([]byte{current}, int(repeats)+1)

			// The group is finished. The next byte starts a new one even if
			// it's the same value, which is how runs over 257 bytes work.
			previous = -1
		} else {
			previous = int(current)
			expanded = []byte{current}
		}

		n, err := output.Write(expanded)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write to output: %w", err)
		}
	}
}
