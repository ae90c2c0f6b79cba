package compression

import (
	"bufio"
	"io"
)

// Run is a sequence of identical bytes.
type Run struct {
	Value byte
	// Length is the number of times Value occurs, always at least 1 for a real
	// run.
	Length int
}

// NoRun is returned by [RunReader.NextRun] when there's nothing left to read.
var NoRun = Run{}

// RunReader splits a byte stream into runs of identical bytes.
type RunReader struct {
	source *bufio.Reader
}

func NewRunReader(source io.Reader) RunReader {
	return RunReader{source: bufio.NewReader(source)}
}

// NextRun returns the next run of identical bytes from the stream. At the end of
// the stream it returns [NoRun] and io.EOF. A run that ends exactly at the end
// of the stream is returned with a nil error; the EOF comes on the next call.
func (r RunReader) NextRun() (Run, error) {
	first, err := r.source.ReadByte()
	if err != nil {
		return NoRun, err
	}

	length := 1
	for {
		current, err := r.source.ReadByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return NoRun, err
		}
		if current != first {
			r.source.UnreadByte()
			break
		}
		length++
	}
	return Run{Value: first, Length: length}, nil
}
