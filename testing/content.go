package testing

import (
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// ErrInjected is the error returned by the failing readers and writers here.
var ErrInjected = errors.New("injected failure")

// RandomContent returns `size` random bytes. It's guaranteed to either return
// a valid slice or fail the test and abort.
func RandomContent(t *testing.T, size int) []byte {
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoErrorf(t, err, "failed to generate %d random bytes", size)
	return data
}

// FailingReader returns the bytes of Data, then fails with [ErrInjected]
// instead of io.EOF.
type FailingReader struct {
	Data []byte
	pos  int
}

func (r *FailingReader) Read(buffer []byte) (int, error) {
	if r.pos >= len(r.Data) {
		return 0, ErrInjected
	}
	n := copy(buffer, r.Data[r.pos:])
	r.pos += n
	return n, nil
}

// LimitedWriter accepts up to Limit bytes and fails with [ErrInjected] on any
// write that would go past it. Everything accepted is kept in Written.
type LimitedWriter struct {
	Limit   int
	Written []byte
}

func (w *LimitedWriter) Write(data []byte) (int, error) {
	room := w.Limit - len(w.Written)
	if len(data) <= room {
		w.Written = append(w.Written, data...)
		return len(data), nil
	}
	if room > 0 {
		w.Written = append(w.Written, data[:room]...)
	} else {
		room = 0
	}
	return room, ErrInjected
}

var _ io.Writer = (*LimitedWriter)(nil)
