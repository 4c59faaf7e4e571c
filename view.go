package zipstream

import (
	"io"
	"io/fs"
)

// entryView is the lazily decompressing view of the current entry's
// payload. It stays usable until the reader advances past the entry; from
// then on every read fails with ErrDetached, even for callers that kept the
// handle around.
type entryView struct {
	sub     *boundedReader
	rc      io.ReadCloser // pooled deflate decoder; nil for empty entries
	release func()
	closed  bool
}

func (v *entryView) Read(p []byte) (int, error) {
	if v.sub.detached() {
		return 0, ErrDetached
	}
	if v.closed {
		return 0, fs.ErrClosed
	}
	if v.rc == nil {
		return 0, io.EOF
	}
	return v.rc.Read(p)
}

// Close returns the decoder to the pool. The unread remainder of the
// entry's compressed data is discarded by the reader's next advance.
func (v *entryView) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.invalidate()
	return nil
}

// invalidate releases the pooled decoder. Reads past this point fail via
// the detached or closed checks, so the decoder can be reused safely.
func (v *entryView) invalidate() {
	if v.release != nil {
		v.release()
		v.release = nil
		v.rc = nil
	}
}
