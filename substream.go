package zipstream

import "io"

// boundedReader exposes at most one entry's compressed region of the shared
// source. It holds a revocable borrow of the source: detach severs it, and
// every later read fails with ErrDetached instead of silently returning
// bytes that belong to the next entry.
type boundedReader struct {
	src       io.Reader
	remaining uint64

	// unbounded marks deferred-size entries: no declared length is known up
	// front, the deflate stream's own end marker terminates the content.
	unbounded bool
}

func newBoundedReader(src io.Reader, length uint64, unbounded bool) *boundedReader {
	return &boundedReader{src: src, remaining: length, unbounded: unbounded}
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.src == nil {
		return 0, ErrDetached
	}
	if b.unbounded {
		return b.src.Read(p)
	}
	if b.remaining == 0 {
		// The source may well hold more bytes; they belong to the next
		// header or the archive trailer and must not be touched.
		return 0, io.EOF
	}
	if uint64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.src.Read(p)
	b.remaining -= uint64(n)
	return n, err
}

// detach severs the borrow and reports the unread remainder of the region.
// The remainder of an unbounded region is unknowable and reported as zero.
func (b *boundedReader) detach() uint64 {
	b.src = nil
	if b.unbounded {
		return 0
	}
	return b.remaining
}

func (b *boundedReader) detached() bool {
	return b.src == nil
}
