package zipstream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/meigma/zipstream/internal/inflate"
	"github.com/meigma/zipstream/internal/zipfmt"
)

const scratchSize = 32 * 1024

// scratchPool provides the buffers used for header windows and for
// discard-skipping compressed data on non-seekable sources.
var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, scratchSize)
		return &b
	},
}

var decoders = inflate.NewPool()

// Reader enumerates the entries of a ZIP archive read from a forward-only
// byte stream. It never reads the trailing central directory: iteration
// stops when its signature (or end of input) is encountered.
//
// A Reader is positioned before the first entry until Next reports an entry
// found, and on exactly one entry afterwards. Reading more than one entry
// at a time from a single Reader is not supported, and a Reader must not be
// used from multiple goroutines concurrently.
type Reader struct {
	src      io.Reader
	cur      *Entry
	sub      *boundedReader
	view     *entryView
	keepOpen bool
	done     bool
	closed   bool

	// err is sticky: cancellation and I/O failures leave the reader
	// unusable, since a forward-only stream cannot be rewound to retry.
	err error
}

// NewReader returns a Reader enumerating the archive read from src.
//
// The source is owned by the reader and closed (when it implements
// io.Closer) once the central directory is reached or Close is called,
// unless WithKeepOpen was set. If src implements io.Seeker, unread entry
// data is skipped by seeking instead of reading.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	r := &Reader{src: src}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Next advances the reader to the next entry, discarding whatever remains
// of the current entry's compressed data. It returns true when positioned
// on an entry and false once the central directory or end of input is
// reached; after that every call returns false again.
//
// When skipDirs is set, directory placeholders (zero compressed size, name
// ending in "/") are skipped without being surfaced.
//
// Advancing permanently invalidates the handle returned by Open for the
// previous entry. Cancelling ctx aborts the in-flight read and leaves the
// reader unusable.
func (r *Reader) Next(ctx context.Context, skipDirs bool) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.done {
		return false, nil
	}
	if r.closed {
		return false, ErrClosed
	}

	// Skip the unread remainder of the current entry's compressed region.
	var remainder uint64
	if r.sub != nil {
		remainder = r.sub.detach()
		r.invalidateView()
		r.sub = nil
	} else if r.cur != nil {
		remainder = r.cur.CompressedSize
	}
	r.cur = nil

	if err := r.discard(ctx, remainder); err != nil {
		r.err = err
		return false, err
	}

	for {
		entry, err := r.readHeader(ctx, skipDirs)
		if err != nil {
			r.err = err
			return false, err
		}
		if entry == nil {
			if r.done {
				return false, nil
			}
			continue // directory placeholder skipped
		}
		r.cur = entry
		return true, nil
	}
}

// readHeader reads and parses one local file header. It returns the decoded
// entry, or nil with the reader marked done when the central directory or
// end of input was found, or nil alone for a skipped directory placeholder.
func (r *Reader) readHeader(ctx context.Context, skipDirs bool) (*Entry, error) {
	bp := scratchPool.Get().(*[]byte)
	defer scratchPool.Put(bp)
	window := (*bp)[:zipfmt.LocalHeaderLen]

	n, err := r.readFull(ctx, window)
	if n == 0 && errors.Is(err, io.EOF) {
		// Clean end of input with no central directory.
		r.finish()
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: unexpected end of stream in local header", ErrFormat)
		}
		return nil, err
	}

	if binary.LittleEndian.Uint32(window[:4]) == zipfmt.CentralDirSignature {
		r.finish()
		return nil, nil
	}

	hdr, err := zipfmt.ParseLocalHeader(window)
	if err != nil {
		return nil, err
	}

	nameExtra := make([]byte, hdr.FilenameLen+hdr.ExtraLen)
	if _, err := r.readFull(ctx, nameExtra); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: unexpected end of stream in filename and extra field", ErrFormat)
		}
		return nil, err
	}
	name := nameExtra[:hdr.FilenameLen]

	// Directory placeholders carry no data, so there is nothing further to
	// skip before parsing the next header.
	if skipDirs && hdr.CompressedSize == 0 && len(name) > 0 && name[len(name)-1] == '/' {
		return nil, nil
	}

	if hdr.NeedsZip64() {
		if err := hdr.ResolveZip64(nameExtra[hdr.FilenameLen:]); err != nil {
			return nil, err
		}
	}

	return &Entry{
		Name:             string(name),
		CRC32:            hdr.CRC32,
		Method:           hdr.Method,
		CompressedSize:   hdr.CompressedSize,
		UncompressedSize: hdr.UncompressedSize,
		HasDeferredSizes: hdr.SizesDeferred,
	}, nil
}

// Entry returns the descriptor of the entry the reader is positioned on.
func (r *Reader) Entry() (*Entry, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.cur == nil {
		return nil, ErrNoEntry
	}
	return r.cur, nil
}

// Open returns the decompressed content of the current entry. The content
// is decompressed lazily as it is read; repeated calls for the same entry
// return the same handle.
//
// The handle stays valid until the next call to Next or Close, which
// permanently detaches it: further reads fail with ErrDetached rather than
// leaking bytes that belong to a different entry. Closing the handle early
// is allowed; the reader then discards the unread remainder on advance.
func (r *Reader) Open() (io.ReadCloser, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.closed {
		return nil, ErrClosed
	}
	if r.cur == nil {
		return nil, ErrNoEntry
	}
	if r.view != nil {
		return r.view, nil
	}

	sub := newBoundedReader(r.src, r.cur.CompressedSize, r.cur.HasDeferredSizes)
	view := &entryView{sub: sub}

	// Anything with compressed payload is deflate; the parser guarantees
	// it. Entries without payload and without deferred sizes are served as
	// empty views, whatever method they declare.
	if r.cur.HasDeferredSizes || r.cur.CompressedSize > 0 {
		view.rc, view.release = decoders.Get(sub)
	}

	r.sub = sub
	r.view = view
	return view, nil
}

// Close detaches any open entry view and releases the underlying source
// unless WithKeepOpen was set. Close is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.sub != nil {
		r.sub.detach()
		r.sub = nil
	}
	r.invalidateView()
	r.cur = nil
	return r.releaseSource()
}

// finish marks the reader exhausted and releases the source.
func (r *Reader) finish() {
	r.done = true
	if err := r.releaseSource(); err != nil && r.err == nil {
		r.err = fmt.Errorf("close source: %w", err)
	}
}

func (r *Reader) releaseSource() error {
	src := r.src
	r.src = nil
	if src == nil || r.keepOpen {
		return nil
	}
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Reader) invalidateView() {
	if r.view != nil {
		r.view.invalidate()
		r.view = nil
	}
}

// discard drops n bytes of compressed data from the source, seeking forward
// when the source supports it and reading into a pooled scratch buffer
// otherwise.
func (r *Reader) discard(ctx context.Context, n uint64) error {
	if n == 0 {
		return nil
	}
	if s, ok := r.src.(io.Seeker); ok {
		if _, err := s.Seek(int64(n), io.SeekCurrent); err != nil {
			return fmt.Errorf("skip entry data: %w", err)
		}
		return nil
	}

	bp := scratchPool.Get().(*[]byte)
	defer scratchPool.Put(bp)
	buf := *bp

	for n > 0 {
		chunk := buf
		if n < uint64(len(chunk)) {
			chunk = chunk[:n]
		}
		m, err := r.readFull(ctx, chunk)
		n -= uint64(m)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: unexpected end of stream in entry data", ErrFormat)
			}
			return err
		}
	}
	return nil
}

// readFull reads len(buf) bytes, retrying partial reads and observing
// cancellation between reads. It returns io.EOF untouched when the source
// was already drained; callers distinguish that from a short read by the
// byte count.
func (r *Reader) readFull(ctx context.Context, buf []byte) (int, error) {
	var n int
	for n < len(buf) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		m, err := r.src.Read(buf[n:])
		n += m
		if err != nil {
			if n == len(buf) {
				// Sources may deliver their final bytes together with
				// io.EOF; a full buffer is a successful read.
				return n, nil
			}
			return n, err
		}
	}
	return n, nil
}
