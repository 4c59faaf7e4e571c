// Package inflate manages reusable deflate decoders.
package inflate

import (
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// Pool manages reusable flate decoders to reduce allocation overhead.
// Decoders are reset onto a new input on Get and returned on release.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a new pool for flate decoders.
func NewPool() *Pool {
	return &Pool{}
}

// Get returns a decoder configured to read from r and a release function
// that must be called when the caller is done with it. The release function
// returns the decoder to the pool; the decoder must not be used after it.
func (p *Pool) Get(r io.Reader) (io.ReadCloser, func()) {
	if p == nil {
		// No pool available, create a one-off decoder.
		rc := flate.NewReader(r)
		return rc, func() { _ = rc.Close() }
	}

	if value := p.pool.Get(); value != nil {
		rc, ok := value.(io.ReadCloser)
		if ok {
			if res, ok := rc.(flate.Resetter); ok && res.Reset(r, nil) == nil {
				return rc, func() { p.pool.Put(rc) }
			}
			// Reset failed or unexpected type, fall through to a fresh one.
			_ = rc.Close()
		}
	}

	rc := flate.NewReader(r)
	return rc, func() { p.pool.Put(rc) }
}
