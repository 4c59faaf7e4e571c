package zipstream

// Option configures a Reader.
type Option func(*Reader)

// WithKeepOpen controls whether the reader closes the underlying source
// once the central directory or end of input is reached, and on Close.
// By default the source is closed if it implements io.Closer.
func WithKeepOpen(keep bool) Option {
	return func(r *Reader) {
		r.keepOpen = keep
	}
}
