package zipstream

import (
	"errors"

	"github.com/meigma/zipstream/internal/zipfmt"
)

// Errors re-exported from the wire-format package.
var (
	// ErrFormat is returned when the input is not a valid instance of the
	// supported ZIP subset: wrong signature, truncated header, or a ZIP64
	// size sentinel without a matching extra-field record.
	ErrFormat = zipfmt.ErrFormat

	// ErrVersion is returned when a header requires an extraction version
	// newer than 4.5.
	ErrVersion = zipfmt.ErrVersion

	// ErrFlags is returned for any general-purpose flag combination other
	// than zero or exactly the deferred-sizes bit.
	ErrFlags = zipfmt.ErrFlags

	// ErrCompression is returned when a non-empty entry uses a compression
	// method other than deflate.
	ErrCompression = zipfmt.ErrCompression
)

var (
	// ErrNoEntry is returned when entry state is accessed while the reader
	// is not positioned on an entry.
	ErrNoEntry = errors.New("zipstream: no current entry")

	// ErrDetached is returned when reading an entry view after the reader
	// advanced past its entry.
	ErrDetached = errors.New("zipstream: entry view detached by advance")

	// ErrClosed is returned when using a reader after Close.
	ErrClosed = errors.New("zipstream: reader closed")

	// ErrNilSource is returned when constructing a reader over a nil source.
	ErrNilSource = errors.New("zipstream: nil source")
)
