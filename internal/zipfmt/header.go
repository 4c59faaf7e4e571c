// Package zipfmt holds the wire-format knowledge for the supported ZIP
// subset: local file header layout, signatures, and the ZIP64 extra-field
// record. It is pure decoding over byte windows and performs no I/O.
package zipfmt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record signatures. All ZIP records start with the two-byte marker "PK".
const (
	LocalHeaderSignature uint32 = 0x04034b50
	CentralDirSignature  uint32 = 0x02014b50
)

const (
	// LocalHeaderLen is the fixed size of a local file header, up to and
	// excluding the variable-length filename and extra-field region.
	LocalHeaderLen = 30

	// Deflate is the only compression method accepted for non-empty entries.
	Deflate uint16 = 8

	// maxVersion is the highest "version needed to extract" this reader has
	// been tested against (4.5, the revision that introduced ZIP64).
	maxVersion = 45

	// flagDeferredSizes is general-purpose bit 3: the header declares zero
	// sizes and the true values follow the compressed data.
	flagDeferredSizes uint16 = 0x8

	zip64ExtraID uint16 = 0x0001

	// sizeSentinel in the 32-bit compressed-size field defers both sizes to
	// the ZIP64 extra field.
	sizeSentinel = ^uint32(0)
)

var (
	// ErrFormat is returned when the input is not a valid instance of the
	// supported ZIP subset.
	ErrFormat = errors.New("zipstream: not a valid zip stream")

	// ErrVersion is returned when a header requires an extraction version
	// newer than 4.5.
	ErrVersion = errors.New("zipstream: unsupported zip version")

	// ErrFlags is returned for any general-purpose flag combination other
	// than zero or exactly the deferred-sizes bit.
	ErrFlags = errors.New("zipstream: unsupported flags")

	// ErrCompression is returned when a non-empty entry uses a compression
	// method other than deflate.
	ErrCompression = errors.New("zipstream: unsupported compression method")
)

// LocalHeader is a decoded local file header. Sizes are 64-bit: they hold
// the 32-bit header fields verbatim until ResolveZip64 replaces them with
// the values from the ZIP64 extra field.
type LocalHeader struct {
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64

	// FilenameLen and ExtraLen size the variable-length region that follows
	// the fixed header on the wire.
	FilenameLen int
	ExtraLen    int

	// SizesDeferred reports flag bit 3: size and CRC fields read zero and
	// the true values live in a trailing data descriptor.
	SizesDeferred bool

	needZip64 bool
}

// ParseLocalHeader decodes the fixed 30-byte local file header at the start
// of buf. The modification time and date fields are skipped.
func ParseLocalHeader(buf []byte) (LocalHeader, error) {
	if len(buf) < LocalHeaderLen {
		return LocalHeader{}, fmt.Errorf("%w: short local header window (%d bytes)", ErrFormat, len(buf))
	}

	b := readBuf(buf)
	if sig := b.uint32(); sig != LocalHeaderSignature {
		return LocalHeader{}, fmt.Errorf("%w: bad local header signature 0x%08x", ErrFormat, sig)
	}

	var h LocalHeader
	h.ReaderVersion = b.uint16()
	if h.ReaderVersion > maxVersion {
		return LocalHeader{}, fmt.Errorf("%w: version %d.%d", ErrVersion, h.ReaderVersion/10, h.ReaderVersion%10)
	}

	h.Flags = b.uint16()
	switch h.Flags {
	case 0:
	case flagDeferredSizes:
		h.SizesDeferred = true
	default:
		return LocalHeader{}, fmt.Errorf("%w: 0x%04x", ErrFlags, h.Flags)
	}

	h.Method = b.uint16()
	b.skip(4) // modification time and date, ignored
	h.CRC32 = b.uint32()
	csize := b.uint32()
	usize := b.uint32()
	h.FilenameLen = int(b.uint16())
	h.ExtraLen = int(b.uint16())

	// Stored zero-length entries (directories, empty files) pass whatever
	// method they declare; anything with payload must be deflate.
	if csize != 0 && h.Method != Deflate {
		return LocalHeader{}, fmt.Errorf("%w: method %d", ErrCompression, h.Method)
	}

	h.CompressedSize = uint64(csize)
	h.UncompressedSize = uint64(usize)
	h.needZip64 = csize == sizeSentinel

	return h, nil
}

// NeedsZip64 reports whether the 32-bit compressed-size field read as the
// all-ones sentinel, meaning the true sizes live in the ZIP64 extra field
// and must be resolved via ResolveZip64.
func (h *LocalHeader) NeedsZip64() bool {
	return h.needZip64
}

// ResolveZip64 locates the ZIP64 sub-record in the entry's extra-field
// bytes and replaces both sizes with its 64-bit values. The record stores
// the uncompressed size first, then the compressed size; that order is
// mandated by the format and must not be swapped.
func (h *LocalHeader) ResolveZip64(extra []byte) error {
	b := readBuf(extra)
	for len(b) >= 4 { // need at least tag and size
		tag := b.uint16()
		size := int(b.uint16())
		if len(b) < size {
			break
		}
		field := b.sub(size)
		if tag != zip64ExtraID {
			continue
		}
		if len(field) < 16 {
			return fmt.Errorf("%w: zip64 extra field too short (%d bytes)", ErrFormat, len(field))
		}
		h.UncompressedSize = field.uint64()
		h.CompressedSize = field.uint64()
		h.needZip64 = false
		return nil
	}
	return fmt.Errorf("%w: zip64 sizes without extra field record", ErrFormat)
}

// readBuf is a little-endian decoding cursor over a byte window.
type readBuf []byte

func (b *readBuf) uint16() uint16 {
	v := binary.LittleEndian.Uint16(*b)
	*b = (*b)[2:]
	return v
}

func (b *readBuf) uint32() uint32 {
	v := binary.LittleEndian.Uint32(*b)
	*b = (*b)[4:]
	return v
}

func (b *readBuf) uint64() uint64 {
	v := binary.LittleEndian.Uint64(*b)
	*b = (*b)[8:]
	return v
}

func (b *readBuf) sub(n int) readBuf {
	v := (*b)[:n]
	*b = (*b)[n:]
	return v
}

func (b *readBuf) skip(n int) {
	*b = (*b)[n:]
}
