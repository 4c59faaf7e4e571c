package zipstream

// Entry describes the archive entry the reader is currently positioned on.
// It is a value decoded once per local file header; the next successful
// advance supersedes it.
type Entry struct {
	// Name is the entry's filename as stored, decoded as ASCII. Uniqueness
	// is a property of well-formed archives and is not enforced here.
	Name string

	// CRC32 is the checksum stored in the local header. It is surfaced for
	// callers; the reader never verifies it against decompressed content.
	CRC32 uint32

	// Method is the compression method field. Non-empty entries are always
	// deflate (8); zero-length entries keep whatever method they declare.
	Method uint16

	// CompressedSize is the on-wire byte count of the entry's compressed
	// region, taken from the local header or its ZIP64 extra field.
	CompressedSize uint64

	// UncompressedSize is the decompressed byte count, same provenance.
	UncompressedSize uint64

	// HasDeferredSizes reports general-purpose flag bit 3: the size and
	// CRC32 fields above read zero and the true values live in a trailing
	// data descriptor that this reader does not parse.
	HasDeferredSizes bool
}

// IsDir reports whether the entry is a directory placeholder, identified by
// a trailing forward slash in its name.
func (e *Entry) IsDir() bool {
	return len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/'
}
