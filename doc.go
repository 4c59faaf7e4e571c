// Package zipstream reads ZIP archives from forward-only byte streams.
//
// Unlike archive/zip, which needs an io.ReaderAt and locates entries
// through the trailing central directory, this package parses local file
// headers as they appear in the stream. Archives can therefore be consumed
// directly from network connections and pipes, one entry at a time, without
// buffering whole entries in memory:
//
//	r, err := zipstream.NewReader(conn)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for {
//	    ok, err := r.Next(ctx, true)
//	    if err != nil {
//	        return err
//	    }
//	    if !ok {
//	        break
//	    }
//	    entry, _ := r.Entry()
//	    rc, err := r.Open()
//	    ...
//	}
//
// # Supported subset
//
// The reader accepts deflate (method 8) entries, zero-length stored
// entries, ZIP64 sizes declared through the extra field, and
// general-purpose flags of zero or exactly bit 3. Encrypted entries, other
// compression methods and backward seeking are out of scope. Corrupt
// headers fail hard: a forward-only stream cannot seek back to
// resynchronize, so every error is terminal for the reader.
//
// # Deferred sizes
//
// Entries written with flag bit 3 declare zero sizes and CRC in the local
// header; the true values live in a data descriptor after the compressed
// data, which this reader does not parse. Such entries can still be
// decompressed (the deflate stream marks its own end), but their Entry size
// fields read zero, and advancing past them is only reliable when the
// archive carries no descriptor record.
package zipstream
