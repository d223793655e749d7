// Package codec reads and writes the TouchOSC container: a zlib stream
// (RFC 1950 header, deflate body, Adler-32 trailer) wrapping one markup
// document.
//
// Callers hand over a byte slice and get a lexml tree back, or the
// reverse; nothing here understands controls:
//
//	root, err := codec.Decode(data)
//	data := codec.Encode(root)
//
// Decode never returns a partial tree. Any problem with the header, the
// deflate body, the checksum, the size limit or the markup is reported
// as a *FormatError naming the failing Stage.
package codec
