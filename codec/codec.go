package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/AlbertoV5/tosclib/lexml"
)

// MaxDecodedSize is the default limit on the inflated markup (64 MiB).
const MaxDecodedSize = 64 * 1024 * 1024

// DefaultLevel is the deflate level used when encoding. It matches the
// level of the reference producer (zlib's default).
const DefaultLevel = zlib.DefaultCompression

// Option configures a decode or encode call.
type Option func(*config)

type config struct {
	maxSize int64
	level   int
}

// WithMaxSize sets the maximum inflated size accepted by a decode.
func WithMaxSize(n int64) Option {
	return func(c *config) {
		c.maxSize = n
	}
}

// WithLevel sets the deflate level used by an encode.
func WithLevel(level int) Option {
	return func(c *config) {
		c.level = level
	}
}

func newConfig(opts []Option) config {
	c := config{maxSize: MaxDecodedSize, level: DefaultLevel}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ============================================================
// Decode
// ============================================================

// Decode inflates a zlib stream and parses the markup inside it.
// Every failure is a *FormatError.
func Decode(data []byte, opts ...Option) (*lexml.Node, error) {
	return DecodeReader(bytes.NewReader(data), opts...)
}

// DecodeReader is Decode over an io.Reader. The stream is consumed up to
// and including the Adler-32 trailer, so truncated input or a corrupt
// checksum is reported instead of yielding a partial document.
func DecodeReader(r io.Reader, opts ...Option) (*lexml.Node, error) {
	c := newConfig(opts)

	zr, err := zlib.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, &FormatError{Stage: StageHeader, Reason: "invalid zlib header", Err: err}
	}
	defer zr.Close()

	payload, err := io.ReadAll(io.LimitReader(zr, c.maxSize+1))
	if err != nil {
		return nil, &FormatError{Stage: StageInflate, Reason: inflateReason(err), Err: err}
	}
	if int64(len(payload)) > c.maxSize {
		return nil, &FormatError{Stage: StageLimit, Reason: fmt.Sprintf("inflated payload exceeds %d bytes", c.maxSize)}
	}

	return DecodeMarkup(payload)
}

// DecodeMarkup parses uncompressed markup, as found in .xml exports.
func DecodeMarkup(markup []byte) (*lexml.Node, error) {
	root, err := lexml.Parse(markup)
	if err != nil {
		return nil, &FormatError{Stage: StageMarkup, Reason: "malformed markup", Err: err}
	}
	return root, nil
}

func inflateReason(err error) string {
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "truncated stream"
	case errors.Is(err, zlib.ErrChecksum):
		return "checksum mismatch"
	default:
		return "corrupt deflate data"
	}
}

// ============================================================
// Encode
// ============================================================

// Encode serialises root to markup and compresses it. It cannot fail for
// a well-formed tree; an invalid level passed through WithLevel falls
// back to DefaultLevel.
func Encode(root *lexml.Node, opts ...Option) []byte {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, root, opts...); err != nil {
		// bytes.Buffer writes never fail, so only the level can be wrong.
		buf.Reset()
		_ = EncodeTo(&buf, root)
	}
	return buf.Bytes()
}

// EncodeTo writes the compressed document to w.
func EncodeTo(w io.Writer, root *lexml.Node, opts ...Option) error {
	c := newConfig(opts)
	zw, err := zlib.NewWriterLevel(w, c.level)
	if err != nil {
		return fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := zw.Write(lexml.Emit(root)); err != nil {
		zw.Close()
		return fmt.Errorf("write payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zlib stream: %w", err)
	}
	return nil
}

// EncodeMarkup returns the uncompressed markup for root.
func EncodeMarkup(root *lexml.Node) []byte {
	return lexml.Emit(root)
}
