package lexml

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Declaration is the XML prolog written before every emitted document.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// EmitOptions configures the emitter.
type EmitOptions struct {
	// Declaration writes the XML prolog first.
	Declaration bool

	// Indent enables pretty output with the given indent unit.
	// Pretty output is for humans; leaf text is never re-indented but
	// the added whitespace means it does not round-trip byte-for-byte.
	Indent string
}

// Emit writes n as compact markup with an XML declaration. Output is
// deterministic: attributes keep their stored order and no whitespace is
// added between elements.
func Emit(n *Node) []byte {
	return EmitWithOptions(n, EmitOptions{Declaration: true})
}

// EmitIndent writes n as indented markup for debugging.
func EmitIndent(n *Node, indent string) []byte {
	return EmitWithOptions(n, EmitOptions{Declaration: true, Indent: indent})
}

// EmitWithOptions writes n with custom options.
func EmitWithOptions(n *Node, opts EmitOptions) []byte {
	e := &emitter{opts: opts}
	if opts.Declaration {
		e.buf.WriteString(Declaration)
		if opts.Indent != "" {
			e.buf.WriteByte('\n')
		}
	}
	if n != nil {
		e.emit(n, 0)
	}
	return e.buf.Bytes()
}

type emitter struct {
	buf  bytes.Buffer
	opts EmitOptions
}

func (e *emitter) emit(n *Node, depth int) {
	pretty := e.opts.Indent != ""
	if pretty && depth > 0 {
		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat(e.opts.Indent, depth))
	}

	e.buf.WriteByte('<')
	e.buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		e.buf.WriteByte(' ')
		e.buf.WriteString(a.Name)
		e.buf.WriteString(`="`)
		escape(&e.buf, a.Value, true)
		e.buf.WriteByte('"')
	}

	if n.Text == "" && len(n.Children) == 0 {
		e.buf.WriteString("/>")
		return
	}
	e.buf.WriteByte('>')
	escape(&e.buf, n.Text, false)
	for _, c := range n.Children {
		e.emit(c, depth+1)
	}
	if pretty && len(n.Children) > 0 {
		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat(e.opts.Indent, depth))
	}
	e.buf.WriteString("</")
	e.buf.WriteString(n.Tag)
	e.buf.WriteByte('>')
}

// ============================================================
// Escaping
// ============================================================

// escape writes s with the minimal set of entity references. Newlines
// and tabs stay literal in text so scripts remain readable; inside
// attribute values they are encoded because parsers normalise them.
func escape(buf *bytes.Buffer, s string, attr bool) {
	last := 0
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		var esc string
		switch r {
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '"':
			if attr {
				esc = "&quot;"
			}
		case '\r':
			esc = "&#xD;"
		case '\n':
			if attr {
				esc = "&#xA;"
			}
		case '\t':
			if attr {
				esc = "&#x9;"
			}
		default:
			if !isXMLChar(r) || (r == utf8.RuneError && width == 1) {
				esc = "\uFFFD"
			}
		}
		if esc != "" {
			buf.WriteString(s[last:i])
			buf.WriteString(esc)
			last = i + width
		}
		i += width
	}
	buf.WriteString(s[last:])
}

func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
