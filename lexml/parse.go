package lexml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// SyntaxError reports malformed markup.
type SyntaxError struct {
	Reason string
	Line   int
	Column int
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lexml: %s at %d:%d", e.Reason, e.Line, e.Column)
	}
	return "lexml: " + e.Reason
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse reads a single-rooted markup document into a Node tree.
//
// Text of leaf elements is kept verbatim. Whitespace-only text that
// sits between child elements is indentation and is dropped.
// Comments, processing instructions and directives are skipped.
// Namespace prefixes and xmlns declarations are kept as written, so
// "svg:path" stays the tag and "xmlns:svg" stays an attribute.
func Parse(data []byte) (*Node, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader is Parse over an io.Reader.
func ParseReader(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root  *Node
		stack []*Node
		texts []*bytes.Buffer
	)

	fail := func(reason string, err error) error {
		line, col := dec.InputPos()
		return &SyntaxError{Reason: reason, Line: line, Column: col, Err: err}
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, &SyntaxError{Reason: se.Msg, Line: se.Line, Err: err}
			}
			return nil, fail("read token", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fail("multiple root elements", nil)
			}
			n := &Node{Tag: qualified(t.Name)}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			texts = append(texts, new(bytes.Buffer))

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fail(fmt.Sprintf("unexpected </%s>", qualified(t.Name)), nil)
			}
			n := stack[len(stack)-1]
			if name := qualified(t.Name); name != n.Tag {
				return nil, fail(fmt.Sprintf("element <%s> closed by </%s>", n.Tag, name), nil)
			}
			buf := texts[len(texts)-1]
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
			text := buf.String()
			if len(n.Children) > 0 && isSpace(text) {
				text = ""
			}
			n.Text = text

		case xml.CharData:
			if len(stack) == 0 {
				if !isSpace(string(t)) {
					return nil, fail("text outside root element", nil)
				}
				continue
			}
			texts[len(texts)-1].Write(t)
		}
	}

	if root == nil {
		return nil, &SyntaxError{Reason: "no root element"}
	}
	if len(stack) > 0 {
		return nil, &SyntaxError{Reason: fmt.Sprintf("unclosed element <%s>", stack[len(stack)-1].Tag)}
	}
	return root, nil
}

// qualified renders a raw name with its prefix. RawToken leaves the
// prefix in Space.
func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func isSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
