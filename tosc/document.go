package tosc

import (
	"github.com/AlbertoV5/tosclib/codec"
	"github.com/AlbertoV5/tosclib/lexml"
)

// DefaultVersion is the lexml version written by current editors.
const DefaultVersion = "3"

// Document is a complete layout: a version tag and the root control.
type Document struct {
	Version string
	root    *Control
	attrs   []lexml.Attr
	extra   []*lexml.Node
}

// FromScratch creates a document whose root is a new control of type t.
func FromScratch(t ControlType) (*Document, error) {
	root, err := NewControl(t)
	if err != nil {
		return nil, err
	}
	root.docRoot = true
	return &Document{Version: DefaultVersion, root: root}, nil
}

// NewDocument wraps an existing detached control as a document root.
func NewDocument(root *Control) (*Document, error) {
	if root.parent != nil {
		return nil, ErrAttached
	}
	root.docRoot = true
	return &Document{Version: DefaultVersion, root: root}, nil
}

// Root returns the root control.
func (d *Document) Root() *Control { return d.root }

// ============================================================
// Loading
// ============================================================

// Load decodes a compressed layout. Errors are *codec.FormatError for
// container problems and *SchemaError for schema violations.
func Load(data []byte) (*Document, error) {
	return LoadWithOptions(data, DefaultParseOptions())
}

// LoadWithOptions is Load with explicit parse options.
func LoadWithOptions(data []byte, opts ParseOptions, codecOpts ...codec.Option) (*Document, error) {
	n, err := codec.Decode(data, codecOpts...)
	if err != nil {
		return nil, err
	}
	return ParseDocumentWithOptions(n, opts)
}

// LoadMarkup parses an uncompressed layout.
func LoadMarkup(markup []byte, opts ParseOptions) (*Document, error) {
	n, err := codec.DecodeMarkup(markup)
	if err != nil {
		return nil, err
	}
	return ParseDocumentWithOptions(n, opts)
}

// ParseDocument builds a document from a <lexml> element.
func ParseDocument(n *lexml.Node) (*Document, error) {
	return ParseDocumentWithOptions(n, DefaultParseOptions())
}

// ParseDocumentWithOptions builds a document from a <lexml> element. The
// first <node> child is the root control; other children are kept.
func ParseDocumentWithOptions(n *lexml.Node, opts ParseOptions) (*Document, error) {
	path := Path{{Tag: "lexml", Index: -1}}
	if n.Tag != "lexml" {
		return nil, schemaErr(KindMalformedNode, Path{{Tag: n.Tag, Index: -1}}, "document root must be <lexml>")
	}
	d := &Document{Version: DefaultVersion}
	for _, a := range n.Attrs {
		if a.Name == "version" {
			d.Version = a.Value
			continue
		}
		d.attrs = append(d.attrs, a)
	}

	p := &parser{opts: opts}
	for _, c := range n.Children {
		if c.Tag != "node" || d.root != nil {
			d.extra = append(d.extra, c.Clone())
			continue
		}
		root, err := p.control(c, path.Child("node", 0))
		if err != nil {
			return nil, err
		}
		root.docRoot = true
		d.root = root
	}
	if d.root == nil {
		return nil, schemaErr(KindMalformedNode, path, "document has no root <node>")
	}
	return d, nil
}

// ============================================================
// Saving
// ============================================================

// Node serializes the whole document to its <lexml> element.
func (d *Document) Node() *lexml.Node {
	n := lexml.New("lexml")
	n.SetAttr("version", d.Version)
	for _, a := range d.attrs {
		n.SetAttr(a.Name, a.Value)
	}
	n.Append(d.root.Node())
	return n.Append(cloneNodes(d.extra)...)
}

// Save encodes the document to the compressed container format.
func (d *Document) Save(opts ...codec.Option) []byte {
	return codec.Encode(d.Node(), opts...)
}

// Markup returns the uncompressed markup of the document.
func (d *Document) Markup() []byte {
	return codec.EncodeMarkup(d.Node())
}

// Dumps returns an indented rendering of the markup for inspection.
func (d *Document) Dumps() string {
	return string(lexml.EmitIndent(d.Node(), "  "))
}

// Fingerprint hashes the document's markup.
func (d *Document) Fingerprint() [32]byte {
	return codec.Fingerprint(d.Node())
}
