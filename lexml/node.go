package lexml

// ============================================================
// Node Tree
// ============================================================

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is a generic markup element: a tag, its attributes, optional
// text content and ordered child elements. No schema rules apply at
// this level.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// New creates a node with the given tag.
func New(tag string) *Node {
	return &Node{Tag: tag}
}

// NewText creates a leaf node holding text.
func NewText(tag, text string) *Node {
	return &Node{Tag: tag, Text: text}
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing an existing one in place so the
// original attribute order survives.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// DeleteAttr removes an attribute. It reports whether one was removed.
func (n *Node) DeleteAttr(name string) bool {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Child returns the first child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns all children with the given tag in document order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// ChildText returns the text of the first child with the given tag.
// The boolean is false when no such child exists.
func (n *Node) ChildText(tag string) (string, bool) {
	c := n.Child(tag)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

// Append adds children at the end and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// AppendText appends a leaf child holding text and returns n.
func (n *Node) AppendText(tag, text string) *Node {
	return n.Append(NewText(tag, text))
}

// RemoveAt detaches and returns the child at index i.
// It returns nil when i is out of range.
func (n *Node) RemoveAt(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	c := n.Children[i]
	copy(n.Children[i:], n.Children[i+1:])
	n.Children[len(n.Children)-1] = nil
	n.Children = n.Children[:len(n.Children)-1]
	return c
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Tag: n.Tag, Text: n.Text}
	if len(n.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Equal reports whether two trees are structurally equal: same tags,
// text and child order. Attributes are compared as a set.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Tag != o.Tag || n.Text != o.Text {
		return false
	}
	if len(n.Attrs) != len(o.Attrs) || len(n.Children) != len(o.Children) {
		return false
	}
	for _, a := range n.Attrs {
		if v, ok := o.Attr(a.Name); !ok || v != a.Value {
			return false
		}
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants in pre-order. Returning false from
// fn skips the subtree of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
