package tosc

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/AlbertoV5/tosclib/lexml"
)

var (
	// ErrCycle is returned when attaching a control below itself.
	ErrCycle = errors.New("tosc: control cannot become its own descendant")
	// ErrAttached is returned when attaching a control that already has a
	// parent. Detach it first.
	ErrAttached = errors.New("tosc: control already has a parent")
)

// Control is one UI element of a layout and the root of its subtree.
//
// A control owns its properties, values, messages and children. The
// parent link is a lookup aid only; detaching a control clears it.
// Controls of a type outside the known set are opaque: they keep the
// original node verbatim and reject every mutation.
type Control struct {
	typ        ControlType
	id         string
	properties []Property
	values     []Value
	messages   []Message
	children   []*Control
	parent     *Control

	attrs         []lexml.Attr  // node attributes other than ID and type
	extra         []*lexml.Node // unknown node sub-elements
	emptyChildren bool          // source had an empty <children/>
	raw           *lexml.Node   // set for opaque controls
	docRoot       bool          // root of a Document; paths start at <lexml>
}

// NewControl creates a default-initialised control of type t with a
// fresh random ID.
func NewControl(t ControlType) (*Control, error) {
	if !t.Known() {
		return nil, schemaErr(KindUnknownType, nil, "cannot create control of type %q", string(t))
	}
	c := &Control{
		typ:        t,
		id:         uuid.NewString(),
		properties: t.DefaultProperties(),
	}
	for i, p := range c.properties {
		if p.Key == "name" {
			c.properties[i].Value = Str(strings.ToLower(string(t)))
		}
	}
	for _, k := range t.ValueKeys() {
		c.values = append(c.values, NewValue(k))
	}
	return c, nil
}

// Type returns the control type.
func (c *Control) Type() ControlType { return c.typ }

// ID returns the control's unique identifier.
func (c *Control) ID() string { return c.id }

// Opaque reports whether the control has an unknown type and is kept
// as raw markup.
func (c *Control) Opaque() bool { return c.raw != nil }

func (c *Control) mutable(op string) error {
	if c.raw != nil {
		return &CapabilityError{Type: c.typ, Op: op, Path: c.Path(), Detail: "opaque control"}
	}
	return nil
}

// ============================================================
// Properties
// ============================================================

// Properties returns a copy of the properties in document order.
func (c *Control) Properties() []Property { return slices.Clone(c.properties) }

func (c *Control) propertyIndex(key string) int {
	for i, p := range c.properties {
		if p.Key == key {
			return i
		}
	}
	return -1
}

// Property returns the property stored under key.
func (c *Control) Property(key string) (Property, bool) {
	if i := c.propertyIndex(key); i >= 0 {
		return c.properties[i], true
	}
	return Property{}, false
}

// Get returns the datum stored under key.
func (c *Control) Get(key string) (Datum, bool) {
	p, ok := c.Property(key)
	return p.Value, ok
}

// Name returns the "name" property, or "" when unset.
func (c *Control) Name() string {
	d, _ := c.Get("name")
	s, _ := d.AsStr()
	return s
}

// Frame returns the "frame" property.
func (c *Control) Frame() (Frame, bool) {
	d, ok := c.Get("frame")
	f, err := d.AsFrame()
	return f, ok && err == nil
}

// Color returns the "color" property.
func (c *Control) Color() (Color, bool) {
	d, ok := c.Get("color")
	col, err := d.AsColor()
	return col, ok && err == nil
}

// SetProperty stores d under key, replacing any existing property of the
// same key wholesale. The key must be permitted for the control type and
// d must have the declared type for that key.
func (c *Control) SetProperty(key string, d Datum) error {
	if err := c.mutable("set property"); err != nil {
		return err
	}
	if key == "" {
		return schemaErr(KindInvalidPropertyValue, c.Path(), "empty property key")
	}
	if !c.typ.PermitsProperty(key) {
		return schemaErr(KindMissingCapability, c.Path(), "%s has no property %q", c.typ, key)
	}
	if want, ok := c.typ.PropertyType(key); ok && d.Type() != want {
		return schemaErr(KindInvalidPropertyValue, c.Path(), "property %q is %s, got %s", key, want, d.Type())
	}
	if err := d.check(); err != nil {
		return &SchemaError{Kind: KindInvalidPropertyValue, Path: c.Path(), Detail: fmt.Sprintf("property %q", key), Err: err}
	}
	if i := c.propertyIndex(key); i >= 0 {
		c.properties[i] = Property{Key: key, Value: d}
		return nil
	}
	c.properties = append(c.properties, Property{Key: key, Value: d})
	return nil
}

// RemoveProperty deletes the property stored under key and reports
// whether one existed.
func (c *Control) RemoveProperty(key string) (bool, error) {
	if err := c.mutable("remove property"); err != nil {
		return false, err
	}
	i := c.propertyIndex(key)
	if i < 0 {
		return false, nil
	}
	c.properties = slices.Delete(c.properties, i, i+1)
	return true, nil
}

// ============================================================
// Values
// ============================================================

// Values returns a copy of the values in document order.
func (c *Control) Values() []Value { return slices.Clone(c.values) }

func (c *Control) valueIndex(k ValueKey) int {
	for i, v := range c.values {
		if v.Key == k {
			return i
		}
	}
	return -1
}

// Value returns the value channel for key.
func (c *Control) Value(k ValueKey) (Value, bool) {
	if i := c.valueIndex(k); i >= 0 {
		return c.values[i], true
	}
	return Value{}, false
}

// SetValue stores v, replacing the channel with the same key. The key
// must be one the control type supports.
func (c *Control) SetValue(v Value) error {
	if err := c.mutable("set value"); err != nil {
		return err
	}
	if !v.Key.Valid() || !c.typ.PermitsValue(v.Key) {
		return schemaErr(KindInvalidValueKey, c.Path(), "%s does not support value %q", c.typ, string(v.Key))
	}
	if kind, err := v.check(); err != nil {
		return &SchemaError{Kind: kind, Path: c.Path(), Err: err}
	}
	if i := c.valueIndex(v.Key); i >= 0 {
		c.values[i] = v
		return nil
	}
	c.values = append(c.values, v)
	return nil
}

// RemoveValue deletes the channel for key and reports whether one
// existed.
func (c *Control) RemoveValue(k ValueKey) (bool, error) {
	if err := c.mutable("remove value"); err != nil {
		return false, err
	}
	i := c.valueIndex(k)
	if i < 0 {
		return false, nil
	}
	c.values = slices.Delete(c.values, i, i+1)
	return true, nil
}

// ============================================================
// Messages
// ============================================================

// Messages returns the message list. The slice is a copy; the messages
// are shared, and edits to them are checked by Validate.
func (c *Control) Messages() []Message { return slices.Clone(c.messages) }

// AddMessage validates m and appends it.
func (c *Control) AddMessage(m Message) error {
	if err := c.mutable("add message"); err != nil {
		return err
	}
	if m == nil {
		return schemaErr(KindInvalidMessage, c.Path(), "nil message")
	}
	if err := m.validate(c.Path().Wrapper("messages")); err != nil {
		return err
	}
	c.messages = append(c.messages, m)
	return nil
}

// RemoveMessage detaches the message at index i. It returns nil when i
// is out of range.
func (c *Control) RemoveMessage(i int) (Message, error) {
	if err := c.mutable("remove message"); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(c.messages) {
		return nil, nil
	}
	m := c.messages[i]
	c.messages = slices.Delete(c.messages, i, i+1)
	return m, nil
}

// ============================================================
// Children
// ============================================================

// Children returns a copy of the child list.
func (c *Control) Children() []*Control { return slices.Clone(c.children) }

// NumChildren returns the number of direct children.
func (c *Control) NumChildren() int { return len(c.children) }

// Child returns the child at index i, or nil.
func (c *Control) Child(i int) *Control {
	if i < 0 || i >= len(c.children) {
		return nil
	}
	return c.children[i]
}

// AppendChild attaches child as the last child of c.
func (c *Control) AppendChild(child *Control) error {
	if err := c.mutable("append child"); err != nil {
		return err
	}
	if !c.typ.Container() {
		return &CapabilityError{Type: c.typ, Op: "append child", Path: c.Path()}
	}
	if child == nil {
		return fmt.Errorf("tosc: nil child")
	}
	if child.parent != nil {
		return ErrAttached
	}
	for p := c; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	child.parent = c
	child.docRoot = false
	c.children = append(c.children, child)
	return nil
}

// RemoveChild detaches and returns the child at index i, together with
// its subtree. It returns nil when i is out of range.
func (c *Control) RemoveChild(i int) (*Control, error) {
	if err := c.mutable("remove child"); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(c.children) {
		return nil, nil
	}
	child := c.children[i]
	c.children = slices.Delete(c.children, i, i+1)
	child.parent = nil
	return child, nil
}

// Detach removes c from its parent. It is a no-op for a root.
func (c *Control) Detach() error {
	if c.parent == nil {
		return nil
	}
	_, err := c.parent.RemoveChild(c.Index())
	return err
}

// Parent returns the containing control, or nil for a root.
func (c *Control) Parent() *Control { return c.parent }

// Root returns the topmost ancestor of c.
func (c *Control) Root() *Control {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Index returns the position of c among its parent's children, or -1
// for a root.
func (c *Control) Index() int {
	if c.parent == nil {
		return -1
	}
	return slices.Index(c.parent.children, c)
}

// Path locates c relative to its root control. Controls under a
// document root get the same paths that parse errors report, starting
// at lexml/node[0].
func (c *Control) Path() Path {
	if c.parent == nil {
		if c.docRoot {
			return Path{{Tag: "lexml", Index: -1}, {Tag: "node", Index: 0}}
		}
		return Path{{Tag: "node", Index: -1}}
	}
	return c.parent.Path().Wrapper("children").Child("node", c.Index())
}

// ============================================================
// Copying
// ============================================================

// Clone returns a detached deep copy of the subtree rooted at c. IDs are
// kept; use CloneWithNewIDs for copies that live in the same document.
func (c *Control) Clone() *Control {
	return c.clone(false)
}

// CloneWithNewIDs returns a detached deep copy where every control gets
// a fresh ID. Nodes nested in opaque content are renumbered too, and
// dstID texts inside that content follow their targets.
func (c *Control) CloneWithNewIDs() *Control {
	return c.clone(true)
}

func (c *Control) clone(fresh bool) *Control {
	out := &Control{
		typ:           c.typ,
		id:            c.id,
		properties:    slices.Clone(c.properties),
		values:        slices.Clone(c.values),
		attrs:         slices.Clone(c.attrs),
		extra:         cloneNodes(c.extra),
		emptyChildren: c.emptyChildren,
	}
	if fresh {
		out.id = uuid.NewString()
	}
	if c.raw != nil {
		out.raw = c.raw.Clone()
		if fresh {
			renumberRaw(out.raw, out.id)
		}
	}
	for _, m := range c.messages {
		out.messages = append(out.messages, m.Clone())
	}
	for _, ch := range c.children {
		cc := ch.clone(fresh)
		cc.parent = out
		out.children = append(out.children, cc)
	}
	return out
}

// renumberRaw gives root the ID id and every node below it a fresh one,
// then rewrites local message targets that pointed at the old IDs.
func renumberRaw(root *lexml.Node, id string) {
	ids := map[string]string{}
	if old, ok := root.Attr("ID"); ok {
		ids[old] = id
	}
	root.SetAttr("ID", id)
	for _, ch := range root.Children {
		ch.Walk(func(n *lexml.Node) bool {
			if n.Tag != "node" {
				return true
			}
			if old, ok := n.Attr("ID"); ok {
				ids[old] = uuid.NewString()
				n.SetAttr("ID", ids[old])
			}
			return true
		})
	}
	root.Walk(func(n *lexml.Node) bool {
		if n.Tag == "dstID" {
			if id, ok := ids[n.Text]; ok {
				n.Text = id
			}
		}
		return true
	})
}
