package tosc

import "fmt"

// CreateChild creates a default-initialised control of type t and
// appends it as the last child of parent.
func CreateChild(parent *Control, t ControlType) (*Control, error) {
	if err := parent.mutable("create child"); err != nil {
		return nil, err
	}
	if !parent.typ.Container() {
		return nil, &CapabilityError{Type: parent.typ, Op: "create child", Path: parent.Path()}
	}
	child, err := NewControl(t)
	if err != nil {
		return nil, err
	}
	if err := parent.AppendChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// ============================================================
// Properties
// ============================================================

// CopyProperty copies the property key from one control to another,
// replacing any existing property of that key on to.
func CopyProperty(from, to *Control, key string) error {
	p, ok := from.Property(key)
	if !ok {
		return schemaErr(KindMissingCapability, from.Path(), "source has no property %q", key)
	}
	return to.SetProperty(key, p.Value)
}

// MoveProperty copies the property key to another control and removes
// it from the source. Nothing changes if the copy fails.
func MoveProperty(from, to *Control, key string) error {
	if err := from.mutable("move property"); err != nil {
		return err
	}
	if from == to {
		if _, ok := from.Property(key); !ok {
			return schemaErr(KindMissingCapability, from.Path(), "source has no property %q", key)
		}
		return nil
	}
	if err := CopyProperty(from, to, key); err != nil {
		return err
	}
	_, err := from.RemoveProperty(key)
	return err
}

// ============================================================
// Values
// ============================================================

// CopyValues copies every value channel of from onto to. Either all
// values are copied or none.
func CopyValues(from, to *Control) error {
	if err := to.mutable("copy values"); err != nil {
		return err
	}
	for _, v := range from.values {
		if !to.typ.PermitsValue(v.Key) {
			return schemaErr(KindInvalidValueKey, to.Path(), "%s does not support value %q", to.typ, v.Key)
		}
	}
	for _, v := range from.values {
		if err := to.SetValue(v); err != nil {
			return err
		}
	}
	return nil
}

// MoveValues copies every value channel onto to and clears them on from.
func MoveValues(from, to *Control) error {
	if err := from.mutable("move values"); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if err := CopyValues(from, to); err != nil {
		return err
	}
	from.values = nil
	return nil
}

// ============================================================
// Messages
// ============================================================

// CopyMessages appends deep copies of every message of from to to.
func CopyMessages(from, to *Control) error {
	if err := to.mutable("copy messages"); err != nil {
		return err
	}
	for _, m := range from.messages {
		to.messages = append(to.messages, m.Clone())
	}
	return nil
}

// MoveMessages transfers every message of from to to.
func MoveMessages(from, to *Control) error {
	if err := from.mutable("move messages"); err != nil {
		return err
	}
	if err := to.mutable("move messages"); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	to.messages = append(to.messages, from.messages...)
	from.messages = nil
	return nil
}

// ============================================================
// Children
// ============================================================

// CopyChildren appends copies of every child of from to to. The copies
// get fresh IDs so the layout keeps unique identifiers.
func CopyChildren(from, to *Control) error {
	if err := to.mutable("copy children"); err != nil {
		return err
	}
	if !to.typ.Container() && len(from.children) > 0 {
		return &CapabilityError{Type: to.typ, Op: "copy children", Path: to.Path()}
	}
	copies := make([]*Control, len(from.children))
	for i, ch := range from.children {
		copies[i] = ch.CloneWithNewIDs()
	}
	for _, c := range copies {
		c.parent = to
		to.children = append(to.children, c)
	}
	return nil
}

// MoveChildren reparents every child of from under to, keeping order.
func MoveChildren(from, to *Control) error {
	if err := from.mutable("move children"); err != nil {
		return err
	}
	if err := to.mutable("move children"); err != nil {
		return err
	}
	if len(from.children) == 0 || from == to {
		return nil
	}
	if !to.typ.Container() {
		return &CapabilityError{Type: to.typ, Op: "move children", Path: to.Path()}
	}
	for p := to; p != nil; p = p.parent {
		if p.parent == from {
			return fmt.Errorf("%w: %s is inside %s", ErrCycle, to.Path(), from.Path())
		}
	}
	moved := from.children
	from.children = nil
	for _, c := range moved {
		c.parent = to
		to.children = append(to.children, c)
	}
	return nil
}

// ============================================================
// Setters
// ============================================================

// SetFrame replaces the "frame" property.
func (c *Control) SetFrame(x, y, w, h float64) error {
	return c.SetProperty("frame", Rect(x, y, w, h))
}

// SetColor replaces the "color" property. Channels must be in [0,1].
func (c *Control) SetColor(r, g, b, a float64) error {
	return c.SetProperty("color", RGBA(r, g, b, a))
}

// SetName replaces the "name" property.
func (c *Control) SetName(name string) error {
	return c.SetProperty("name", Str(name))
}

// SetScript replaces the "script" property.
func (c *Control) SetScript(script string) error {
	return c.SetProperty("script", Str(script))
}

// SetTag replaces the "tag" property.
func (c *Control) SetTag(tag string) error {
	return c.SetProperty("tag", Str(tag))
}

// SetBackground replaces the "background" property.
func (c *Control) SetBackground(on bool) error {
	return c.SetProperty("background", Bool(on))
}

// SetVisible replaces the "visible" property.
func (c *Control) SetVisible(on bool) error {
	return c.SetProperty("visible", Bool(on))
}

// SetLocked replaces the "locked" property.
func (c *Control) SetLocked(on bool) error {
	return c.SetProperty("locked", Bool(on))
}

// SetInteractive replaces the "interactive" property.
func (c *Control) SetInteractive(on bool) error {
	return c.SetProperty("interactive", Bool(on))
}

// SetOutline replaces the "outline" property.
func (c *Control) SetOutline(on bool) error {
	return c.SetProperty("outline", Bool(on))
}
