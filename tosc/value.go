package tosc

import (
	"fmt"

	"github.com/AlbertoV5/tosclib/lexml"
)

// Value is a runtime value channel of a control together with its
// default and lock settings.
type Value struct {
	Key                  ValueKey
	Locked               bool
	LockedDefaultCurrent bool
	Default              Datum
	DefaultPull          int64
}

// NewValue returns the default channel for key: unlocked, zero default
// of the key's type and no pull.
func NewValue(key ValueKey) Value {
	v := Value{Key: key}
	switch key.DefaultType() {
	case PropFloat:
		v.Default = Float(0)
	case PropBoolean:
		v.Default = Bool(false)
	case PropInteger:
		v.Default = Int(0)
	default:
		v.Default = Str("")
	}
	return v
}

// check validates everything except whether the owning control permits
// the key.
func (v Value) check() (ErrorKind, error) {
	if !v.Key.Valid() {
		return KindInvalidValueKey, fmt.Errorf("unknown value key %q", string(v.Key))
	}
	if want := v.Key.DefaultType(); v.Default.typ != want {
		return KindInvalidPropertyValue, fmt.Errorf("value %q default must be %s, got %s", v.Key, want, v.Default.typ)
	}
	if err := v.Default.check(); err != nil {
		return KindInvalidPropertyValue, err
	}
	if v.DefaultPull < 0 || v.DefaultPull > 100 {
		return KindInvalidPropertyValue, fmt.Errorf("defaultPull %d outside [0,100]", v.DefaultPull)
	}
	return "", nil
}

func parseValue(n *lexml.Node, owner ControlType, path Path) (Value, error) {
	fail := func(kind ErrorKind, err error) (Value, error) {
		return Value{}, &SchemaError{Kind: kind, Path: path, Err: err}
	}
	r := fieldReader{n: n}
	key := ValueKey(r.text("key"))
	locked := r.flag("locked")
	ldc := r.flag("lockedDefaultCurrent")
	def := r.text("default")
	pull := r.integer("defaultPull")
	if r.err != nil {
		return fail(KindMalformedNode, r.err)
	}
	if !key.Valid() {
		return fail(KindInvalidValueKey, fmt.Errorf("unknown value key %q", string(key)))
	}
	if !owner.PermitsValue(key) {
		return fail(KindInvalidValueKey, fmt.Errorf("%s does not support value %q", owner, key))
	}
	d, err := DecodeDatum(key.DefaultType(), lexml.NewText("default", def))
	if err != nil {
		return fail(KindInvalidPropertyValue, fmt.Errorf("value %q default: %w", key, err))
	}
	v := Value{Key: key, Locked: locked, LockedDefaultCurrent: ldc, Default: d, DefaultPull: pull}
	if kind, err := v.check(); err != nil {
		return fail(kind, err)
	}
	return v, nil
}

// Node serializes the value to its <value> element.
func (v Value) Node() *lexml.Node {
	n := lexml.New("value")
	n.AppendText("key", string(v.Key))
	n.AppendText("locked", formatBool(v.Locked))
	n.AppendText("lockedDefaultCurrent", formatBool(v.LockedDefaultCurrent))
	n.AppendText("default", v.Default.String())
	n.AppendText("defaultPull", fmt.Sprint(v.DefaultPull))
	return n
}

// ============================================================
// Field Reader
// ============================================================

// fieldReader reads required leaf children of an element and keeps the
// first failure, so callers check once after a run of reads.
type fieldReader struct {
	n   *lexml.Node
	err error
}

func (r *fieldReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
}

func (r *fieldReader) text(tag string) string {
	c := r.n.Child(tag)
	if c == nil {
		r.fail("missing <%s> in <%s>", tag, r.n.Tag)
		return ""
	}
	if len(c.Children) > 0 {
		r.fail("<%s> in <%s> must be a leaf", tag, r.n.Tag)
	}
	return c.Text
}

// optText reads a leaf that may be absent.
func (r *fieldReader) optText(tag string) (string, bool) {
	c := r.n.Child(tag)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

func (r *fieldReader) flag(tag string) bool {
	s := r.text(tag)
	if r.err != nil {
		return false
	}
	b, err := parseBool(s)
	if err != nil {
		r.fail("<%s>: %v", tag, err)
	}
	return b
}

func (r *fieldReader) integer(tag string) int64 {
	s := r.text(tag)
	if r.err != nil {
		return 0
	}
	i, err := parseInt(s)
	if err != nil {
		r.fail("<%s>: %v", tag, err)
	}
	return i
}
