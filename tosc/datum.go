package tosc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGBA colour with channels in [0,1].
type Color struct {
	R, G, B, A float64
}

// Valid reports whether every channel is a finite number in [0,1].
func (c Color) Valid() bool {
	for _, ch := range [4]float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(ch) || ch < 0 || ch > 1 {
			return false
		}
	}
	return true
}

// Frame is a control rectangle. Width and height may be negative; the
// renderer decides what that means.
type Frame struct {
	X, Y, W, H float64
}

// ============================================================
// Datum
// ============================================================

// Datum is the typed payload of a property or a value default. It is a
// tagged variant keyed by PropertyType; the zero Datum is invalid.
type Datum struct {
	typ   PropertyType
	b     bool
	i     int64
	f     float64
	s     string
	color Color
	frame Frame
}

// Bool creates a boolean datum.
func Bool(v bool) Datum { return Datum{typ: PropBoolean, b: v} }

// Int creates an integer datum.
func Int(v int64) Datum { return Datum{typ: PropInteger, i: v} }

// Float creates a float datum.
func Float(v float64) Datum { return Datum{typ: PropFloat, f: v} }

// Str creates a string datum.
func Str(v string) Datum { return Datum{typ: PropString, s: v} }

// ColorValue creates a color datum. Range is checked when the datum is
// stored on a control, not here.
func ColorValue(c Color) Datum { return Datum{typ: PropColor, color: c} }

// RGBA is shorthand for ColorValue(Color{r, g, b, a}).
func RGBA(r, g, b, a float64) Datum { return ColorValue(Color{R: r, G: g, B: b, A: a}) }

// FrameValue creates a frame datum.
func FrameValue(f Frame) Datum { return Datum{typ: PropFrame, frame: f} }

// Rect is shorthand for FrameValue(Frame{x, y, w, h}).
func Rect(x, y, w, h float64) Datum { return FrameValue(Frame{X: x, Y: y, W: w, H: h}) }

// Type returns the datum's property type, or "" for the zero Datum.
func (d Datum) Type() PropertyType { return d.typ }

// IsZero reports whether d was never assigned.
func (d Datum) IsZero() bool { return d.typ == "" }

func (d Datum) expect(t PropertyType) error {
	if d.typ != t {
		return fmt.Errorf("tosc: expected %s datum, got %s", t, d.typ)
	}
	return nil
}

// AsBool returns the boolean payload.
func (d Datum) AsBool() (bool, error) {
	return d.b, d.expect(PropBoolean)
}

// AsInt returns the integer payload.
func (d Datum) AsInt() (int64, error) {
	return d.i, d.expect(PropInteger)
}

// AsFloat returns the float payload.
func (d Datum) AsFloat() (float64, error) {
	return d.f, d.expect(PropFloat)
}

// AsStr returns the string payload.
func (d Datum) AsStr() (string, error) {
	return d.s, d.expect(PropString)
}

// AsColor returns the color payload.
func (d Datum) AsColor() (Color, error) {
	return d.color, d.expect(PropColor)
}

// AsFrame returns the frame payload.
func (d Datum) AsFrame() (Frame, error) {
	return d.frame, d.expect(PropFrame)
}

// Number returns the payload as float64 for integer and float datums.
func (d Datum) Number() (float64, bool) {
	switch d.typ {
	case PropInteger:
		return float64(d.i), true
	case PropFloat:
		return d.f, true
	}
	return 0, false
}

// Equal reports whether two datums have the same type and payload.
func (d Datum) Equal(o Datum) bool {
	if d.typ != o.typ {
		return false
	}
	switch d.typ {
	case PropBoolean:
		return d.b == o.b
	case PropInteger:
		return d.i == o.i
	case PropFloat:
		return d.f == o.f
	case PropString:
		return d.s == o.s
	case PropColor:
		return d.color == o.color
	case PropFrame:
		return d.frame == o.frame
	}
	return true
}

// String renders the payload the way it is written on the wire.
// Colors and frames render as comma separated channels.
func (d Datum) String() string {
	switch d.typ {
	case PropBoolean:
		return formatBool(d.b)
	case PropInteger:
		return strconv.FormatInt(d.i, 10)
	case PropFloat:
		return formatFloat(d.f)
	case PropString:
		return d.s
	case PropColor:
		c := d.color
		return strings.Join([]string{formatFloat(c.R), formatFloat(c.G), formatFloat(c.B), formatFloat(c.A)}, ",")
	case PropFrame:
		f := d.frame
		return strings.Join([]string{formatFloat(f.X), formatFloat(f.Y), formatFloat(f.W), formatFloat(f.H)}, ",")
	}
	return ""
}

// check enforces the payload invariants that constructors do not.
func (d Datum) check() error {
	switch d.typ {
	case PropColor:
		if !d.color.Valid() {
			c := d.color
			return fmt.Errorf("color channels (%s, %s, %s, %s) outside [0,1]",
				formatFloat(c.R), formatFloat(c.G), formatFloat(c.B), formatFloat(c.A))
		}
	case PropFloat:
		if math.IsNaN(d.f) || math.IsInf(d.f, 0) {
			return fmt.Errorf("float %v is not finite", d.f)
		}
	case PropFrame:
		f := d.frame
		for _, v := range [4]float64{f.X, f.Y, f.W, f.H} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("frame component %v is not finite", v)
			}
		}
	case "":
		return fmt.Errorf("datum has no type")
	}
	return nil
}

// ============================================================
// Scalar Literals
// ============================================================

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseBool accepts the producer form "1"/"0" and the words
// "true"/"false". Matching is case-sensitive.
func parseBool(s string) (bool, error) {
	switch s {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean literal %q", s)
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q", s)
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid numeric literal %q", s)
	}
	return v, nil
}
