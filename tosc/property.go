package tosc

import (
	"fmt"
	"strings"

	"github.com/AlbertoV5/tosclib/lexml"
)

// Property is a typed, keyed attribute of a control.
type Property struct {
	Key   string
	Value Datum
}

// Type returns the declared type of the property.
func (p Property) Type() PropertyType { return p.Value.Type() }

// ============================================================
// Decode Dispatch
// ============================================================

type datumDecoder func(value *lexml.Node) (Datum, error)

// datumDecoders is the single table mapping a property type tag to the
// decoder for its <value> payload.
var datumDecoders = map[PropertyType]datumDecoder{
	PropBoolean: func(v *lexml.Node) (Datum, error) {
		s, err := scalarText(v)
		if err != nil {
			return Datum{}, err
		}
		b, err := parseBool(s)
		return Bool(b), err
	},
	PropInteger: func(v *lexml.Node) (Datum, error) {
		s, err := scalarText(v)
		if err != nil {
			return Datum{}, err
		}
		i, err := parseInt(s)
		return Int(i), err
	},
	PropFloat: func(v *lexml.Node) (Datum, error) {
		s, err := scalarText(v)
		if err != nil {
			return Datum{}, err
		}
		f, err := parseFloat(s)
		return Float(f), err
	},
	PropString: func(v *lexml.Node) (Datum, error) {
		s, err := scalarText(v)
		return Str(s), err
	},
	PropColor: func(v *lexml.Node) (Datum, error) {
		ch, err := channels(v, [4]string{"r", "g", "b", "a"})
		if err != nil {
			return Datum{}, err
		}
		d := RGBA(ch[0], ch[1], ch[2], ch[3])
		return d, d.check()
	},
	PropFrame: func(v *lexml.Node) (Datum, error) {
		ch, err := channels(v, [4]string{"x", "y", "w", "h"})
		if err != nil {
			return Datum{}, err
		}
		return Rect(ch[0], ch[1], ch[2], ch[3]), nil
	},
}

// DecodeDatum decodes a <value> payload according to its type tag.
func DecodeDatum(t PropertyType, value *lexml.Node) (Datum, error) {
	dec, ok := datumDecoders[t]
	if !ok {
		return Datum{}, fmt.Errorf("unknown property type %q", string(t))
	}
	return dec(value)
}

func scalarText(v *lexml.Node) (string, error) {
	if len(v.Children) > 0 {
		return "", fmt.Errorf("scalar value has %d child elements", len(v.Children))
	}
	return v.Text, nil
}

// channels reads exactly the four named numeric sub-elements of v, in
// any order. A missing, repeated or extra channel is an error.
func channels(v *lexml.Node, names [4]string) ([4]float64, error) {
	var out [4]float64
	var seen [4]bool
	if strings.TrimSpace(v.Text) != "" {
		return out, fmt.Errorf("unexpected text %q beside channels", v.Text)
	}
	for _, c := range v.Children {
		idx := -1
		for i, name := range names {
			if c.Tag == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return out, fmt.Errorf("unexpected channel <%s>", c.Tag)
		}
		if seen[idx] {
			return out, fmt.Errorf("channel <%s> repeated", c.Tag)
		}
		f, err := parseFloat(c.Text)
		if err != nil {
			return out, fmt.Errorf("channel <%s>: %w", c.Tag, err)
		}
		out[idx] = f
		seen[idx] = true
	}
	for i, ok := range seen {
		if !ok {
			return out, fmt.Errorf("missing channel <%s>", names[i])
		}
	}
	return out, nil
}

// ============================================================
// Property Nodes
// ============================================================

func parseProperty(n *lexml.Node, path Path) (Property, error) {
	typ, ok := n.Attr("type")
	if !ok {
		return Property{}, schemaErr(KindMalformedNode, path, "property without type attribute")
	}
	key, ok := n.ChildText("key")
	if !ok {
		return Property{}, schemaErr(KindMalformedNode, path, "property without <key>")
	}
	value := n.Child("value")
	if value == nil {
		return Property{}, schemaErr(KindMalformedNode, path, "property %q without <value>", key)
	}
	for _, c := range n.Children {
		if c.Tag != "key" && c.Tag != "value" {
			return Property{}, schemaErr(KindMalformedNode, path, "unexpected <%s> in property %q", c.Tag, key)
		}
	}
	if !PropertyType(typ).Valid() {
		return Property{}, schemaErr(KindInvalidPropertyValue, path, "property %q has unknown type %q", key, typ)
	}
	d, err := DecodeDatum(PropertyType(typ), value)
	if err != nil {
		return Property{}, &SchemaError{
			Kind:   KindInvalidPropertyValue,
			Path:   path,
			Detail: fmt.Sprintf("property %q (%s)", key, PropertyType(typ)),
			Err:    err,
		}
	}
	return Property{Key: key, Value: d}, nil
}

// Node serializes the property to its <property> element.
func (p Property) Node() *lexml.Node {
	n := lexml.New("property")
	n.SetAttr("type", string(p.Value.typ))
	n.AppendText("key", p.Key)
	value := lexml.New("value")
	d := p.Value
	switch d.typ {
	case PropColor:
		value.AppendText("r", formatFloat(d.color.R))
		value.AppendText("g", formatFloat(d.color.G))
		value.AppendText("b", formatFloat(d.color.B))
		value.AppendText("a", formatFloat(d.color.A))
	case PropFrame:
		value.AppendText("x", formatFloat(d.frame.X))
		value.AppendText("y", formatFloat(d.frame.Y))
		value.AppendText("w", formatFloat(d.frame.W))
		value.AppendText("h", formatFloat(d.frame.H))
	default:
		value.Text = d.String()
	}
	return n.Append(value)
}
