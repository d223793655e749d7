package tosc

import (
	"encoding/json"

	"github.com/AlbertoV5/tosclib/lexml"
)

// ============================================================
// JSON Export
// ============================================================
//
// The JSON form is for reading and tooling. It is not loaded back:
// markup stays the only lossless representation.

type jsonDocument struct {
	Version string   `json:"version"`
	Root    *Control `json:"root"`
}

type jsonControl struct {
	Type       ControlType    `json:"type"`
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Opaque     bool           `json:"opaque,omitempty"`
	Markup     string         `json:"markup,omitempty"`
	Properties []jsonProperty `json:"properties,omitempty"`
	Values     []jsonValue    `json:"values,omitempty"`
	Messages   []jsonMessage  `json:"messages,omitempty"`
	Children   []*Control     `json:"children,omitempty"`
}

type jsonProperty struct {
	Key   string       `json:"key"`
	Type  PropertyType `json:"type"`
	Value any          `json:"value"`
}

type jsonValue struct {
	Key                  ValueKey `json:"key"`
	Default              any      `json:"default"`
	Locked               bool     `json:"locked"`
	LockedDefaultCurrent bool     `json:"lockedDefaultCurrent"`
	DefaultPull          int64    `json:"defaultPull"`
}

type jsonMessage struct {
	Tag    string  `json:"tag"`
	Body   Message `json:"body,omitempty"`
	Markup string  `json:"markup,omitempty"`
}

// JSON renders the document as indented JSON. Properties keep their
// document order. Opaque controls and messages carry their markup.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(jsonDocument{Version: d.Version, Root: d.root}, "", "  ")
}

// MarshalJSON implements json.Marshaler for a control and its subtree.
func (c *Control) MarshalJSON() ([]byte, error) {
	out := jsonControl{Type: c.typ, ID: c.id, Children: c.children}
	if c.raw != nil {
		out.Opaque = true
		out.Markup = compact(c.raw)
		return json.Marshal(out)
	}

	out.Name = c.Name()
	for _, p := range c.properties {
		out.Properties = append(out.Properties, jsonProperty{Key: p.Key, Type: p.Value.Type(), Value: datumJSON(p.Value)})
	}
	for _, v := range c.values {
		out.Values = append(out.Values, jsonValue{
			Key:                  v.Key,
			Default:              datumJSON(v.Default),
			Locked:               v.Locked,
			LockedDefaultCurrent: v.LockedDefaultCurrent,
			DefaultPull:          v.DefaultPull,
		})
	}
	for _, m := range c.messages {
		jm := jsonMessage{Tag: m.Tag()}
		if _, ok := m.(*OpaqueMessage); ok {
			jm.Markup = compact(m.Node())
		} else {
			jm.Body = m
		}
		out.Messages = append(out.Messages, jm)
	}
	return json.Marshal(out)
}

func datumJSON(d Datum) any {
	switch d.typ {
	case PropBoolean:
		return d.b
	case PropInteger:
		return d.i
	case PropFloat:
		return d.f
	case PropColor:
		return map[string]float64{"r": d.color.R, "g": d.color.G, "b": d.color.B, "a": d.color.A}
	case PropFrame:
		return map[string]float64{"x": d.frame.X, "y": d.frame.Y, "w": d.frame.W, "h": d.frame.H}
	}
	return d.String()
}

func compact(n *lexml.Node) string {
	return string(lexml.EmitWithOptions(n, lexml.EmitOptions{}))
}
