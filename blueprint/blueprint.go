package blueprint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Blueprint is a whole layout: a format version and the root control.
type Blueprint struct {
	Version string  `yaml:"version,omitempty"`
	Root    Control `yaml:"root"`
}

// Control describes one control and, for container types, its subtree.
type Control struct {
	Type   string    `yaml:"type"`
	Name   string    `yaml:"name,omitempty"`
	Frame  []float64 `yaml:"frame,omitempty"`
	Color  []float64 `yaml:"color,omitempty"`
	Script string    `yaml:"script,omitempty"`
	// Properties is a mapping of further property keys. Keys the
	// control type declares are decoded to their declared type; custom
	// keys take the type of the scalar.
	Properties yaml.Node `yaml:"properties,omitempty"`
	Values     []Value   `yaml:"values,omitempty"`
	Osc        []Osc     `yaml:"osc,omitempty"`
	Midi       []Midi    `yaml:"midi,omitempty"`
	Local      []Local   `yaml:"local,omitempty"`
	// Generate creates evenly split children before the listed ones.
	Generate *Generate `yaml:"generate,omitempty"`
	Children []Control `yaml:"children,omitempty"`
	// Grid arranges all children once they are built.
	Grid *Grid `yaml:"grid,omitempty"`
}

// Value overrides one value channel.
type Value struct {
	Key                  string    `yaml:"key"`
	Default              yaml.Node `yaml:"default,omitempty"`
	Locked               bool      `yaml:"locked,omitempty"`
	LockedDefaultCurrent bool      `yaml:"lockedDefaultCurrent,omitempty"`
	Pull                 int64     `yaml:"pull,omitempty"`
}

// Routing is the optional routing override of OSC and MIDI messages.
// Unset fields keep the message defaults.
type Routing struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	Send        *bool  `yaml:"send,omitempty"`
	Receive     *bool  `yaml:"receive,omitempty"`
	Feedback    *bool  `yaml:"feedback,omitempty"`
	Connections string `yaml:"connections,omitempty"`
}

// Osc describes an OSC message. An empty path or argument list keeps
// the default.
type Osc struct {
	Routing   `yaml:",inline"`
	Triggers  []Trigger `yaml:"triggers,omitempty"`
	Path      []Partial `yaml:"path,omitempty"`
	Arguments []Partial `yaml:"arguments,omitempty"`
}

// Midi describes a MIDI message.
type Midi struct {
	Routing  `yaml:",inline"`
	Triggers []Trigger `yaml:"triggers,omitempty"`
	Type     string    `yaml:"type,omitempty"`
	Channel  int64     `yaml:"channel,omitempty"`
	Data1    string    `yaml:"data1,omitempty"`
	Data2    string    `yaml:"data2,omitempty"`
	Values   []Partial `yaml:"values,omitempty"`
}

// Local forwards a value to another control, named by Target.
type Local struct {
	Triggers   []Trigger `yaml:"triggers,omitempty"`
	Source     *Partial  `yaml:"source,omitempty"`
	Target     string    `yaml:"target"`
	TargetType string    `yaml:"targetType,omitempty"`
	Var        string    `yaml:"var,omitempty"`
}

// Generate fills a control with new children split along a direction:
// "row" and "column" use Ratios, "grid" uses Columns and Rows. Colours
// run from From to To.
type Generate struct {
	Direction string    `yaml:"direction"`
	Type      string    `yaml:"type"`
	Ratios    []float64 `yaml:"ratios,omitempty"`
	Columns   int       `yaml:"columns,omitempty"`
	Rows      int       `yaml:"rows,omitempty"`
	From      []float64 `yaml:"from,omitempty"`
	To        []float64 `yaml:"to,omitempty"`
}

// Grid places every child on a rows x columns grid of equal cells.
type Grid struct {
	Rows    int     `yaml:"rows"`
	Columns int     `yaml:"columns"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	GapX    float64 `yaml:"gapX,omitempty"`
	GapY    float64 `yaml:"gapY,omitempty"`
}

// ============================================================
// Decoding
// ============================================================

// Parse decodes a YAML blueprint. Unknown fields are rejected.
func Parse(data []byte) (*Blueprint, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var bp Blueprint
	if err := dec.Decode(&bp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("blueprint: empty document")
		}
		return nil, fmt.Errorf("blueprint: %w", err)
	}
	if bp.Root.Type == "" {
		return nil, fmt.Errorf("blueprint: root control has no type")
	}
	return &bp, nil
}

// ParseJSONC decodes a JSON blueprint that may contain comments and
// trailing commas. The JSON is read into a YAML node tree so both
// formats share the strict field checks of Parse.
func ParseJSONC(data []byte) (*Blueprint, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	doc, err := jsonNode(dec)
	if err != nil {
		return nil, fmt.Errorf("blueprint: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("blueprint: trailing data after JSON value")
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("blueprint: %w", err)
	}
	return Parse(out)
}

// jsonNode reads one JSON value from dec as a YAML node.
func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if t == '{' {
			n.Kind, n.Tag = yaml.MappingNode, "!!map"
		}
		for dec.More() {
			if n.Kind == yaml.MappingNode {
				key, err := dec.Token()
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key.(string)})
			}
			child, err := jsonNode(dec)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		if _, err := dec.Token(); err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		return n, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case json.Number:
		tag := "!!float"
		if _, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// ReadFile reads a blueprint from disk. Files ending in .json or .jsonc
// are read as JSONC, everything else as YAML.
func ReadFile(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var bp *Blueprint
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		bp, err = ParseJSONC(data)
	default:
		bp, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bp, nil
}
