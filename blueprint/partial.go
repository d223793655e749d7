package blueprint

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AlbertoV5/tosclib/tosc"
)

// Partial is a tosc.Partial decoded from shorthand or mapping form.
type Partial struct {
	tosc.Partial
}

// ParsePartial decodes the string shorthand of a partial.
func ParsePartial(s string) (tosc.Partial, error) {
	var p tosc.Partial
	switch {
	case strings.HasPrefix(s, `\`):
		p = tosc.ConstantPartial(s[1:])
	case strings.HasPrefix(s, "$"):
		p = tosc.ValuePartial(tosc.ValueKey(s[1:]))
	case strings.HasPrefix(s, "@"):
		p = tosc.PropertyPartial(s[1:])
	case strings.HasPrefix(s, "#"):
		p = tosc.IndexPartial()
		p.Value = s[1:]
	default:
		p = tosc.ConstantPartial(s)
	}
	if err := p.Validate(); err != nil {
		return tosc.Partial{}, fmt.Errorf("partial %q: %w", s, err)
	}
	return p, nil
}

// UnmarshalYAML accepts a shorthand string or a mapping with the keys
// type, conversion, value, min and max.
func (p *Partial) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		part, err := ParsePartial(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		p.Partial = part
		return nil
	case yaml.MappingNode:
		var raw struct {
			Type       string `yaml:"type"`
			Conversion string `yaml:"conversion"`
			Value      string `yaml:"value"`
			Min        *int64 `yaml:"min"`
			Max        *int64 `yaml:"max"`
		}
		if err := n.Decode(&raw); err != nil {
			return err
		}
		part := tosc.ConstantPartial(raw.Value)
		switch tosc.PartialType(strings.ToUpper(raw.Type)) {
		case tosc.PartialValue:
			part = tosc.ValuePartial(tosc.ValueKey(raw.Value))
		case tosc.PartialProperty:
			part = tosc.PropertyPartial(raw.Value)
		case tosc.PartialIndex:
			part = tosc.IndexPartial()
			part.Value = raw.Value
		case tosc.PartialConstant, "":
		default:
			return fmt.Errorf("line %d: unknown partial type %q", n.Line, raw.Type)
		}
		if raw.Conversion != "" {
			part.Conversion = tosc.Conversion(strings.ToUpper(raw.Conversion))
		}
		if raw.Min != nil {
			part.ScaleMin = *raw.Min
		}
		if raw.Max != nil {
			part.ScaleMax = *raw.Max
		}
		if err := part.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		p.Partial = part
		return nil
	}
	return fmt.Errorf("line %d: partial must be a string or a mapping", n.Line)
}

// Trigger is a tosc.Trigger written as "x" or "x:RISE".
type Trigger struct {
	tosc.Trigger
}

// UnmarshalYAML accepts "var" or "var:CONDITION".
func (t *Trigger) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: trigger must be a string such as \"x:RISE\"", n.Line)
	}
	key, cond, found := strings.Cut(n.Value, ":")
	t.Var = tosc.ValueKey(key)
	t.Condition = tosc.CondAny
	if found {
		t.Condition = tosc.Condition(strings.ToUpper(cond))
	}
	if !t.Var.Valid() {
		return fmt.Errorf("line %d: trigger on unknown value %q", n.Line, key)
	}
	if !t.Condition.Valid() {
		return fmt.Errorf("line %d: unknown trigger condition %q", n.Line, cond)
	}
	return nil
}

func triggers(ts []Trigger) []tosc.Trigger {
	out := make([]tosc.Trigger, len(ts))
	for i, t := range ts {
		out[i] = t.Trigger
	}
	return out
}

func partials(ps []Partial) []tosc.Partial {
	out := make([]tosc.Partial, len(ps))
	for i, p := range ps {
		out[i] = p.Partial
	}
	return out
}
