package blueprint

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AlbertoV5/tosclib/tosc"
)

// Build compiles bp into a new document. Local message targets are
// resolved by name after the whole tree exists, so a control may target
// one declared later.
func Build(bp *Blueprint) (*tosc.Document, error) {
	root, err := tosc.NewControl(tosc.ControlType(strings.ToUpper(bp.Root.Type)))
	if err != nil {
		return nil, fmt.Errorf("blueprint: root: %w", err)
	}
	b := &builder{}
	if err := b.control(root, &bp.Root, "root"); err != nil {
		return nil, err
	}
	for _, p := range b.pending {
		if err := p.resolve(root); err != nil {
			return nil, err
		}
	}

	doc, err := tosc.NewDocument(root)
	if err != nil {
		return nil, err
	}
	if bp.Version != "" {
		doc.Version = bp.Version
	}
	return doc, nil
}

type builder struct {
	pending []pendingLocal
}

type pendingLocal struct {
	owner *tosc.Control
	def   Local
	path  string
}

func (b *builder) control(c *tosc.Control, def *Control, path string) error {
	fail := func(err error) error {
		return fmt.Errorf("blueprint: %s: %w", path, err)
	}

	if def.Name != "" {
		if err := c.SetName(def.Name); err != nil {
			return fail(err)
		}
	}
	if def.Frame != nil {
		f, err := quad("frame", def.Frame)
		if err != nil {
			return fail(err)
		}
		if err := c.SetFrame(f[0], f[1], f[2], f[3]); err != nil {
			return fail(err)
		}
	}
	if def.Color != nil {
		col, err := quad("color", def.Color)
		if err != nil {
			return fail(err)
		}
		if err := c.SetColor(col[0], col[1], col[2], col[3]); err != nil {
			return fail(err)
		}
	}
	if def.Script != "" {
		if err := c.SetScript(def.Script); err != nil {
			return fail(err)
		}
	}
	if err := properties(c, &def.Properties); err != nil {
		return fail(err)
	}
	for _, v := range def.Values {
		if err := value(c, v); err != nil {
			return fail(err)
		}
	}
	for _, m := range def.Osc {
		if err := c.AddMessage(m.message()); err != nil {
			return fail(err)
		}
	}
	for _, m := range def.Midi {
		if err := c.AddMessage(m.message()); err != nil {
			return fail(err)
		}
	}
	for _, l := range def.Local {
		b.pending = append(b.pending, pendingLocal{owner: c, def: l, path: path})
	}

	if def.Generate != nil {
		if err := generate(c, def.Generate); err != nil {
			return fail(err)
		}
	}
	for i := range def.Children {
		child := &def.Children[i]
		cp := fmt.Sprintf("%s/children[%d]", path, i)
		created, err := tosc.CreateChild(c, tosc.ControlType(strings.ToUpper(child.Type)))
		if err != nil {
			return fmt.Errorf("blueprint: %s: %w", cp, err)
		}
		if err := b.control(created, child, cp); err != nil {
			return err
		}
	}
	if g := def.Grid; g != nil {
		if err := tosc.ArrangeChildren(c, g.Rows, g.Columns, g.Width, g.Height, g.GapX, g.GapY); err != nil {
			return fail(err)
		}
	}
	return nil
}

func quad(field string, v []float64) ([4]float64, error) {
	var out [4]float64
	if len(v) != 4 {
		return out, fmt.Errorf("%s needs 4 numbers, got %d", field, len(v))
	}
	copy(out[:], v)
	return out, nil
}

// ============================================================
// Properties and Values
// ============================================================

func properties(c *tosc.Control, n *yaml.Node) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("properties must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		want, known := c.Type().PropertyType(key)
		if !known {
			want = scalarType(n.Content[i+1])
		}
		d, err := datum(n.Content[i+1], want)
		if err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		if err := c.SetProperty(key, d); err != nil {
			return err
		}
	}
	return nil
}

// scalarType infers the property type of a custom key from its YAML tag.
func scalarType(n *yaml.Node) tosc.PropertyType {
	switch n.ShortTag() {
	case "!!bool":
		return tosc.PropBoolean
	case "!!int":
		return tosc.PropInteger
	case "!!float":
		return tosc.PropFloat
	}
	return tosc.PropString
}

func datum(n *yaml.Node, t tosc.PropertyType) (tosc.Datum, error) {
	switch t {
	case tosc.PropBoolean:
		var v bool
		if err := n.Decode(&v); err != nil {
			return tosc.Datum{}, err
		}
		return tosc.Bool(v), nil
	case tosc.PropInteger:
		var v int64
		if err := n.Decode(&v); err != nil {
			return tosc.Datum{}, err
		}
		return tosc.Int(v), nil
	case tosc.PropFloat:
		var v float64
		if err := n.Decode(&v); err != nil {
			return tosc.Datum{}, err
		}
		return tosc.Float(v), nil
	case tosc.PropColor, tosc.PropFrame:
		var v []float64
		if err := n.Decode(&v); err != nil {
			return tosc.Datum{}, err
		}
		q, err := quad(t.String(), v)
		if err != nil {
			return tosc.Datum{}, err
		}
		if t == tosc.PropColor {
			return tosc.RGBA(q[0], q[1], q[2], q[3]), nil
		}
		return tosc.Rect(q[0], q[1], q[2], q[3]), nil
	}
	if n.Kind != yaml.ScalarNode {
		return tosc.Datum{}, fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	return tosc.Str(n.Value), nil
}

func value(c *tosc.Control, def Value) error {
	key := tosc.ValueKey(def.Key)
	v, ok := c.Value(key)
	if !ok {
		v = tosc.NewValue(key)
	}
	if def.Default.Kind != 0 {
		d, err := datum(&def.Default, key.DefaultType())
		if err != nil {
			return fmt.Errorf("value %q: %w", def.Key, err)
		}
		v.Default = d
	}
	v.Locked = def.Locked
	v.LockedDefaultCurrent = def.LockedDefaultCurrent
	v.DefaultPull = def.Pull
	return c.SetValue(v)
}

// ============================================================
// Messages
// ============================================================

func (r Routing) apply(base tosc.Routing) tosc.Routing {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.Enabled, r.Enabled)
	set(&base.Send, r.Send)
	set(&base.Receive, r.Receive)
	set(&base.Feedback, r.Feedback)
	if r.Connections != "" {
		base.Connections = r.Connections
	}
	return base
}

func (o Osc) message() *tosc.Osc {
	m := tosc.NewOsc()
	m.Routing = o.apply(m.Routing)
	if len(o.Triggers) > 0 {
		m.Triggers = triggers(o.Triggers)
	}
	if len(o.Path) > 0 {
		m.Path = partials(o.Path)
	}
	if len(o.Arguments) > 0 {
		m.Arguments = partials(o.Arguments)
	}
	return m
}

func (s Midi) message() *tosc.Midi {
	m := tosc.NewMidi()
	m.Routing = s.apply(m.Routing)
	if len(s.Triggers) > 0 {
		m.Triggers = triggers(s.Triggers)
	}
	if s.Type != "" {
		m.Message.Type = tosc.MidiType(strings.ToUpper(s.Type))
	}
	m.Message.Channel = s.Channel
	if s.Data1 != "" {
		m.Message.Data1 = s.Data1
	}
	if s.Data2 != "" {
		m.Message.Data2 = s.Data2
	}
	if len(s.Values) > 0 {
		m.Values = make([]tosc.MidiValue, len(s.Values))
		for i, p := range s.Values {
			m.Values[i] = tosc.MidiValue{Type: p.Type, Key: p.Value, ScaleMin: p.ScaleMin, ScaleMax: p.ScaleMax}
		}
	}
	return m
}

func (p pendingLocal) resolve(root *tosc.Control) error {
	target := tosc.FindFirst(root, tosc.ByName(p.def.Target))
	if target == nil {
		return fmt.Errorf("blueprint: %s: local target %q not found", p.path, p.def.Target)
	}
	m := tosc.NewLocal(target.ID())
	if len(p.def.Triggers) > 0 {
		m.Triggers = triggers(p.def.Triggers)
	}
	if p.def.Source != nil {
		m.Source = p.def.Source.Partial
	}
	if p.def.TargetType != "" {
		m.DstType = tosc.PartialType(strings.ToUpper(p.def.TargetType))
	}
	if p.def.Var != "" {
		m.DstVar = p.def.Var
	}
	if err := p.owner.AddMessage(m); err != nil {
		return fmt.Errorf("blueprint: %s: %w", p.path, err)
	}
	return nil
}

// ============================================================
// Generated Children
// ============================================================

func generate(c *tosc.Control, g *Generate) error {
	from, to := tosc.Color{R: 0.25, G: 0.25, B: 0.25, A: 1}, tosc.Color{R: 0.25, G: 0.25, B: 0.25, A: 1}
	if g.From != nil {
		q, err := quad("from", g.From)
		if err != nil {
			return err
		}
		from = tosc.Color{R: q[0], G: q[1], B: q[2], A: q[3]}
	}
	if g.To != nil {
		q, err := quad("to", g.To)
		if err != nil {
			return err
		}
		to = tosc.Color{R: q[0], G: q[1], B: q[2], A: q[3]}
	}

	t := tosc.ControlType(strings.ToUpper(g.Type))
	var err error
	switch strings.ToLower(g.Direction) {
	case "row":
		_, err = tosc.LayoutRow(c, t, g.Ratios, from, to)
	case "column":
		_, err = tosc.LayoutColumn(c, t, g.Ratios, from, to)
	case "grid":
		_, err = tosc.LayoutGrid(c, t, g.Columns, g.Rows, from, to)
	default:
		err = fmt.Errorf("unknown generate direction %q", g.Direction)
	}
	return err
}
