package tosc

import (
	"log/slog"

	"github.com/AlbertoV5/tosclib/lexml"
)

// ParseOptions configures how node trees become controls.
type ParseOptions struct {
	// Strict rejects unknown control types with KindUnknownType instead
	// of keeping them as opaque controls.
	Strict bool
	// Logger receives debug records about preserved unknown content.
	// Nil disables logging.
	Logger *slog.Logger
}

// DefaultParseOptions returns lenient options without logging.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{}
}

// ParseControl builds a control tree from a <node> element with the
// default options.
func ParseControl(n *lexml.Node) (*Control, error) {
	return ParseControlWithOptions(n, DefaultParseOptions())
}

// ParseControlWithOptions builds a control tree from a <node> element.
func ParseControlWithOptions(n *lexml.Node, opts ParseOptions) (*Control, error) {
	p := &parser{opts: opts}
	return p.control(n, Path{{Tag: "node", Index: -1}})
}

type parser struct {
	opts ParseOptions
}

func (p *parser) debug(msg string, path Path, args ...any) {
	if p.opts.Logger == nil {
		return
	}
	p.opts.Logger.Debug(msg, append([]any{"path", path.String()}, args...)...)
}

// ============================================================
// Controls
// ============================================================

func (p *parser) control(n *lexml.Node, path Path) (*Control, error) {
	if n.Tag != "node" {
		return nil, schemaErr(KindMalformedNode, path, "expected <node>, got <%s>", n.Tag)
	}
	typ, ok := n.Attr("type")
	if !ok {
		return nil, schemaErr(KindMalformedNode, path, "node without type attribute")
	}
	id, ok := n.Attr("ID")
	if !ok {
		return nil, schemaErr(KindMalformedNode, path, "node without ID attribute")
	}
	t := ControlType(typ)
	if !t.Known() {
		if p.opts.Strict {
			return nil, schemaErr(KindUnknownType, path, "unknown control type %q", typ)
		}
		p.debug("preserving unknown control type", path, "type", typ, "id", id)
		return &Control{typ: t, id: id, raw: n.Clone()}, nil
	}

	c := &Control{typ: t, id: id}
	for _, a := range n.Attrs {
		if a.Name != "ID" && a.Name != "type" {
			c.attrs = append(c.attrs, a)
		}
	}

	for _, sub := range n.Children {
		var err error
		switch sub.Tag {
		case "properties":
			err = p.properties(c, sub, path.Wrapper("properties"))
		case "values":
			err = p.values(c, sub, path.Wrapper("values"))
		case "messages":
			err = p.messages(c, sub, path.Wrapper("messages"))
		case "children":
			err = p.children(c, sub, path.Wrapper("children"))
		default:
			p.debug("preserving unknown node element", path, "tag", sub.Tag)
			c.extra = append(c.extra, sub.Clone())
		}
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (p *parser) properties(c *Control, w *lexml.Node, path Path) error {
	for i, pn := range w.Children {
		pp := path.Child("property", i)
		if pn.Tag != "property" {
			return schemaErr(KindMalformedNode, pp, "expected <property>, got <%s>", pn.Tag)
		}
		prop, err := parseProperty(pn, pp)
		if err != nil {
			return err
		}
		if c.propertyIndex(prop.Key) >= 0 {
			return schemaErr(KindMalformedNode, pp, "duplicate property %q", prop.Key)
		}
		if !c.typ.PermitsProperty(prop.Key) {
			p.debug("preserving property outside capability table", pp, "type", string(c.typ), "key", prop.Key)
		} else if want, ok := c.typ.PropertyType(prop.Key); ok && want != prop.Type() {
			p.debug("preserving property with unexpected type", pp, "key", prop.Key, "want", want.String(), "got", prop.Type().String())
		}
		c.properties = append(c.properties, prop)
	}
	return nil
}

func (p *parser) values(c *Control, w *lexml.Node, path Path) error {
	for i, vn := range w.Children {
		vp := path.Child("value", i)
		if vn.Tag != "value" {
			return schemaErr(KindMalformedNode, vp, "expected <value>, got <%s>", vn.Tag)
		}
		v, err := parseValue(vn, c.typ, vp)
		if err != nil {
			return err
		}
		if c.valueIndex(v.Key) >= 0 {
			return schemaErr(KindInvalidValueKey, vp, "duplicate value %q", v.Key)
		}
		c.values = append(c.values, v)
	}
	return nil
}

func (p *parser) messages(c *Control, w *lexml.Node, path Path) error {
	counts := map[string]int{}
	for _, mn := range w.Children {
		mp := path.Child(mn.Tag, counts[mn.Tag])
		counts[mn.Tag]++
		m, err := p.message(mn, mp)
		if err != nil {
			return err
		}
		c.messages = append(c.messages, m)
	}
	return nil
}

func (p *parser) children(c *Control, w *lexml.Node, path Path) error {
	if len(w.Children) == 0 {
		c.emptyChildren = true
		return nil
	}
	if !c.typ.Container() {
		return schemaErr(KindMissingCapability, path, "%s cannot contain controls", c.typ)
	}
	for i, cn := range w.Children {
		child, err := p.control(cn, path.Child("node", i))
		if err != nil {
			return err
		}
		child.parent = c
		c.children = append(c.children, child)
	}
	return nil
}

// ============================================================
// Messages
// ============================================================

var messageFields = map[string]map[string]bool{
	"osc":     fieldSet("enabled", "send", "receive", "feedback", "connections", "triggers", "path", "arguments"),
	"midi":    fieldSet("enabled", "send", "receive", "feedback", "connections", "triggers", "message", "values"),
	"local":   fieldSet("enabled", "triggers", "type", "conversion", "value", "scaleMin", "scaleMax", "dstType", "dstVar", "dstID"),
	"gamepad": fieldSet("enabled", "connections", "type", "conversion", "scaleMin", "scaleMax", "targetType", "targetVar"),
}

func fieldSet(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

func (p *parser) message(n *lexml.Node, path Path) (Message, error) {
	known, ok := messageFields[n.Tag]
	if !ok {
		p.debug("preserving unknown message", path, "tag", n.Tag)
		return &OpaqueMessage{raw: n.Clone()}, nil
	}
	var extra []*lexml.Node
	for _, c := range n.Children {
		if !known[c.Tag] {
			p.debug("preserving unknown message element", path, "tag", c.Tag)
			extra = append(extra, c.Clone())
		}
	}

	var (
		m   Message
		err error
	)
	switch n.Tag {
	case "osc":
		m, err = parseOsc(n, path, extra)
	case "midi":
		m, err = parseMidi(n, path, extra)
	case "local":
		m, err = parseLocal(n, path, extra)
	case "gamepad":
		m, err = parseGamepad(n, path, extra)
	}
	if err != nil {
		return nil, err
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return m, nil
}

func malformed(path Path, err error) error {
	return &SchemaError{Kind: KindMalformedNode, Path: path, Err: err}
}

func readRouting(r *fieldReader) Routing {
	return Routing{
		Enabled:     r.flag("enabled"),
		Send:        r.flag("send"),
		Receive:     r.flag("receive"),
		Feedback:    r.flag("feedback"),
		Connections: r.text("connections"),
	}
}

func parseTriggers(w *lexml.Node, path Path) ([]Trigger, error) {
	if w == nil {
		return nil, nil
	}
	var out []Trigger
	for i, tn := range w.Children {
		tp := path.Child("trigger", i)
		if tn.Tag != "trigger" {
			return nil, schemaErr(KindMalformedNode, tp, "expected <trigger>, got <%s>", tn.Tag)
		}
		r := fieldReader{n: tn}
		t := Trigger{Var: ValueKey(r.text("var")), Condition: Condition(r.text("condition"))}
		if r.err != nil {
			return nil, malformed(tp, r.err)
		}
		out = append(out, t)
	}
	return out, nil
}

func readPartial(r *fieldReader) Partial {
	return Partial{
		Type:       PartialType(r.text("type")),
		Conversion: Conversion(r.text("conversion")),
		Value:      r.text("value"),
		ScaleMin:   r.integer("scaleMin"),
		ScaleMax:   r.integer("scaleMax"),
	}
}

func parsePartials(w *lexml.Node, path Path) ([]Partial, error) {
	if w == nil {
		return nil, nil
	}
	var out []Partial
	for i, pn := range w.Children {
		pp := path.Child("partial", i)
		if pn.Tag != "partial" {
			return nil, schemaErr(KindMalformedNode, pp, "expected <partial>, got <%s>", pn.Tag)
		}
		r := fieldReader{n: pn}
		part := readPartial(&r)
		if r.err != nil {
			return nil, malformed(pp, r.err)
		}
		out = append(out, part)
	}
	return out, nil
}

func parseOsc(n *lexml.Node, path Path, extra []*lexml.Node) (*Osc, error) {
	r := fieldReader{n: n}
	m := &Osc{Routing: readRouting(&r), extra: extra}
	if r.err != nil {
		return nil, malformed(path, r.err)
	}
	var err error
	if m.Triggers, err = parseTriggers(n.Child("triggers"), path.Wrapper("triggers")); err != nil {
		return nil, err
	}
	if m.Path, err = parsePartials(n.Child("path"), path.Wrapper("path")); err != nil {
		return nil, err
	}
	if m.Arguments, err = parsePartials(n.Child("arguments"), path.Wrapper("arguments")); err != nil {
		return nil, err
	}
	return m, nil
}

func parseMidi(n *lexml.Node, path Path, extra []*lexml.Node) (*Midi, error) {
	r := fieldReader{n: n}
	m := &Midi{Routing: readRouting(&r), extra: extra}
	if r.err != nil {
		return nil, malformed(path, r.err)
	}
	var err error
	if m.Triggers, err = parseTriggers(n.Child("triggers"), path.Wrapper("triggers")); err != nil {
		return nil, err
	}

	mn := n.Child("message")
	if mn == nil {
		return nil, schemaErr(KindMalformedNode, path, "midi without <message>")
	}
	mr := fieldReader{n: mn}
	m.Message = MidiMessage{
		Type:    MidiType(mr.text("type")),
		Channel: mr.integer("channel"),
		Data1:   mr.text("data1"),
		Data2:   mr.text("data2"),
	}
	if mr.err != nil {
		return nil, malformed(path.Wrapper("message"), mr.err)
	}

	if w := n.Child("values"); w != nil {
		for i, vn := range w.Children {
			vp := path.Wrapper("values").Child("value", i)
			if vn.Tag != "value" {
				return nil, schemaErr(KindMalformedNode, vp, "expected <value>, got <%s>", vn.Tag)
			}
			vr := fieldReader{n: vn}
			v := MidiValue{
				Type:     PartialType(vr.text("type")),
				Key:      vr.text("key"),
				ScaleMin: vr.integer("scaleMin"),
			}
			// Some producers spell the upper bound in lower case.
			if vn.Child("scaleMax") == nil && vn.Child("scalemax") != nil {
				v.ScaleMax = vr.integer("scalemax")
			} else {
				v.ScaleMax = vr.integer("scaleMax")
			}
			if vr.err != nil {
				return nil, malformed(vp, vr.err)
			}
			m.Values = append(m.Values, v)
		}
	}
	return m, nil
}

func parseLocal(n *lexml.Node, path Path, extra []*lexml.Node) (*Local, error) {
	r := fieldReader{n: n}
	m := &Local{
		Enabled: r.flag("enabled"),
		Source:  readPartial(&r),
		DstType: PartialType(r.text("dstType")),
		DstVar:  r.text("dstVar"),
		DstID:   r.text("dstID"),
		extra:   extra,
	}
	if r.err != nil {
		return nil, malformed(path, r.err)
	}
	var err error
	if m.Triggers, err = parseTriggers(n.Child("triggers"), path.Wrapper("triggers")); err != nil {
		return nil, err
	}
	return m, nil
}

func parseGamepad(n *lexml.Node, path Path, extra []*lexml.Node) (*Gamepad, error) {
	r := fieldReader{n: n}
	m := &Gamepad{
		Enabled:     r.flag("enabled"),
		Connections: r.text("connections"),
		Input:       GamepadInput(r.text("type")),
		Conversion:  Conversion(r.text("conversion")),
		ScaleMin:    r.integer("scaleMin"),
		ScaleMax:    r.integer("scaleMax"),
		TargetType:  PartialType(r.text("targetType")),
		TargetVar:   r.text("targetVar"),
		extra:       extra,
	}
	if r.err != nil {
		return nil, malformed(path, r.err)
	}
	return m, nil
}

// ============================================================
// Serialization
// ============================================================

// Node serializes the control and its subtree. It never fails: every
// invariant is enforced when the control is built or mutated.
func (c *Control) Node() *lexml.Node {
	if c.raw != nil {
		return c.raw.Clone()
	}
	n := lexml.New("node")
	n.SetAttr("ID", c.id)
	n.SetAttr("type", string(c.typ))
	for _, a := range c.attrs {
		n.SetAttr(a.Name, a.Value)
	}

	props := lexml.New("properties")
	for _, p := range c.properties {
		props.Append(p.Node())
	}
	values := lexml.New("values")
	for _, v := range c.values {
		values.Append(v.Node())
	}
	msgs := lexml.New("messages")
	for _, m := range c.messages {
		msgs.Append(m.Node())
	}
	n.Append(props, values, msgs)

	if len(c.children) > 0 || c.emptyChildren {
		children := lexml.New("children")
		for _, ch := range c.children {
			children.Append(ch.Node())
		}
		n.Append(children)
	}
	return n.Append(cloneNodes(c.extra)...)
}
