package tosc

import (
	"fmt"
	"strconv"

	"github.com/AlbertoV5/tosclib/lexml"
)

// Message is a binding between a control's values and an outbound or
// inbound event. The variants are *Osc, *Midi, *Local, *Gamepad and
// *OpaqueMessage; the set is closed.
type Message interface {
	// Tag is the element name of the message.
	Tag() string
	// Node serializes the message.
	Node() *lexml.Node
	// Validate checks the message invariants. Errors are *SchemaError.
	Validate() error
	// Clone returns a deep copy.
	Clone() Message

	validate(path Path) error
}

// ============================================================
// Shared Parts
// ============================================================

// Routing holds the configuration shared by OSC and MIDI messages.
type Routing struct {
	Enabled  bool
	Send     bool
	Receive  bool
	Feedback bool
	// Connections is a bit string, one character per connection.
	Connections string
}

// DefaultRouting enables sending and receiving on all five connections.
func DefaultRouting() Routing {
	return Routing{Enabled: true, Send: true, Receive: true, Connections: "11111"}
}

// Trigger gates a message on a change of one of the control's values.
type Trigger struct {
	Var       ValueKey
	Condition Condition
}

// Partial is one fragment of an OSC path or argument, or of a local
// message source.
type Partial struct {
	Type       PartialType
	Conversion Conversion
	// Value is a literal for CONSTANT, a value key for VALUE, a property
	// key for PROPERTY and an optional integer offset for INDEX.
	Value    string
	ScaleMin int64
	ScaleMax int64
}

// ConstantPartial is a literal string fragment such as "/".
func ConstantPartial(s string) Partial {
	return Partial{Type: PartialConstant, Conversion: ConvString, Value: s, ScaleMax: 1}
}

// ValuePartial reads one of the control's values as a float.
func ValuePartial(k ValueKey) Partial {
	return Partial{Type: PartialValue, Conversion: ConvFloat, Value: string(k), ScaleMax: 1}
}

// PropertyPartial reads one of the control's properties as a string.
func PropertyPartial(key string) Partial {
	return Partial{Type: PartialProperty, Conversion: ConvString, Value: key, ScaleMax: 1}
}

// IndexPartial reads the control's index in its parent.
func IndexPartial() Partial {
	return Partial{Type: PartialIndex, Conversion: ConvInteger, ScaleMax: 1}
}

// Validate checks that the payload matches the partial type.
func (p Partial) Validate() error { return p.validate(nil) }

func (p Partial) validate(path Path) error {
	if !p.Conversion.Valid() {
		return schemaErr(KindInvalidPartial, path, "unknown conversion %q", string(p.Conversion))
	}
	if err := checkSource(p.Type, p.Value); err != nil {
		return &SchemaError{Kind: KindInvalidPartial, Path: path, Err: err}
	}
	return nil
}

// checkSource enforces the partial payload rules shared by partials,
// MIDI values and local sources.
func checkSource(t PartialType, payload string) error {
	switch t {
	case PartialConstant:
		return nil
	case PartialValue:
		if !ValueKey(payload).Valid() {
			return fmt.Errorf("VALUE source needs a value key, got %q", payload)
		}
	case PartialProperty:
		if payload == "" {
			return fmt.Errorf("PROPERTY source needs a property key")
		}
	case PartialIndex:
		if payload != "" {
			if _, err := strconv.ParseInt(payload, 10, 64); err != nil {
				return fmt.Errorf("INDEX source takes an integer offset, got %q", payload)
			}
		}
	default:
		return fmt.Errorf("unknown source type %q", string(t))
	}
	return nil
}

func checkTriggers(ts []Trigger, path Path) error {
	for i, t := range ts {
		p := path.Wrapper("triggers").Child("trigger", i)
		if !t.Var.Valid() {
			return schemaErr(KindInvalidMessage, p, "trigger on unknown value %q", string(t.Var))
		}
		if !t.Condition.Valid() {
			return schemaErr(KindInvalidMessage, p, "unknown trigger condition %q", string(t.Condition))
		}
	}
	return nil
}

func checkConnections(s string, path Path) error {
	for _, r := range s {
		if r != '0' && r != '1' {
			return schemaErr(KindInvalidMessage, path.Wrapper("connections"), "connections %q is not a bit string", s)
		}
	}
	return nil
}

// ============================================================
// OSC
// ============================================================

// Osc sends or receives an OSC message built from partials.
type Osc struct {
	Routing
	Triggers  []Trigger
	Path      []Partial
	Arguments []Partial

	extra []*lexml.Node
}

// NewOsc returns an OSC message sending the x value to "/<name>".
func NewOsc() *Osc {
	return &Osc{
		Routing:   DefaultRouting(),
		Triggers:  []Trigger{{Var: ValueX, Condition: CondAny}},
		Path:      []Partial{ConstantPartial("/"), PropertyPartial("name")},
		Arguments: []Partial{ValuePartial(ValueX)},
	}
}

func (m *Osc) Tag() string     { return "osc" }
func (m *Osc) Validate() error { return m.validate(nil) }

func (m *Osc) validate(path Path) error {
	if err := checkConnections(m.Connections, path); err != nil {
		return err
	}
	if err := checkTriggers(m.Triggers, path); err != nil {
		return err
	}
	for i, p := range m.Path {
		if err := p.validate(path.Wrapper("path").Child("partial", i)); err != nil {
			return err
		}
	}
	for i, p := range m.Arguments {
		if err := p.validate(path.Wrapper("arguments").Child("partial", i)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Osc) Clone() Message {
	c := *m
	c.Triggers = append([]Trigger(nil), m.Triggers...)
	c.Path = append([]Partial(nil), m.Path...)
	c.Arguments = append([]Partial(nil), m.Arguments...)
	c.extra = cloneNodes(m.extra)
	return &c
}

func (m *Osc) Node() *lexml.Node {
	n := lexml.New("osc")
	routingNodes(n, m.Routing)
	n.Append(triggersNode(m.Triggers), partialsNode("path", m.Path), partialsNode("arguments", m.Arguments))
	return n.Append(cloneNodes(m.extra)...)
}

// ============================================================
// MIDI
// ============================================================

// MidiMessage is the MIDI event a message matches or produces. Data1
// and Data2 are kept as written since they may hold references.
type MidiMessage struct {
	Type    MidiType
	Channel int64
	Data1   string
	Data2   string
}

// MidiValue maps one source onto a MIDI data byte.
type MidiValue struct {
	Type     PartialType
	Key      string
	ScaleMin int64
	ScaleMax int64
}

// Midi sends or receives a MIDI event.
type Midi struct {
	Routing
	Triggers []Trigger
	Message  MidiMessage
	Values   []MidiValue

	extra []*lexml.Node
}

// NewMidi returns a control change on channel 0 driven by the x value.
func NewMidi() *Midi {
	return &Midi{
		Routing:  DefaultRouting(),
		Triggers: []Trigger{{Var: ValueX, Condition: CondAny}},
		Message:  MidiMessage{Type: MidiControlChange, Data1: "0", Data2: "0"},
		Values: []MidiValue{
			{Type: PartialConstant, ScaleMax: 15},
			{Type: PartialIndex, ScaleMax: 1},
			{Type: PartialValue, Key: string(ValueX), ScaleMax: 127},
		},
	}
}

func (m *Midi) Tag() string     { return "midi" }
func (m *Midi) Validate() error { return m.validate(nil) }

func (m *Midi) validate(path Path) error {
	if err := checkConnections(m.Connections, path); err != nil {
		return err
	}
	if err := checkTriggers(m.Triggers, path); err != nil {
		return err
	}
	mp := path.Wrapper("message")
	if !m.Message.Type.Valid() {
		return schemaErr(KindInvalidMessage, mp, "unknown MIDI type %q", string(m.Message.Type))
	}
	if m.Message.Channel < 0 || m.Message.Channel > 15 {
		return schemaErr(KindInvalidMessage, mp, "MIDI channel %d outside [0,15]", m.Message.Channel)
	}
	for i, v := range m.Values {
		if err := checkSource(v.Type, v.Key); err != nil {
			return &SchemaError{Kind: KindInvalidPartial, Path: path.Wrapper("values").Child("value", i), Err: err}
		}
	}
	return nil
}

func (m *Midi) Clone() Message {
	c := *m
	c.Triggers = append([]Trigger(nil), m.Triggers...)
	c.Values = append([]MidiValue(nil), m.Values...)
	c.extra = cloneNodes(m.extra)
	return &c
}

func (m *Midi) Node() *lexml.Node {
	n := lexml.New("midi")
	routingNodes(n, m.Routing)
	n.Append(triggersNode(m.Triggers))

	msg := lexml.New("message")
	msg.AppendText("type", string(m.Message.Type))
	msg.AppendText("channel", strconv.FormatInt(m.Message.Channel, 10))
	msg.AppendText("data1", m.Message.Data1)
	msg.AppendText("data2", m.Message.Data2)
	n.Append(msg)

	values := lexml.New("values")
	for _, v := range m.Values {
		vn := lexml.New("value")
		vn.AppendText("type", string(v.Type))
		vn.AppendText("key", v.Key)
		vn.AppendText("scaleMin", strconv.FormatInt(v.ScaleMin, 10))
		vn.AppendText("scaleMax", strconv.FormatInt(v.ScaleMax, 10))
		values.Append(vn)
	}
	n.Append(values)
	return n.Append(cloneNodes(m.extra)...)
}

// ============================================================
// Local
// ============================================================

// Local copies a source into a value or property of another control in
// the same layout.
type Local struct {
	Enabled  bool
	Triggers []Trigger
	Source   Partial
	DstType  PartialType
	DstVar   string
	DstID    string

	extra []*lexml.Node
}

// NewLocal returns a local message forwarding x to the x value of the
// control with the given ID.
func NewLocal(dstID string) *Local {
	return &Local{
		Enabled:  true,
		Triggers: []Trigger{{Var: ValueX, Condition: CondAny}},
		Source:   ValuePartial(ValueX),
		DstType:  PartialValue,
		DstVar:   string(ValueX),
		DstID:    dstID,
	}
}

func (m *Local) Tag() string     { return "local" }
func (m *Local) Validate() error { return m.validate(nil) }

func (m *Local) validate(path Path) error {
	if err := checkTriggers(m.Triggers, path); err != nil {
		return err
	}
	if err := m.Source.validate(path); err != nil {
		return err
	}
	if !m.DstType.Valid() {
		return schemaErr(KindInvalidMessage, path.Wrapper("dstType"), "unknown target type %q", string(m.DstType))
	}
	return nil
}

func (m *Local) Clone() Message {
	c := *m
	c.Triggers = append([]Trigger(nil), m.Triggers...)
	c.extra = cloneNodes(m.extra)
	return &c
}

func (m *Local) Node() *lexml.Node {
	n := lexml.New("local")
	n.AppendText("enabled", formatBool(m.Enabled))
	n.Append(triggersNode(m.Triggers))
	partialFields(n, m.Source)
	n.AppendText("dstType", string(m.DstType))
	n.AppendText("dstVar", m.DstVar)
	n.AppendText("dstID", m.DstID)
	return n.Append(cloneNodes(m.extra)...)
}

// ============================================================
// Gamepad
// ============================================================

// Gamepad drives a control value from a gamepad input.
type Gamepad struct {
	Enabled     bool
	Connections string
	Input       GamepadInput
	Conversion  Conversion
	ScaleMin    int64
	ScaleMax    int64
	TargetType  PartialType
	TargetVar   string

	extra []*lexml.Node
}

// NewGamepad maps the A button onto the x value.
func NewGamepad() *Gamepad {
	return &Gamepad{
		Enabled:     true,
		Connections: "11111",
		Input:       "BUTTON_A",
		Conversion:  ConvFloat,
		ScaleMax:    1,
		TargetType:  PartialValue,
		TargetVar:   string(ValueX),
	}
}

func (m *Gamepad) Tag() string     { return "gamepad" }
func (m *Gamepad) Validate() error { return m.validate(nil) }

func (m *Gamepad) validate(path Path) error {
	if err := checkConnections(m.Connections, path); err != nil {
		return err
	}
	if !m.Input.Valid() {
		return schemaErr(KindInvalidMessage, path.Wrapper("type"), "unknown gamepad input %q", string(m.Input))
	}
	if !m.Conversion.Valid() {
		return schemaErr(KindInvalidMessage, path.Wrapper("conversion"), "unknown conversion %q", string(m.Conversion))
	}
	if err := checkSource(m.TargetType, m.TargetVar); err != nil {
		return &SchemaError{Kind: KindInvalidPartial, Path: path.Wrapper("targetVar"), Err: err}
	}
	return nil
}

func (m *Gamepad) Clone() Message {
	c := *m
	c.extra = cloneNodes(m.extra)
	return &c
}

func (m *Gamepad) Node() *lexml.Node {
	n := lexml.New("gamepad")
	n.AppendText("enabled", formatBool(m.Enabled))
	n.AppendText("connections", m.Connections)
	n.AppendText("type", string(m.Input))
	n.AppendText("conversion", string(m.Conversion))
	n.AppendText("scaleMin", strconv.FormatInt(m.ScaleMin, 10))
	n.AppendText("scaleMax", strconv.FormatInt(m.ScaleMax, 10))
	n.AppendText("targetType", string(m.TargetType))
	n.AppendText("targetVar", m.TargetVar)
	return n.Append(cloneNodes(m.extra)...)
}

// ============================================================
// Opaque
// ============================================================

// OpaqueMessage keeps a message element of an unknown kind verbatim.
type OpaqueMessage struct {
	raw *lexml.Node
}

func (m *OpaqueMessage) Tag() string              { return m.raw.Tag }
func (m *OpaqueMessage) Validate() error          { return nil }
func (m *OpaqueMessage) validate(path Path) error { return nil }
func (m *OpaqueMessage) Clone() Message           { return &OpaqueMessage{raw: m.raw.Clone()} }
func (m *OpaqueMessage) Node() *lexml.Node        { return m.raw.Clone() }

// ============================================================
// Message Nodes
// ============================================================

func routingNodes(n *lexml.Node, r Routing) {
	n.AppendText("enabled", formatBool(r.Enabled))
	n.AppendText("send", formatBool(r.Send))
	n.AppendText("receive", formatBool(r.Receive))
	n.AppendText("feedback", formatBool(r.Feedback))
	n.AppendText("connections", r.Connections)
}

func triggersNode(ts []Trigger) *lexml.Node {
	n := lexml.New("triggers")
	for _, t := range ts {
		tn := lexml.New("trigger")
		tn.AppendText("var", string(t.Var))
		tn.AppendText("condition", string(t.Condition))
		n.Append(tn)
	}
	return n
}

func partialFields(n *lexml.Node, p Partial) {
	n.AppendText("type", string(p.Type))
	n.AppendText("conversion", string(p.Conversion))
	n.AppendText("value", p.Value)
	n.AppendText("scaleMin", strconv.FormatInt(p.ScaleMin, 10))
	n.AppendText("scaleMax", strconv.FormatInt(p.ScaleMax, 10))
}

func partialsNode(tag string, ps []Partial) *lexml.Node {
	n := lexml.New(tag)
	for _, p := range ps {
		pn := lexml.New("partial")
		partialFields(pn, p)
		n.Append(pn)
	}
	return n
}

func cloneNodes(ns []*lexml.Node) []*lexml.Node {
	if len(ns) == 0 {
		return nil
	}
	out := make([]*lexml.Node, len(ns))
	for i, n := range ns {
		out[i] = n.Clone()
	}
	return out
}
