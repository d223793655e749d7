package tosc

// ============================================================
// Control Types
// ============================================================

// ControlType is the type attribute of a <node>.
type ControlType string

const (
	TypeBox     ControlType = "BOX"
	TypeButton  ControlType = "BUTTON"
	TypeEncoder ControlType = "ENCODER"
	TypeFader   ControlType = "FADER"
	TypeGrid    ControlType = "GRID"
	TypeGroup   ControlType = "GROUP"
	TypeLabel   ControlType = "LABEL"
	TypePage    ControlType = "PAGE"
	TypePager   ControlType = "PAGER"
	TypeRadar   ControlType = "RADAR"
	TypeRadial  ControlType = "RADIAL"
	TypeRadio   ControlType = "RADIO"
	TypeText    ControlType = "TEXT"
	TypeXY      ControlType = "XY"
)

// ControlTypes lists every known control type in wire order.
var ControlTypes = []ControlType{
	TypeBox, TypeButton, TypeEncoder, TypeFader, TypeGrid, TypeGroup, TypeLabel,
	TypePage, TypePager, TypeRadar, TypeRadial, TypeRadio, TypeText, TypeXY,
}

// Known reports whether t is one of the enumerated control types.
func (t ControlType) Known() bool {
	_, ok := capabilities[t]
	return ok
}

func (t ControlType) String() string { return string(t) }

// ============================================================
// Property Types
// ============================================================

// PropertyType is the type attribute of a <property>.
type PropertyType string

const (
	PropBoolean PropertyType = "b"
	PropColor   PropertyType = "c"
	PropFloat   PropertyType = "f"
	PropInteger PropertyType = "i"
	PropFrame   PropertyType = "r"
	PropString  PropertyType = "s"
)

// Valid reports whether t is a known property type tag.
func (t PropertyType) Valid() bool {
	switch t {
	case PropBoolean, PropColor, PropFloat, PropInteger, PropFrame, PropString:
		return true
	}
	return false
}

// String returns the type name.
func (t PropertyType) String() string {
	switch t {
	case PropBoolean:
		return "boolean"
	case PropColor:
		return "color"
	case PropFloat:
		return "float"
	case PropInteger:
		return "integer"
	case PropFrame:
		return "frame"
	case PropString:
		return "string"
	default:
		return "unknown(" + string(t) + ")"
	}
}

// ============================================================
// Value Keys
// ============================================================

// ValueKey names a runtime value channel of a control.
type ValueKey string

const (
	ValueX     ValueKey = "x"
	ValueY     ValueKey = "y"
	ValueTouch ValueKey = "touch"
	ValueText  ValueKey = "text"
	ValuePage  ValueKey = "page"
)

// Valid reports whether k is one of the reserved value keys.
func (k ValueKey) Valid() bool {
	switch k {
	case ValueX, ValueY, ValueTouch, ValueText, ValuePage:
		return true
	}
	return false
}

// DefaultType is the property type used for the default of k.
func (k ValueKey) DefaultType() PropertyType {
	switch k {
	case ValueX, ValueY:
		return PropFloat
	case ValueTouch:
		return PropBoolean
	case ValuePage:
		return PropInteger
	default:
		return PropString
	}
}

// ============================================================
// Message Enumerations
// ============================================================

// PartialType says where a partial takes its data from.
type PartialType string

const (
	PartialConstant PartialType = "CONSTANT"
	PartialIndex    PartialType = "INDEX"
	PartialValue    PartialType = "VALUE"
	PartialProperty PartialType = "PROPERTY"
)

// Valid reports whether t is a known partial type.
func (t PartialType) Valid() bool {
	switch t {
	case PartialConstant, PartialIndex, PartialValue, PartialProperty:
		return true
	}
	return false
}

// Conversion is the type a partial is converted to before sending.
type Conversion string

const (
	ConvBoolean Conversion = "BOOLEAN"
	ConvInteger Conversion = "INTEGER"
	ConvFloat   Conversion = "FLOAT"
	ConvString  Conversion = "STRING"
)

// Valid reports whether c is a known conversion.
func (c Conversion) Valid() bool {
	switch c {
	case ConvBoolean, ConvInteger, ConvFloat, ConvString:
		return true
	}
	return false
}

// Condition is the edge on which a trigger fires.
type Condition string

const (
	CondAny  Condition = "ANY"
	CondRise Condition = "RISE"
	CondFall Condition = "FALL"
)

// Valid reports whether c is a known trigger condition.
func (c Condition) Valid() bool {
	return c == CondAny || c == CondRise || c == CondFall
}

// MidiType is the MIDI status of a midi message, spelled as on the wire.
type MidiType string

const (
	MidiNoteOff         MidiType = "NOTE_OFF"
	MidiNoteOn          MidiType = "NOTE_ON"
	MidiPolyPressure    MidiType = "POLYPRESSURE"
	MidiControlChange   MidiType = "CONTROLCHANGE"
	MidiProgramChange   MidiType = "PROGRAMCHANGE"
	MidiChannelPressure MidiType = "CHANNELPRESSURE"
	MidiPitchBend       MidiType = "PITCHBEND"
	MidiSystemExclusive MidiType = "SYSTEMEXCLUSIVE"
)

// Valid reports whether t is a known MIDI message type.
func (t MidiType) Valid() bool {
	switch t {
	case MidiNoteOff, MidiNoteOn, MidiPolyPressure, MidiControlChange,
		MidiProgramChange, MidiChannelPressure, MidiPitchBend, MidiSystemExclusive:
		return true
	}
	return false
}

// GamepadInput names a physical gamepad input.
type GamepadInput string

var gamepadInputs = map[GamepadInput]bool{
	"STICK_LEFT_X": true, "STICK_LEFT_Y": true, "STICK_RIGHT_X": true, "STICK_RIGHT_Y": true,
	"TRIGGER_LEFT": true, "TRIGGER_RIGHT": true,
	"BUTTON_UP": true, "BUTTON_DOWN": true, "BUTTON_LEFT": true, "BUTTON_RIGHT": true,
	"BUTTON_A": true, "BUTTON_B": true, "BUTTON_X": true, "BUTTON_Y": true,
	"BUTTON_STICK_LEFT": true, "BUTTON_STICK_RIGHT": true,
	"BUMPER_LEFT": true, "BUMPER_RIGHT": true,
	"BUTTON_START": true, "BUTTON_SELECT": true, "BUTTON_HOME": true,
}

// Valid reports whether g is a known gamepad input.
func (g GamepadInput) Valid() bool { return gamepadInputs[g] }
