package tosc

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================
// Paths
// ============================================================

// Step is one element on a Path: a tag and its position among the
// parent's children carrying the same tag. Index is -1 for the root.
type Step struct {
	Tag   string
	Index int
}

// Path locates a node inside a document, root first.
type Path []Step

// String renders the path as "lexml/node[0]/properties/property[3]".
// Wrapper elements that can only appear once are written without index.
func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(s.Tag)
		if s.Index >= 0 {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(s.Index))
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// Child returns a new path extended with one step. The receiver is
// never modified, so sibling paths do not alias.
func (p Path) Child(tag string, index int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Step{Tag: tag, Index: index})
}

// Wrapper returns p extended by an unindexed wrapper element such as
// <properties>.
func (p Path) Wrapper(tag string) Path {
	return p.Child(tag, -1)
}

// ============================================================
// Schema Errors
// ============================================================

// ErrorKind classifies a SchemaError.
type ErrorKind string

const (
	KindUnknownType          ErrorKind = "unknown_type"
	KindInvalidPropertyValue ErrorKind = "invalid_property_value"
	KindInvalidValueKey      ErrorKind = "invalid_value_key"
	KindInvalidPartial       ErrorKind = "invalid_partial"
	KindMissingCapability    ErrorKind = "missing_capability"
	KindInvalidMessage       ErrorKind = "invalid_message"
	KindMalformedNode        ErrorKind = "malformed_node"
)

// SchemaError reports a node that is well-formed markup but violates
// the layout schema. It is fatal to the parse or mutation that raised
// it; state built before the failure is left untouched.
type SchemaError struct {
	Kind   ErrorKind
	Path   Path
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := "tosc: " + strings.ReplaceAll(string(e.Kind), "_", " ")
	if len(e.Path) > 0 {
		msg += " at " + e.Path.String()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

func schemaErr(kind ErrorKind, path Path, format string, args ...any) *SchemaError {
	return &SchemaError{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// ============================================================
// Capability Errors
// ============================================================

// CapabilityError reports an operation that the control's type does not
// support at all, such as adding children to a fader or editing an
// opaque control.
type CapabilityError struct {
	Type   ControlType
	Op     string
	Path   Path
	Detail string
}

func (e *CapabilityError) Error() string {
	msg := fmt.Sprintf("tosc: %s not supported by %s", e.Op, e.Type)
	if len(e.Path) > 0 {
		msg += " at " + e.Path.String()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
