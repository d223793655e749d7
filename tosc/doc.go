// Package tosc is the typed model of a TouchOSC layout.
//
// A Document holds one root Control. Each control carries typed
// properties, value channels, message bindings and, for container types,
// child controls:
//
//	doc, err := tosc.FromScratch(tosc.TypeGroup)
//	btn, err := tosc.CreateChild(doc.Root(), tosc.TypeButton)
//	err = btn.SetColor(1, 0, 0, 1)
//	err = btn.SetFrame(0, 0, 50, 50)
//	data := doc.Save()
//
// # Schema
//
// A static capability table maps every control type to the property keys
// it declares (with defaults), the value keys it supports and whether it
// may hold children. Parsing and every mutation consult that table.
// Property keys declared by no type are custom properties and are allowed
// anywhere. Keys declared only by other types are preserved when parsed
// but rejected by SetProperty.
//
// # Unknown content
//
// Controls with an unknown type attribute are kept as opaque controls
// that re-serialize to the original node and reject mutation. Set
// ParseOptions.Strict to reject them instead. Unknown message kinds and
// unknown sub-elements are likewise carried through unchanged.
//
// # Errors
//
// Schema violations are reported as *SchemaError with a Path to the
// offending node. Operations a control type cannot perform return
// *CapabilityError. Container errors from Load are *codec.FormatError.
package tosc
