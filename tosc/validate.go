package tosc

import (
	"errors"
	"fmt"
)

// ValidationError represents one finding of a whole-tree validation.
type ValidationError struct {
	Path    string // location of the offending node
	Message string // human-readable description
	Code    string // machine-readable code
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationResult contains all validation errors and warnings.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// Validator walks a control tree and collects every violation instead of
// stopping at the first one.
type Validator struct {
	errors   []ValidationError
	warnings []ValidationError
	ids      map[string]string
	targets  []target
	strict   bool
}

type target struct {
	id   string
	path string
}

// NewValidator creates a validator that reports preserved unknown
// content as warnings.
func NewValidator() *Validator {
	return &Validator{}
}

// NewStrictValidator creates a validator that treats opaque controls
// and properties outside the capability table as errors.
func NewStrictValidator() *Validator {
	return &Validator{strict: true}
}

// Validate checks the document.
func (d *Document) Validate() *ValidationResult {
	return NewValidator().Validate(d.root)
}

// Validate checks the tree rooted at root.
func (v *Validator) Validate(root *Control) *ValidationResult {
	v.errors = nil
	v.warnings = nil
	v.ids = map[string]string{}
	v.targets = nil

	Walk(root, func(c *Control) bool {
		v.validateControl(c)
		return !c.Opaque()
	})
	for _, t := range v.targets {
		if _, ok := v.ids[t.id]; !ok {
			v.addWarning(t.path, "dangling_target", "local message targets unknown control %q", t.id)
		}
	}

	return &ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

func (v *Validator) validateControl(c *Control) {
	path := c.Path().String()

	switch {
	case c.id == "":
		v.addError(path, "missing_id", "control has no ID")
	case v.ids[c.id] != "":
		v.addError(path, "duplicate_id", "ID %s already used at %s", c.id, v.ids[c.id])
	default:
		v.ids[c.id] = path
	}

	if c.Opaque() {
		v.report(path, "opaque_control", "control type %q is not known; kept verbatim", c.typ)
		return
	}

	for i, p := range c.properties {
		pp := c.Path().Wrapper("properties").Child("property", i).String()
		if !c.typ.PermitsProperty(p.Key) {
			v.report(pp, "unsupported_property", "%s does not declare property %q", c.typ, p.Key)
		} else if want, ok := c.typ.PropertyType(p.Key); ok && want != p.Type() {
			v.addError(pp, "property_type", "property %q should be %s, found %s", p.Key, want, p.Type())
		}
		if err := p.Value.check(); err != nil {
			v.addError(pp, string(KindInvalidPropertyValue), "property %q: %v", p.Key, err)
		}
	}

	for i, val := range c.values {
		vp := c.Path().Wrapper("values").Child("value", i).String()
		if !val.Key.Valid() || !c.typ.PermitsValue(val.Key) {
			v.addError(vp, string(KindInvalidValueKey), "%s does not support value %q", c.typ, string(val.Key))
			continue
		}
		if _, err := val.check(); err != nil {
			v.addError(vp, string(KindInvalidPropertyValue), "%v", err)
		}
	}

	mpath := c.Path().Wrapper("messages")
	counts := map[string]int{}
	for _, m := range c.messages {
		mp := mpath.Child(m.Tag(), counts[m.Tag()])
		counts[m.Tag()]++
		if err := m.validate(mp); err != nil {
			var se *SchemaError
			if errors.As(err, &se) {
				v.addError(se.Path.String(), string(se.Kind), "%s", se.Error())
			} else {
				v.addError(mp.String(), "invalid_message", "%v", err)
			}
		}
		if l, ok := m.(*Local); ok && l.DstID != "" {
			v.targets = append(v.targets, target{id: l.DstID, path: mp.String()})
		}
		v.checkReferences(c, m, mp.String())
	}
}

// checkReferences warns about VALUE partials naming a channel the
// control does not have.
func (v *Validator) checkReferences(c *Control, m Message, path string) {
	var parts []Partial
	switch msg := m.(type) {
	case *Osc:
		parts = append(append(parts, msg.Path...), msg.Arguments...)
	case *Local:
		parts = append(parts, msg.Source)
	}
	for _, p := range parts {
		if p.Type == PartialValue && !c.typ.PermitsValue(ValueKey(p.Value)) {
			v.addWarning(path, "unknown_value_reference", "%s has no value %q", c.typ, p.Value)
		}
	}
}

func (v *Validator) report(path, code, format string, args ...any) {
	if v.strict {
		v.addError(path, code, format, args...)
		return
	}
	v.addWarning(path, code, format, args...)
}

func (v *Validator) addError(path, code, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Path:    path,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *Validator) addWarning(path, code, format string, args ...any) {
	v.warnings = append(v.warnings, ValidationError{
		Path:    path,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}
