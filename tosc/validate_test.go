package tosc

import "testing"

func hasCode(list []ValidationError, code string) bool {
	for _, e := range list {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestValidate_Sample(t *testing.T) {
	d := mustParse(t, sampleLayout)
	r := d.Validate()
	if !r.Valid {
		t.Fatalf("sample invalid: %v", r.Errors)
	}
	if !hasCode(r.Warnings, "opaque_control") {
		t.Error("opaque control not reported")
	}

	strict := NewStrictValidator().Validate(d.Root())
	if strict.Valid || !hasCode(strict.Errors, "opaque_control") {
		t.Error("strict validator accepted an opaque control")
	}
}

func TestValidate_DuplicateIDs(t *testing.T) {
	g := newGroup(t)
	btn, _ := CreateChild(g, TypeButton)
	if err := g.AppendChild(btn.Clone()); err != nil {
		t.Fatal(err)
	}
	r := NewValidator().Validate(g)
	if r.Valid || !hasCode(r.Errors, "duplicate_id") {
		t.Errorf("duplicate ID not reported: %+v", r.Errors)
	}
	if r.Errors[0].Path != "node/children/node[1]" {
		t.Errorf("path = %s", r.Errors[0].Path)
	}
}

func TestValidate_CopyChildrenStaysValid(t *testing.T) {
	g := newGroup(t)
	addChildren(t, g, TypeButton, 2)
	sub, _ := CreateChild(g, TypeGroup)
	if err := CopyChildren(g, sub); err != nil {
		t.Fatal(err)
	}
	if sub.NumChildren() != 3 {
		t.Errorf("sub children = %d", sub.NumChildren())
	}
	if r := NewValidator().Validate(g); !r.Valid {
		t.Errorf("copy produced invalid tree: %+v", r.Errors)
	}
}

func TestValidate_LocalTargets(t *testing.T) {
	g := newGroup(t)
	a, _ := CreateChild(g, TypeButton)
	b, _ := CreateChild(g, TypeLabel)

	a.AddMessage(NewLocal(b.ID()))
	if r := NewValidator().Validate(g); hasCode(r.Warnings, "dangling_target") {
		t.Error("resolved target reported as dangling")
	}

	a.AddMessage(NewLocal("missing"))
	r := NewValidator().Validate(g)
	if !r.Valid || !hasCode(r.Warnings, "dangling_target") {
		t.Errorf("dangling target: valid=%v warnings=%+v", r.Valid, r.Warnings)
	}
}

func TestValidate_UnknownValueReference(t *testing.T) {
	btn, _ := NewControl(TypeButton)
	osc := NewOsc()
	osc.Arguments = []Partial{ValuePartial(ValueY)}
	if err := btn.AddMessage(osc); err != nil {
		t.Fatal(err)
	}
	r := NewValidator().Validate(btn)
	if !hasCode(r.Warnings, "unknown_value_reference") {
		t.Errorf("warnings = %+v", r.Warnings)
	}
}
