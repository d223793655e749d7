package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlbertoV5/tosclib/lexml"
	"github.com/AlbertoV5/tosclib/tosc"
)

const mixerYAML = `
version: "3"
root:
  type: GROUP
  name: mixer
  frame: [0, 0, 400, 200]
  children:
    - type: FADER
      name: volume
      color: [1, 0, 0, 1]
      properties:
        cursor: false
        barDisplay: 1
        myCustom: hello
      values:
        - key: x
          default: 0.5
          pull: 10
      osc:
        - path: ["/", "@name"]
          arguments: ["$x", "#"]
          triggers: ["x:RISE"]
          feedback: true
      local:
        - target: mute
          source: "$x"
    - type: BUTTON
      name: mute
      midi:
        - type: NOTE_ON
          channel: 2
          data1: "60"
          values:
            - {type: CONSTANT, value: "2", max: 15}
            - {type: VALUE, value: x, max: 127}
  grid: {rows: 1, columns: 2, width: 200, height: 200}
`

const mixerJSONC = `{
	// same layout as mixerYAML
	"version": "3",
	"root": {
		"type": "GROUP",
		"name": "mixer",
		"frame": [0, 0, 400, 200],
		"children": [
			{
				"type": "FADER",
				"name": "volume",
				"color": [1, 0, 0, 1],
				"properties": {"cursor": false, "barDisplay": 1, "myCustom": "hello"},
				"values": [{"key": "x", "default": 0.5, "pull": 10}],
				"osc": [{
					"path": ["/", "@name"],
					"arguments": ["$x", "#"],
					"triggers": ["x:RISE"],
					"feedback": true,
				}],
				"local": [{"target": "mute", "source": "$x"}],
			},
			{
				"type": "BUTTON",
				"name": "mute",
				"midi": [{
					"type": "NOTE_ON",
					"channel": 2,
					"data1": "60",
					"values": [
						{"type": "CONSTANT", "value": "2", "max": 15},
						{"type": "VALUE", "value": "x", "max": 127},
					],
				}],
			},
		],
		/* cells */
		"grid": {"rows": 1, "columns": 2, "width": 200, "height": 200},
	},
}`

func mustBuild(t *testing.T, src string, parse func([]byte) (*Blueprint, error)) *tosc.Document {
	t.Helper()
	bp, err := parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc, err := Build(bp)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}

// normalizeIDs replaces every control ID, and every text equal to one,
// with a placeholder numbered in document order.
func normalizeIDs(n *lexml.Node) *lexml.Node {
	n = n.Clone()
	ids := map[string]string{}
	n.Walk(func(x *lexml.Node) bool {
		if id, ok := x.Attr("ID"); ok {
			ids[id] = fmt.Sprintf("id-%d", len(ids))
			x.SetAttr("ID", ids[id])
		}
		return true
	})
	n.Walk(func(x *lexml.Node) bool {
		if r, ok := ids[x.Text]; ok {
			x.Text = r
		}
		return true
	})
	return n
}

// ============================================================
// Build Tests
// ============================================================

func TestBuild_YAML(t *testing.T) {
	doc := mustBuild(t, mixerYAML, Parse)
	root := doc.Root()
	if root.Type() != tosc.TypeGroup || root.Name() != "mixer" || root.NumChildren() != 2 {
		t.Fatalf("root = %s %q with %d children", root.Type(), root.Name(), root.NumChildren())
	}

	fader := tosc.FindFirst(root, tosc.ByName("volume"))
	if fader == nil {
		t.Fatal("fader missing")
	}
	if f, _ := fader.Frame(); f != (tosc.Frame{X: 0, Y: 0, W: 200, H: 200}) {
		t.Errorf("fader frame = %+v", f)
	}
	if c, _ := fader.Color(); c != (tosc.Color{R: 1, A: 1}) {
		t.Errorf("fader color = %+v", c)
	}
	if d, _ := fader.Get("barDisplay"); d.Type() != tosc.PropInteger {
		t.Errorf("barDisplay type = %s", d.Type())
	}
	if d, _ := fader.Get("myCustom"); d.String() != "hello" {
		t.Errorf("myCustom = %q", d.String())
	}
	if v, _ := fader.Value(tosc.ValueX); v.DefaultPull != 10 {
		t.Errorf("pull = %d", v.DefaultPull)
	} else if f, _ := v.Default.AsFloat(); f != 0.5 {
		t.Errorf("default = %v", f)
	}

	msgs := fader.Messages()
	if len(msgs) != 2 {
		t.Fatalf("fader messages = %d", len(msgs))
	}
	osc := msgs[0].(*tosc.Osc)
	if !osc.Feedback || osc.Triggers[0].Condition != tosc.CondRise {
		t.Errorf("osc routing/trigger = %+v", osc)
	}
	if osc.Arguments[1].Type != tosc.PartialIndex {
		t.Errorf("second argument = %+v", osc.Arguments[1])
	}

	mute := root.Child(1)
	local := msgs[1].(*tosc.Local)
	if local.DstID != mute.ID() {
		t.Errorf("local target = %s, want %s", local.DstID, mute.ID())
	}
	if f, _ := mute.Frame(); f.X != 200 {
		t.Errorf("mute frame = %+v", f)
	}

	midi := mute.Messages()[0].(*tosc.Midi)
	if midi.Message.Type != tosc.MidiNoteOn || midi.Message.Channel != 2 || midi.Values[1].ScaleMax != 127 {
		t.Errorf("midi = %+v", midi)
	}

	if r := doc.Validate(); !r.Valid || len(r.Warnings) != 0 {
		t.Errorf("validate: %+v", r)
	}
}

func TestBuild_JSONCMatchesYAML(t *testing.T) {
	fromYAML := mustBuild(t, mixerYAML, Parse)
	fromJSON := mustBuild(t, mixerJSONC, ParseJSONC)

	a, b := normalizeIDs(fromYAML.Node()), normalizeIDs(fromJSON.Node())
	if !a.Equal(b) {
		t.Errorf("documents differ:\nyaml:\n%s\njsonc:\n%s", lexml.EmitIndent(a, "  "), lexml.EmitIndent(b, "  "))
	}
}

func TestParseJSONC_Escapes(t *testing.T) {
	src := `{
		"root": {
			"type": "GROUP",
			"name": "a\/b",
			"script": "print(\"smile \ud83d\ude00\")\n",
			"children": [{"type": "LABEL", "name": "true"}, {"type": "LABEL", "name": "0x10"}],
		},
	}`
	bp, err := ParseJSONC([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if bp.Root.Name != "a/b" {
		t.Errorf("name = %q", bp.Root.Name)
	}
	if bp.Root.Script != "print(\"smile \U0001F600\")\n" {
		t.Errorf("script = %q", bp.Root.Script)
	}
	if bp.Root.Children[0].Name != "true" || bp.Root.Children[1].Name != "0x10" {
		t.Errorf("string names retyped: %q %q", bp.Root.Children[0].Name, bp.Root.Children[1].Name)
	}

	for _, bad := range []string{`{"root": {"type": "BOX"}} {}`, `{"root": {"type": "BOX", "colour": [1]}}`} {
		if _, err := ParseJSONC([]byte(bad)); err == nil {
			t.Errorf("ParseJSONC(%q) succeeded", bad)
		}
	}
}

func TestBuild_SavesAndLoads(t *testing.T) {
	doc := mustBuild(t, mixerYAML, Parse)
	back, err := tosc.Load(doc.Save())
	if err != nil {
		t.Fatal(err)
	}
	if back.Fingerprint() != doc.Fingerprint() {
		t.Error("fingerprint changed across save and load")
	}
}

func TestBuild_Generate(t *testing.T) {
	src := `
root:
  type: GROUP
  frame: [0, 0, 300, 100]
  generate:
    direction: row
    type: button
    ratios: [1, 1, 1]
    from: [0, 0, 0, 1]
    to: [1, 1, 1, 1]
  children:
    - type: LABEL
`
	doc := mustBuild(t, src, Parse)
	root := doc.Root()
	if root.NumChildren() != 4 {
		t.Fatalf("children = %d", root.NumChildren())
	}
	if f, _ := root.Child(2).Frame(); f != (tosc.Frame{X: 200, Y: 0, W: 100, H: 100}) {
		t.Errorf("third cell = %+v", f)
	}
	if c, _ := root.Child(1).Color(); c.R != 0.5 {
		t.Errorf("middle colour = %+v", c)
	}
	if root.Child(3).Type() != tosc.TypeLabel {
		t.Error("listed child not appended after generated ones")
	}
}

// ============================================================
// Rejection Tests
// ============================================================

func TestBuild_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown type", "root: {type: SPINNER}", "SPINNER"},
		{"child of leaf", "root: {type: FADER, children: [{type: BOX}]}", "root/children[0]"},
		{"bad frame", "root: {type: BOX, frame: [1, 2]}", "frame needs 4 numbers"},
		{"colour out of range", "root: {type: BOX, color: [2, 0, 0, 1]}", "root"},
		{"foreign property", "root: {type: BOX, properties: {cursor: true}}", "cursor"},
		{"wrong property type", "root: {type: BOX, properties: {visible: maybe}}", "visible"},
		{"value not supported", "root: {type: LABEL, values: [{key: page}]}", "page"},
		{"missing local target", "root: {type: BUTTON, local: [{target: nowhere}]}", "nowhere"},
		{"grid overflow", "root: {type: GROUP, children: [{type: BOX}, {type: BOX}], grid: {rows: 1, columns: 1, width: 1, height: 1}}", "do not fit"},
		{"midi channel", "root: {type: BUTTON, midi: [{channel: 16}]}", "channel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp, err := Parse([]byte(tt.src))
			if err == nil {
				_, err = Build(bp)
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, src := range []string{
		"",
		"version: 3",
		"root: {type: BOX, colour: [1, 1, 1, 1]}",
		`root: {type: BUTTON, osc: [{arguments: ["$volume"]}]}`,
		`root: {type: BUTTON, osc: [{triggers: ["x:SIDEWAYS"]}]}`,
		`root: {type: BUTTON, osc: [{path: [{type: RANDOM}]}]}`,
	} {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q) succeeded", src)
		}
	}
	if _, err := ParseJSONC([]byte(`{"root": {"type": "BOX"`)); err == nil {
		t.Error("truncated JSONC accepted")
	}
}

// ============================================================
// Partial Shorthand
// ============================================================

func TestParsePartial(t *testing.T) {
	tests := []struct {
		in    string
		typ   tosc.PartialType
		value string
	}{
		{"/", tosc.PartialConstant, "/"},
		{"$x", tosc.PartialValue, "x"},
		{"@name", tosc.PartialProperty, "name"},
		{"#", tosc.PartialIndex, ""},
		{"#-1", tosc.PartialIndex, "-1"},
		{`\$x`, tosc.PartialConstant, "$x"},
		{"", tosc.PartialConstant, ""},
	}
	for _, tt := range tests {
		p, err := ParsePartial(tt.in)
		if err != nil {
			t.Errorf("ParsePartial(%q): %v", tt.in, err)
			continue
		}
		if p.Type != tt.typ || p.Value != tt.value {
			t.Errorf("ParsePartial(%q) = %s %q", tt.in, p.Type, p.Value)
		}
	}

	for _, bad := range []string{"$", "$volume", "@", "#two"} {
		if _, err := ParsePartial(bad); err == nil {
			t.Errorf("ParsePartial(%q) succeeded", bad)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "mixer.yaml")
	jsonPath := filepath.Join(dir, "mixer.jsonc")
	if err := os.WriteFile(yamlPath, []byte(mixerYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonPath, []byte(mixerJSONC), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{yamlPath, jsonPath} {
		bp, err := ReadFile(p)
		if err != nil {
			t.Errorf("ReadFile(%s): %v", p, err)
			continue
		}
		if bp.Root.Name != "mixer" || len(bp.Root.Children) != 2 {
			t.Errorf("%s: unexpected root %+v", p, bp.Root)
		}
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
