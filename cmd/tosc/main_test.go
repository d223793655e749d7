package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlbertoV5/tosclib/codec"
	"github.com/AlbertoV5/tosclib/tosc"
)

const panelYAML = `
root:
  type: GROUP
  name: panel
  frame: [0, 0, 200, 100]
  children:
    - type: BUTTON
      name: master
      script: "function onValueChanged(k) print(k) end"
    - type: GROUP
      name: bank
      children:
        - type: FADER
          name: one
        - type: FADER
          name: two
`

// buildPanel compiles panelYAML into a .tosc file and returns its path.
func buildPanel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "panel.yaml")
	out := filepath.Join(dir, "panel.tosc")
	if err := os.WriteFile(src, []byte(panelYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run("build", []string{src, "-o", out}, nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	return out
}

func runOut(t *testing.T, cmd string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := run(cmd, args, strings.NewReader(""), &out); err != nil {
		t.Fatalf("%s %v: %v", cmd, args, err)
	}
	return out.String()
}

func TestDecodeEncode_RoundTrip(t *testing.T) {
	layout := buildPanel(t)
	markup := runOut(t, "decode", layout)
	if !strings.Contains(markup, `type="FADER"`) {
		t.Fatalf("decoded markup lacks controls:\n%s", markup)
	}

	var encoded bytes.Buffer
	if err := run("encode", nil, strings.NewReader(markup), &encoded); err != nil {
		t.Fatal(err)
	}
	original, _ := os.ReadFile(layout)
	a, err := tosc.Load(original)
	if err != nil {
		t.Fatal(err)
	}
	b, err := tosc.Load(encoded.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("decode then encode changed the layout")
	}
}

func TestEncode_RejectsSchemaErrors(t *testing.T) {
	bad := `<lexml version="3"><node ID="a" type="BOX"><properties>` +
		`<property type="b"><key>visible</key><value>maybe</value></property>` +
		`</properties></node></lexml>`
	err := run("encode", nil, strings.NewReader(bad), &bytes.Buffer{})
	var se *tosc.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if err := run("encode", []string{"--raw"}, strings.NewReader(bad), &bytes.Buffer{}); err != nil {
		t.Errorf("--raw: %v", err)
	}
}

func TestFind(t *testing.T) {
	layout := buildPanel(t)
	out := runOut(t, "find", "--type", "fader", layout)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[1], "\ttwo") {
		t.Errorf("find output:\n%s", out)
	}
	if got := runOut(t, "find", "--match", "o.*", layout); !strings.Contains(got, "\tone") || strings.Contains(got, "two") {
		t.Errorf("find --match output:\n%s", got)
	}
}

func TestValidateAndDump(t *testing.T) {
	layout := buildPanel(t)
	if out := runOut(t, "validate", layout); !strings.Contains(out, "0 errors") {
		t.Errorf("validate output:\n%s", out)
	}
	dump := runOut(t, "dump", layout)
	if !strings.Contains(dump, `    FADER "one"`) {
		t.Errorf("dump output:\n%s", dump)
	}
}

func TestValidate_ExpectFingerprint(t *testing.T) {
	layout := buildPanel(t)
	data, err := os.ReadFile(layout)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := tosc.Load(data)
	if err != nil {
		t.Fatal(err)
	}
	want := codec.FormatFingerprint(doc.Fingerprint())

	out := runOut(t, "validate", "--expect-fingerprint", strings.ToUpper(want), layout)
	if !strings.Contains(out, want) {
		t.Errorf("validate output lacks fingerprint:\n%s", out)
	}

	other := strings.Repeat("0", 64)
	err = run("validate", []string{"--expect-fingerprint", other, layout}, nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "fingerprint mismatch") {
		t.Errorf("mismatch: %v", err)
	}
	if err := run("validate", []string{"--expect-fingerprint", "abc", layout}, nil, &bytes.Buffer{}); err == nil {
		t.Error("short fingerprint accepted")
	}
}

func TestDump_JSON(t *testing.T) {
	layout := buildPanel(t)
	out := runOut(t, "dump", "--json", layout)

	type node struct {
		Type     string `json:"type"`
		Name     string `json:"name"`
		Children []node `json:"children"`
	}
	var got struct {
		Root node `json:"root"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("dump --json: %v\n%s", err, out)
	}
	if got.Root.Name != "panel" || len(got.Root.Children) != 2 {
		t.Fatalf("root = %+v", got.Root)
	}
	if bank := got.Root.Children[1]; bank.Name != "bank" || len(bank.Children) != 2 || bank.Children[1].Type != "FADER" {
		t.Errorf("bank = %+v", bank)
	}
}

func TestCopyScript(t *testing.T) {
	layout := buildPanel(t)
	out := filepath.Join(t.TempDir(), "edited.tosc")
	runOut(t, "copy-script", "--from", "master", "--to", "bank", "-o", out, layout)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := tosc.Load(data)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"one", "two"} {
		c := tosc.FindFirst(doc.Root(), tosc.ByName(name))
		if d, _ := c.Get("script"); !strings.HasPrefix(d.String(), "function onValueChanged") {
			t.Errorf("%s script = %q", name, d.String())
		}
	}

	err = run("copy-script", []string{"--from", "nobody", "--to", "bank", layout}, nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "nobody") {
		t.Errorf("missing source: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run("frobnicate", nil, nil, &bytes.Buffer{}); err == nil {
		t.Error("unknown command accepted")
	}
}
