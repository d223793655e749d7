package tosc

import (
	"encoding/json"
	"strings"
	"testing"
)

// ============================================================
// JSON Export Tests
// ============================================================

type exportedControl struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Opaque     bool   `json:"opaque"`
	Markup     string `json:"markup"`
	Properties []struct {
		Key   string `json:"key"`
		Type  string `json:"type"`
		Value any    `json:"value"`
	} `json:"properties"`
	Values []struct {
		Key         string `json:"key"`
		Default     any    `json:"default"`
		DefaultPull int64  `json:"defaultPull"`
	} `json:"values"`
	Messages []struct {
		Tag  string         `json:"tag"`
		Body map[string]any `json:"body"`
	} `json:"messages"`
	Children []exportedControl `json:"children"`
}

func TestDocumentJSON(t *testing.T) {
	d := mustParse(t, sampleLayout)
	data, err := d.JSON()
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		Version string          `json:"version"`
		Root    exportedControl `json:"root"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	if got.Version != "3" || got.Root.Type != "GROUP" || got.Root.ID != "root-id" || len(got.Root.Children) != 2 {
		t.Fatalf("root = %+v", got.Root)
	}

	fader := got.Root.Children[0]
	if fader.Name != "volume" || len(fader.Properties) != 4 {
		t.Fatalf("fader = %+v", fader)
	}
	if p := fader.Properties[1]; p.Key != "color" || p.Type != "c" {
		t.Errorf("second property = %+v", p)
	} else if c, ok := p.Value.(map[string]any); !ok || c["g"] != 0.5 {
		t.Errorf("color value = %#v", p.Value)
	}
	if p := fader.Properties[2]; p.Value != true {
		t.Errorf("cursor value = %#v", p.Value)
	}
	if v := fader.Values[0]; v.Key != "x" || v.Default != 0.75 || v.DefaultPull != 50 {
		t.Errorf("value = %+v", v)
	}
	if len(fader.Messages) != 2 || fader.Messages[0].Tag != "osc" || fader.Messages[1].Tag != "midi" {
		t.Fatalf("messages = %+v", fader.Messages)
	}
	if fader.Messages[0].Body["Connections"] != "00001" {
		t.Errorf("osc body = %v", fader.Messages[0].Body)
	}

	ghost := got.Root.Children[1]
	if !ghost.Opaque || !strings.Contains(ghost.Markup, `<whatever a="1"/>`) {
		t.Errorf("opaque control = %+v", ghost)
	}
}

func TestDocumentJSON_Scratch(t *testing.T) {
	d, err := FromScratch(TypeGroup)
	if err != nil {
		t.Fatal(err)
	}
	btn, _ := CreateChild(d.Root(), TypeButton)
	btn.SetName(`say "hi"`)

	data, err := d.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Fatalf("invalid JSON:\n%s", data)
	}
	if !strings.Contains(string(data), `"name": "say \"hi\""`) {
		t.Errorf("escaped name missing:\n%s", data)
	}
}
