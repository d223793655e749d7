package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/AlbertoV5/tosclib/lexml"
)

func sampleTree() *lexml.Node {
	root := lexml.New("lexml")
	root.SetAttr("version", "3")
	node := lexml.New("node")
	node.SetAttr("ID", "0f0e")
	node.SetAttr("type", "GROUP")
	prop := lexml.New("property")
	prop.SetAttr("type", "s")
	prop.AppendText("key", "script")
	prop.AppendText("value", "function onValueChanged(k)\n  print(k & 1)\nend")
	node.Append(lexml.New("properties").Append(prop), lexml.New("values"), lexml.New("messages"))
	return root.Append(node)
}

// ============================================================
// Round Trip Tests
// ============================================================

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tree := sampleTree()
	data := Encode(tree)

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !tree.Equal(got) {
		t.Errorf("round trip mismatch:\n%s\n%s", lexml.Emit(tree), lexml.Emit(got))
	}
}

func TestEncode_Deterministic(t *testing.T) {
	a := Encode(sampleTree())
	b := Encode(sampleTree())
	if !bytes.Equal(a, b) {
		t.Error("Encode is not deterministic")
	}
}

func TestEncode_ZlibFraming(t *testing.T) {
	data := Encode(sampleTree())
	if len(data) < 6 {
		t.Fatalf("encoded stream too short: %d", len(data))
	}
	// CMF byte: deflate with a 32K window.
	if data[0] != 0x78 {
		t.Errorf("CMF = %#x, want 0x78", data[0])
	}
	if (uint16(data[0])<<8|uint16(data[1]))%31 != 0 {
		t.Error("FCHECK does not validate the header")
	}
}

func TestEncode_Levels(t *testing.T) {
	tree := sampleTree()
	fast := Encode(tree, WithLevel(zlib.BestSpeed))
	best := Encode(tree, WithLevel(zlib.BestCompression))
	for _, data := range [][]byte{fast, best} {
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !tree.Equal(got) {
			t.Error("level changed the decoded tree")
		}
	}
	if Fingerprint(tree) != Fingerprint(mustDecode(t, fast)) {
		t.Error("fingerprint depends on compression level")
	}
}

func TestEncode_InvalidLevelFallsBack(t *testing.T) {
	data := Encode(sampleTree(), WithLevel(42))
	if _, err := Decode(data); err != nil {
		t.Fatalf("fallback stream does not decode: %v", err)
	}
}

func TestEncodeTo_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, sampleTree(), WithLevel(42)); err == nil {
		t.Error("expected error for invalid level")
	}
}

// ============================================================
// Format Error Tests
// ============================================================

func expectStage(t *testing.T, err error, stage Stage) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not *FormatError: %v", err, err)
	}
	if fe.Stage != stage {
		t.Errorf("stage = %s, want %s (%v)", fe.Stage, stage, err)
	}
}

func TestDecode_BadHeader(t *testing.T) {
	_, err := Decode([]byte("<lexml version=\"3\"/>"))
	expectStage(t, err, StageHeader)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(nil)
	expectStage(t, err, StageHeader)
}

func TestDecode_Truncated(t *testing.T) {
	data := Encode(sampleTree())
	_, err := Decode(data[:len(data)-6])
	expectStage(t, err, StageInflate)
	if !strings.Contains(err.Error(), "truncated") {
		t.Errorf("error does not mention truncation: %v", err)
	}
}

func TestDecode_MissingTrailer(t *testing.T) {
	data := Encode(sampleTree())
	_, err := Decode(data[:len(data)-2])
	expectStage(t, err, StageInflate)
}

func TestDecode_BadChecksum(t *testing.T) {
	data := Encode(sampleTree())
	data[len(data)-1] ^= 0xff
	_, err := Decode(data)
	expectStage(t, err, StageInflate)
	if !errors.Is(err, zlib.ErrChecksum) {
		t.Errorf("expected ErrChecksum in chain: %v", err)
	}
}

func TestDecode_MalformedMarkup(t *testing.T) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte("<lexml><node></lexml>"))
	zw.Close()

	_, err := Decode(buf.Bytes())
	expectStage(t, err, StageMarkup)
	var se *lexml.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("markup error does not wrap *lexml.SyntaxError: %v", err)
	}
}

func TestDecode_SizeLimit(t *testing.T) {
	data := Encode(sampleTree())
	_, err := Decode(data, WithMaxSize(16))
	expectStage(t, err, StageLimit)

	if _, err := Decode(data, WithMaxSize(1<<20)); err != nil {
		t.Errorf("Decode within limit failed: %v", err)
	}
}

func TestDecodeMarkup(t *testing.T) {
	tree := sampleTree()
	got, err := DecodeMarkup(EncodeMarkup(tree))
	if err != nil {
		t.Fatalf("DecodeMarkup failed: %v", err)
	}
	if !tree.Equal(got) {
		t.Error("markup round trip mismatch")
	}
}

// ============================================================
// Hash Tests
// ============================================================

func TestFingerprint(t *testing.T) {
	a := Fingerprint(sampleTree())
	b := Fingerprint(sampleTree())
	if a != b {
		t.Error("fingerprint is not stable")
	}

	changed := sampleTree()
	changed.Children[0].SetAttr("type", "PAGER")
	if Fingerprint(changed) == a {
		t.Error("fingerprint ignores attribute change")
	}

	text := FormatFingerprint(a)
	if len(text) != 64 || strings.ToLower(text) != text {
		t.Fatalf("formatted fingerprint = %q", text)
	}
	back, err := ParseFingerprint(strings.ToUpper(text))
	if err != nil || back != a {
		t.Errorf("ParseFingerprint(upper) = %x, %v", back, err)
	}
	for _, bad := range []string{"zz", "", text[:62], text + "00", "g" + text[1:]} {
		if _, err := ParseFingerprint(bad); err == nil {
			t.Errorf("ParseFingerprint(%q) succeeded", bad)
		}
	}
}

func mustDecode(t *testing.T, data []byte) *lexml.Node {
	t.Helper()
	n, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return n
}
