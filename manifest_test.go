package dmi

import (
	"strings"
	"testing"
)

func mustParseManifest(t *testing.T, text string) *Manifest {
	t.Helper()
	m, err := ParseManifest([]byte(text))
	if err != nil {
		t.Fatalf("ParseManifest(%q): %v", text, err)
	}
	return m
}

func TestParseManifestHeaderDefaults(t *testing.T) {
	m := mustParseManifest(t, "# BEGIN DMI\nversion = 4.0\n# END DMI\n")
	if m.Version != "4.0" {
		t.Errorf("Version = %q, want 4.0", m.Version)
	}
	if m.Width != 32 || m.Height != 32 {
		t.Errorf("Width/Height = %d/%d, want 32/32 (defaults)", m.Width, m.Height)
	}
}

func TestParseManifestHeaderWidthHeightEitherOrder(t *testing.T) {
	m1 := mustParseManifest(t, "# BEGIN DMI\nversion = 4.0\n\twidth = 16\n\theight = 48\n# END DMI\n")
	if m1.Width != 16 || m1.Height != 48 {
		t.Fatalf("width/height = %d/%d, want 16/48", m1.Width, m1.Height)
	}
	m2 := mustParseManifest(t, "# BEGIN DMI\nversion = 4.0\n\theight = 48\n\twidth = 16\n# END DMI\n")
	if m2.Width != 16 || m2.Height != 48 {
		t.Fatalf("width/height (reversed) = %d/%d, want 16/48", m2.Width, m2.Height)
	}
}

func TestParseManifestRejectsMissingBeginMarker(t *testing.T) {
	_, err := ParseManifest([]byte("version = 4.0\n# END DMI\n"))
	assertKind(t, err, KindManifestSyntax)
}

func TestParseManifestRejectsZeroWidth(t *testing.T) {
	_, err := ParseManifest([]byte("# BEGIN DMI\nversion = 4.0\n\twidth = 0\n# END DMI\n"))
	assertKind(t, err, KindGeneric)
}

func TestParseManifestStateAttributes(t *testing.T) {
	text := `# BEGIN DMI
version = 4.0
state = "walk"
	dirs = 4
	frames = 2
	delay = 1,2.5
	loop = 3
	rewind = 1
	movement = 1
	hotspot = 5,7,1
	custom = unrecognized
# END DMI
`
	m := mustParseManifest(t, text)
	if len(m.States) != 1 {
		t.Fatalf("States = %d, want 1", len(m.States))
	}
	st := m.States[0]
	if st.Name != "walk" || st.Dirs != 4 || st.Frames != 2 {
		t.Fatalf("state = %+v", st)
	}
	if len(st.Delay) != 2 || st.Delay[0] != 1.0 || st.Delay[1] != 2.5 {
		t.Fatalf("Delay = %v, want [1 2.5]", st.Delay)
	}
	if n, ok := st.Loop.NTimes(); !ok || n != 3 {
		t.Fatalf("Loop = %+v, want NTimes(3)", st.Loop)
	}
	if !st.Rewind || !st.Movement {
		t.Fatalf("Rewind/Movement = %v/%v, want true/true", st.Rewind, st.Movement)
	}
	if st.Hotspot == nil || st.Hotspot.X != 5 || st.Hotspot.Y != 7 {
		t.Fatalf("Hotspot = %+v, want {5 7}", st.Hotspot)
	}
	if len(st.UnknownSettings) != 1 || st.UnknownSettings[0].Key != "\tcustom" || st.UnknownSettings[0].Value != "unrecognized" {
		t.Fatalf("UnknownSettings = %v", st.UnknownSettings)
	}
}

func TestParseManifestMultipleStatesInOrder(t *testing.T) {
	text := "# BEGIN DMI\nversion = 4.0\nstate = \"a\"\n\tdirs = 1\n\tframes = 1\nstate = \"b\"\n\tdirs = 1\n\tframes = 1\n# END DMI\n"
	m := mustParseManifest(t, text)
	if len(m.States) != 2 || m.States[0].Name != "a" || m.States[1].Name != "b" {
		t.Fatalf("States = %+v", m.States)
	}
}

func TestParseManifestRejectsBadDirsCount(t *testing.T) {
	text := "# BEGIN DMI\nversion = 4.0\nstate = \"s\"\n\tdirs = 3\n\tframes = 1\n# END DMI\n"
	_, err := ParseManifest([]byte(text))
	assertKind(t, err, KindGeneric)
}

func TestEmitManifestEscapesNameAndOmitsDefaultLoop(t *testing.T) {
	m := &Manifest{
		Version: "4.0",
		Width:   32,
		Height:  32,
		States: []ManifestState{
			{Name: `a\b"c`, Dirs: 1, Frames: 1, Loop: Indefinitely()},
		},
	}
	out, err := EmitManifest(m)
	if err != nil {
		t.Fatalf("EmitManifest: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, `state = "a\\b\"c"`) {
		t.Fatalf("expected escaped state name in output, got:\n%s", text)
	}
	if strings.Contains(text, "\tloop") {
		t.Fatalf("indefinite loop should not emit a loop line, got:\n%s", text)
	}
}

func TestEmitManifestRejectsDelayCountMismatch(t *testing.T) {
	m := &Manifest{
		Version: "4.0", Width: 32, Height: 32,
		States: []ManifestState{{Name: "s", Dirs: 1, Frames: 2, Delay: []float32{1}}},
	}
	_, err := EmitManifest(m)
	assertKind(t, err, KindGeneric)
}

func TestManifestEscapeRoundTrip(t *testing.T) {
	name := "\\\\ \\    \\\"\\t\\st\\\\\\T+e=5235=!\""
	m := &Manifest{
		Version: "4.0", Width: 32, Height: 32,
		States: []ManifestState{{Name: name, Dirs: 1, Frames: 1}},
	}
	out, err := EmitManifest(m)
	if err != nil {
		t.Fatalf("EmitManifest: %v", err)
	}
	reparsed, err := ParseManifest(out)
	if err != nil {
		t.Fatalf("ParseManifest(emitted): %v\n%s", err, out)
	}
	if reparsed.States[0].Name != name {
		t.Fatalf("round-tripped name = %q, want %q", reparsed.States[0].Name, name)
	}
}

func TestSplitKeyValue(t *testing.T) {
	key, value, err := splitKeyValue("version = 4.0")
	if err != nil || key != "version" || value != "4.0" {
		t.Fatalf("splitKeyValue = (%q, %q, %v)", key, value, err)
	}
}

func TestSplitKeyValueRejectsIllegalSpace(t *testing.T) {
	_, _, err := splitKeyValue("ver sion = 4.0")
	assertKind(t, err, KindBlockEntry)
}

func TestParseQuotedValueAllowsEmbeddedTabAndEquals(t *testing.T) {
	got, err := parseQuotedValue("\"a\tb=c\"")
	if err != nil {
		t.Fatalf("parseQuotedValue: %v", err)
	}
	if got != "a\tb=c" {
		t.Fatalf("parseQuotedValue = %q, want %q", got, "a\tb=c")
	}
}

func TestParseUnquotedValueRejectsBackslash(t *testing.T) {
	_, err := parseUnquotedValue(`a\b`)
	assertKind(t, err, KindGeneric)
}

func TestParseValueRequireQuotesRejectsBareValue(t *testing.T) {
	_, err := parseValue("bare", true, true)
	assertKind(t, err, KindGeneric)
}
