package dictionary

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	input := `{"javascript": "JavaScript", "github": "GitHub", "ios": "iOS", "Mac OS": "macOS"}`
	d, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Entry{
		{"javascript", "JavaScript"},
		{"github", "GitHub"},
		{"ios", "iOS"},
		{"Mac OS", "macOS"},
	}
	if diff := cmp.Diff(want, d.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	d, err := Parse(strings.NewReader(`{"a": "1", "b": "2", "a": "3"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Entry{{"a", "3"}, {"b", "2"}}
	if diff := cmp.Diff(want, d.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `["a", "b"]`},
		{"non-string value", `{"a": 1}`},
		{"truncated", `{"a": "b"`},
		{"trailing data", `{"a": "b"} {}`},
		{"empty", ``},
		{"not json", `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestParse_EmptyObject(t *testing.T) {
	d, err := Parse(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("expected 0 entries, got %d", d.Len())
	}
}

func TestAll_StopsEarly(t *testing.T) {
	d := New(Entry{"a", "A"}, Entry{"b", "B"}, Entry{"c", "C"})
	var seen []string
	for k := range d.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	if diff := cmp.Diff([]string{"a", "b"}, seen); diff != "" {
		t.Errorf("iteration mismatch (-want +got):\n%s", diff)
	}
}

func TestNilDictionary(t *testing.T) {
	var d *Dictionary
	if d.Len() != 0 {
		t.Errorf("expected nil dictionary to be empty")
	}
	for range d.All() {
		t.Fatal("expected no entries")
	}
}

func TestLoadOrEmpty(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	good := filepath.Join(dir, "dictionary.json")
	if err := os.WriteFile(good, []byte(`{"wechat": "WeChat"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(bad, []byte(`{"wechat": `), 0o644); err != nil {
		t.Fatal(err)
	}

	if n := LoadOrEmpty(good, log).Len(); n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
	if n := LoadOrEmpty(bad, log).Len(); n != 0 {
		t.Errorf("expected empty dictionary for malformed file, got %d entries", n)
	}
	if n := LoadOrEmpty(filepath.Join(dir, "missing.json"), log).Len(); n != 0 {
		t.Errorf("expected empty dictionary for missing file, got %d entries", n)
	}
}
