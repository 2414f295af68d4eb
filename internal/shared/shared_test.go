package shared

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected unique IDs")
	}
	if len(strings.Split(a, "-")) != 5 {
		t.Errorf("expected UUID format, got %s", a)
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]any{"title": "Arrival", "id": 329865}

	t.Run("Compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(string(out), "\n") {
			t.Error("compact output should not contain newlines")
		}
	})

	t.Run("Pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), "\n  ") {
			t.Error("pretty output should be indented")
		}
	})

	t.Run("Unmarshalable Value", func(t *testing.T) {
		if _, err := MarshalJSON(func() {}, false); err == nil {
			t.Error("expected error for unmarshalable value")
		}
	})
}
