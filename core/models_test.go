package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %s vs %s", id1, id2)
			}
			if len(id1) != 16 {
				t.Errorf("IDFromContent() length = %d, want 16 hex chars", len(id1))
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestItem_EmbeddingText(t *testing.T) {
	item := &Item{
		ID:      "abc",
		Title:   "The Grudge",
		Year:    2020,
		Cast:    []string{"Andrea Riseborough"},
		Genres:  []string{"Horror", "Supernatural"},
		Extract: "A house is cursed.",
		Vector:  []float32{0.1, 0.2},
	}

	text := item.EmbeddingText()

	if strings.Contains(text, `"id"`) {
		t.Errorf("EmbeddingText() should not contain id: %s", text)
	}
	if strings.Contains(text, `"vector"`) {
		t.Errorf("EmbeddingText() should not contain vector: %s", text)
	}

	var payload Payload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("EmbeddingText() is not valid JSON: %v", err)
	}
	if payload.Title != "The Grudge" || payload.Year != 2020 {
		t.Errorf("EmbeddingText() round trip = %+v", payload)
	}
}

func TestItem_SourceHash(t *testing.T) {
	item := &Item{Title: "Tenet", Year: 2020}
	before := item.SourceHash()

	item.Vector = []float32{1, 2, 3}
	if item.SourceHash() != before {
		t.Errorf("SourceHash() changed when only the vector changed")
	}

	item.Extract = "Time inversion."
	if item.SourceHash() == before {
		t.Errorf("SourceHash() did not change when the payload changed")
	}
}

func TestItem_IdentityKey(t *testing.T) {
	item := &Item{Title: "Soul", Year: 2020}
	if got := item.IdentityKey(); got != "Soul|2020" {
		t.Errorf("IdentityKey() = %q, want %q", got, "Soul|2020")
	}
}

func TestItem_JSONOmitsEmptyVector(t *testing.T) {
	data, err := json.Marshal(&Item{ID: "x", Title: "Onward", Year: 2020})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "vector") {
		t.Errorf("Marshal() = %s, want no vector field", data)
	}
}

func TestSession_State(t *testing.T) {
	tests := []struct {
		name  string
		turns int
		want  SessionState
	}{
		{name: "fresh session", turns: 0, want: SessionNew},
		{name: "one turn", turns: 1, want: SessionActive},
		{name: "many turns", turns: 12, want: SessionActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Turns: tt.turns}
			if got := s.State(); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}
