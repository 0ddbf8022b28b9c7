package classify

import (
	"encoding/json"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestNormalizeValidRecord(t *testing.T) {
	out := Normalize(Raw{
		TicketType:     "Жалоба",
		Tone:           "Негативный",
		Priority:       intPtr(8),
		Language:       "KZ",
		Summary:        "Клиент недоволен комиссией",
		Recommendation: "Связаться и объяснить тарифы",
	})
	if out.TicketType != "Жалоба" || out.Tone != "Негативный" {
		t.Fatalf("unexpected type/tone: %+v", out)
	}
	if out.Priority != 8 || out.Language != "KZ" {
		t.Fatalf("unexpected priority/language: %+v", out)
	}
}

func TestNormalizeSubstitutesDefaults(t *testing.T) {
	out := Normalize(Raw{
		TicketType: "Что-то странное",
		Tone:       "Восторженный",
		Language:   "FR",
	})
	if out.TicketType != DefaultType {
		t.Fatalf("expected default type, got %q", out.TicketType)
	}
	if out.Tone != DefaultTone {
		t.Fatalf("expected default tone, got %q", out.Tone)
	}
	if out.Priority != DefaultPriority {
		t.Fatalf("expected default priority, got %d", out.Priority)
	}
	if out.Language != DefaultLanguage {
		t.Fatalf("expected default language, got %q", out.Language)
	}
}

func TestNormalizeClampsPriority(t *testing.T) {
	cases := []struct{ in, want int }{
		{15, 10},
		{11, 10},
		{10, 10},
		{1, 1},
		{0, 1},
		{-3, 1},
	}
	for _, c := range cases {
		out := Normalize(Raw{Priority: intPtr(c.in)})
		if out.Priority != c.want {
			t.Fatalf("priority %d: expected %d, got %d", c.in, c.want, out.Priority)
		}
	}
}

func TestNormalizeLanguageAliases(t *testing.T) {
	cases := map[string]string{
		"ru":      "RU",
		"RUS":     "RU",
		"kaz":     "KZ",
		"en":      "ENG",
		"English": "ENG",
		"  eng ":  "ENG",
	}
	for in, want := range cases {
		out := Normalize(Raw{Language: in})
		if out.Language != want {
			t.Fatalf("language %q: expected %q, got %q", in, want, out.Language)
		}
	}
}

func TestParsePriority(t *testing.T) {
	cases := []struct {
		raw  string
		want *int
	}{
		{`7`, intPtr(7)},
		{`"3"`, intPtr(3)},
		{`" 9 "`, intPtr(9)},
		{`"high"`, nil},
		{`null`, nil},
		{`[5]`, nil},
	}
	for _, c := range cases {
		got := parsePriority(json.RawMessage(c.raw))
		switch {
		case c.want == nil && got != nil:
			t.Fatalf("raw %s: expected nil, got %d", c.raw, *got)
		case c.want != nil && (got == nil || *got != *c.want):
			t.Fatalf("raw %s: expected %d, got %v", c.raw, *c.want, got)
		}
	}
	if parsePriority(nil) != nil {
		t.Fatalf("expected nil for empty raw message")
	}
}
