package classify

import (
	"context"
	"strings"

	"github.com/fire-triage/backend/internal/models"
)

// Input carries the ticket attributes the classification service sees.
type Input struct {
	Description string
	Segment     string
	Country     string
	Region      string
}

type Classifier interface {
	Classify(ctx context.Context, in Input) (models.Classification, error)
}

// Raw is a classification response before validation. Priority is nil when
// the service omitted it or returned something unparsable.
type Raw struct {
	TicketType     string
	Tone           string
	Priority       *int
	Language       string
	Summary        string
	Recommendation string
}

const (
	DefaultType     = "Консультация"
	DefaultTone     = "Нейтральный"
	DefaultPriority = 5
	DefaultLanguage = "RU"
)

var validTypes = map[string]struct{}{
	"Жалоба":                        {},
	"Смена данных":                  {},
	"Консультация":                  {},
	"Претензия":                     {},
	"Неработоспособность приложения": {},
	"Мошеннические действия":        {},
	"Спам":                          {},
}

var validTones = map[string]struct{}{
	"Позитивный": {},
	"Нейтральный": {},
	"Негативный": {},
}

var validLanguages = map[string]struct{}{
	"RU":  {},
	"KZ":  {},
	"ENG": {},
}

// Normalize validates every field against its closed set and substitutes
// the safe default for anything out of range. A malformed field never
// rejects the whole record.
func Normalize(raw Raw) models.Classification {
	out := models.Classification{
		TicketType:     strings.TrimSpace(raw.TicketType),
		Tone:           strings.TrimSpace(raw.Tone),
		Language:       normalizeLanguage(raw.Language),
		Summary:        strings.TrimSpace(raw.Summary),
		Recommendation: strings.TrimSpace(raw.Recommendation),
	}

	if _, ok := validTypes[out.TicketType]; !ok {
		out.TicketType = DefaultType
	}
	if _, ok := validTones[out.Tone]; !ok {
		out.Tone = DefaultTone
	}
	if _, ok := validLanguages[out.Language]; !ok {
		out.Language = DefaultLanguage
	}

	if raw.Priority == nil {
		out.Priority = DefaultPriority
	} else {
		out.Priority = clampPriority(*raw.Priority)
	}
	return out
}

func clampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

func normalizeLanguage(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch v {
	case "RU", "RUS", "RUSSIAN":
		return "RU"
	case "KZ", "KAZ", "KAZAKH":
		return "KZ"
	case "EN", "ENG", "ENGLISH":
		return "ENG"
	default:
		return v
	}
}
