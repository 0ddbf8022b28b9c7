package classify

import (
	"context"
	"fmt"

	"github.com/fire-triage/backend/internal/models"
	"github.com/fire-triage/backend/internal/utils"
)

// MockClassifier produces deterministic output derived from the ticket
// description, for local runs without an Ollama instance.
type MockClassifier struct{}

func (MockClassifier) Classify(ctx context.Context, in Input) (models.Classification, error) {
	h := utils.HashStringToUint64(in.Description + "|" + in.Segment)

	priorities := []int{3, 5, 7, 9, 10}
	langs := []string{"RU", "KZ", "ENG"}
	types := []string{"Смена данных", "Жалоба", "Консультация", "Претензия"}
	tones := []string{"Позитивный", "Нейтральный", "Негативный"}

	// index in uint64 space: converting the hash to int first can go
	// negative and panic
	priority := priorities[h%uint64(len(priorities))]
	return Normalize(Raw{
		TicketType:     types[(h/13)%uint64(len(types))],
		Tone:           tones[(h/17)%uint64(len(tones))],
		Priority:       &priority,
		Language:       langs[(h/7)%uint64(len(langs))],
		Summary:        fmt.Sprintf("Автосводка: %.80s", in.Description),
		Recommendation: "Связаться с клиентом для уточнения деталей",
	}), nil
}
