package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fire-triage/backend/internal/models"
)

// OllamaClassifier calls a local Ollama instance and asks it to return the
// analysis as a single JSON object.
type OllamaClassifier struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// ollamaFields mirrors the JSON object the prompt asks the model for. The
// field names are Russian because the prompt is.
type ollamaFields struct {
	Type           string          `json:"тип"`
	Tone           string          `json:"тональность"`
	Priority       json.RawMessage `json:"приоритет"`
	Language       string          `json:"язык"`
	Summary        string          `json:"резюме"`
	Recommendation string          `json:"рекомендация"`
}

func (o OllamaClassifier) Classify(ctx context.Context, in Input) (models.Classification, error) {
	if o.Client == nil {
		o.Client = &http.Client{Timeout: 30 * time.Second}
	}

	body, _ := json.Marshal(ollamaRequest{
		Model:  o.Model,
		Prompt: buildPrompt(in),
		Stream: false,
		Format: "json",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL, bytes.NewReader(body))
	if err != nil {
		return models.Classification{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return models.Classification{}, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Classification{}, fmt.Errorf("ollama http error: %s", resp.Status)
	}

	var envelope ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return models.Classification{}, fmt.Errorf("ollama response decode: %w", err)
	}

	var fields ollamaFields
	if err := json.Unmarshal([]byte(strings.TrimSpace(envelope.Response)), &fields); err != nil {
		return models.Classification{}, fmt.Errorf("ollama payload decode: %w", err)
	}

	return Normalize(Raw{
		TicketType:     fields.Type,
		Tone:           fields.Tone,
		Priority:       parsePriority(fields.Priority),
		Language:       fields.Language,
		Summary:        fields.Summary,
		Recommendation: fields.Recommendation,
	}), nil
}

// parsePriority accepts a JSON number or a numeric string; anything else
// yields nil so Normalize falls back to the default.
func parsePriority(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		p := int(n)
		return &p
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if p, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return &p
		}
	}
	return nil
}

func buildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("Ты ассистент службы поддержки брокера.\n")
	b.WriteString("Проанализируй обращение клиента и верни ТОЛЬКО JSON без пояснений.\n\n")
	fmt.Fprintf(&b, "Сегмент: %s\n", in.Segment)
	fmt.Fprintf(&b, "Страна/Регион: %s, %s\n", in.Country, in.Region)
	fmt.Fprintf(&b, "Обращение: %s\n\n", in.Description)
	b.WriteString("Допустимые значения:\n")
	b.WriteString(`  тип: "Жалоба"|"Смена данных"|"Консультация"|"Претензия"|"Неработоспособность приложения"|"Мошеннические действия"|"Спам"` + "\n")
	b.WriteString(`  тональность: "Позитивный"|"Нейтральный"|"Негативный"` + "\n")
	b.WriteString("  приоритет: целое число от 1 до 10\n")
	b.WriteString(`  язык: "RU"|"KZ"|"ENG" — язык текста обращения` + "\n\n")
	b.WriteString("Верни JSON:\n")
	b.WriteString("{\n")
	b.WriteString(`  "тип": "...",` + "\n")
	b.WriteString(`  "тональность": "...",` + "\n")
	b.WriteString(`  "приоритет": 5,` + "\n")
	b.WriteString(`  "язык": "...",` + "\n")
	b.WriteString(`  "резюме": "1-2 предложения о сути проблемы",` + "\n")
	b.WriteString(`  "рекомендация": "что конкретно должен сделать менеджер"` + "\n")
	b.WriteString("}")
	return b.String()
}
