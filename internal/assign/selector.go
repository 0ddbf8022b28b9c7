package assign

import (
	"strings"

	"github.com/fire-triage/backend/internal/models"
)

const (
	// TypeDataChange requires the chief-specialist position.
	TypeDataChange = "Смена данных"
	// ChiefPosition is the privileged title for data-change tickets.
	ChiefPosition = "Главный специалист"
)

// Criteria are the ticket attributes that drive candidate selection.
type Criteria struct {
	TicketType string
	Segment    string
	Language   string
}

// A filterStep narrows the candidate pool. Steps are best-effort: one that
// would eliminate every candidate is skipped, leaving the previous set
// unchanged.
type filterStep struct {
	name    string
	applies bool
	keep    func(m models.Manager) bool
}

func selectionSteps(c Criteria) []filterStep {
	segment := strings.TrimSpace(c.Segment)
	language := strings.ToUpper(strings.TrimSpace(c.Language))

	return []filterStep{
		{
			name:    "vip_segment",
			applies: strings.EqualFold(segment, "VIP") || strings.EqualFold(segment, "Priority"),
			keep:    func(m models.Manager) bool { return m.HasSkill("VIP") },
		},
		{
			name:    "data_change_position",
			applies: strings.TrimSpace(c.TicketType) == TypeDataChange,
			keep: func(m models.Manager) bool {
				return strings.TrimSpace(m.Position) == ChiefPosition
			},
		},
		{
			name:    "language_skill",
			applies: language == "KZ" || language == "ENG",
			keep:    func(m models.Manager) bool { return m.HasSkill(language) },
		},
	}
}

// Narrow applies the selection rules in order, each step narrowing
// cumulatively and reverting when it would empty the set. The result is a
// best-effort progressive specialization: it is never empty unless the
// input roster itself is empty.
func Narrow(roster []models.Manager, c Criteria) []models.Manager {
	candidates := roster
	for _, step := range selectionSteps(c) {
		if !step.applies {
			continue
		}
		narrowed := keepMatching(candidates, step.keep)
		if len(narrowed) > 0 {
			candidates = narrowed
		}
	}
	if len(candidates) == 0 {
		return roster
	}
	return candidates
}

func keepMatching(managers []models.Manager, keep func(models.Manager) bool) []models.Manager {
	out := make([]models.Manager, 0, len(managers))
	for _, m := range managers {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
