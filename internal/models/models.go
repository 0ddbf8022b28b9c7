package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	ID     uuid.UUID `json:"id"`
	GUID   uuid.UUID `json:"guid"`
	Status Status    `json:"status"`

	Gender      string `json:"gender,omitempty"`
	BirthDate   string `json:"birth_date,omitempty"`
	Description string `json:"description"`
	Attachment  string `json:"attachment,omitempty"`
	Segment     string `json:"segment"`
	Country     string `json:"country"`
	Region      string `json:"region"`
	City        string `json:"city"`
	Street      string `json:"street"`
	House       string `json:"house"`

	TicketType     string `json:"ticket_type,omitempty"`
	Tone           string `json:"tone,omitempty"`
	Priority       int    `json:"priority,omitempty"`
	Language       string `json:"language,omitempty"`
	Summary        string `json:"summary,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`

	AssignedManagerID *uuid.UUID `json:"assigned_manager_id,omitempty"`
	AssignedOfficeID  *uuid.UUID `json:"assigned_office_id,omitempty"`

	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

type Office struct {
	ID      uuid.UUID `json:"id"`
	City    string    `json:"city"`
	Address string    `json:"address"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
}

type Manager struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position string    `json:"position"`
	OfficeID uuid.UUID `json:"office_id"`
	Skills   []string  `json:"skills"`
	Workload int       `json:"workload"`
}

func (m Manager) HasSkill(skill string) bool {
	for _, s := range m.Skills {
		if strings.EqualFold(strings.TrimSpace(s), skill) {
			return true
		}
	}
	return false
}

// RoundRobinState is the persisted per-office rotation pointer. The slot
// value is meaningful only modulo the candidate-set size at pick time.
type RoundRobinState struct {
	OfficeID uuid.UUID `json:"office_id"`
	Slot     int       `json:"slot"`
}

// Classification is the normalized output of the classification service.
type Classification struct {
	TicketType     string `json:"ticket_type"`
	Tone           string `json:"tone"`
	Priority       int    `json:"priority"`
	Language       string `json:"language"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}
