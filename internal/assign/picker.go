package assign

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/fire-triage/backend/internal/models"
)

// RotationStore persists the per-office rotation slot. Slot reads and
// writes must happen inside the same transaction as the workload update;
// the db-backed implementation relies on the office row lock for that.
type RotationStore interface {
	Slot(ctx context.Context, officeID uuid.UUID) (int, error)
	SetSlot(ctx context.Context, officeID uuid.UUID, slot int) error
}

// Picker alternates between the two least-loaded candidates of an office.
// Picking only the single least-loaded manager would starve the runner-up,
// so the rotation covers both.
type Picker struct {
	Rotation RotationStore
}

func (p *Picker) Pick(ctx context.Context, office models.Office, candidates []models.Manager) (models.Manager, error) {
	if len(candidates) == 0 {
		return models.Manager{}, fmt.Errorf("no candidates for office %s", office.City)
	}

	top2 := TopTwo(candidates)

	slot, err := p.Rotation.Slot(ctx, office.ID)
	if err != nil {
		return models.Manager{}, err
	}

	chosen := top2[mod(slot, len(top2))]
	if err := p.Rotation.SetSlot(ctx, office.ID, mod(slot+1, len(top2))); err != nil {
		return models.Manager{}, err
	}
	return chosen, nil
}

// TopTwo returns the at most two lowest-workload candidates, ties broken by
// name then id so the order is stable across workers.
func TopTwo(candidates []models.Manager) []models.Manager {
	sorted := make([]models.Manager, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Workload != sorted[j].Workload {
			return sorted[i].Workload < sorted[j].Workload
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	if len(sorted) > 2 {
		sorted = sorted[:2]
	}
	return sorted
}

// mod keeps the index non-negative even if a stored slot predates a shrink
// of the candidate set.
func mod(v, size int) int {
	return ((v % size) + size) % size
}
