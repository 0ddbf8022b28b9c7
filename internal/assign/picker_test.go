package assign

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/fire-triage/backend/internal/models"
)

// memRotation is an in-memory RotationStore for tests.
type memRotation struct {
	slots map[uuid.UUID]int
}

func newMemRotation() *memRotation {
	return &memRotation{slots: map[uuid.UUID]int{}}
}

func (r *memRotation) Slot(ctx context.Context, officeID uuid.UUID) (int, error) {
	return r.slots[officeID], nil
}

func (r *memRotation) SetSlot(ctx context.Context, officeID uuid.UUID, slot int) error {
	r.slots[officeID] = slot
	return nil
}

func TestTopTwoOrdersByWorkload(t *testing.T) {
	candidates := []models.Manager{
		mgr("Айгерим", "Специалист", 5),
		mgr("Болат", "Специалист", 0),
		mgr("Гульнара", "Специалист", 1),
	}
	top := TopTwo(candidates)
	if len(top) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(top))
	}
	if top[0].Name != "Болат" || top[1].Name != "Гульнара" {
		t.Fatalf("unexpected top two: %v", names(top))
	}
}

func TestTopTwoTieBreakByName(t *testing.T) {
	candidates := []models.Manager{
		mgr("Гульнара", "Специалист", 2),
		mgr("Айгерим", "Специалист", 2),
		mgr("Болат", "Специалист", 2),
	}
	top := TopTwo(candidates)
	if top[0].Name != "Айгерим" || top[1].Name != "Болат" {
		t.Fatalf("unexpected tie break order: %v", names(top))
	}
}

func TestTopTwoSingleCandidate(t *testing.T) {
	top := TopTwo([]models.Manager{mgr("Айгерим", "Специалист", 7)})
	if len(top) != 1 || top[0].Name != "Айгерим" {
		t.Fatalf("unexpected result: %v", names(top))
	}
}

func TestPickAlternatesBetweenTopTwo(t *testing.T) {
	office := models.Office{ID: uuid.New(), City: "Алматы"}
	candidates := []models.Manager{
		mgr("Айгерим", "Специалист", 0),
		mgr("Болат", "Специалист", 1),
		mgr("Гульнара", "Специалист", 5),
	}
	p := &Picker{Rotation: newMemRotation()}

	counts := map[string]int{}
	for i := 0; i < 10; i++ {
		chosen, err := p.Pick(context.Background(), office, candidates)
		if err != nil {
			t.Fatalf("pick %d: %v", i, err)
		}
		counts[chosen.Name]++
	}

	if counts["Гульнара"] != 0 {
		t.Fatalf("expected the heavy-loaded manager to never be picked, got %v", counts)
	}
	if counts["Айгерим"] != 5 || counts["Болат"] != 5 {
		t.Fatalf("expected a 5/5 split between the top two, got %v", counts)
	}
}

func TestPickSlotIsPerOffice(t *testing.T) {
	rotation := newMemRotation()
	p := &Picker{Rotation: rotation}
	almaty := models.Office{ID: uuid.New(), City: "Алматы"}
	astana := models.Office{ID: uuid.New(), City: "Астана"}
	candidates := []models.Manager{
		mgr("Айгерим", "Специалист", 0),
		mgr("Болат", "Специалист", 1),
	}

	first, err := p.Pick(context.Background(), almaty, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The other office starts from its own slot zero.
	second, err := p.Pick(context.Background(), astana, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name != second.Name {
		t.Fatalf("expected both offices to start at the same slot, got %s vs %s", first.Name, second.Name)
	}
	if rotation.slots[almaty.ID] != 1 || rotation.slots[astana.ID] != 1 {
		t.Fatalf("expected both slots advanced to 1, got %v", rotation.slots)
	}
}

func TestPickStaleSlotShrunkSet(t *testing.T) {
	office := models.Office{ID: uuid.New(), City: "Алматы"}
	rotation := newMemRotation()
	rotation.slots[office.ID] = 7
	p := &Picker{Rotation: rotation}

	// Single candidate, stored slot larger than the set.
	chosen, err := p.Pick(context.Background(), office, []models.Manager{mgr("Айгерим", "Специалист", 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chosen.Name != "Айгерим" {
		t.Fatalf("unexpected pick: %s", chosen.Name)
	}
}

func TestPickNoCandidates(t *testing.T) {
	p := &Picker{Rotation: newMemRotation()}
	if _, err := p.Pick(context.Background(), models.Office{ID: uuid.New()}, nil); err == nil {
		t.Fatalf("expected error for empty candidate set")
	}
}
