package assign

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/fire-triage/backend/internal/db"
	"github.com/fire-triage/backend/internal/models"
)

var (
	ErrOfficeNotFound = errors.New("office not found")
	ErrNoManagers     = errors.New("no managers available")
)

// Outcome is the result of one assignment decision.
type Outcome struct {
	Manager models.Manager
	Office  models.Office
}

// Engine composes candidate selection and the round-robin pick into a
// single transactional operation: lock the office, narrow, pick, advance
// the rotation slot, bump the workload and mark the ticket DONE. A crash
// anywhere inside rolls the whole decision back.
type Engine struct {
	Store  *db.Store
	Logger zerolog.Logger
}

func (e *Engine) Complete(ctx context.Context, t models.Ticket, cl models.Classification, officeCity string) (Outcome, error) {
	var out Outcome
	err := e.Store.WithTx(ctx, func(tx pgx.Tx) error {
		office, err := e.Store.OfficeByCityForUpdateTx(ctx, tx, officeCity)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrOfficeNotFound, officeCity)
		}
		if err != nil {
			return err
		}

		roster, err := e.Store.ManagersByOfficeTx(ctx, tx, office.ID)
		if err != nil {
			return err
		}
		if len(roster) == 0 {
			// office has no staff at all; fall back to the global roster
			roster, err = e.Store.AllManagersTx(ctx, tx)
			if err != nil {
				return err
			}
			if len(roster) == 0 {
				return ErrNoManagers
			}
			e.Logger.Warn().
				Str("office", office.City).
				Str("ticket_id", t.ID.String()).
				Msg("office has no managers, using global roster")
		}

		candidates := Narrow(roster, Criteria{
			TicketType: cl.TicketType,
			Segment:    t.Segment,
			Language:   cl.Language,
		})

		picker := Picker{Rotation: &txRotation{store: e.Store, tx: tx}}
		chosen, err := picker.Pick(ctx, office, candidates)
		if err != nil {
			return err
		}

		if err := e.Store.IncrementWorkloadTx(ctx, tx, chosen.ID); err != nil {
			return err
		}
		if err := e.Store.CompleteTicketTx(ctx, tx, t.ID, cl, chosen.ID, office.ID); err != nil {
			return err
		}

		chosen.Workload++
		out = Outcome{Manager: chosen, Office: office}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	e.Logger.Info().
		Str("ticket_id", t.ID.String()).
		Str("manager", out.Manager.Name).
		Str("office", out.Office.City).
		Int("workload", out.Manager.Workload).
		Msg("ticket assigned")
	return out, nil
}

// txRotation binds the rotation state to the engine's transaction.
type txRotation struct {
	store *db.Store
	tx    pgx.Tx
}

func (r *txRotation) Slot(ctx context.Context, officeID uuid.UUID) (int, error) {
	return r.store.RotationSlotTx(ctx, r.tx, officeID)
}

func (r *txRotation) SetSlot(ctx context.Context, officeID uuid.UUID, slot int) error {
	return r.store.SetRotationSlotTx(ctx, r.tx, officeID, slot)
}
