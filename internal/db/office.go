package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fire-triage/backend/internal/models"
)

func (s *Store) ListOffices(ctx context.Context) ([]models.Office, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, city, address, lat, lon FROM offices ORDER BY city`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Office
	for rows.Next() {
		var o models.Office
		if err := rows.Scan(&o.ID, &o.City, &o.Address, &o.Lat, &o.Lon); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// OfficeByCityForUpdateTx locks the office row for the duration of the
// assignment transaction. The lock serializes concurrent assignments to the
// same office so the rotation slot and workload reads stay consistent.
func (s *Store) OfficeByCityForUpdateTx(ctx context.Context, tx pgx.Tx, city string) (models.Office, error) {
	var o models.Office
	err := tx.QueryRow(ctx, `
		SELECT id, city, address, lat, lon FROM offices WHERE city = $1 FOR UPDATE
	`, city).Scan(&o.ID, &o.City, &o.Address, &o.Lat, &o.Lon)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Office{}, ErrNotFound
	}
	return o, err
}

const managerColumns = `id, name, position, office_id, skills, workload`

func (s *Store) ListManagers(ctx context.Context, officeCity, skill string) ([]models.Manager, error) {
	query := `SELECT ` + qualify(managerColumns, "m") + ` FROM managers m`
	var args []any
	if officeCity != "" {
		args = append(args, officeCity)
		query += ` JOIN offices o ON o.id = m.office_id WHERE o.city = $1`
	}
	if skill != "" {
		args = append(args, skill)
		if len(args) == 1 {
			query += ` WHERE $1 = ANY(m.skills)`
		} else {
			query += ` AND $2 = ANY(m.skills)`
		}
	}
	query += ` ORDER BY m.workload ASC, m.name ASC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectManagers(rows)
}

func (s *Store) ManagersByOfficeTx(ctx context.Context, tx pgx.Tx, officeID uuid.UUID) ([]models.Manager, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+managerColumns+` FROM managers WHERE office_id = $1 ORDER BY workload ASC, name ASC
	`, officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectManagers(rows)
}

func (s *Store) AllManagersTx(ctx context.Context, tx pgx.Tx) ([]models.Manager, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+managerColumns+` FROM managers ORDER BY workload ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectManagers(rows)
}

func collectManagers(rows pgx.Rows) ([]models.Manager, error) {
	var out []models.Manager
	for rows.Next() {
		var m models.Manager
		if err := rows.Scan(&m.ID, &m.Name, &m.Position, &m.OfficeID, &m.Skills, &m.Workload); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) InsertManagers(ctx context.Context, managers []models.Manager) (int64, error) {
	rows := make([][]any, 0, len(managers))
	for _, m := range managers {
		rows = append(rows, []any{m.ID, m.Name, m.Position, m.OfficeID, m.Skills, m.Workload})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"managers"},
		[]string{"id", "name", "position", "office_id", "skills", "workload"},
		pgx.CopyFromRows(rows))
}

func (s *Store) IncrementWorkloadTx(ctx context.Context, tx pgx.Tx, managerID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE managers SET workload = workload + 1 WHERE id = $1`, managerID)
	return err
}

// RotationSlotTx fetches the office's rotation slot, creating the row with
// slot 0 on first assignment. Must run with the office row already locked.
func (s *Store) RotationSlotTx(ctx context.Context, tx pgx.Tx, officeID uuid.UUID) (int, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO round_robin_state (office_id, slot) VALUES ($1, 0)
		ON CONFLICT (office_id) DO NOTHING
	`, officeID)
	if err != nil {
		return 0, err
	}
	var slot int
	err = tx.QueryRow(ctx, `
		SELECT slot FROM round_robin_state WHERE office_id = $1 FOR UPDATE
	`, officeID).Scan(&slot)
	return slot, err
}

func (s *Store) SetRotationSlotTx(ctx context.Context, tx pgx.Tx, officeID uuid.UUID, slot int) error {
	_, err := tx.Exec(ctx, `UPDATE round_robin_state SET slot = $1 WHERE office_id = $2`, slot, officeID)
	return err
}
