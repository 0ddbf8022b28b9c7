package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fire-triage/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const ticketColumns = `id, guid, status, gender, birth_date, description, attachment,
	segment, country, region, city, street, house,
	ticket_type, tone, priority, language, summary, recommendation,
	assigned_manager_id, assigned_office_id, error_code, error_message,
	created_at, processed_at`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var (
		t          models.Ticket
		gender     *string
		birthDate  *string
		attachment *string
		ticketType *string
		tone       *string
		priority   *int
		language   *string
		summary    *string
		rec        *string
		errCode    *string
		errMsg     *string
	)
	err := row.Scan(
		&t.ID, &t.GUID, &t.Status, &gender, &birthDate, &t.Description, &attachment,
		&t.Segment, &t.Country, &t.Region, &t.City, &t.Street, &t.House,
		&ticketType, &tone, &priority, &language, &summary, &rec,
		&t.AssignedManagerID, &t.AssignedOfficeID, &errCode, &errMsg,
		&t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		return models.Ticket{}, err
	}
	t.Gender = deref(gender)
	t.BirthDate = deref(birthDate)
	t.Attachment = deref(attachment)
	t.TicketType = deref(ticketType)
	t.Tone = deref(tone)
	if priority != nil {
		t.Priority = *priority
	}
	t.Language = deref(language)
	t.Summary = deref(summary)
	t.Recommendation = deref(rec)
	t.ErrorCode = deref(errCode)
	t.ErrorMessage = deref(errMsg)
	return t, nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// CreateTicket inserts a new ticket in status NEW. The GUID is the external
// deduplication key: re-ingesting an existing GUID inserts nothing and
// returns created=false.
func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO tickets (id, guid, status, gender, birth_date, description, attachment,
			segment, country, region, city, street, house, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (guid) DO NOTHING
		RETURNING id
	`, t.ID, t.GUID, models.StatusNew, t.Gender, t.BirthDate, t.Description, t.Attachment,
		t.Segment, t.Country, t.Region, t.City, t.Street, t.House, t.CreatedAt).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

func (s *Store) TicketByID(ctx context.Context, id uuid.UUID) (models.Ticket, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, ErrNotFound
	}
	return t, err
}

// MarkProcessing transitions NEW -> PROCESSING. It returns false when the
// ticket is not in a startable state, which covers the duplicate-delivery
// idempotency guard.
func (s *Store) MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE tickets SET status = $1 WHERE id = $2 AND status = $3
	`, models.StatusProcessing, id, models.StatusNew)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, code, message string) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE tickets
		SET status = $1, error_code = $2, error_message = $3, processed_at = NOW()
		WHERE id = $4
	`, models.StatusFailed, code, message, id)
	return err
}

// ResetForRetry moves a FAILED ticket back to NEW so the retry endpoint can
// re-enqueue it. Tickets in any other status are left untouched.
func (s *Store) ResetForRetry(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE tickets
		SET status = $1, error_code = NULL, error_message = NULL, processed_at = NULL
		WHERE id = $2 AND status = $3
	`, models.StatusNew, id, models.StatusFailed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteTicketTx writes the classification outputs and the assignment and
// marks the ticket DONE, inside the caller's assignment transaction.
func (s *Store) CompleteTicketTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, cl models.Classification, managerID, officeID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE tickets
		SET status = $1, ticket_type = $2, tone = $3, priority = $4, language = $5,
			summary = $6, recommendation = $7,
			assigned_manager_id = $8, assigned_office_id = $9,
			error_code = NULL, error_message = NULL, processed_at = NOW()
		WHERE id = $10
	`, models.StatusDone, cl.TicketType, cl.Tone, cl.Priority, cl.Language,
		cl.Summary, cl.Recommendation, managerID, officeID, id)
	return err
}

type TicketFilter struct {
	Status      string
	Office      string
	Type        string
	Language    string
	PriorityMin int
	PriorityMax int
	Limit       int
	Offset      int
}

func (s *Store) ListTickets(ctx context.Context, f TicketFilter) ([]models.Ticket, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.PriorityMin <= 0 {
		f.PriorityMin = 1
	}
	if f.PriorityMax <= 0 || f.PriorityMax > 10 {
		f.PriorityMax = 10
	}

	query := `SELECT ` + qualify(ticketColumns, "t") + ` FROM tickets t`
	var args []any
	var wheres []string
	if f.Office != "" {
		query += ` JOIN offices o ON o.id = t.assigned_office_id`
		args = append(args, f.Office)
		wheres = append(wheres, fmt.Sprintf("o.city = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		wheres = append(wheres, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		wheres = append(wheres, fmt.Sprintf("t.ticket_type = $%d", len(args)))
	}
	if f.Language != "" {
		args = append(args, f.Language)
		wheres = append(wheres, fmt.Sprintf("t.language = $%d", len(args)))
	}
	args = append(args, f.PriorityMin, f.PriorityMax)
	wheres = append(wheres, fmt.Sprintf("(t.priority IS NULL OR t.priority BETWEEN $%d AND $%d)", len(args)-1, len(args)))

	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY t.priority DESC NULLS LAST, t.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func qualify(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func (s *Store) Stats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{}

	var total int
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&total); err != nil {
		return nil, err
	}
	stats["total"] = total

	for key, column := range map[string]string{
		"by_type":     "ticket_type",
		"by_language": "language",
		"by_tone":     "tone",
		"by_segment":  "segment",
		"by_status":   "status",
	} {
		agg, err := s.aggregate(ctx, column)
		if err != nil {
			return nil, err
		}
		stats[key] = agg
	}

	byOffice := map[string]int{}
	rows, err := s.Pool.Query(ctx, `
		SELECT o.city, COUNT(t.id)
		FROM offices o JOIN tickets t ON t.assigned_office_id = o.id
		GROUP BY o.city
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var city string
		var count int
		if err := rows.Scan(&city, &count); err != nil {
			return nil, err
		}
		byOffice[city] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats["by_office"] = byOffice

	var avg *float64
	if err := s.Pool.QueryRow(ctx, `SELECT AVG(priority) FROM tickets WHERE priority IS NOT NULL`).Scan(&avg); err != nil {
		return nil, err
	}
	if avg != nil {
		stats["priority_avg"] = *avg
	}
	return stats, nil
}

func (s *Store) aggregate(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM tickets WHERE %s IS NOT NULL AND %s <> '' GROUP BY %s
	`, column, column, column, column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, err
		}
		out[value] = count
	}
	return out, rows.Err()
}
