package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fire-triage/backend/internal/assign"
	"github.com/fire-triage/backend/internal/classify"
	"github.com/fire-triage/backend/internal/db"
	"github.com/fire-triage/backend/internal/geocode"
	"github.com/fire-triage/backend/internal/models"
)

// Store is the slice of the persistence layer the consumer needs.
type Store interface {
	TicketByID(ctx context.Context, id uuid.UUID) (models.Ticket, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, code, message string) error
}

// Assigner runs the assignment decision and the DONE commit in one
// transaction.
type Assigner interface {
	Complete(ctx context.Context, t models.Ticket, cl models.Classification, officeCity string) (assign.Outcome, error)
}

// OfficeResolver maps a composite postal address to the handling office.
type OfficeResolver interface {
	Nearest(ctx context.Context, address string) (geocode.OfficeMatch, error)
}

// Processor drives one ticket through classification, geo resolution and
// assignment. One call handles exactly one queued reference; concurrency
// exists only across workers.
type Processor struct {
	Store      Store
	Classifier classify.Classifier
	Resolver   OfficeResolver
	Assigner   Assigner

	ClassifyTimeout time.Duration
	GeoTimeout      time.Duration

	Logger zerolog.Logger
}

// Process runs the pipeline for one ticket id. A nil return means the
// underlying queue message must be acknowledged: either the ticket reached
// a final state (DONE or FAILED with a recorded reason) or there was
// nothing to do. A non-nil return means the message should be redelivered;
// that only happens for infrastructure failures where no pipeline state
// was committed yet.
func (p *Processor) Process(ctx context.Context, ticketID uuid.UUID) error {
	log := p.Logger.With().Str("ticket_id", ticketID.String()).Logger()

	t, err := p.Store.TicketByID(ctx, ticketID)
	if errors.Is(err, db.ErrNotFound) {
		log.Warn().Msg("ticket not found, dropping message")
		return nil
	}
	if err != nil {
		return err
	}

	if t.Status.Terminal() {
		log.Info().Str("status", string(t.Status)).Msg("ticket already terminal, dropping message")
		return nil
	}

	// The PROCESSING commit happens before any external call, so a crash
	// mid-pipeline leaves the ticket visibly in flight.
	started, err := p.Store.MarkProcessing(ctx, ticketID)
	if err != nil {
		return err
	}
	if !started {
		log.Info().Str("status", string(t.Status)).Msg("ticket not startable, dropping message")
		return nil
	}

	if err := p.run(ctx, t, log); err != nil {
		var stage *StageError
		if errors.As(err, &stage) {
			return p.fail(ctx, ticketID, stage, log)
		}
		return p.fail(ctx, ticketID, stageErr(CodeAssignmentFailed, err), log)
	}
	return nil
}

func (p *Processor) run(ctx context.Context, t models.Ticket, log zerolog.Logger) error {
	cctx, cancel := context.WithTimeout(ctx, p.classifyTimeout())
	cl, err := p.Classifier.Classify(cctx, classify.Input{
		Description: t.Description,
		Segment:     t.Segment,
		Country:     t.Country,
		Region:      t.Region,
	})
	cancel()
	if err != nil {
		return stageErr(CodeClassificationFailed, err)
	}
	log.Debug().
		Str("type", cl.TicketType).
		Int("priority", cl.Priority).
		Str("language", cl.Language).
		Msg("ticket classified")

	address := geocode.BuildAddress(t.City, t.Street, t.House, t.Region, t.Country)
	if address == "" {
		return stageErr(CodeAddressEmpty, errors.New("ticket has no address components"))
	}

	gctx, cancel := context.WithTimeout(ctx, p.geoTimeout())
	match, err := p.Resolver.Nearest(gctx, address)
	cancel()
	if err != nil {
		return stageErr(CodeGeoFailed, err)
	}
	log.Debug().
		Str("office", match.Office.City).
		Float64("distance_km", match.DistanceKm).
		Msg("office resolved")

	if _, err := p.Assigner.Complete(ctx, t, cl, match.Office.City); err != nil {
		if errors.Is(err, assign.ErrOfficeNotFound) {
			return stageErr(CodeOfficeNotFound, err)
		}
		return stageErr(CodeAssignmentFailed, err)
	}
	return nil
}

// fail records the terminal failure and acknowledges the message. Retrying
// a failed ticket is an explicit API action, not a broker redelivery loop.
func (p *Processor) fail(ctx context.Context, ticketID uuid.UUID, stage *StageError, log zerolog.Logger) error {
	log.Error().Err(stage.Err).Str("code", stage.Code).Msg("pipeline stage failed")
	if err := p.Store.MarkFailed(ctx, ticketID, stage.Code, stage.Error()); err != nil {
		// Could not record the failure; let the broker redeliver.
		return err
	}
	return nil
}

func (p *Processor) classifyTimeout() time.Duration {
	if p.ClassifyTimeout > 0 {
		return p.ClassifyTimeout
	}
	return 30 * time.Second
}

func (p *Processor) geoTimeout() time.Duration {
	if p.GeoTimeout > 0 {
		return p.GeoTimeout
	}
	return 10 * time.Second
}
