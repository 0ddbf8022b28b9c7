package queue

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/fire-triage/backend/internal/pipeline"
)

// Worker consumes ticket processing tasks. Returning nil from a handler
// acknowledges the message; returning an error asks asynq to redeliver.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor *pipeline.Processor
	log       zerolog.Logger
}

func NewWorker(redisURL, queue string, concurrency int, processor *pipeline.Processor, log zerolog.Logger) (*Worker, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}
	if queue == "" {
		queue = "default"
	}
	if concurrency < 1 {
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:    server,
		mux:       asynq.NewServeMux(),
		processor: processor,
		log:       log,
	}
	w.mux.HandleFunc(TaskTicketProcess, w.handleTicketProcess)
	return w, nil
}

func (w *Worker) handleTicketProcess(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTicketProcessPayload(task)
	if err != nil {
		// malformed message: acknowledge and drop, nothing to retry
		w.log.Warn().Err(err).Msg("malformed ticket message, dropping")
		return nil
	}

	ticketID, err := uuid.Parse(payload.TicketID)
	if err != nil {
		w.log.Warn().Err(err).Str("ticket_id", payload.TicketID).Msg("invalid ticket id, dropping")
		return nil
	}

	return w.processor.Process(ctx, ticketID)
}

func (w *Worker) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()
	return w.server.Run(w.mux)
}
