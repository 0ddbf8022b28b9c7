package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskTicketProcess = "ticket:process"

type TicketProcessPayload struct {
	TicketID string `json:"ticket_id"`
}

func NewTicketProcessTask(payload TicketProcessPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTicketProcess, data), nil
}

func ParseTicketProcessPayload(task *asynq.Task) (TicketProcessPayload, error) {
	var payload TicketProcessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TicketProcessPayload{}, err
	}
	return payload, nil
}
