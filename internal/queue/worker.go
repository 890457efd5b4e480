package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/postlinehq/postline/internal/transfer"
)

func (q *Queue) HandleNotifyFailureTask(ctx context.Context, task *asynq.Task) error {
	var payload transfer.FailureNotification
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	// A returned error only drives asynq's own retry of the email; the
	// post's recorded state is untouched either way.
	return q.ns.SendFailureNotification(&payload)
}
