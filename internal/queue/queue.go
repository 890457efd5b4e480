package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/postlinehq/postline/internal/transfer"
)

// Notifier is the executor-facing half: it enqueues a failure notification
// and swallows every error. Notification is a side channel; losing one must
// not surface in the batch result.
type Notifier struct {
	client *asynq.Client
}

func NewNotifier(client *asynq.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) NotifyFailure(ctx context.Context, payload *transfer.FailureNotification) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	task := asynq.NewTask(TaskTypeNotifyFailure, taskPayload)
	if _, err := n.client.Enqueue(task, asynq.MaxRetry(5)); err != nil {
		slog.Info("failed to enqueue failure notification", "post_id", payload.PostID, "error", err.Error())
	}
}
