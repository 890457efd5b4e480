package queue

import (
	"github.com/postlinehq/postline/internal/service"
)

// Queue owns the worker side of the notification channel. Failure emails ride
// through Redis so a slow SMTP server never stalls the publish loop.
type Queue struct {
	ns service.NotificationService
}

func NewQueue(ns service.NotificationService) *Queue {
	return &Queue{ns: ns}
}

const TaskTypeNotifyFailure = "notify:post_failure"
