package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/postlinehq/postline/internal/jobs"
)

// PublishHandler exposes the operator trigger. The same job the cron
// invokes, callable on demand; the batch summary comes back as JSON.
type PublishHandler struct {
	job *jobs.PublishPostsJob
}

func NewPublishHandler(job *jobs.PublishPostsJob) *PublishHandler {
	return &PublishHandler{job: job}
}

func (h *PublishHandler) RunPublishJob(c *fiber.Ctx) error {
	result, err := h.job.Run(c.Context())
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
