package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/service"
)

type PostHandler struct {
	s service.PostControlService
}

func NewPostHandler(s service.PostControlService) *PostHandler {
	return &PostHandler{s: s}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.ListPosts(c.Context(), userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// RetryPost re-queues a failed post. Any other current state is a no-op
// reported as retried=false, not an error.
func (h *PostHandler) RetryPost(c *fiber.Ctx) error {
	postID := int64(c.QueryInt("id", 0))
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing post id",
		})
	}

	retried, err := h.s.RetryFailedPost(c.Context(), postID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to retry post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"retried": retried})
}

func (h *PostHandler) CancelPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := int64(c.QueryInt("id", 0))
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing post id",
		})
	}

	cancelled, err := h.s.CancelScheduledPost(c.Context(), postID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to cancel post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"cancelled": cancelled})
}

func (h *PostHandler) PlatformLimits(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(platform.AllLimits())
}
