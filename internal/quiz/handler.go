package quiz

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// OwnerFunc names whose quiz a request addresses (guest id or user id).
type OwnerFunc func(c *fiber.Ctx) string

type Handler struct {
	drafts *Drafts
	owner  OwnerFunc
}

func NewHandler(drafts *Drafts, owner OwnerFunc) *Handler {
	return &Handler{drafts: drafts, owner: owner}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/quiz/draft", h.getDraft)
	r.Put("/quiz/draft", h.saveDraft)
	r.Post("/quiz/submit", h.submit)
	r.Get("/quiz/final", h.getFinal)
	r.Delete("/quiz", h.clear)
}

func (h *Handler) getDraft(c *fiber.Ctx) error {
	return c.JSON(h.drafts.Draft(c.UserContext(), h.owner(c)))
}

func (h *Handler) saveDraft(c *fiber.Ctx) error {
	var a Answers
	if err := c.BodyParser(&a); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.drafts.SaveDraft(c.UserContext(), h.owner(c), a); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(a)
}

func (h *Handler) submit(c *fiber.Ctx) error {
	var a Answers
	if err := c.BodyParser(&a); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if a.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "answers are empty"})
	}
	if err := h.drafts.Finalize(c.UserContext(), h.owner(c), a); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *Handler) getFinal(c *fiber.Ctx) error {
	a, err := h.drafts.Final(c.UserContext(), h.owner(c))
	if errors.Is(err, ErrNoFinal) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(a)
}

func (h *Handler) clear(c *fiber.Ctx) error {
	if err := h.drafts.Clear(c.UserContext(), h.owner(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
