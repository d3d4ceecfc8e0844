package gift

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/gifts", h.getGifts)
	r.Post("/gifts/batch", h.getGiftBatch)
	r.Get("/gifts/:id", h.getGift)
}

func (h *Handler) getGifts(c *fiber.Ctx) error {
	var p ListParams
	if err := c.QueryParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if p.Limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "limit must be >= 0"})
	}
	gifts, err := h.service.List(c.UserContext(), p)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(gifts)
}

func (h *Handler) getGift(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "id is required"})
	}
	g, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(g)
}

func (h *Handler) getGiftBatch(c *fiber.Ctx) error {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	gifts, err := h.service.GetByIDs(c.UserContext(), body.IDs)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(gifts)
}
