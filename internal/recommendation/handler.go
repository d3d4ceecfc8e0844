package recommendation

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/gift-concierge/internal/quiz"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Post("/recommendations", h.generate)
}

// generate reads quiz answers from the body; ?top_n= and ?debug=1 are optional.
func (h *Handler) generate(c *fiber.Ctx) error {
	var answers quiz.Answers
	if err := c.BodyParser(&answers); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	topN := c.QueryInt("top_n", DefaultTopN)
	if topN <= 0 {
		topN = DefaultTopN
	}
	res, err := h.service.Generate(c.UserContext(), Request{
		Answers: answers,
		TopN:    topN,
		Debug:   c.QueryBool("debug"),
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(res)
}
