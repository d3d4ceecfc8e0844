package wishlist

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// StoreFunc returns the wishlist of the caller of a request.
type StoreFunc func(c *fiber.Ctx) (*Store, error)

type Handler struct {
	store StoreFunc
}

func NewHandler(store StoreFunc) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/wishlist", h.getWishlist)
	r.Post("/wishlist", h.addItem)
	r.Delete("/wishlist/:id", h.removeItem)
}

type addRequest struct {
	GiftID string `json:"giftId"`
}

// response reports the set after the change. Synced is false when the backend rejected
// the change and it was rolled back.
func response(s *Store, err error) fiber.Map {
	m := fiber.Map{"ids": s.IDs(), "synced": err == nil}
	if err != nil {
		m["message"] = "wishlist could not be saved"
	}
	return m
}

func (h *Handler) getWishlist(c *fiber.Ctx) error {
	s, err := h.store(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(response(s, nil))
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	id := strings.TrimSpace(payload.GiftID)
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid giftId"})
	}
	s, err := h.store(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(response(s, s.Add(c.UserContext(), id)))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	s, err := h.store(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(response(s, s.Remove(c.UserContext(), id)))
}
