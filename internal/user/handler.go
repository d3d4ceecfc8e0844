package user

import (
	"github.com/gofiber/fiber/v2"
)

// ServiceFunc returns the service bound to the caller of a request.
type ServiceFunc func(c *fiber.Ctx) (*Service, error)

type Handler struct {
	service ServiceFunc
	baseURL string
}

func NewHandler(service ServiceFunc, baseURL string) *Handler {
	return &Handler{service: service, baseURL: baseURL}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/me", h.getMe)
	r.Post("/logout", h.logout)
	r.Get("/auth/:provider/start", h.startAuth)

	r.Get("/profile", h.getProfile)
	r.Patch("/profile", h.updateProfile)
	r.Post("/profile/events", h.addEvent)
	r.Delete("/profile/events/:id", h.deleteEvent)
}

func (h *Handler) getMe(c *fiber.Ctx) error {
	svc, err := h.service(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	u, err := svc.CurrentUser(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"user": u})
}

// logout always succeeds for the caller; the backend session may already be gone.
func (h *Handler) logout(c *fiber.Ctx) error {
	if svc, err := h.service(c); err == nil {
		_ = svc.Logout(c.UserContext())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) startAuth(c *fiber.Ctx) error {
	provider := c.Params("provider")
	if provider == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "provider is required"})
	}
	return c.Redirect(StartURL(h.baseURL, provider, c.Query("redirect_url")), fiber.StatusFound)
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	svc, err := h.service(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	p, err := svc.Profile(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(p)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	svc, err := h.service(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var patch ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	p, err := svc.UpdateProfile(c.UserContext(), patch)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(p)
}

func (h *Handler) addEvent(c *fiber.Ctx) error {
	svc, err := h.service(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	var in EventInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	ev, err := svc.AddEvent(c.UserContext(), in)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}

func (h *Handler) deleteEvent(c *fiber.Ctx) error {
	svc, err := h.service(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := svc.DeleteEvent(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
