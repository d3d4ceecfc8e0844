package dialogue

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/gift-concierge/internal/quiz"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

// EngineFunc returns the conversation of the caller of a request.
type EngineFunc func(c *fiber.Ctx) (*Engine, error)

// AnswersFunc returns the caller's finalized quiz, used when init has no body.
type AnswersFunc func(c *fiber.Ctx) (quiz.Answers, error)

type Handler struct {
	engine EngineFunc
	final  AnswersFunc
}

func NewHandler(engine EngineFunc, final AnswersFunc) *Handler {
	return &Handler{engine: engine, final: final}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/dialogue", h.snapshot)
	r.Post("/dialogue/init", h.init)
	r.Post("/dialogue/restart", h.restart)
	r.Post("/dialogue/interact", h.interact)
	r.Post("/dialogue/select", h.selectTrack)
	r.Post("/dialogue/suggest", h.suggest)
	r.Post("/dialogue/react", h.react)
	r.Get("/dialogue/hypotheses/:id/products", h.products)
}

type interactRequest struct {
	Action string `json:"action"`
	Value  any    `json:"value"`
}

type selectRequest struct {
	TopicID string `json:"topicId"`
}

type reactRequest struct {
	HypothesisID string `json:"hypothesisId"`
	Reaction     string `json:"reaction"`
}

var actions = map[Action]bool{
	AnswerProbe:        true,
	SelectTrack:        true,
	LoadMoreHypotheses: true,
	RefineTopic:        true,
	SuggestTopics:      true,
}

func (h *Handler) snapshot(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(e.Snapshot())
}

func (h *Handler) init(c *fiber.Ctx) error {
	var answers quiz.Answers
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&answers); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	} else {
		a, err := h.final(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quiz answers are required"})
		}
		answers = a
	}
	if err := answers.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	e, err := h.engine(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := e.Init(c.UserContext(), answers)
	if err != nil {
		return fail(c, snap, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snap)
}

func (h *Handler) restart(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := e.Restart(c.UserContext())
	if err != nil {
		return fail(c, snap, err)
	}
	return c.JSON(snap)
}

func (h *Handler) interact(c *fiber.Ctx) error {
	payload := new(interactRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	action := Action(strings.TrimSpace(payload.Action))
	if !actions[action] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid action"})
	}
	e, err := h.engine(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := e.Interact(c.UserContext(), action, payload.Value)
	if err != nil {
		return fail(c, snap, err)
	}
	return c.JSON(snap)
}

func (h *Handler) selectTrack(c *fiber.Ctx) error {
	payload := new(selectRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if strings.TrimSpace(payload.TopicID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid topicId"})
	}
	e, err := h.engine(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := e.SelectTrack(c.UserContext(), payload.TopicID)
	if err != nil {
		return fail(c, snap, err)
	}
	return c.JSON(snap)
}

func (h *Handler) suggest(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := e.SuggestTopics(c.UserContext())
	if err != nil {
		return fail(c, snap, err)
	}
	return c.JSON(snap)
}

func (h *Handler) react(c *fiber.Ctx) error {
	payload := new(reactRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	kind := Reaction(payload.Reaction)
	if payload.HypothesisID == "" || !kind.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid reaction"})
	}
	e, err := h.engine(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := e.React(c.UserContext(), payload.HypothesisID, kind)
	if err != nil {
		return fail(c, snap, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(snap)
}

func (h *Handler) products(c *fiber.Ctx) error {
	e, err := h.engine(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := e.Products(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, snap, err)
	}
	return c.JSON(snap)
}

// fail maps engine errors. A superseded reply still returns the current snapshot.
func fail(c *fiber.Ctx, snap Snapshot, err error) error {
	switch {
	case errors.Is(err, ErrSuperseded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error(), "snapshot": snap})
	case errors.Is(err, ErrNoSession):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrUnknownTrack):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": transport.MessageOf(err)})
	}
}
