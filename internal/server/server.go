// Package server assembles the fiber app the browser talks to.
package server

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/google/uuid"

	"github.com/wichananm65/gift-concierge/internal/config"
	"github.com/wichananm65/gift-concierge/internal/dialogue"
	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/quiz"
	"github.com/wichananm65/gift-concierge/internal/recommendation"
	"github.com/wichananm65/gift-concierge/internal/user"
	"github.com/wichananm65/gift-concierge/internal/visitor"
	"github.com/wichananm65/gift-concierge/internal/wishlist"
)

const guestLocalsKey = "guest_id"

type Deps struct {
	Config          *config.Config
	Log             *slog.Logger
	Visitors        *visitor.Registry
	Gifts           *gift.Service
	Recommendations *recommendation.Service
	Drafts          *quiz.Drafts
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	setupCORS(app, d.Config.Server.AllowOrigins)
	app.Use(requestLogger(d.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(guestCookie(d.Config.Auth.GuestCookie))
	if secret := d.Config.Auth.JWTSecret; secret != "" {
		api.Use(jwtware.New(jwtware.Config{
			SigningKey: []byte(secret),
			// guests send no token
			Filter: func(c *fiber.Ctx) bool {
				return c.Get(fiber.HeaderAuthorization) == ""
			},
		}))
	} else {
		d.Log.Warn("JWT_SECRET is not set, every request is served as a guest")
	}
	api.Use(resolveVisitor(d.Visitors))

	gift.NewHandler(d.Gifts).RegisterRoutes(api)
	recommendation.NewHandler(d.Recommendations).RegisterRoutes(api)
	quiz.NewHandler(d.Drafts, owner).RegisterRoutes(api)
	wishlist.NewHandler(wishlistOf).RegisterRoutes(api)
	dialogue.NewHandler(engineOf, finalQuiz(d.Drafts)).RegisterRoutes(api)
	user.NewHandler(usersOf, d.Config.Upstream.BaseURL).RegisterRoutes(api)

	return app
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: origins != "*",
	}))
}

func requestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start).String())
		return err
	}
}

// guestCookie gives every browser a stable random id.
func guestCookie(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Cookies(name))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(guestLocalsKey, id)
		return c.Next()
	}
}

func resolveVisitor(reg *visitor.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := user.IdentityFromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		guestID, _ := c.Locals(guestLocalsKey).(string)
		v, err := reg.Visit(c.UserContext(), guestID, id)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		visitor.Attach(c, v)
		return c.Next()
	}
}

func owner(c *fiber.Ctx) string {
	v, err := visitor.FromCtx(c)
	if err != nil {
		return ""
	}
	return v.Owner()
}

func wishlistOf(c *fiber.Ctx) (*wishlist.Store, error) {
	v, err := visitor.FromCtx(c)
	if err != nil {
		return nil, err
	}
	return v.Wishlist(), nil
}

func engineOf(c *fiber.Ctx) (*dialogue.Engine, error) {
	v, err := visitor.FromCtx(c)
	if err != nil {
		return nil, err
	}
	return v.Dialogue(), nil
}

func usersOf(c *fiber.Ctx) (*user.Service, error) {
	v, err := visitor.FromCtx(c)
	if err != nil {
		return nil, err
	}
	return v.Users(), nil
}

func finalQuiz(drafts *quiz.Drafts) dialogue.AnswersFunc {
	return func(c *fiber.Ctx) (quiz.Answers, error) {
		return drafts.Final(c.UserContext(), owner(c))
	}
}
