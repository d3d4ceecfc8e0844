package user

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/gift-concierge/internal/transport"
)

// makeAppWithIdentity injects a jwt.Token into locals when X-User-ID is set, standing in
// for the JWT middleware.
func makeAppWithIdentity(sender transport.Sender) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			tok := &jwt.Token{Raw: "token-" + v, Claims: jwt.MapClaims{"user_id": v}}
			c.Locals("user", tok)
		}
		return c.Next()
	})
	svc, _ := newTestService(sender)
	NewHandler(func(*fiber.Ctx) (*Service, error) { return svc, nil }, "https://api.example.com").RegisterRoutes(app)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, err := IdentityFromCtx(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(id.UserID + "|" + id.Token)
	})
	return app
}

func TestIdentityFromCtx(t *testing.T) {
	app := makeAppWithIdentity(nil)

	res, _ := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	b, _ := io.ReadAll(res.Body)
	if string(b) != "|" {
		t.Fatalf("expected guest identity, got %q", b)
	}

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	b, _ = io.ReadAll(res.Body)
	if string(b) != "7|token-7" {
		t.Fatalf("unexpected identity %q", b)
	}
}

func TestHandler_MeAndAuthRedirect(t *testing.T) {
	app := makeAppWithIdentity(transport.SenderFunc(func(context.Context, string, transport.Options) (*transport.Response, error) {
		return nil, &transport.Error{Status: 401, Message: "Unauthorized"}
	}))

	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != 200 || !strings.Contains(string(b), `"user":null`) {
		t.Fatalf("guest should get a null user, got %d %s", res.StatusCode, b)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/auth/google/start?redirect_url=/done", nil))
	if res.StatusCode != fiber.StatusFound {
		t.Fatalf("expected redirect, got %d", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); !strings.HasPrefix(loc, "https://api.example.com/auth/google/start") {
		t.Fatalf("unexpected location %q", loc)
	}

	res, _ = app.Test(httptest.NewRequest("POST", "/logout", nil))
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("logout should succeed even when the backend fails, got %d", res.StatusCode)
	}
}

func TestHandler_AddEventValidation(t *testing.T) {
	app := makeAppWithIdentity(transport.SenderFunc(func(context.Context, string, transport.Options) (*transport.Response, error) {
		return nil, &transport.Error{Message: "offline"}
	}))
	req := httptest.NewRequest("POST", "/profile/events", strings.NewReader(`{"title":"x","date":"soon"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/profile/events", strings.NewReader(`{"title":"Anniversary","date":"2026-09-01"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 from local replication, got %d", res.StatusCode)
	}
}
