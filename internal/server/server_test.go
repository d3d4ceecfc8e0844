package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/gift-concierge/internal/config"
	"github.com/wichananm65/gift-concierge/internal/fallback"
	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/logger"
	"github.com/wichananm65/gift-concierge/internal/quiz"
	"github.com/wichananm65/gift-concierge/internal/recommendation"
	"github.com/wichananm65/gift-concierge/internal/storage"
	"github.com/wichananm65/gift-concierge/internal/transport"
	"github.com/wichananm65/gift-concierge/internal/visitor"
)

const testSecret = "test-secret"

// newTestApp points the gateway at a closed port, so every live call falls back to
// local data.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.AllowOrigins = "*"
	cfg.Auth.GuestCookie = "gift_guest"
	cfg.Auth.JWTSecret = testSecret
	cfg.Upstream.BaseURL = "http://127.0.0.1:1"

	log := logger.Discard()
	gw := transport.NewGateway(cfg.Upstream.BaseURL, time.Second, log)
	policies := fallback.NewResolver(nil, log)
	store := storage.NewMemoryStore()
	catalog := gift.NewCatalog(nil)

	return New(Deps{
		Config:          cfg,
		Log:             log,
		Gifts:           gift.NewService(gw, policies, catalog),
		Recommendations: recommendation.NewService(gw, policies, catalog),
		Drafts:          quiz.NewDrafts(store),
		Visitors: visitor.NewRegistry(visitor.Deps{
			Gateway:       gw,
			Policies:      policies,
			Store:         store,
			Catalog:       catalog,
			LocalDialogue: true,
			Log:           log,
		}),
	})
}

func send(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return res
}

func guestCookieOf(t *testing.T, res *http.Response) string {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == "gift_guest" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatalf("no guest cookie set")
	return ""
}

func wishlistIDs(t *testing.T, res *http.Response) []string {
	t.Helper()
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.IDs
}

func signedToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestHealth(t *testing.T) {
	res := send(t, newTestApp(t), "GET", "/health", "", nil)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}

func TestGifts_ServedFromLocalWhenBackendIsDown(t *testing.T) {
	res := send(t, newTestApp(t), "GET", "/api/v1/gifts?limit=3", "", nil)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var gifts []gift.Gift
	if err := json.NewDecoder(res.Body).Decode(&gifts); err != nil || len(gifts) != 3 {
		t.Fatalf("expected 3 gifts, got %d (%v)", len(gifts), err)
	}
	guestCookieOf(t, res)
}

func TestWishlist_GuestThenSignIn(t *testing.T) {
	app := newTestApp(t)

	res := send(t, app, "POST", "/api/v1/wishlist", `{"giftId":"g-001"}`, nil)
	cookie := guestCookieOf(t, res)
	if ids := wishlistIDs(t, res); len(ids) != 1 || ids[0] != "g-001" {
		t.Fatalf("expected g-001 in guest list, got %v", ids)
	}

	res = send(t, app, "GET", "/api/v1/wishlist", "", map[string]string{"Cookie": cookie})
	if ids := wishlistIDs(t, res); len(ids) != 1 {
		t.Fatalf("same cookie should see the same list, got %v", ids)
	}
	res = send(t, app, "GET", "/api/v1/wishlist", "", nil)
	if ids := wishlistIDs(t, res); len(ids) != 0 {
		t.Fatalf("a new browser should start empty, got %v", ids)
	}

	auth := map[string]string{"Cookie": cookie, "Authorization": "Bearer " + signedToken(t, "42")}
	res = send(t, app, "GET", "/api/v1/wishlist", "", auth)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if ids := wishlistIDs(t, res); len(ids) != 1 || ids[0] != "g-001" {
		t.Fatalf("guest item should carry over to the account, got %v", ids)
	}
}

func TestJWT_InvalidTokenRejected(t *testing.T) {
	res := send(t, newTestApp(t), "GET", "/api/v1/me", "", map[string]string{"Authorization": "Bearer nope"})
	if res.StatusCode != fiber.StatusUnauthorized && res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected the JWT middleware to reject, got %d", res.StatusCode)
	}
}

func TestDialogue_InitFromSubmittedQuiz(t *testing.T) {
	app := newTestApp(t)

	res := send(t, app, "POST", "/api/v1/quiz/submit", `{"interests":["coffee"]}`, nil)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", res.StatusCode)
	}
	cookie := guestCookieOf(t, res)

	res = send(t, app, "POST", "/api/v1/dialogue/init", "", map[string]string{"Cookie": cookie})
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("init: expected 201, got %d", res.StatusCode)
	}
	res = send(t, app, "POST", "/api/v1/dialogue/interact", `{"action":"answer_probe","value":"practical"}`, map[string]string{"Cookie": cookie})
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("interact: expected 200, got %d", res.StatusCode)
	}

	other := send(t, app, "POST", "/api/v1/dialogue/interact", `{"action":"answer_probe","value":"practical"}`, nil)
	if other.StatusCode != fiber.StatusConflict {
		t.Fatalf("a browser without a session should get 409, got %d", other.StatusCode)
	}
}

func TestRecommendations_CarryDiagnostic(t *testing.T) {
	res := send(t, newTestApp(t), "POST", "/api/v1/recommendations?top_n=3", `{"interests":["coffee"],"budget":100}`, nil)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var out recommendation.Result
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Gifts) == 0 || out.Diagnostic == "" {
		t.Fatalf("expected substituted gifts with a diagnostic, got %+v", out)
	}
}
