package gift

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHandler_Routes(t *testing.T) {
	app := fiber.New()
	NewHandler(newTestService(fail(503))).RegisterRoutes(app)

	req := httptest.NewRequest("GET", "/gifts?limit=3", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var gifts []Gift
	if err := json.NewDecoder(res.Body).Decode(&gifts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(gifts) != 3 {
		t.Fatalf("expected 3 gifts, got %d", len(gifts))
	}

	res2, err := app.Test(httptest.NewRequest("GET", "/gifts/42", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(body), `"id":"42"`) {
		t.Fatalf("unexpected body: %s", body)
	}

	req3 := httptest.NewRequest("POST", "/gifts/batch", strings.NewReader(`{"ids":["g-001"]}`))
	req3.Header.Set("Content-Type", "application/json")
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res3.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", res3.StatusCode)
	}

	res4, _ := app.Test(httptest.NewRequest("GET", "/gifts?limit=-1", nil))
	if res4.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", res4.StatusCode)
	}
}
