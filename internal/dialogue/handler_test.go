package dialogue

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/logger"
	"github.com/wichananm65/gift-concierge/internal/quiz"
)

func newTestApp(final AnswersFunc) (*fiber.App, *Engine) {
	e := NewEngine(NewLocalProtocol(gift.NewCatalog(nil)), logger.Discard())
	app := fiber.New()
	NewHandler(func(*fiber.Ctx) (*Engine, error) { return e, nil }, final).RegisterRoutes(app)
	return app, e
}

func noFinal(*fiber.Ctx) (quiz.Answers, error) { return quiz.Answers{}, errors.New("no final quiz") }

func post(t *testing.T, app *fiber.App, path, body string) (*http.Response, Snapshot) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest("POST", path, rd)
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var snap Snapshot
	_ = json.NewDecoder(res.Body).Decode(&snap)
	return res, snap
}

func TestHandler_Flow(t *testing.T) {
	app, _ := newTestApp(noFinal)

	res, _ := post(t, app, "/dialogue/interact", `{"action":"answer_probe","value":"practical"}`)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 before init, got %d", res.StatusCode)
	}

	res, snap := post(t, app, "/dialogue/init", `{"interests":["coffee"]}`)
	if res.StatusCode != fiber.StatusCreated || snap.Session == nil || snap.Session.State != Branching {
		t.Fatalf("init: status %d snapshot %+v", res.StatusCode, snap)
	}

	res, snap = post(t, app, "/dialogue/interact", `{"action":"answer_probe","value":"practical"}`)
	if res.StatusCode != 200 || len(snap.Session.Tracks) == 0 {
		t.Fatalf("answer_probe: status %d snapshot %+v", res.StatusCode, snap)
	}
	second := snap.Session.Tracks[1].TopicID

	res, snap = post(t, app, "/dialogue/select", `{"topicId":"`+second+`"}`)
	if res.StatusCode != 200 || snap.ActiveTrackID != second {
		t.Fatalf("select: status %d active %q", res.StatusCode, snap.ActiveTrackID)
	}

	res, _ = post(t, app, "/dialogue/select", `{"topicId":"nowhere"}`)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown track, got %d", res.StatusCode)
	}

	hyp := snap.Session.Tracks[0].Hypotheses[0].ID
	res, snap = post(t, app, "/dialogue/react", `{"hypothesisId":"`+hyp+`","reaction":"dislike"}`)
	if res.StatusCode != fiber.StatusAccepted {
		t.Fatalf("react: status %d", res.StatusCode)
	}
	if _, _, ok := FindHypothesis(*snap.Session, hyp); ok {
		t.Fatalf("disliked hypothesis still present")
	}

	res, _ = post(t, app, "/dialogue/interact", `{"action":"dance"}`)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", res.StatusCode)
	}

	got, err := app.Test(httptest.NewRequest("GET", "/dialogue", nil))
	if err != nil || got.StatusCode != 200 {
		t.Fatalf("snapshot: %v %v", got, err)
	}
}

func TestHandler_InitFallsBackToFinalQuiz(t *testing.T) {
	final := func(*fiber.Ctx) (quiz.Answers, error) {
		return quiz.Answers{Interests: []string{"board games"}}, nil
	}
	app, e := newTestApp(final)

	res, _ := post(t, app, "/dialogue/init", "")
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	if e.Snapshot().Session == nil {
		t.Fatalf("expected a session")
	}

	app, _ = newTestApp(noFinal)
	res, _ = post(t, app, "/dialogue/init", "")
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without answers, got %d", res.StatusCode)
	}
}

func TestHandler_ProductsAndRestart(t *testing.T) {
	app, _ := newTestApp(noFinal)
	post(t, app, "/dialogue/init", `{"interests":["coffee"]}`)
	_, snap := post(t, app, "/dialogue/interact", `{"action":"answer_probe","value":"growth"}`)
	hyp := snap.Session.Tracks[0].Hypotheses[0].ID

	res, err := app.Test(httptest.NewRequest("GET", "/dialogue/hypotheses/"+hyp+"/products", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil || snap.Session.State != DeepDive {
		t.Fatalf("expected deep dive, got %+v %v", snap.Session, err)
	}

	res, snap = post(t, app, "/dialogue/restart", "")
	if res.StatusCode != 200 || snap.Session.State != Branching {
		t.Fatalf("restart: status %d snapshot %+v", res.StatusCode, snap)
	}
}
