package recommendation

import (
	"context"
	"testing"

	"github.com/wichananm65/gift-concierge/internal/fallback"
	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/logger"
	"github.com/wichananm65/gift-concierge/internal/quiz"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

func newTestService(send transport.SenderFunc) *Service {
	return NewService(send, fallback.NewResolver(nil, logger.Discard()), gift.NewCatalog(nil))
}

func TestGenerate_LiveFailureKeepsDiagnostic(t *testing.T) {
	s := newTestService(func(context.Context, string, transport.Options) (*transport.Response, error) {
		return nil, &transport.Error{Status: 503, Message: "engine warming up"}
	})
	res, err := s.Generate(context.Background(), Request{
		Answers: quiz.Answers{Interests: []string{"cooking"}, Budget: 60},
		TopN:    3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Diagnostic != "engine warming up" {
		t.Fatalf("expected live failure message, got %q", res.Diagnostic)
	}
	if len(res.Gifts) == 0 || len(res.Gifts) > 3 {
		t.Fatalf("expected 1..3 substituted gifts, got %d", len(res.Gifts))
	}
	if res.Source != "local" || res.EngineVersion != LocalEngineVersion {
		t.Fatalf("unexpected source/version %q/%q", res.Source, res.EngineVersion)
	}
	if res.Featured == nil || res.Featured.ID != res.Gifts[0].ID {
		t.Fatalf("featured gift should default to the first gift")
	}
	for _, g := range res.Gifts {
		if g.Price != nil && *g.Price > 60 {
			t.Fatalf("gift %s over budget", g.ID)
		}
	}
}

func TestGenerate_LocalRunIsDeterministic(t *testing.T) {
	s := newTestService(func(context.Context, string, transport.Options) (*transport.Response, error) {
		return nil, &transport.Error{Message: "backend unreachable"}
	})
	req := Request{Answers: quiz.Answers{Occasion: "anniversary", ExcludeCategories: []string{"decor"}}}
	a, _ := s.Generate(context.Background(), req)
	b, _ := s.Generate(context.Background(), req)
	if a.QuizRunID == "" || a.QuizRunID != b.QuizRunID {
		t.Fatalf("expected stable run id, got %q and %q", a.QuizRunID, b.QuizRunID)
	}
	for _, g := range a.Gifts {
		if g.Category == "decor" {
			t.Fatalf("excluded category leaked: %s", g.ID)
		}
	}
}

func TestGenerate_LiveOmitsCredentials(t *testing.T) {
	var got transport.Options
	var endpoint string
	s := newTestService(func(_ context.Context, ep string, opts transport.Options) (*transport.Response, error) {
		got, endpoint = opts, ep
		return transport.NewResponse(200, []byte(`{
			"quiz_run_id": "run-1",
			"engine_version": "v3",
			"gifts": [{"id": "live-1", "title": "Kite"}]
		}`)), nil
	})
	res, err := s.Generate(context.Background(), Request{Answers: quiz.Answers{RecipientAge: 9}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if endpoint != "/recommendations/generate" || got.Method != "POST" || !got.OmitCredentials {
		t.Fatalf("unexpected call %s %+v", endpoint, got)
	}
	body := got.Body.(RequestDTO)
	if body.RecipientAge == nil || *body.RecipientAge != 9 || body.TopN != DefaultTopN {
		t.Fatalf("unexpected request body %+v", body)
	}
	if res.QuizRunID != "run-1" || res.Diagnostic != "" || res.Source != "live" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Gifts[0].Currency != gift.DefaultCurrency {
		t.Fatalf("live gifts should be mapped, got currency %q", res.Gifts[0].Currency)
	}
}

func TestGenerate_RejectsInvalidAnswers(t *testing.T) {
	s := newTestService(nil)
	if _, err := s.Generate(context.Background(), Request{Answers: quiz.Answers{Budget: -5}}); err == nil {
		t.Fatalf("expected validation error")
	}
}
