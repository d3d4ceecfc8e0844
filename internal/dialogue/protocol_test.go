package dialogue

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/wichananm65/gift-concierge/internal/quiz"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

func reply(status int, body string, seen *[]string) transport.SenderFunc {
	return func(_ context.Context, endpoint string, opts transport.Options) (*transport.Response, error) {
		if seen != nil {
			*seen = append(*seen, opts.Method+" "+endpoint)
		}
		return transport.NewResponse(status, []byte(body)), nil
	}
}

func TestTrackList_ObjectKeepsDocumentOrder(t *testing.T) {
	raw := `{"session_id":"s","state":"SHOWING_HYPOTHESES","tracks":{
		"zeta":{"title":"Z","hypotheses":[{"id":"z1","primary_gap":"growth"}]},
		"alpha":{"topic_id":"alpha","title":"A","hypotheses":[]}
	}}`
	var d SessionDTO
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	s := ToSession(d)
	if ids := topics(s); len(ids) != 2 || ids[0] != "zeta" || ids[1] != "alpha" {
		t.Fatalf("expected document order zeta,alpha, got %v", ids)
	}
	if s.Tracks[0].Hypotheses[0].PrimaryGap != GapGrowth {
		t.Fatalf("unexpected gap %q", s.Tracks[0].Hypotheses[0].PrimaryGap)
	}
}

func TestToSession_Normalizes(t *testing.T) {
	gap := "mystery"
	d := SessionDTO{
		State: "SOMETHING_NEW",
		Tracks: TrackList{
			{TopicID: "a", Hypotheses: []HypothesisDTO{{ID: "h", PrimaryGap: &gap}}},
			{TopicID: "a"},
		},
	}
	s := ToSession(d)
	if s.State != Branching {
		t.Fatalf("unknown state should read as branching, got %q", s.State)
	}
	if len(s.Tracks) != 1 || len(s.Tracks[0].Hypotheses) != 1 {
		t.Fatalf("duplicate topic should keep the first track, got %+v", s.Tracks)
	}
	if s.Tracks[0].Hypotheses[0].PrimaryGap != GapOther {
		t.Fatalf("unknown gap should map to other")
	}
}

func TestHTTPProtocol_InitAndInteract(t *testing.T) {
	var seen []string
	p := NewHTTPProtocol(reply(200, `{"session_id":"s-9","state":"BRANCHING","current_probe":{"question":"Why?","options":[{"id":"practical","label":"Practical"}]}}`, &seen))
	ctx := context.Background()

	s, err := p.Init(ctx, quiz.Answers{Interests: []string{"tea"}})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if s.ID != "s-9" || s.CurrentProbe == nil || s.CurrentProbe.Text != "Why?" {
		t.Fatalf("unexpected session %+v", s)
	}
	if _, err := p.Interact(ctx, s.ID, AnswerProbe, "practical"); err != nil {
		t.Fatalf("interact: %v", err)
	}
	if len(seen) != 2 || seen[0] != "POST /gutg/init" || seen[1] != "POST /gutg/interact" {
		t.Fatalf("unexpected calls %v", seen)
	}
}

func TestHTTPProtocol_RejectsInvalidSnapshot(t *testing.T) {
	p := NewHTTPProtocol(reply(200, `{"session_id":"s","state":"ASLEEP"}`, nil))
	if _, err := p.Interact(context.Background(), "s", RefineTopic, "x"); err == nil {
		t.Fatalf("expected validation error for unknown state")
	}
}

func TestHTTPProtocol_ProductsShapes(t *testing.T) {
	ctx := context.Background()
	var seen []string
	envelope := NewHTTPProtocol(reply(200, `{"products":[{"id":1,"title":"Mug"}]}`, &seen))
	got, err := envelope.Products(ctx, "s 1", "h/1")
	if err != nil || len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("envelope: %+v %v", got, err)
	}
	if !strings.HasPrefix(seen[0], "GET /gutg/hypotheses/h%2F1/products?session_id=s+1") {
		t.Fatalf("unexpected endpoint %q", seen[0])
	}

	array := NewHTTPProtocol(reply(200, `[{"id":"a"},{"id":"b"}]`, nil))
	got, err = array.Products(ctx, "s", "h")
	if err != nil || len(got) != 2 {
		t.Fatalf("array: %+v %v", got, err)
	}

	empty := NewHTTPProtocol(reply(204, ``, nil))
	got, err = empty.Products(ctx, "s", "h")
	if err != nil || len(got) != 0 {
		t.Fatalf("empty: %+v %v", got, err)
	}
}
