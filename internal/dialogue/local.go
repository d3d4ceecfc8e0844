package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/quiz"
)

const (
	localTracksPerTurn = 3
	localPreviewSize   = 3
	localProductsSize  = 6
)

// LocalProtocol is an offline conversation backed by the local gift catalog. It builds
// wire snapshots and maps them like HTTPProtocol does, so callers cannot tell them apart.
// Used in development and tests.
type LocalProtocol struct {
	catalog  *gift.Catalog
	mu       sync.Mutex
	sessions map[string]*localSession
	opened   int
}

type localSession struct {
	answers quiz.Answers
	terms   []string
	gap     PrimaryGap
	offered map[string]bool
	made    map[string]int
	tracks  []TrackDTO
}

func NewLocalProtocol(catalog *gift.Catalog) *LocalProtocol {
	return &LocalProtocol{catalog: catalog, sessions: make(map[string]*localSession)}
}

func (p *LocalProtocol) Init(_ context.Context, answers quiz.Answers) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.opened++
	seed, _ := json.Marshal(answers)
	id := uuid.NewSHA1(uuid.NameSpaceOID, append(seed, fmt.Sprintf("#%d", p.opened)...)).String()
	p.sessions[id] = &localSession{
		answers: answers,
		terms:   answers.Terms(),
		offered: make(map[string]bool),
		made:    make(map[string]int),
	}
	return ToSession(SessionDTO{
		SessionID:    id,
		State:        string(Branching),
		CurrentProbe: gapProbe(),
	}), nil
}

func (p *LocalProtocol) Interact(_ context.Context, sessionID string, action Action, value any) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ls, ok := p.sessions[sessionID]
	if !ok {
		return Session{}, ErrNoSession
	}
	out := SessionDTO{SessionID: sessionID, State: string(ShowingHypotheses)}

	switch action {
	case AnswerProbe:
		ls.gap = ParseGap(valueString(value))
		ls.offered = make(map[string]bool)
		ls.tracks = p.buildTracks(ls)
		out.Tracks = ls.tracks
	case SelectTrack:
		// scoped reply: tracks are left to the client
	case LoadMoreHypotheses:
		topic := valueString(value)
		for i := range ls.tracks {
			if ls.tracks[i].TopicID == topic {
				ls.tracks[i].Hypotheses = append(ls.tracks[i].Hypotheses, p.hypothesis(ls, ls.tracks[i]))
			}
		}
		out.Tracks = ls.tracks
	case RefineTopic:
		if v := strings.TrimSpace(valueString(value)); v != "" {
			ls.terms = append([]string{v}, ls.terms...)
		}
		ls.offered = make(map[string]bool)
		ls.tracks = p.buildTracks(ls)
		out.Tracks = ls.tracks
	case SuggestTopics:
		ls.tracks = p.buildTracks(ls)
		out.Tracks = ls.tracks
	default:
		return Session{}, fmt.Errorf("unsupported action %q", action)
	}

	if action != SelectTrack && len(out.Tracks) == 0 {
		out.State = string(DeadEnd)
	}
	return ToSession(out), nil
}

func (p *LocalProtocol) React(_ context.Context, sessionID, hypothesisID string, kind Reaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ls, ok := p.sessions[sessionID]
	if !ok {
		return ErrNoSession
	}
	if kind != Dislike {
		return nil
	}
	for i := range ls.tracks {
		kept := ls.tracks[i].Hypotheses[:0]
		for _, h := range ls.tracks[i].Hypotheses {
			if h.ID != hypothesisID {
				kept = append(kept, h)
			}
		}
		ls.tracks[i].Hypotheses = kept
	}
	return nil
}

func (p *LocalProtocol) Products(_ context.Context, sessionID, hypothesisID string) ([]gift.Gift, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ls, ok := p.sessions[sessionID]
	if !ok {
		return nil, ErrNoSession
	}
	for _, t := range ls.tracks {
		for _, h := range t.Hypotheses {
			if h.ID == hypothesisID {
				category := deref(t.TopicName)
				return gift.ToDomainList(p.catalog.List(gift.ListParams{Category: category, Limit: localProductsSize})), nil
			}
		}
	}
	return nil, fmt.Errorf("unknown hypothesis %q", hypothesisID)
}

// buildTracks offers up to localTracksPerTurn categories not offered yet in this branch,
// best matches first.
func (p *LocalProtocol) buildTracks(ls *localSession) []TrackDTO {
	var tracks []TrackDTO
	for _, g := range p.catalog.Search(ls.terms, ls.answers.Budget, 0) {
		category := deref(g.Category)
		if category == "" || ls.offered[category] || excluded(ls.answers, category) {
			continue
		}
		ls.offered[category] = true
		name := category
		t := TrackDTO{
			TopicID:   "topic-" + category,
			TopicName: &name,
			Title:     strPtr(fmt.Sprintf("Ideas in %s", category)),
			Status:    strPtr("open"),
		}
		t.Hypotheses = []HypothesisDTO{p.hypothesis(ls, t)}
		tracks = append(tracks, t)
		if len(tracks) == localTracksPerTurn {
			break
		}
	}
	return tracks
}

// hypothesis builds the next hypothesis of t, cycling the gap vocabulary from the
// answered gap. Ids are never reused within a session.
func (p *LocalProtocol) hypothesis(ls *localSession, t TrackDTO) HypothesisDTO {
	n := ls.made[t.TopicID]
	ls.made[t.TopicID]++
	start := 0
	for i, g := range Gaps {
		if g == ls.gap {
			start = i
		}
	}
	gap := Gaps[(start+len(t.Hypotheses))%len(Gaps)]
	category := deref(t.TopicName)
	preview := p.catalog.List(gift.ListParams{Category: category, Limit: localPreviewSize})
	return HypothesisDTO{
		ID:              fmt.Sprintf("%s-%s-%d", t.TopicID, gap, n),
		Title:           strPtr(fmt.Sprintf("A %s %s gift", gap, category)),
		Description:     strPtr(fmt.Sprintf("Something %s from %s they would not buy for themselves.", gap, category)),
		PrimaryGap:      strPtr(string(gap)),
		PreviewProducts: preview,
	}
}

func gapProbe() *ProbeDTO {
	opts := make([]ProbeOptionDTO, 0, len(Gaps))
	for _, g := range Gaps {
		opts = append(opts, ProbeOptionDTO{ID: string(g), Label: strPtr(strings.ToUpper(string(g[:1])) + string(g[1:]))})
	}
	return &ProbeDTO{
		Question: strPtr("What should this gift do for them?"),
		Subtitle: strPtr("Pick the one that fits best"),
		Options:  opts,
	}
}

func excluded(a quiz.Answers, category string) bool {
	for _, c := range a.ExcludeCategories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func strPtr(s string) *string { return &s }
