package dialogue

import "github.com/wichananm65/gift-concierge/internal/gift"

// ToSession maps a wire snapshot. An unknown or empty state reads as Branching, and
// duplicate topic ids keep their first track.
func ToSession(d SessionDTO) Session {
	s := Session{
		ID:               d.SessionID,
		State:            parseState(d.State),
		Tracks:           make([]Track, 0, len(d.Tracks)),
		DeepDiveProducts: gift.ToDomainList(d.DeepDiveProducts),
	}
	if d.CurrentProbe != nil {
		p := ToProbe(*d.CurrentProbe)
		s.CurrentProbe = &p
	}
	seen := make(map[string]bool, len(d.Tracks))
	for _, t := range d.Tracks {
		if seen[t.TopicID] {
			continue
		}
		seen[t.TopicID] = true
		s.Tracks = append(s.Tracks, ToTrack(t))
	}
	if len(s.DeepDiveProducts) == 0 {
		s.DeepDiveProducts = nil
	}
	return s
}

func ToProbe(d ProbeDTO) ProbeQuestion {
	p := ProbeQuestion{
		Text:     deref(d.Question),
		Subtitle: deref(d.Subtitle),
		Options:  make([]ProbeOption, 0, len(d.Options)),
	}
	for _, o := range d.Options {
		p.Options = append(p.Options, ProbeOption{
			ID:          o.ID,
			Label:       deref(o.Label),
			Icon:        deref(o.Icon),
			Description: deref(o.Description),
		})
	}
	return p
}

func ToTrack(d TrackDTO) Track {
	t := Track{
		TopicID:    d.TopicID,
		TopicName:  deref(d.TopicName),
		Title:      deref(d.Title),
		Status:     deref(d.Status),
		Hypotheses: make([]Hypothesis, 0, len(d.Hypotheses)),
	}
	for _, h := range d.Hypotheses {
		t.Hypotheses = append(t.Hypotheses, ToHypothesis(h))
	}
	return t
}

func ToHypothesis(d HypothesisDTO) Hypothesis {
	return Hypothesis{
		ID:          d.ID,
		Title:       deref(d.Title),
		Description: deref(d.Description),
		PrimaryGap:  ParseGap(deref(d.PrimaryGap)),
		Preview:     gift.ToDomainList(d.PreviewProducts),
	}
}

func parseState(s string) State {
	switch State(s) {
	case ShowingHypotheses, DeepDive, DeadEnd:
		return State(s)
	default:
		return Branching
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
