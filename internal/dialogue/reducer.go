package dialogue

// Merge folds a server snapshot into the previous session. A non-empty track list
// replaces the old one entirely; an empty one keeps the previous tracks. State, probe
// and deep-dive products always come from incoming. An empty incoming ID keeps the
// previous one.
func Merge(prev, incoming Session) Session {
	out := Session{
		ID:               incoming.ID,
		State:            incoming.State,
		CurrentProbe:     incoming.CurrentProbe,
		Tracks:           incoming.Tracks,
		DeepDiveProducts: incoming.DeepDiveProducts,
	}
	if out.ID == "" {
		out.ID = prev.ID
	}
	if len(incoming.Tracks) == 0 {
		out.Tracks = prev.Tracks
	}
	return out
}

// ResolveActiveTrack keeps active when it names a track in tracks and otherwise falls
// back to the first track. It returns "" only for an empty list.
func ResolveActiveTrack(tracks []Track, active string) string {
	if len(tracks) == 0 {
		return ""
	}
	for _, t := range tracks {
		if t.TopicID == active {
			return active
		}
	}
	return tracks[0].TopicID
}

// RemoveHypothesis drops hypothesis id from whichever track holds it. Other tracks and
// hypotheses are shared with s, not copied.
func RemoveHypothesis(s Session, id string) Session {
	tracks := make([]Track, len(s.Tracks))
	copy(tracks, s.Tracks)
	for i, t := range tracks {
		idx := -1
		for j, h := range t.Hypotheses {
			if h.ID == id {
				idx = j
				break
			}
		}
		if idx < 0 {
			continue
		}
		hs := make([]Hypothesis, 0, len(t.Hypotheses)-1)
		hs = append(hs, t.Hypotheses[:idx]...)
		hs = append(hs, t.Hypotheses[idx+1:]...)
		tracks[i].Hypotheses = hs
	}
	s.Tracks = tracks
	return s
}

// FindTrack returns the track with topicID.
func FindTrack(s Session, topicID string) (Track, bool) {
	for _, t := range s.Tracks {
		if t.TopicID == topicID {
			return t, true
		}
	}
	return Track{}, false
}

// FindHypothesis returns the hypothesis with id and the topic of its track.
func FindHypothesis(s Session, id string) (Hypothesis, string, bool) {
	for _, t := range s.Tracks {
		for _, h := range t.Hypotheses {
			if h.ID == id {
				return h, t.TopicID, true
			}
		}
	}
	return Hypothesis{}, "", false
}
