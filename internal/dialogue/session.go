// Package dialogue runs the conversational recommendation flow: a session moves between
// probing questions, tracks of hypotheses and a deep dive into one hypothesis' products.
package dialogue

import (
	"errors"

	"github.com/wichananm65/gift-concierge/internal/gift"
)

type State string

const (
	// Branching waits for an answer to CurrentProbe. Every session starts here.
	Branching State = "BRANCHING"
	// ShowingHypotheses has one or more tracks, one of them active.
	ShowingHypotheses State = "SHOWING_HYPOTHESES"
	// DeepDive shows the products behind one hypothesis instead of tracks.
	DeepDive State = "DEEP_DIVE"
	// DeadEnd means no viable direction is left in the current branch. Recovery is a
	// restart or a suggest_topics interaction, both user initiated.
	DeadEnd State = "DEAD_END"
)

type PrimaryGap string

const (
	GapPractical  PrimaryGap = "practical"
	GapEmotional  PrimaryGap = "emotional"
	GapExperience PrimaryGap = "experience"
	GapGrowth     PrimaryGap = "growth"
	GapComfort    PrimaryGap = "comfort"
	GapOther      PrimaryGap = "other"
)

// Gaps lists the known vocabulary in display order.
var Gaps = []PrimaryGap{GapPractical, GapEmotional, GapExperience, GapGrowth, GapComfort}

// ParseGap maps unknown values to GapOther.
func ParseGap(s string) PrimaryGap {
	for _, g := range Gaps {
		if string(g) == s {
			return g
		}
	}
	return GapOther
}

type Action string

const (
	AnswerProbe        Action = "answer_probe"
	SelectTrack        Action = "select_track"
	LoadMoreHypotheses Action = "load_more_hypotheses"
	RefineTopic        Action = "refine_topic"
	SuggestTopics      Action = "suggest_topics"
)

type Reaction string

const (
	Like    Reaction = "like"
	Dislike Reaction = "dislike"
)

func (r Reaction) Valid() bool { return r == Like || r == Dislike }

type ProbeOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

type ProbeQuestion struct {
	Text     string        `json:"text"`
	Subtitle string        `json:"subtitle,omitempty"`
	Options  []ProbeOption `json:"options"`
}

type Hypothesis struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	PrimaryGap  PrimaryGap  `json:"primaryGap"`
	Preview     []gift.Gift `json:"preview"`
}

type Track struct {
	TopicID    string       `json:"topicId"`
	TopicName  string       `json:"topicName"`
	Title      string       `json:"title"`
	Status     string       `json:"status"`
	Hypotheses []Hypothesis `json:"hypotheses"`
}

// Session is the client copy of a conversation. Tracks keep server order and are unique
// by TopicID.
type Session struct {
	ID               string         `json:"sessionId"`
	State            State          `json:"state"`
	CurrentProbe     *ProbeQuestion `json:"currentProbe,omitempty"`
	Tracks           []Track        `json:"tracks"`
	DeepDiveProducts []gift.Gift    `json:"deepDiveProducts,omitempty"`
}

var (
	ErrNoSession    = errors.New("dialogue session not started")
	ErrSuperseded   = errors.New("response superseded by a newer interaction")
	ErrUnknownTrack = errors.New("unknown track")
)
