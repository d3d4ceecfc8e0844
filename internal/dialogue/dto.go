package dialogue

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/recommendation"
)

type SessionDTO struct {
	SessionID        string         `json:"session_id"`
	State            string         `json:"state" validate:"omitempty,oneof=BRANCHING SHOWING_HYPOTHESES DEEP_DIVE DEAD_END"`
	CurrentProbe     *ProbeDTO      `json:"current_probe,omitempty"`
	Tracks           TrackList      `json:"tracks" validate:"dive"`
	DeepDiveProducts []gift.GiftDTO `json:"deep_dive_products,omitempty" validate:"dive"`
}

type ProbeDTO struct {
	Question *string          `json:"question"`
	Subtitle *string          `json:"subtitle,omitempty"`
	Options  []ProbeOptionDTO `json:"options"`
}

type ProbeOptionDTO struct {
	ID          string  `json:"id"`
	Label       *string `json:"label"`
	Icon        *string `json:"icon,omitempty"`
	Description *string `json:"description,omitempty"`
}

type TrackDTO struct {
	TopicID    string          `json:"topic_id" validate:"required"`
	TopicName  *string         `json:"topic_name"`
	Title      *string         `json:"title"`
	Status     *string         `json:"status"`
	Hypotheses []HypothesisDTO `json:"hypotheses" validate:"dive"`
}

type HypothesisDTO struct {
	ID              string         `json:"id" validate:"required"`
	Title           *string        `json:"title"`
	Description     *string        `json:"description"`
	PrimaryGap      *string        `json:"primary_gap"`
	PreviewProducts []gift.GiftDTO `json:"preview_products" validate:"dive"`
}

// TrackList decodes either an array of tracks or an object keyed by topic id. Object
// keys keep their document order; a key fills in a missing topic_id.
type TrackList []TrackDTO

func (l *TrackList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case b[0] == '[':
		var items []TrackDTO
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	case b[0] != '{':
		return fmt.Errorf("tracks: expected array or object")
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var items []TrackDTO
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var t TrackDTO
		if err := dec.Decode(&t); err != nil {
			return err
		}
		if t.TopicID == "" {
			t.TopicID = key
		}
		items = append(items, t)
	}
	*l = items
	return nil
}

type InitRequestDTO struct {
	Quiz recommendation.RequestDTO `json:"quiz"`
}

type InteractRequestDTO struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Value     any    `json:"value,omitempty"`
}

type ReactRequestDTO struct {
	SessionID    string `json:"session_id"`
	HypothesisID string `json:"hypothesis_id"`
	Reaction     string `json:"reaction"`
}

type ProductsDTO struct {
	Products []gift.GiftDTO `json:"products" validate:"dive"`
}
