package recommendation

import (
	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/quiz"
)

// DefaultTopN is used when a request does not ask for a count.
const DefaultTopN = 8

type Request struct {
	Answers quiz.Answers
	TopN    int
	Debug   bool
}

// Result is a generated recommendation. Diagnostic holds the live failure message when
// the gifts were substituted locally, and is empty otherwise.
type Result struct {
	QuizRunID     string      `json:"quizRunId"`
	EngineVersion string      `json:"engineVersion"`
	Featured      *gift.Gift  `json:"featuredGift,omitempty"`
	Gifts         []gift.Gift `json:"gifts"`
	Debug         any         `json:"debug,omitempty"`
	Source        string      `json:"source"`
	Diagnostic    string      `json:"diagnostic,omitempty"`
}

// RequestDTO is the body of POST /recommendations/generate.
type RequestDTO struct {
	RecipientAge         *int     `json:"recipient_age"`
	RecipientGender      *string  `json:"recipient_gender"`
	Relationship         *string  `json:"relationship"`
	Occasion             *string  `json:"occasion"`
	Vibe                 *string  `json:"vibe"`
	Interests            []string `json:"interests"`
	InterestsDescription *string  `json:"interests_description"`
	ExcludeCategories    []string `json:"exclude_categories"`
	Budget               *float64 `json:"budget"`
	City                 *string  `json:"city"`
	TopN                 int      `json:"top_n"`
	Debug                bool     `json:"debug"`
}

type ResponseDTO struct {
	QuizRunID     string         `json:"quiz_run_id" validate:"required"`
	EngineVersion *string        `json:"engine_version"`
	FeaturedGift  *gift.GiftDTO  `json:"featured_gift"`
	Gifts         []gift.GiftDTO `json:"gifts" validate:"dive"`
	Debug         any            `json:"debug,omitempty"`
}
