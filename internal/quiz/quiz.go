package quiz

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Answers are the quiz inputs a recommendation run and a dialogue session start from.
type Answers struct {
	RecipientAge         int      `json:"recipientAge,omitempty" validate:"gte=0,lte=120"`
	RecipientGender      string   `json:"recipientGender,omitempty"`
	Relationship         string   `json:"relationship,omitempty"`
	Occasion             string   `json:"occasion,omitempty"`
	Vibe                 string   `json:"vibe,omitempty"`
	Interests            []string `json:"interests,omitempty" validate:"max=20,dive,max=64"`
	InterestsDescription string   `json:"interestsDescription,omitempty" validate:"max=1000"`
	ExcludeCategories    []string `json:"excludeCategories,omitempty"`
	Budget               float64  `json:"budget,omitempty" validate:"gte=0"`
	City                 string   `json:"city,omitempty"`
}

var validate = validator.New()

// Validate checks value ranges. Every field is optional; a draft may be partial.
func (a Answers) Validate() error {
	return validate.Struct(a)
}

// Empty reports whether nothing has been answered yet.
func (a Answers) Empty() bool {
	return a.RecipientAge == 0 && a.RecipientGender == "" && a.Relationship == "" &&
		a.Occasion == "" && a.Vibe == "" && len(a.Interests) == 0 &&
		a.InterestsDescription == "" && len(a.ExcludeCategories) == 0 && a.Budget == 0 && a.City == ""
}

// Terms are the free-text signals local ranking matches against.
func (a Answers) Terms() []string {
	terms := make([]string, 0, len(a.Interests)+3)
	terms = append(terms, a.Interests...)
	for _, s := range []string{a.Occasion, a.Vibe, a.Relationship} {
		if s = strings.TrimSpace(s); s != "" {
			terms = append(terms, s)
		}
	}
	return terms
}
