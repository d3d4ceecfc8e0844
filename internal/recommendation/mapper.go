package recommendation

import "github.com/wichananm65/gift-concierge/internal/gift"

// ToRequestDTO maps a request onto the wire. Empty answers are sent as null and slices
// as empty arrays.
func ToRequestDTO(r Request) RequestDTO {
	a := r.Answers
	d := RequestDTO{
		RecipientGender:      optional(a.RecipientGender),
		Relationship:         optional(a.Relationship),
		Occasion:             optional(a.Occasion),
		Vibe:                 optional(a.Vibe),
		Interests:            append([]string{}, a.Interests...),
		InterestsDescription: optional(a.InterestsDescription),
		ExcludeCategories:    append([]string{}, a.ExcludeCategories...),
		City:                 optional(a.City),
		TopN:                 r.TopN,
		Debug:                r.Debug,
	}
	if a.RecipientAge > 0 {
		age := a.RecipientAge
		d.RecipientAge = &age
	}
	if a.Budget > 0 {
		b := a.Budget
		d.Budget = &b
	}
	if d.TopN <= 0 {
		d.TopN = DefaultTopN
	}
	return d
}

// ToResult maps a response; a missing featured gift defaults to the first gift.
func ToResult(d ResponseDTO) Result {
	r := Result{
		QuizRunID:     d.QuizRunID,
		EngineVersion: "unknown",
		Gifts:         gift.ToDomainList(d.Gifts),
		Debug:         d.Debug,
	}
	if d.EngineVersion != nil && *d.EngineVersion != "" {
		r.EngineVersion = *d.EngineVersion
	}
	if d.FeaturedGift != nil {
		f := gift.ToDomain(*d.FeaturedGift)
		r.Featured = &f
	} else if len(r.Gifts) > 0 {
		f := r.Gifts[0]
		r.Featured = &f
	}
	return r
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
