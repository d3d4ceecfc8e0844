package gift

import (
	"strings"

	"github.com/wichananm65/gift-concierge/internal/transport"
)

// ToDomain maps a wire gift into the app shape. Missing fields get defaults; it never
// fails.
func ToDomain(d GiftDTO) Gift {
	g := Gift{
		ID:          string(d.ID),
		Title:       deref(d.Title),
		Description: deref(d.Description),
		Currency:    strings.ToUpper(strings.TrimSpace(deref(d.Currency))),
		ImageURL:    deref(d.ImageURL),
		ProductURL:  deref(d.ProductURL),
		Merchant:    deref(d.Merchant),
		Category:    deref(d.Category),
		Tags:        append([]string(nil), d.Tags...),
		Reason:      deref(d.Reason),
	}
	if d.Price != nil {
		p := *d.Price
		g.Price = &p
	}
	if g.Currency == "" {
		g.Currency = DefaultCurrency
	}
	if d.Reviews != nil {
		r := ReviewsToDomain(*d.Reviews)
		g.Reviews = &r
	}
	return g
}

// ToDomainList maps every item; a nil input yields an empty, non-nil slice.
func ToDomainList(in []GiftDTO) []Gift {
	out := make([]Gift, 0, len(in))
	for _, d := range in {
		out = append(out, ToDomain(d))
	}
	return out
}

func ReviewsToDomain(d ReviewsDTO) Reviews {
	r := Reviews{
		Rating:     clampRating(deref(d.Rating)),
		Source:     deref(d.Source),
		Highlights: append([]string(nil), d.Highlights...),
		Items:      make([]ReviewItem, 0, len(d.Items)),
	}
	if d.Count != nil && *d.Count > 0 {
		r.Count = *d.Count
	}
	for _, it := range d.Items {
		r.Items = append(r.Items, ReviewItem{
			Author: deref(it.Author),
			Rating: clampRating(deref(it.Rating)),
			Date:   deref(it.Date),
			Text:   deref(it.Text),
			Tag:    deref(it.Tag),
			Photos: append([]string(nil), it.Photos...),
		})
	}
	if r.Count < len(r.Items) {
		r.Count = len(r.Items)
	}
	return r
}

// ToDTO is the write-path inverse of ToDomain.
func ToDTO(g Gift) GiftDTO {
	d := GiftDTO{
		ID:          transport.ID(g.ID),
		Title:       ptr(g.Title),
		Description: optional(g.Description),
		Currency:    optional(g.Currency),
		ImageURL:    optional(g.ImageURL),
		ProductURL:  optional(g.ProductURL),
		Merchant:    optional(g.Merchant),
		Category:    optional(g.Category),
		Tags:        append([]string(nil), g.Tags...),
		Reason:      optional(g.Reason),
	}
	if g.Price != nil {
		p := *g.Price
		d.Price = &p
	}
	if g.Reviews != nil {
		rd := ReviewsDTO{
			Rating:     ptr(g.Reviews.Rating),
			Count:      ptr(g.Reviews.Count),
			Source:     optional(g.Reviews.Source),
			Highlights: append([]string(nil), g.Reviews.Highlights...),
		}
		for _, it := range g.Reviews.Items {
			rd.Items = append(rd.Items, ReviewItemDTO{
				Author: ptr(it.Author),
				Rating: ptr(it.Rating),
				Date:   optional(it.Date),
				Text:   ptr(it.Text),
				Tag:    optional(it.Tag),
				Photos: append([]string(nil), it.Photos...),
			})
		}
		d.Reviews = &rd
	}
	return d
}

func clampRating(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 5:
		return 5
	default:
		return v
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func ptr[T any](v T) *T { return &v }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
