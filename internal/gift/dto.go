package gift

import "github.com/wichananm65/gift-concierge/internal/transport"

// GiftDTO is the wire shape of a gift.
type GiftDTO struct {
	ID          transport.ID `json:"id" validate:"required"`
	Title       *string      `json:"title"`
	Description *string      `json:"description,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	Currency    *string      `json:"currency,omitempty"`
	ImageURL    *string      `json:"image_url,omitempty"`
	ProductURL  *string      `json:"product_url,omitempty"`
	Merchant    *string      `json:"merchant,omitempty"`
	Category    *string      `json:"category,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Reason      *string      `json:"reason,omitempty"`
	Reviews     *ReviewsDTO  `json:"reviews,omitempty"`
}

type ReviewsDTO struct {
	Rating     *float64        `json:"rating,omitempty"`
	Count      *int            `json:"count,omitempty"`
	Source     *string         `json:"source,omitempty"`
	Highlights []string        `json:"highlights,omitempty"`
	Items      []ReviewItemDTO `json:"items,omitempty"`
}

type ReviewItemDTO struct {
	Author *string  `json:"author,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
	Date   *string  `json:"date,omitempty"`
	Text   *string  `json:"text,omitempty"`
	Tag    *string  `json:"tag,omitempty"`
	Photos []string `json:"photos,omitempty"`
}

// ListDTO is the enveloped form of GET /gifts; some deployments return a bare array.
type ListDTO struct {
	Gifts []GiftDTO `json:"gifts" validate:"dive"`
	Total *int      `json:"total,omitempty"`
}

// BatchRequestDTO is the body of the batch lookup endpoint.
type BatchRequestDTO struct {
	IDs []string `json:"ids"`
}
