package gift

import (
	"encoding/json"
	"testing"
)

func TestToDomain_DefaultsForMissingFields(t *testing.T) {
	var d GiftDTO
	if err := json.Unmarshal([]byte(`{"id": 42, "title": null}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	g := ToDomain(d)
	if g.ID != "42" {
		t.Fatalf("expected numeric id to map to \"42\", got %q", g.ID)
	}
	if g.Currency != DefaultCurrency {
		t.Fatalf("expected default currency, got %q", g.Currency)
	}
	if g.Price != nil || g.Reviews != nil || g.Title != "" {
		t.Fatalf("absent fields should stay empty: %+v", g)
	}
}

func TestToDomain_ReviewsAreClamped(t *testing.T) {
	raw := `{"id":"a","currency":"eur","reviews":{"rating":7.5,"count":0,
		"items":[{"author":"x","rating":-1,"text":"meh"},{"author":"y","rating":4}]}}`
	var d GiftDTO
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	g := ToDomain(d)
	if g.Currency != "EUR" {
		t.Fatalf("expected EUR, got %q", g.Currency)
	}
	if g.Reviews.Rating != 5 {
		t.Fatalf("aggregate rating should clamp to 5, got %v", g.Reviews.Rating)
	}
	if g.Reviews.Items[0].Rating != 0 {
		t.Fatalf("item rating should clamp to 0, got %v", g.Reviews.Items[0].Rating)
	}
	if g.Reviews.Count != 2 {
		t.Fatalf("count should be at least the item count, got %d", g.Reviews.Count)
	}
}

func TestToDTO_RoundTripsThroughMapper(t *testing.T) {
	price := 12.5
	g := Gift{
		ID: "x", Title: "Mug", Price: &price, Currency: "USD", Tags: []string{"kitchen"},
		Reviews: &Reviews{Rating: 4, Count: 1, Items: []ReviewItem{{Author: "a", Rating: 4, Text: "ok"}}},
	}
	back := ToDomain(ToDTO(g))
	if back.ID != g.ID || back.Title != g.Title || *back.Price != price || back.Reviews.Items[0].Text != "ok" {
		t.Fatalf("unexpected round trip: %+v", back)
	}
}
