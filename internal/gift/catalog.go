package gift

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"

	"github.com/wichananm65/gift-concierge/internal/transport"
)

// Catalog is the deterministic local dataset served when the live backend cannot be
// trusted. It stores wire DTOs so local results go through the same mapper as live ones.
type Catalog struct {
	mu      sync.RWMutex
	storage []GiftDTO
}

// NewCatalog seeds the catalog; a nil seed uses the built-in sample gifts.
func NewCatalog(seed []GiftDTO) *Catalog {
	if seed == nil {
		seed = sampleGifts()
	}
	c := &Catalog{storage: make([]GiftDTO, 0, len(seed))}
	c.storage = append(c.storage, seed...)
	return c
}

// All returns every seeded gift in seed order.
func (c *Catalog) All() []GiftDTO {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]GiftDTO, len(c.storage))
	copy(out, c.storage)
	return out
}

// Get returns the seeded gift with id, or a gift synthesized from a template chosen by
// hashing id. The result always carries the requested id.
func (c *Catalog) Get(id string) GiftDTO {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.storage {
		if string(g.ID) == id {
			return g
		}
	}
	if len(c.storage) == 0 {
		return GiftDTO{ID: transport.ID(id), Title: ptr("Gift " + id)}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	tmpl := c.storage[int(h.Sum32()%uint32(len(c.storage)))]
	tmpl.ID = transport.ID(id)
	return tmpl
}

// GetMany preserves the order of ids, duplicates included.
func (c *Catalog) GetMany(ids []string) []GiftDTO {
	out := make([]GiftDTO, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.Get(id))
	}
	return out
}

// List returns exactly Limit gifts. Matches for tag/category come first; the rest is
// filled by cycling the catalog with suffixed ids.
func (c *Catalog) List(p ListParams) []GiftDTO {
	p = p.normalized()
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]GiftDTO, 0, p.Limit)
	if len(c.storage) == 0 {
		return out
	}
	pool := make([]GiftDTO, 0, len(c.storage))
	for _, g := range c.storage {
		if matches(g, p) {
			pool = append(pool, g)
		}
	}
	if len(pool) == 0 {
		pool = c.storage
	}
	for i := 0; len(out) < p.Limit; i++ {
		g := pool[i%len(pool)]
		if round := i / len(pool); round > 0 {
			g.ID = transport.ID(fmt.Sprintf("%s-%d", g.ID, round))
		}
		out = append(out, g)
	}
	return out
}

// Search ranks gifts by how many of terms appear in their tags, category or title.
// Gifts over budget are skipped when budget > 0.
func (c *Catalog) Search(terms []string, budget float64, limit int) []GiftDTO {
	c.mu.RLock()
	defer c.mu.RUnlock()

	type scored struct {
		g     GiftDTO
		score int
	}
	ranked := make([]scored, 0, len(c.storage))
	for _, g := range c.storage {
		if budget > 0 && g.Price != nil && *g.Price > budget {
			continue
		}
		ranked = append(ranked, scored{g: g, score: overlap(g, terms)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]GiftDTO, 0, limit)
	for _, s := range ranked[:limit] {
		out = append(out, s.g)
	}
	return out
}

func matches(g GiftDTO, p ListParams) bool {
	if p.Category != "" && !strings.EqualFold(deref(g.Category), p.Category) {
		return false
	}
	if p.Tag != "" && !hasTag(g, p.Tag) {
		return false
	}
	return true
}

func hasTag(g GiftDTO, tag string) bool {
	for _, t := range g.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func overlap(g GiftDTO, terms []string) int {
	haystack := strings.ToLower(deref(g.Title) + " " + deref(g.Category) + " " + strings.Join(g.Tags, " "))
	n := 0
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(haystack, t) {
			n++
		}
	}
	return n
}

func sampleGifts() []GiftDTO {
	price := func(v float64) *float64 { return &v }
	return []GiftDTO{
		{
			ID: "g-001", Title: ptr("Pour-over coffee kit"), Description: ptr("Ceramic dripper, kettle and two mugs"),
			Price: price(64), Currency: ptr("USD"), Merchant: ptr("Brewline"), Category: ptr("kitchen"),
			Tags: []string{"coffee", "cooking", "practical"}, ImageURL: ptr("/local/gifts/coffee-kit.jpg"),
			Reviews: &ReviewsDTO{Rating: price(4.6), Count: ptr(212), Source: ptr("Brewline"),
				Highlights: []string{"great starter kit"},
				Items: []ReviewItemDTO{{Author: ptr("Dana"), Rating: price(5), Date: ptr("2024-11-02"), Text: ptr("My dad uses it every morning.")}}},
		},
		{
			ID: "g-002", Title: ptr("Hand-bound travel journal"), Description: ptr("Leather cover, 200 dotted pages"),
			Price: price(38), Currency: ptr("USD"), Merchant: ptr("Paper & Co"), Category: ptr("stationery"),
			Tags: []string{"travel", "writing", "emotional"}, ImageURL: ptr("/local/gifts/journal.jpg"),
		},
		{
			ID: "g-003", Title: ptr("Pottery class for two"), Description: ptr("Three-hour wheel throwing workshop"),
			Price: price(120), Currency: ptr("USD"), Merchant: ptr("Studio Clay"), Category: ptr("experiences"),
			Tags: []string{"art", "experience", "couples"},
		},
		{
			ID: "g-004", Title: ptr("Weighted knit blanket"), Description: ptr("Chunky knit, 7 kg"),
			Price: price(89), Currency: ptr("USD"), Merchant: ptr("Loomhouse"), Category: ptr("home"),
			Tags: []string{"comfort", "sleep", "home"}, ImageURL: ptr("/local/gifts/blanket.jpg"),
			Reviews: &ReviewsDTO{Rating: price(4.8), Count: ptr(95),
				Items: []ReviewItemDTO{{Author: ptr("Sam"), Rating: price(5), Text: ptr("Cosiest thing I own."), Tag: ptr("verified")}}},
		},
		{
			ID: "g-005", Title: ptr("Beginner climbing pass"), Description: ptr("Five bouldering sessions with shoe rental"),
			Price: price(75), Currency: ptr("USD"), Merchant: ptr("Crux Gym"), Category: ptr("experiences"),
			Tags: []string{"sport", "fitness", "growth", "experience"},
		},
		{
			ID: "g-006", Title: ptr("Online photography course"), Description: ptr("Twelve self-paced lessons"),
			Price: price(49), Currency: ptr("USD"), Merchant: ptr("Lenscraft"), Category: ptr("learning"),
			Tags: []string{"photography", "art", "growth"},
		},
		{
			ID: "g-007", Title: ptr("Cast iron skillet"), Description: ptr("Pre-seasoned 12 inch skillet"),
			Price: price(45), Currency: ptr("USD"), Merchant: ptr("Forge Kitchen"), Category: ptr("kitchen"),
			Tags: []string{"cooking", "practical"},
		},
		{
			ID: "g-008", Title: ptr("Custom star map print"), Description: ptr("The night sky of a date you choose"),
			Price: price(55), Currency: ptr("USD"), Merchant: ptr("Nightframe"), Category: ptr("decor"),
			Tags: []string{"anniversary", "emotional", "personalized"}, ImageURL: ptr("/local/gifts/star-map.jpg"),
		},
		{
			ID: "g-009", Title: ptr("Noise-cancelling earbuds"), Description: ptr("30 hour battery, wireless case"),
			Price: price(149), Currency: ptr("USD"), Merchant: ptr("Audiora"), Category: ptr("tech"),
			Tags: []string{"music", "travel", "tech", "practical"},
		},
		{
			ID: "g-010", Title: ptr("Herb garden starter"), Description: ptr("Self-watering planter with six herbs"),
			Price: price(35), Currency: ptr("USD"), Merchant: ptr("Sprout"), Category: ptr("home"),
			Tags: []string{"gardening", "cooking", "growth"},
		},
		{
			ID: "g-011", Title: ptr("Board game night bundle"), Description: ptr("Two strategy games and snacks"),
			Price: price(68), Currency: ptr("USD"), Merchant: ptr("Meeple Market"), Category: ptr("games"),
			Tags: []string{"games", "friends", "experience"},
		},
		{
			ID: "g-012", Title: ptr("Silk sleep set"), Description: ptr("Pillowcase and eye mask"),
			Price: price(59), Currency: ptr("USD"), Merchant: ptr("Lune"), Category: ptr("wellness"),
			Tags: []string{"sleep", "comfort", "self-care"},
		},
	}
}
