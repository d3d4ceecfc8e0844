package gift

// DefaultCurrency is used when the backend omits a currency.
const DefaultCurrency = "USD"

// Gift is a recommendable product as the app sees it.
type Gift struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	ProductURL  string   `json:"productUrl,omitempty"`
	Merchant    string   `json:"merchant,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Reviews     *Reviews `json:"reviews,omitempty"`
}

type Reviews struct {
	Rating     float64      `json:"rating"`
	Count      int          `json:"count"`
	Source     string       `json:"source,omitempty"`
	Highlights []string     `json:"highlights,omitempty"`
	Items      []ReviewItem `json:"items"`
}

type ReviewItem struct {
	Author string   `json:"author"`
	Rating float64  `json:"rating"`
	Date   string   `json:"date,omitempty"`
	Text   string   `json:"text"`
	Tag    string   `json:"tag,omitempty"`
	Photos []string `json:"photos,omitempty"`
}

// ListParams filters a browse request. A zero Limit means DefaultLimit.
type ListParams struct {
	Limit    int    `query:"limit"`
	Tag      string `query:"tag"`
	Category string `query:"category"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func (p ListParams) normalized() ListParams {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
