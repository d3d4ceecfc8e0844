package user

type User struct {
	ID        string `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Profile struct {
	DisplayName string   `json:"displayName"`
	City        string   `json:"city,omitempty"`
	Interests   []string `json:"interests"`
	Events      []Event  `json:"events"`
}

// Event is a date worth a gift, e.g. a partner's birthday.
type Event struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Person string `json:"person,omitempty"`
}

// ProfilePatch holds the fields a PATCH may change; nil means unchanged.
type ProfilePatch struct {
	DisplayName *string   `json:"displayName,omitempty"`
	City        *string   `json:"city,omitempty"`
	Interests   *[]string `json:"interests,omitempty"`
}

type EventInput struct {
	Title  string `json:"title" validate:"required,max=120"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Person string `json:"person,omitempty" validate:"max=120"`
}
