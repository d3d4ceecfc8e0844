package user

import "github.com/wichananm65/gift-concierge/internal/transport"

type UserDTO struct {
	ID        transport.ID `json:"id" validate:"required"`
	Email     *string      `json:"email"`
	Name      *string      `json:"name"`
	AvatarURL *string      `json:"avatar_url,omitempty"`
}

type ProfileDTO struct {
	DisplayName *string    `json:"display_name"`
	City        *string    `json:"city"`
	Interests   []string   `json:"interests"`
	Events      []EventDTO `json:"events" validate:"dive"`
}

type EventDTO struct {
	ID     transport.ID `json:"id" validate:"required"`
	Title  *string      `json:"title"`
	Date   *string      `json:"date"`
	Person *string      `json:"person,omitempty"`
}

type ProfilePatchDTO struct {
	DisplayName *string   `json:"display_name,omitempty"`
	City        *string   `json:"city,omitempty"`
	Interests   *[]string `json:"interests,omitempty"`
}

type EventCreateDTO struct {
	Title  string  `json:"title"`
	Date   string  `json:"date"`
	Person *string `json:"person,omitempty"`
}

func ToUser(d UserDTO) User {
	return User{
		ID:        string(d.ID),
		Email:     deref(d.Email),
		Name:      deref(d.Name),
		AvatarURL: deref(d.AvatarURL),
	}
}

func ToProfile(d ProfileDTO) Profile {
	p := Profile{
		DisplayName: deref(d.DisplayName),
		City:        deref(d.City),
		Interests:   append([]string{}, d.Interests...),
		Events:      make([]Event, 0, len(d.Events)),
	}
	for _, e := range d.Events {
		p.Events = append(p.Events, ToEvent(e))
	}
	return p
}

func ToEvent(d EventDTO) Event {
	return Event{
		ID:     string(d.ID),
		Title:  deref(d.Title),
		Date:   deref(d.Date),
		Person: deref(d.Person),
	}
}

func FromProfile(p Profile) ProfileDTO {
	d := ProfileDTO{
		DisplayName: optional(p.DisplayName),
		City:        optional(p.City),
		Interests:   append([]string{}, p.Interests...),
		Events:      make([]EventDTO, 0, len(p.Events)),
	}
	for _, e := range p.Events {
		d.Events = append(d.Events, FromEvent(e))
	}
	return d
}

func FromEvent(e Event) EventDTO {
	return EventDTO{
		ID:     transport.ID(e.ID),
		Title:  optional(e.Title),
		Date:   optional(e.Date),
		Person: optional(e.Person),
	}
}

func FromPatch(p ProfilePatch) ProfilePatchDTO {
	return ProfilePatchDTO{DisplayName: p.DisplayName, City: p.City, Interests: p.Interests}
}

func FromEventInput(in EventInput) EventCreateDTO {
	return EventCreateDTO{Title: in.Title, Date: in.Date, Person: optional(in.Person)}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
