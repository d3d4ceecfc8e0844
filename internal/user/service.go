package user

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wichananm65/gift-concierge/internal/fallback"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

var validate = validator.New()

// Service talks to the auth and profile endpoints on behalf of one owner. owner keys the
// local profile copy: the user id when signed in, the guest id otherwise.
type Service struct {
	sender   transport.Sender
	policies *fallback.Resolver
	profiles *LocalProfiles
	owner    string
}

func NewService(sender transport.Sender, policies *fallback.Resolver, profiles *LocalProfiles, owner string) *Service {
	return &Service{sender: sender, policies: policies, profiles: profiles, owner: owner}
}

// CurrentUser resolves to nil when nobody is signed in or the lookup fails. It is not an
// error for a guest, so the call is not logged.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	out, err := fallback.Run(ctx, s.policies, fallback.CurrentUser,
		func(ctx context.Context) (*UserDTO, error) {
			res, err := s.sender.Send(ctx, "/auth/me", transport.Options{Quiet: true})
			if err != nil {
				return nil, err
			}
			d, err := transport.Decode[UserDTO](res)
			if err != nil {
				return nil, err
			}
			return &d, nil
		},
		func(context.Context) (*UserDTO, error) { return nil, nil },
		nil,
	)
	if err != nil || out.Value == nil {
		return nil, err
	}
	u := ToUser(*out.Value)
	return &u, nil
}

func (s *Service) Logout(ctx context.Context) error {
	_, err := s.sender.Send(ctx, "/auth/logout", transport.Options{Method: "POST", Quiet: true})
	return err
}

// StartURL is where the browser goes to begin an OAuth sign-in with provider.
func StartURL(baseURL, provider, redirect string) string {
	u := strings.TrimRight(baseURL, "/") + "/auth/" + url.PathEscape(provider) + "/start"
	if redirect != "" {
		u += "?" + url.Values{"redirect_url": {redirect}}.Encode()
	}
	return u
}

func (s *Service) Profile(ctx context.Context) (Profile, error) {
	out, err := fallback.Run(ctx, s.policies, fallback.ProfileRead,
		func(ctx context.Context) (ProfileDTO, error) {
			res, err := s.sender.Send(ctx, "/users/me/profile", transport.Options{})
			if err != nil {
				return ProfileDTO{}, err
			}
			return transport.Decode[ProfileDTO](res)
		},
		func(ctx context.Context) (ProfileDTO, error) {
			return s.profiles.Get(ctx, s.owner), nil
		},
		nil,
	)
	if err != nil {
		return Profile{}, err
	}
	if out.Source == fallback.SourceLive {
		_ = s.profiles.Save(ctx, s.owner, out.Value)
	}
	return ToProfile(out.Value), nil
}

func (s *Service) UpdateProfile(ctx context.Context, patch ProfilePatch) (Profile, error) {
	body := FromPatch(patch)
	out, err := fallback.Run(ctx, s.policies, fallback.ProfileWrite,
		func(ctx context.Context) (ProfileDTO, error) {
			res, err := s.sender.Send(ctx, "/users/me/profile", transport.Options{Method: "PATCH", Body: body})
			if err != nil {
				return ProfileDTO{}, err
			}
			return transport.Decode[ProfileDTO](res)
		},
		func(ctx context.Context) (ProfileDTO, error) {
			return s.profiles.Patch(ctx, s.owner, body)
		},
		nil,
	)
	if err != nil {
		return Profile{}, err
	}
	if out.Source == fallback.SourceLive {
		_ = s.profiles.Save(ctx, s.owner, out.Value)
	}
	return ToProfile(out.Value), nil
}

func (s *Service) AddEvent(ctx context.Context, in EventInput) (Event, error) {
	if err := validate.Struct(in); err != nil {
		return Event{}, err
	}
	body := FromEventInput(in)
	out, err := fallback.Run(ctx, s.policies, fallback.EventsWrite,
		func(ctx context.Context) (EventDTO, error) {
			res, err := s.sender.Send(ctx, "/users/me/events", transport.Options{Method: "POST", Body: body})
			if err != nil {
				return EventDTO{}, err
			}
			return transport.Decode[EventDTO](res)
		},
		func(ctx context.Context) (EventDTO, error) {
			return s.profiles.AddEvent(ctx, s.owner, body)
		},
		nil,
	)
	if err != nil {
		return Event{}, err
	}
	if out.Source == fallback.SourceLive {
		_, _ = s.profiles.PutEvent(ctx, s.owner, out.Value)
	}
	return ToEvent(out.Value), nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	out, err := fallback.Run(ctx, s.policies, fallback.EventsWrite,
		func(ctx context.Context) (struct{}, error) {
			_, err := s.sender.Send(ctx, "/users/me/events/"+url.PathEscape(id), transport.Options{Method: "DELETE"})
			return struct{}{}, err
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.profiles.DeleteEvent(ctx, s.owner, id)
		},
		nil,
	)
	if err != nil {
		return err
	}
	if out.Source == fallback.SourceLive {
		_ = s.profiles.DeleteEvent(ctx, s.owner, id)
	}
	return nil
}
