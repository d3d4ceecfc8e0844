package user

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/wichananm65/gift-concierge/internal/storage"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

// LocalProfiles keeps a profile per owner in the key-value store. It is the local side of
// profile reads and of replicated profile writes.
type LocalProfiles struct {
	mu    sync.Mutex
	store storage.Store
}

func NewLocalProfiles(store storage.Store) *LocalProfiles {
	return &LocalProfiles{store: store}
}

func profileKey(owner string) string { return "profile:" + owner }

// Get returns the stored profile, or an empty one.
func (r *LocalProfiles) Get(ctx context.Context, owner string) ProfileDTO {
	var d ProfileDTO
	if !storage.ReadJSON(ctx, r.store, profileKey(owner), &d) {
		return ProfileDTO{Interests: []string{}, Events: []EventDTO{}}
	}
	return d
}

func (r *LocalProfiles) Save(ctx context.Context, owner string, d ProfileDTO) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return storage.WriteJSON(ctx, r.store, profileKey(owner), d)
}

func (r *LocalProfiles) Patch(ctx context.Context, owner string, patch ProfilePatchDTO) (ProfileDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.Get(ctx, owner)
	if patch.DisplayName != nil {
		d.DisplayName = patch.DisplayName
	}
	if patch.City != nil {
		d.City = patch.City
	}
	if patch.Interests != nil {
		d.Interests = append([]string{}, (*patch.Interests)...)
	}
	return d, storage.WriteJSON(ctx, r.store, profileKey(owner), d)
}

// AddEvent stores e under a fresh id.
func (r *LocalProfiles) AddEvent(ctx context.Context, owner string, e EventCreateDTO) (EventDTO, error) {
	title, date := e.Title, e.Date
	return r.PutEvent(ctx, owner, EventDTO{
		ID:     transport.ID("local-" + uuid.NewString()),
		Title:  &title,
		Date:   &date,
		Person: e.Person,
	})
}

// PutEvent inserts or replaces the event with the same id.
func (r *LocalProfiles) PutEvent(ctx context.Context, owner string, ev EventDTO) (EventDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.Get(ctx, owner)
	replaced := false
	for i := range d.Events {
		if d.Events[i].ID == ev.ID {
			d.Events[i] = ev
			replaced = true
		}
	}
	if !replaced {
		d.Events = append(d.Events, ev)
	}
	return ev, storage.WriteJSON(ctx, r.store, profileKey(owner), d)
}

// DeleteEvent is a no-op for unknown ids.
func (r *LocalProfiles) DeleteEvent(ctx context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.Get(ctx, owner)
	kept := d.Events[:0]
	for _, e := range d.Events {
		if string(e.ID) != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(d.Events) {
		return nil
	}
	d.Events = kept
	return storage.WriteJSON(ctx, r.store, profileKey(owner), d)
}
