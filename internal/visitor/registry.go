package visitor

import (
	"context"
	"sync"
	"time"

	"github.com/wichananm65/gift-concierge/internal/dialogue"
	"github.com/wichananm65/gift-concierge/internal/user"
	"github.com/wichananm65/gift-concierge/internal/wishlist"
)

// Registry hands out one Visitor per guest id.
type Registry struct {
	deps     Deps
	profiles *user.LocalProfiles
	local    *dialogue.LocalProtocol

	mu       sync.Mutex
	visitors map[string]*Visitor
}

func NewRegistry(deps Deps) *Registry {
	r := &Registry{
		deps:     deps,
		profiles: user.NewLocalProfiles(deps.Store),
		visitors: make(map[string]*Visitor),
	}
	if deps.LocalDialogue {
		r.local = dialogue.NewLocalProtocol(deps.Catalog)
	}
	return r
}

// Visit returns the visitor for guestID, creating it on first sight, and moves it to id.
func (r *Registry) Visit(ctx context.Context, guestID string, id user.Identity) (*Visitor, error) {
	if guestID == "" {
		return nil, ErrNoGuestID
	}

	r.mu.Lock()
	v, ok := r.visitors[guestID]
	if !ok {
		v = r.newVisitor(ctx, guestID)
		r.visitors[guestID] = v
	}
	r.mu.Unlock()

	v.identify(ctx, id)
	return v, nil
}

// Sweep forgets visitors not seen for idle and reports how many were dropped. Their
// persisted wishlist, quiz and profile data stays in storage.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, v := range r.visitors {
		v.mu.Lock()
		stale := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if stale {
			delete(r.visitors, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

func (r *Registry) newVisitor(ctx context.Context, guestID string) *Visitor {
	v := &Visitor{GuestID: guestID, reg: r, lastSeen: time.Now()}
	v.gw.Store(r.deps.Gateway)

	if r.deps.DB != nil {
		v.guest = wishlist.NewPostgresBackend(r.deps.DB, guestID)
	} else {
		v.guest = wishlist.NewLocalBackend(r.deps.Store, wishlist.GuestKey(guestID))
	}
	v.wishlist = r.loadStore(ctx, v.guest)
	v.users = user.NewService(v, r.deps.Policies, r.profiles, guestID)

	var proto dialogue.Protocol = dialogue.NewHTTPProtocol(v)
	if r.local != nil {
		proto = r.local
	}
	v.dialogue = dialogue.NewEngine(proto, r.deps.Log.With("guest_id", guestID),
		dialogue.WithThinkDelay(r.deps.ThinkDelay))
	return v
}

// accountBackend is the wishlist of a signed-in user: the remote list, mirrored locally
// so it stays readable while the backend is down.
func (r *Registry) accountBackend(v *Visitor, userID string) wishlist.Backend {
	return wishlist.NewReplicatingBackend(
		wishlist.NewRemoteBackend(v),
		wishlist.NewLocalBackend(r.deps.Store, wishlist.UserKey(userID)),
		r.deps.Policies,
	)
}

func (r *Registry) loadStore(ctx context.Context, b wishlist.Backend) *wishlist.Store {
	s := wishlist.NewStore(b, r.deps.Log)
	if err := s.Load(ctx); err != nil {
		r.deps.Log.Warn("load wishlist", "error", err.Error())
	}
	return s
}
