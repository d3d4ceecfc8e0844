package wishlist

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// replayLimit bounds concurrent replay calls when a guest signs in.
const replayLimit = 4

// Store is the in-memory wishlist of one visitor. Mutations are visible immediately and
// reverted if the backend rejects them. Rollback only happens while the call still owns
// the latest intent for its id, so a later add/remove is never undone by an earlier
// failure.
type Store struct {
	mu            sync.Mutex
	backend       Backend
	order         []string
	members       map[string]bool
	intents       map[string]uint64
	seq           uint64
	authenticated bool
	log           *slog.Logger
}

func NewStore(backend Backend, log *slog.Logger) *Store {
	return &Store{
		backend: backend,
		members: make(map[string]bool),
		intents: make(map[string]uint64),
		log:     log,
	}
}

// Load replaces the set with the backend's list.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	backend := s.backend
	s.mu.Unlock()

	ids, err := backend.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.members = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.setLocked(id, true)
	}
	return nil
}

func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[id]
}

// IDs returns the members in insertion order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Add inserts id and then asks the backend to do the same. Adding a member is a no-op.
func (s *Store) Add(ctx context.Context, id string) error {
	return s.mutate(ctx, id, true)
}

// Remove deletes id and then asks the backend to do the same. Removing a non-member is a
// no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, id, false)
}

func (s *Store) mutate(ctx context.Context, id string, want bool) error {
	s.mu.Lock()
	if s.members[id] == want {
		s.mu.Unlock()
		return nil
	}
	s.seq++
	mine := s.seq
	s.intents[id] = mine
	s.setLocked(id, want)
	backend := s.backend
	s.mu.Unlock()

	var err error
	if want {
		err = backend.Add(ctx, id)
	} else {
		err = backend.Remove(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intents[id] != mine {
		// a later call owns this id now
		return err
	}
	delete(s.intents, id)
	if err != nil {
		s.setLocked(id, !want)
		s.log.Warn("wishlist change rolled back", "gift_id", id, "add", want, "error", err.Error())
	}
	return err
}

// Authenticate switches the store to remote on the first call. Guest ids are replayed
// one add at a time, the guest copy is cleared and the set is reloaded from remote.
// Replay failures are logged and do not fail the switch.
func (s *Store) Authenticate(ctx context.Context, remote Backend, guest GuestBackend) error {
	s.mu.Lock()
	if s.authenticated {
		s.mu.Unlock()
		return nil
	}
	s.authenticated = true
	s.backend = remote
	s.mu.Unlock()

	ids, listErr := guest.List(ctx)
	if listErr != nil {
		s.log.Warn("read guest wishlist", "error", listErr.Error())
	}

	var g errgroup.Group
	g.SetLimit(replayLimit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := remote.Add(ctx, id); err != nil {
				s.log.Warn("replay guest wishlist item", "gift_id", id, "error", err.Error())
			}
			return nil
		})
	}
	_ = g.Wait()

	if listErr == nil {
		if err := guest.Clear(ctx); err != nil {
			s.log.Warn("clear guest wishlist", "error", err.Error())
		}
	}
	return s.Load(ctx)
}

func (s *Store) setLocked(id string, member bool) {
	if s.members[id] == member {
		return
	}
	if member {
		s.members[id] = true
		s.order = append(s.order, id)
		return
	}
	delete(s.members, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
