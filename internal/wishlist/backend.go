package wishlist

import (
	"context"
	"sync"

	"github.com/wichananm65/gift-concierge/internal/storage"
)

// Backend owns the durable copy of a wishlist. Add and Remove are idempotent.
type Backend interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// GuestBackend is a backend that can be emptied once its ids have been handed over to an
// authenticated account.
type GuestBackend interface {
	Backend
	Clear(ctx context.Context) error
}

// LocalBackend keeps the id list as one JSON array under key. Every write replaces the
// whole array.
type LocalBackend struct {
	mu    sync.Mutex
	store storage.Store
	key   string
}

func NewLocalBackend(store storage.Store, key string) *LocalBackend {
	return &LocalBackend{store: store, key: key}
}

// GuestKey and UserKey name the storage keys of the two local mirrors.
func GuestKey(guestID string) string { return "wishlist:guest:" + guestID }
func UserKey(userID string) string   { return "wishlist:user:" + userID }

func (b *LocalBackend) List(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(ctx), nil
}

func (b *LocalBackend) Add(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.read(ctx)
	for _, v := range ids {
		if v == id {
			return nil
		}
	}
	return storage.WriteJSON(ctx, b.store, b.key, append(ids, id))
}

func (b *LocalBackend) Remove(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.read(ctx)
	kept := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return storage.WriteJSON(ctx, b.store, b.key, kept)
}

func (b *LocalBackend) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Delete(ctx, b.key)
}

// read drops duplicates and empty ids a corrupted array might hold.
func (b *LocalBackend) read(ctx context.Context) []string {
	var ids []string
	if !storage.ReadJSON(ctx, b.store, b.key, &ids) {
		return []string{}
	}
	return dedupe(ids)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
