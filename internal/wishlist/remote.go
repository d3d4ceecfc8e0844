package wishlist

import (
	"context"
	"errors"
	"net/url"

	"github.com/wichananm65/gift-concierge/internal/fallback"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

// ItemDTO is one wishlist entry on the wire.
type ItemDTO struct {
	GiftID  transport.ID `json:"gift_id" validate:"required"`
	AddedAt *string      `json:"added_at,omitempty"`
}

type listDTO struct {
	Items []ItemDTO `json:"items" validate:"dive"`
}

type addDTO struct {
	GiftID string `json:"gift_id"`
}

// RemoteBackend is the authenticated user's wishlist on the backend.
type RemoteBackend struct {
	sender transport.Sender
}

func NewRemoteBackend(sender transport.Sender) *RemoteBackend {
	return &RemoteBackend{sender: sender}
}

// List accepts a bare array or an {"items": [...]} envelope.
func (b *RemoteBackend) List(ctx context.Context) ([]string, error) {
	res, err := b.sender.Send(ctx, "/wishlist", transport.Options{})
	if err != nil {
		return nil, err
	}
	var items []ItemDTO
	if _, isObject := res.Body.(map[string]any); isObject {
		env, err := transport.Decode[listDTO](res)
		if err != nil {
			return nil, err
		}
		items = env.Items
	} else {
		items, err = transport.Decode[[]ItemDTO](res)
		if err != nil && !errors.Is(err, transport.ErrEmptyBody) {
			return nil, err
		}
	}
	return ToIDs(items), nil
}

func (b *RemoteBackend) Add(ctx context.Context, id string) error {
	_, err := b.sender.Send(ctx, "/wishlist", transport.Options{Method: "POST", Body: addDTO{GiftID: id}})
	return err
}

func (b *RemoteBackend) Remove(ctx context.Context, id string) error {
	_, err := b.sender.Send(ctx, "/wishlist/"+url.PathEscape(id), transport.Options{Method: "DELETE"})
	return err
}

// ToIDs keeps wire order and drops duplicates.
func ToIDs(items []ItemDTO) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, string(it.GiftID))
	}
	return dedupe(ids)
}

// ReplicatingBackend tries live first. A failed read is served from local, and a failed
// write is applied to local instead, so the user sees the same effect either way.
type ReplicatingBackend struct {
	live     Backend
	local    Backend
	policies *fallback.Resolver
}

func NewReplicatingBackend(live, local Backend, policies *fallback.Resolver) *ReplicatingBackend {
	return &ReplicatingBackend{live: live, local: local, policies: policies}
}

func (b *ReplicatingBackend) List(ctx context.Context) ([]string, error) {
	out, err := fallback.Run(ctx, b.policies, fallback.WishlistRead, b.live.List, b.local.List, nil)
	if err != nil {
		return nil, err
	}
	if out.Source == fallback.SourceLive {
		b.mirror(ctx, out.Value)
	}
	return out.Value, nil
}

func (b *ReplicatingBackend) Add(ctx context.Context, id string) error {
	return b.write(ctx, id, b.live.Add, b.local.Add)
}

func (b *ReplicatingBackend) Remove(ctx context.Context, id string) error {
	return b.write(ctx, id, b.live.Remove, b.local.Remove)
}

func (b *ReplicatingBackend) write(ctx context.Context, id string, live, local func(context.Context, string) error) error {
	out, err := fallback.Run(ctx, b.policies, fallback.WishlistWrite,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, live(ctx, id) },
		func(ctx context.Context) (struct{}, error) { return struct{}{}, local(ctx, id) },
		nil,
	)
	if err != nil {
		return err
	}
	if out.Source == fallback.SourceLive {
		_ = local(ctx, id)
	}
	return nil
}

// mirror makes the local copy equal to a fresh live list.
func (b *ReplicatingBackend) mirror(ctx context.Context, ids []string) {
	current, err := b.local.List(ctx)
	if err != nil {
		return
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, id := range current {
		if !want[id] {
			_ = b.local.Remove(ctx, id)
		}
	}
	for _, id := range ids {
		_ = b.local.Add(ctx, id)
	}
}
