package gift

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/wichananm65/gift-concierge/internal/fallback"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

// Service serves gift reads under their fallback policies.
type Service struct {
	sender   transport.Sender
	policies *fallback.Resolver
	catalog  *Catalog
}

func NewService(sender transport.Sender, policies *fallback.Resolver, catalog *Catalog) *Service {
	return &Service{sender: sender, policies: policies, catalog: catalog}
}

// Catalog exposes the local dataset to other resources that substitute gifts.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// GetByID never fails because of the backend: a failed lookup is served from the catalog.
func (s *Service) GetByID(ctx context.Context, id string) (Gift, error) {
	out, err := fallback.Run(ctx, s.policies, fallback.GiftByID,
		func(ctx context.Context) (GiftDTO, error) {
			res, err := s.sender.Send(ctx, "/gifts/"+url.PathEscape(id), transport.Options{})
			if err != nil {
				return GiftDTO{}, err
			}
			return transport.Decode[GiftDTO](res)
		},
		func(context.Context) (GiftDTO, error) {
			return s.catalog.Get(id), nil
		},
		nil,
	)
	if err != nil {
		return Gift{}, err
	}
	return ToDomain(out.Value), nil
}

// List trusts a non-empty live page and substitutes on failure or an empty page.
func (s *Service) List(ctx context.Context, p ListParams) ([]Gift, error) {
	p = p.normalized()
	out, err := fallback.Run(ctx, s.policies, fallback.GiftList,
		func(ctx context.Context) ([]GiftDTO, error) {
			res, err := s.sender.Send(ctx, "/gifts?"+listQuery(p), transport.Options{})
			if err != nil {
				return nil, err
			}
			return decodeList(res)
		},
		func(context.Context) ([]GiftDTO, error) {
			return s.catalog.List(p), nil
		},
		func(v []GiftDTO) bool { return len(v) == 0 },
	)
	if err != nil {
		return nil, err
	}
	return ToDomainList(out.Value), nil
}

// GetByIDs is served locally until the backend batch endpoint is confirmed.
func (s *Service) GetByIDs(ctx context.Context, ids []string) ([]Gift, error) {
	out, err := fallback.Run(ctx, s.policies, fallback.GiftBatch,
		func(ctx context.Context) ([]GiftDTO, error) {
			res, err := s.sender.Send(ctx, "/gifts/batch", transport.Options{
				Method: "POST",
				Body:   BatchRequestDTO{IDs: ids},
			})
			if err != nil {
				return nil, err
			}
			return decodeList(res)
		},
		func(context.Context) ([]GiftDTO, error) {
			return s.catalog.GetMany(ids), nil
		},
		nil,
	)
	if err != nil {
		return nil, err
	}
	return ToDomainList(out.Value), nil
}

func listQuery(p ListParams) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Tag != "" {
		q.Set("tag", p.Tag)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	return q.Encode()
}

// decodeList accepts a bare array or a {"gifts": [...]} envelope. An empty body is an
// empty page.
func decodeList(res *transport.Response) ([]GiftDTO, error) {
	if _, isObject := res.Body.(map[string]any); isObject {
		env, err := transport.Decode[ListDTO](res)
		if err != nil {
			return nil, err
		}
		return env.Gifts, nil
	}
	items, err := transport.Decode[[]GiftDTO](res)
	if errors.Is(err, transport.ErrEmptyBody) {
		return nil, nil
	}
	return items, err
}
