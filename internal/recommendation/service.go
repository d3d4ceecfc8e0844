package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wichananm65/gift-concierge/internal/fallback"
	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

// LocalEngineVersion marks results produced by the local generator.
const LocalEngineVersion = "local"

type Service struct {
	sender   transport.Sender
	policies *fallback.Resolver
	catalog  *gift.Catalog
}

func NewService(sender transport.Sender, policies *fallback.Resolver, catalog *gift.Catalog) *Service {
	return &Service{sender: sender, policies: policies, catalog: catalog}
}

// Generate asks the live engine first. When it fails the result is generated locally
// and Result.Diagnostic carries the live failure.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	if err := req.Answers.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid answers: %w", err)
	}
	body := ToRequestDTO(req)

	out, err := fallback.Run(ctx, s.policies, fallback.Recommendations,
		func(ctx context.Context) (ResponseDTO, error) {
			res, err := s.sender.Send(ctx, "/recommendations/generate", transport.Options{
				Method:          "POST",
				Body:            body,
				OmitCredentials: true,
			})
			if err != nil {
				return ResponseDTO{}, err
			}
			return transport.Decode[ResponseDTO](res)
		},
		func(context.Context) (ResponseDTO, error) {
			return s.generateLocal(body), nil
		},
		nil,
	)
	if err != nil {
		return Result{}, err
	}

	r := ToResult(out.Value)
	r.Source = string(out.Source)
	r.Diagnostic = out.Diagnostic()
	return r, nil
}

// generateLocal ranks the catalog by overlap with the answers. The run id is derived from
// the request so identical requests yield identical results.
func (s *Service) generateLocal(body RequestDTO) ResponseDTO {
	terms := append([]string{}, body.Interests...)
	for _, p := range []*string{body.Occasion, body.Vibe, body.Relationship} {
		if p != nil {
			terms = append(terms, *p)
		}
	}
	var budget float64
	if body.Budget != nil {
		budget = *body.Budget
	}

	excluded := make(map[string]bool, len(body.ExcludeCategories))
	for _, c := range body.ExcludeCategories {
		excluded[strings.ToLower(c)] = true
	}
	var gifts []gift.GiftDTO
	for _, g := range s.catalog.Search(terms, budget, 0) {
		if g.Category != nil && excluded[strings.ToLower(*g.Category)] {
			continue
		}
		if reason := localReason(g, terms); reason != "" {
			g.Reason = &reason
		}
		gifts = append(gifts, g)
		if len(gifts) == body.TopN {
			break
		}
	}

	seed, _ := json.Marshal(body)
	version := LocalEngineVersion
	return ResponseDTO{
		QuizRunID:     uuid.NewSHA1(uuid.NameSpaceOID, seed).String(),
		EngineVersion: &version,
		Gifts:         gifts,
	}
}

func localReason(g gift.GiftDTO, terms []string) string {
	for _, t := range terms {
		for _, tag := range g.Tags {
			if strings.EqualFold(tag, t) {
				return "Picked for their interest in " + tag
			}
		}
	}
	return ""
}
