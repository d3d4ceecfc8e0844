package dialogue

import (
	"context"
	"errors"
	"net/url"

	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/quiz"
	"github.com/wichananm65/gift-concierge/internal/recommendation"
	"github.com/wichananm65/gift-concierge/internal/transport"
)

// Protocol is the conversation backend.
type Protocol interface {
	Init(ctx context.Context, answers quiz.Answers) (Session, error)
	Interact(ctx context.Context, sessionID string, action Action, value any) (Session, error)
	React(ctx context.Context, sessionID, hypothesisID string, kind Reaction) error
	Products(ctx context.Context, sessionID, hypothesisID string) ([]gift.Gift, error)
}

// HTTPProtocol speaks the /gutg endpoints of the recommendation backend.
type HTTPProtocol struct {
	sender transport.Sender
}

func NewHTTPProtocol(sender transport.Sender) *HTTPProtocol {
	return &HTTPProtocol{sender: sender}
}

func (p *HTTPProtocol) Init(ctx context.Context, answers quiz.Answers) (Session, error) {
	body := InitRequestDTO{Quiz: recommendation.ToRequestDTO(recommendation.Request{Answers: answers})}
	return p.session(ctx, "/gutg/init", body)
}

func (p *HTTPProtocol) Interact(ctx context.Context, sessionID string, action Action, value any) (Session, error) {
	return p.session(ctx, "/gutg/interact", InteractRequestDTO{
		SessionID: sessionID,
		Action:    string(action),
		Value:     value,
	})
}

func (p *HTTPProtocol) React(ctx context.Context, sessionID, hypothesisID string, kind Reaction) error {
	_, err := p.sender.Send(ctx, "/gutg/react", transport.Options{
		Method: "POST",
		Body:   ReactRequestDTO{SessionID: sessionID, HypothesisID: hypothesisID, Reaction: string(kind)},
	})
	return err
}

// Products accepts a bare array or a {"products": [...]} envelope.
func (p *HTTPProtocol) Products(ctx context.Context, sessionID, hypothesisID string) ([]gift.Gift, error) {
	endpoint := "/gutg/hypotheses/" + url.PathEscape(hypothesisID) + "/products?" +
		url.Values{"session_id": {sessionID}}.Encode()
	res, err := p.sender.Send(ctx, endpoint, transport.Options{Method: "GET"})
	if err != nil {
		return nil, err
	}
	if _, isObject := res.Body.(map[string]any); isObject {
		env, err := transport.Decode[ProductsDTO](res)
		if err != nil {
			return nil, err
		}
		return gift.ToDomainList(env.Products), nil
	}
	items, err := transport.Decode[[]gift.GiftDTO](res)
	if err != nil && !errors.Is(err, transport.ErrEmptyBody) {
		return nil, err
	}
	return gift.ToDomainList(items), nil
}

func (p *HTTPProtocol) session(ctx context.Context, endpoint string, body any) (Session, error) {
	res, err := p.sender.Send(ctx, endpoint, transport.Options{Method: "POST", Body: body})
	if err != nil {
		return Session{}, err
	}
	d, err := transport.Decode[SessionDTO](res)
	if err != nil {
		return Session{}, err
	}
	return ToSession(d), nil
}
