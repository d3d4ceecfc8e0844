// Package visitor keeps the per-browser state of the gateway: the wishlist store, the
// dialogue engine and the user service bound to whoever is currently signed in.
package visitor

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/gift-concierge/internal/dialogue"
	"github.com/wichananm65/gift-concierge/internal/fallback"
	"github.com/wichananm65/gift-concierge/internal/gift"
	"github.com/wichananm65/gift-concierge/internal/storage"
	"github.com/wichananm65/gift-concierge/internal/transport"
	"github.com/wichananm65/gift-concierge/internal/user"
	"github.com/wichananm65/gift-concierge/internal/wishlist"
)

var ErrNoGuestID = errors.New("missing guest id")

// Deps are shared by every visitor.
type Deps struct {
	Gateway  *transport.Gateway
	Policies *fallback.Resolver
	Store    storage.Store
	Catalog  *gift.Catalog
	// DB, when set, keeps guest wishlists in postgres instead of Store.
	DB            *sql.DB
	LocalDialogue bool
	ThinkDelay    time.Duration
	Log           *slog.Logger
}

// Visitor is one browser, identified by its guest cookie. It is a transport.Sender that
// calls the backend as the currently signed-in user.
type Visitor struct {
	GuestID string

	reg *Registry
	gw  atomic.Pointer[transport.Gateway]

	mu       sync.Mutex
	identity user.Identity
	guest    wishlist.GuestBackend
	wishlist *wishlist.Store
	users    *user.Service
	dialogue *dialogue.Engine
	lastSeen time.Time
}

func (v *Visitor) Send(ctx context.Context, endpoint string, opts transport.Options) (*transport.Response, error) {
	return v.gw.Load().Send(ctx, endpoint, opts)
}

func (v *Visitor) Identity() user.Identity {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.identity
}

// Owner keys per-person local data: the user id when signed in, the guest id otherwise.
func (v *Visitor) Owner() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ownerLocked()
}

func (v *Visitor) Wishlist() *wishlist.Store {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.wishlist
}

func (v *Visitor) Users() *user.Service {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.users
}

func (v *Visitor) Dialogue() *dialogue.Engine {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dialogue
}

func (v *Visitor) ownerLocked() string {
	if v.identity.Authenticated() {
		return v.identity.UserID
	}
	return v.GuestID
}

// identify moves the visitor to id. Signing in replays the guest wishlist into the
// account once; switching or signing out starts from the new owner's own list.
func (v *Visitor) identify(ctx context.Context, id user.Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastSeen = time.Now()

	d := v.reg.deps
	v.gw.Store(d.Gateway.WithToken(id.Token))
	if id.UserID == v.identity.UserID {
		v.identity.Token = id.Token
		return
	}
	prev := v.identity
	v.identity = id

	switch {
	case id.Authenticated() && !prev.Authenticated() && !v.wishlist.Authenticated():
		if err := v.wishlist.Authenticate(ctx, v.reg.accountBackend(v, id.UserID), v.guest); err != nil {
			d.Log.Warn("load account wishlist", "user_id", id.UserID, "error", err.Error())
		}
	case id.Authenticated():
		v.wishlist = v.reg.loadStore(ctx, v.reg.accountBackend(v, id.UserID))
	default:
		v.wishlist = v.reg.loadStore(ctx, v.guest)
	}
	v.users = user.NewService(v, d.Policies, v.reg.profiles, v.ownerLocked())
	d.Log.Info("visitor identity changed",
		"guest_id", v.GuestID,
		"from", prev.UserID,
		"to", id.UserID)
}

const localsKey = "visitor"

// Attach stores v on the request for FromCtx.
func Attach(c *fiber.Ctx, v *Visitor) {
	c.Locals(localsKey, v)
}

// FromCtx returns the visitor resolved for the request.
func FromCtx(c *fiber.Ctx) (*Visitor, error) {
	v, ok := c.Locals(localsKey).(*Visitor)
	if !ok || v == nil {
		return nil, fiber.ErrUnauthorized
	}
	return v, nil
}
