// Package fallback decides, per resource, when a live backend result is replaced with
// deterministic local data. Every resource has exactly one named policy; the live call is
// attempted at most once and never retried.
package fallback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wichananm65/gift-concierge/internal/transport"
)

type Policy int

const (
	// NullOnFailure resolves a failed lookup to the zero value ("no user").
	NullOnFailure Policy = iota + 1
	// SubstituteOnFailure serves local data when the live call fails.
	SubstituteOnFailure
	// SubstituteOnEmpty also treats an empty live success as a failure.
	SubstituteOnEmpty
	// AlwaysLocal never calls the live backend.
	AlwaysLocal
	// SubstituteWithDiagnostics substitutes like SubstituteOnFailure and the caller is
	// expected to surface Outcome.Failure.
	SubstituteWithDiagnostics
	// ReplicateLocally applies the same mutation to the local store when the live one fails.
	ReplicateLocally
)

func (p Policy) String() string {
	switch p {
	case NullOnFailure:
		return "null-on-failure"
	case SubstituteOnFailure:
		return "substitute-on-failure"
	case SubstituteOnEmpty:
		return "substitute-on-empty"
	case AlwaysLocal:
		return "always-local"
	case SubstituteWithDiagnostics:
		return "substitute-with-diagnostics"
	case ReplicateLocally:
		return "replicate-locally"
	default:
		return "unknown"
	}
}

type Resource string

const (
	CurrentUser     Resource = "current-user"
	GiftByID        Resource = "gift-by-id"
	GiftList        Resource = "gift-list"
	GiftBatch       Resource = "gift-batch"
	Recommendations Resource = "recommendations"
	WishlistRead    Resource = "wishlist-read"
	WishlistWrite   Resource = "wishlist-write"
	ProfileRead     Resource = "profile-read"
	ProfileWrite    Resource = "profile-write"
	EventsWrite     Resource = "profile-events-write"
)

// DefaultTable is the policy of every resource the gateway talks to.
func DefaultTable() map[Resource]Policy {
	return map[Resource]Policy{
		CurrentUser:     NullOnFailure,
		GiftByID:        SubstituteOnFailure,
		GiftList:        SubstituteOnEmpty,
		GiftBatch:       AlwaysLocal,
		Recommendations: SubstituteWithDiagnostics,
		WishlistRead:    SubstituteOnFailure,
		WishlistWrite:   ReplicateLocally,
		ProfileRead:     SubstituteOnFailure,
		ProfileWrite:    ReplicateLocally,
		EventsWrite:     ReplicateLocally,
	}
}

// ErrNoPolicy is returned for resources missing from the table.
var ErrNoPolicy = errors.New("no fallback policy for resource")

// Resolver holds the policy table and the logger substitutions are reported to.
type Resolver struct {
	table map[Resource]Policy
	log   *slog.Logger
}

func NewResolver(table map[Resource]Policy, log *slog.Logger) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	return &Resolver{table: table, log: log}
}

// Policy returns the policy registered for r.
func (r *Resolver) Policy(res Resource) (Policy, bool) {
	p, ok := r.table[res]
	return p, ok
}

// Resources lists the table, for diagnostics.
func (r *Resolver) Resources() map[Resource]Policy {
	out := make(map[Resource]Policy, len(r.table))
	for k, v := range r.table {
		out[k] = v
	}
	return out
}

type Source string

const (
	SourceLive  Source = "live"
	SourceLocal Source = "local"
	SourceNone  Source = "none"
)

// Outcome is the result of running a resource under its policy.
type Outcome[T any] struct {
	Value   T
	Source  Source
	Failure error
}

func (o Outcome[T]) Substituted() bool {
	return o.Source == SourceLocal
}

// Diagnostic is the message of the live failure, if any.
func (o Outcome[T]) Diagnostic() string {
	return transport.MessageOf(o.Failure)
}

type Func[T any] func(ctx context.Context) (T, error)

// Run executes live and/or local according to the policy of res. empty may be nil and is
// only consulted by SubstituteOnEmpty. The returned error is non-nil only when no path
// could produce a value.
func Run[T any](ctx context.Context, r *Resolver, res Resource, live, local Func[T], empty func(T) bool) (Outcome[T], error) {
	var zero T
	policy, ok := r.Policy(res)
	if !ok {
		return Outcome[T]{Value: zero, Source: SourceNone}, ErrNoPolicy
	}

	if policy == AlwaysLocal {
		v, err := local(ctx)
		if err != nil {
			return Outcome[T]{Value: zero, Source: SourceNone}, err
		}
		return Outcome[T]{Value: v, Source: SourceLocal}, nil
	}

	v, liveErr := live(ctx)
	if liveErr == nil && !(policy == SubstituteOnEmpty && empty != nil && empty(v)) {
		return Outcome[T]{Value: v, Source: SourceLive}, nil
	}

	if policy == NullOnFailure {
		return Outcome[T]{Value: zero, Source: SourceNone, Failure: liveErr}, nil
	}

	r.log.Info("substituting local data",
		"resource", string(res),
		"policy", policy.String(),
		"live_error", transport.MessageOf(liveErr),
		"empty_success", liveErr == nil)

	lv, err := local(ctx)
	if err != nil {
		if liveErr != nil {
			return Outcome[T]{Value: zero, Source: SourceNone, Failure: liveErr}, errors.Join(liveErr, err)
		}
		return Outcome[T]{Value: zero, Source: SourceNone}, err
	}
	return Outcome[T]{Value: lv, Source: SourceLocal, Failure: liveErr}, nil
}
