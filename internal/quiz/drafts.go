package quiz

import (
	"context"
	"errors"

	"github.com/wichananm65/gift-concierge/internal/storage"
)

// ErrNoFinal is returned by Final when no quiz has been submitted.
var ErrNoFinal = errors.New("no submitted quiz")

// Drafts persists an owner's in-progress answers and the last submitted snapshot under
// separate keys. Reads are defensive: absent or corrupt data is an empty draft.
type Drafts struct {
	store storage.Store
}

func NewDrafts(store storage.Store) *Drafts {
	return &Drafts{store: store}
}

func draftKey(owner string) string { return "quiz:draft:" + owner }
func finalKey(owner string) string { return "quiz:final:" + owner }

func (d *Drafts) SaveDraft(ctx context.Context, owner string, a Answers) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return storage.WriteJSON(ctx, d.store, draftKey(owner), a)
}

func (d *Drafts) Draft(ctx context.Context, owner string) Answers {
	var a Answers
	if !storage.ReadJSON(ctx, d.store, draftKey(owner), &a) {
		return Answers{}
	}
	return a
}

// Finalize stores a as the submitted snapshot and drops the draft.
func (d *Drafts) Finalize(ctx context.Context, owner string, a Answers) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := storage.WriteJSON(ctx, d.store, finalKey(owner), a); err != nil {
		return err
	}
	return d.store.Delete(ctx, draftKey(owner))
}

func (d *Drafts) Final(ctx context.Context, owner string) (Answers, error) {
	var a Answers
	if !storage.ReadJSON(ctx, d.store, finalKey(owner), &a) {
		return Answers{}, ErrNoFinal
	}
	return a, nil
}

func (d *Drafts) Clear(ctx context.Context, owner string) error {
	if err := d.store.Delete(ctx, draftKey(owner)); err != nil {
		return err
	}
	return d.store.Delete(ctx, finalKey(owner))
}
