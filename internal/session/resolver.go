package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/maxxenergy/maxxacct/internal/api"
	"github.com/maxxenergy/maxxacct/internal/profile"
)

// API surfaces the account-service operations the session layer consumes.
// *api.Client satisfies it.
type API interface {
	Lookup(ctx context.Context, firstName, email string) (api.Record, error)
	Create(ctx context.Context, firstName, lastName, email string) error
	Get(ctx context.Context, id string) (api.Record, error)
}

// Resolver turns the stored identity into the authoritative profile
// record. The fetch runs at most once: after a success, Resolve returns
// the cached record. Failures leave the guard unset so the caller can
// retry.
type Resolver struct {
	store    *Store
	api      API
	resolved bool
	record   profile.Record
}

// NewResolver creates a Resolver over store and client.
func NewResolver(store *Store, client API) *Resolver {
	return &Resolver{store: store, api: client}
}

// Resolve reads the identity store and fetches the profile record.
//
// No stored identity yields ErrNoIdentity without a network call. A
// stored id the service no longer knows is cleared from both tiers
// before ErrNoIdentity is returned, so the next run starts logged out.
// Any other failure is returned as-is and leaves the identity intact,
// since a transient error must not destroy a valid session.
func (r *Resolver) Resolve(ctx context.Context) (profile.Record, error) {
	if r.resolved {
		return r.record, nil
	}

	id, ok := r.store.Get()
	if !ok {
		return profile.Record{}, ErrNoIdentity
	}

	rec, err := r.api.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// stale identity: self-heal and redirect
			_ = r.store.Clear()
			return profile.Record{}, ErrNoIdentity
		}
		return profile.Record{}, fmt.Errorf("resolve session: %w", err)
	}

	// server values are trusted verbatim; absent fields already decode
	// to "". Some deployments omit the id in the body, fall back to the
	// one we queried with.
	r.record = profile.Record{
		ID:        rec.ID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
	}
	if r.record.ID == "" {
		r.record.ID = id
	}

	r.resolved = true
	return r.record, nil
}
