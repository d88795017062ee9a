package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zarlcorp/core/pkg/zfilesystem"

	"github.com/maxxenergy/maxxacct/internal/api"
)

// stubAPI implements API with per-call hooks and counters.
type stubAPI struct {
	lookup func(firstName, email string) (api.Record, error)
	create func(firstName, lastName, email string) error
	get    func(id string) (api.Record, error)

	lookupCalls int
	createCalls int
	getCalls    int
}

func (s *stubAPI) Lookup(_ context.Context, firstName, email string) (api.Record, error) {
	s.lookupCalls++
	if s.lookup == nil {
		return api.Record{}, errors.New("unexpected lookup")
	}
	return s.lookup(firstName, email)
}

func (s *stubAPI) Create(_ context.Context, firstName, lastName, email string) error {
	s.createCalls++
	if s.create == nil {
		return errors.New("unexpected create")
	}
	return s.create(firstName, lastName, email)
}

func (s *stubAPI) Get(_ context.Context, id string) (api.Record, error) {
	s.getCalls++
	if s.get == nil {
		return api.Record{}, errors.New("unexpected get")
	}
	return s.get(id)
}

func storeWith(t *testing.T, id string, p Persistence) *Store {
	t.Helper()
	s := NewStore(zfilesystem.NewMemFS())
	if id != "" {
		require.NoError(t, s.Set(id, p))
	}
	return s
}

func TestResolveSuccess(t *testing.T) {
	store := storeWith(t, "42", Durable)
	client := &stubAPI{get: func(id string) (api.Record, error) {
		assert.Equal(t, "42", id)
		return api.Record{ID: "42", FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}, nil
	}}

	r := NewResolver(store, client)
	rec, err := r.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Jane", rec.FirstName)
	assert.Equal(t, "42", rec.ID)
}

func TestResolveNoIdentityNoNetwork(t *testing.T) {
	store := storeWith(t, "", Durable)
	client := &stubAPI{}

	r := NewResolver(store, client)
	_, err := r.Resolve(context.Background())

	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Zero(t, client.getCalls)
}

func TestResolveStaleIdentitySelfHeals(t *testing.T) {
	store := storeWith(t, "42", Durable)
	client := &stubAPI{get: func(string) (api.Record, error) {
		return api.Record{}, api.ErrNotFound
	}}

	r := NewResolver(store, client)
	_, err := r.Resolve(context.Background())

	assert.ErrorIs(t, err, ErrNoIdentity)
	_, ok := store.Get()
	assert.False(t, ok, "stale identity must be cleared")
}

func TestResolveTransientFailureKeepsIdentity(t *testing.T) {
	store := storeWith(t, "42", Durable)
	client := &stubAPI{get: func(string) (api.Record, error) {
		return api.Record{}, errors.New("connection refused")
	}}

	r := NewResolver(store, client)
	_, err := r.Resolve(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoIdentity)

	id, ok := store.Get()
	require.True(t, ok, "transient failure must not destroy the session")
	assert.Equal(t, "42", id)
}

func TestResolveFetchesAtMostOnce(t *testing.T) {
	store := storeWith(t, "42", Durable)
	client := &stubAPI{get: func(string) (api.Record, error) {
		return api.Record{ID: "42", FirstName: "Jane"}, nil
	}}

	r := NewResolver(store, client)
	first, err := r.Resolve(context.Background())
	require.NoError(t, err)

	second, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.getCalls)
}

func TestResolveRetriesAfterFailure(t *testing.T) {
	store := storeWith(t, "42", Durable)
	fail := true
	client := &stubAPI{get: func(string) (api.Record, error) {
		if fail {
			return api.Record{}, errors.New("timeout")
		}
		return api.Record{ID: "42", FirstName: "Jane"}, nil
	}}

	r := NewResolver(store, client)
	_, err := r.Resolve(context.Background())
	require.Error(t, err)

	fail = false
	rec, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane", rec.FirstName)
	assert.Equal(t, 2, client.getCalls)
}

func TestResolveFallsBackToQueriedID(t *testing.T) {
	store := storeWith(t, "42", SessionOnly)
	client := &stubAPI{get: func(string) (api.Record, error) {
		return api.Record{FirstName: "Jane"}, nil
	}}

	r := NewResolver(store, client)
	rec, err := r.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)
}
