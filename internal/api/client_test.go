package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL})
}

func TestLookup(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method: got %s, want GET", r.Method)
		}
		if want := "/api/users/search"; r.URL.Path != want {
			t.Errorf("path: got %s, want %s", r.URL.Path, want)
		}
		assert.Equal(t, "Jane", r.URL.Query().Get("firstName"))
		assert.Equal(t, "jane@x.com", r.URL.Query().Get("email"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":        "42",
			"firstName": "Jane",
			"lastName":  "Doe",
			"email":     "jane@x.com",
		})
	}))

	rec, err := c.Lookup(context.Background(), "Jane", "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, Record{ID: "42", FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}, rec)
}

func TestLookupNotFound(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.Lookup(context.Background(), "Jane", "jane@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetNumericID(t *testing.T) {
	// the service serializes ids as JSON numbers; the client normalizes
	// them to their decimal string form
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":42,"firstName":"Jane","lastName":"Doe","email":"jane@x.com"}`)
	}))

	rec, err := c.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)
}

func TestGetAbsentFieldsDefaultEmpty(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"7","firstName":"Jane"}`)
	}))

	rec, err := c.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "", rec.LastName)
	assert.Equal(t, "", rec.Email)
}

func TestCreate(t *testing.T) {
	var got recordPayload
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.Create(context.Background(), "Jane", "Doe", "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, recordPayload{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}, got)
}

func TestCreateConflict(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	err := c.Create(context.Background(), "Jane", "Doe", "jane@x.com")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdate(t *testing.T) {
	var got recordPayload
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))

	err := c.Update(context.Background(), "42", "Jan", "Doe", "jan@x.com")
	require.NoError(t, err)
	assert.Equal(t, recordPayload{FirstName: "Jan", LastName: "Doe", Email: "jan@x.com"}, got)
}

func TestUpdateServerError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	}))

	err := c.Update(context.Background(), "42", "Jan", "Doe", "jan@x.com")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "boom", se.Body)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url})
	_, err := c.Lookup(context.Background(), "Jane", "jane@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
