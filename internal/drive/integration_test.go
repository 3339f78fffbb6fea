package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpiredTokenRecovery exercises the full refresh protocol against fake
// endpoints: the API rejects the stale token with 401, the failing call
// triggers exactly one exchange, and every call issued afterwards carries
// the renewed token.
func TestExpiredTokenRecovery(t *testing.T) {
	var exchanges atomic.Int32

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"fresh-%d","token_type":"Bearer"}`, n)
	}))
	t.Cleanup(tokenSrv.Close)

	var folderCalls atomic.Int32

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		folderCalls.Add(1)

		if r.Header.Get("Authorization") != "Bearer fresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		fmt.Fprintf(w, `{"id":"folder-%d"}`, folderCalls.Load())
	}))
	t.Cleanup(apiSrv.Close)

	store := NewTokenStore("expired")
	auth := NewAuthenticator(
		"cid", "csec", "refresh", tokenSrv.URL, store, http.DefaultClient, slog.Default(),
	)
	client := NewClient(apiSrv.URL, apiSrv.URL, http.DefaultClient, store, auth, slog.Default())

	ctx := context.Background()

	// First call fails with 401 and triggers the refresh.
	_, err := client.CreateFolder(ctx, "docs", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), exchanges.Load())
	assert.Equal(t, "fresh-1", store.Read())

	// The caller treats the failed step as failed; a new call (not a replay
	// of the old one) observes the renewed snapshot and succeeds.
	id, err := client.CreateFolder(ctx, "docs", "")
	require.NoError(t, err)
	assert.Equal(t, "folder-2", id)
	assert.Equal(t, int32(1), exchanges.Load(), "successful calls never refresh")
}
