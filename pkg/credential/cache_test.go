package credential

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func tokenEndpoint(t *testing.T, hits *atomic.Int64, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at-fresh",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
}

func TestCache_TokenBeforeAcquisition(t *testing.T) {
	c := NewCache(Config{ClientID: "id", ClientSecret: "secret", TokenURL: "http://unused"}, quietLogger())

	token, err := c.Token()
	assert.Empty(t, token)
	assert.ErrorIs(t, err, identity.ErrNoCredential)
	assert.True(t, c.Expiry().IsZero())
}

func TestCache_RefreshStoresCredential(t *testing.T) {
	srv := tokenEndpoint(t, nil, 0)
	defer srv.Close()

	c := NewCache(Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, quietLogger())
	require.NoError(t, c.Refresh(context.Background()))

	token, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "at-fresh", token)
	assert.False(t, c.Expiry().IsZero())
}

// A failed warm-up leaves the cache empty instead of aborting; callers keep
// getting ErrNoCredential until a later refresh succeeds.
func TestCache_WarmFailureStartsDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewCache(Config{ClientID: "id", ClientSecret: "bad", TokenURL: srv.URL}, quietLogger())
	c.Warm(context.Background())

	_, err := c.Token()
	assert.ErrorIs(t, err, identity.ErrNoCredential)
}

func TestCache_MarkUnauthorizedForcesRefresh(t *testing.T) {
	var hits atomic.Int64
	srv := tokenEndpoint(t, &hits, 0)
	defer srv.Close()

	c := NewCache(Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, quietLogger())
	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.MarkUnauthorized(context.Background()))

	assert.Equal(t, int64(2), hits.Load())
	token, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "at-fresh", token)
}

// Concurrent refresh triggers collapse into a single token acquisition.
func TestCache_ConcurrentRefreshesShareOneAcquisition(t *testing.T) {
	var hits atomic.Int64
	srv := tokenEndpoint(t, &hits, 150*time.Millisecond)
	defer srv.Close()

	c := NewCache(Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, quietLogger())

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			assert.NoError(t, c.Refresh(context.Background()))
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), hits.Load())
	token, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "at-fresh", token)
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *countingRecorder) RecordCredentialRefresh(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestCache_RecordsRefreshOutcomes(t *testing.T) {
	srv := tokenEndpoint(t, nil, 0)
	defer srv.Close()

	rec := &countingRecorder{}
	c := NewCache(Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, quietLogger(), WithRefreshRecorder(rec))
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"success"}, rec.outcomes)
}

func TestCache_ScheduledRefreshLifecycle(t *testing.T) {
	srv := tokenEndpoint(t, nil, 0)
	defer srv.Close()

	t.Run("empty schedule is a no-op", func(t *testing.T) {
		c := NewCache(Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, quietLogger())
		require.NoError(t, c.StartScheduledRefresh())
		c.Stop()
	})

	t.Run("valid schedule starts and stops", func(t *testing.T) {
		c := NewCache(Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL, RefreshSchedule: "@hourly"}, quietLogger())
		require.NoError(t, c.StartScheduledRefresh())
		c.Stop()
	})

	t.Run("invalid schedule errors", func(t *testing.T) {
		c := NewCache(Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL, RefreshSchedule: "not a cron"}, quietLogger())
		assert.Error(t, c.StartScheduledRefresh())
	})
}
