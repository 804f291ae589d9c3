// Package credential holds the process-wide service credential used to
// authenticate this orchestrator against the identity backend, and the
// refresh policy around it.
package credential

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/gatehouse-id/gatehouse/pkg/identity"
)

// RefreshRecorder observes refresh attempts for metrics
type RefreshRecorder interface {
	RecordCredentialRefresh(outcome string)
}

// Config holds the client-credentials settings for credential acquisition
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string

	// RefreshSchedule is a cron expression for time-based refresh.
	// Empty disables the scheduler.
	RefreshSchedule string
}

// Cache acquires and holds the single service credential. The stored value
// is guarded by an RWMutex; refreshes are funneled through a singleflight
// group so concurrent triggers (cron tick, 401 from the client, explicit
// call) collapse into one token acquisition.
type Cache struct {
	cfg      *clientcredentials.Config
	log      *logrus.Logger
	recorder RefreshRecorder

	mu         sync.RWMutex
	credential *identity.ServiceCredential

	group    singleflight.Group
	cron     *cron.Cron
	schedule string
}

// Option configures a Cache
type Option func(*Cache)

// WithRefreshRecorder sets the metrics recorder for refresh attempts
func WithRefreshRecorder(rec RefreshRecorder) Option {
	return func(c *Cache) { c.recorder = rec }
}

// NewCache creates a credential cache; no credential is acquired until
// Warm or Refresh is called.
func NewCache(cfg Config, log *logrus.Logger, opts ...Option) *Cache {
	if log == nil {
		log = logrus.New()
	}
	c := &Cache{
		cfg: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		},
		log:      log,
		schedule: cfg.RefreshSchedule,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Warm acquires the initial credential. A failure is logged and swallowed:
// the process starts in degraded mode and every backend call fails with
// ErrNoCredential until a later refresh succeeds.
func (c *Cache) Warm(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.log.WithError(err).Error("initial service credential acquisition failed, starting degraded")
	}
}

// Token returns the current credential's access token, or ErrNoCredential
// when none has been acquired yet.
func (c *Cache) Token() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.credential == nil {
		return "", identity.ErrNoCredential
	}
	return c.credential.AccessToken, nil
}

// Refresh re-acquires the service credential. At most one acquisition is in
// flight at a time; concurrent callers share its outcome.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		token, err := c.cfg.Token(ctx)
		if err != nil {
			if c.recorder != nil {
				c.recorder.RecordCredentialRefresh("failure")
			}
			return nil, fmt.Errorf("failed to acquire service credential: %w", err)
		}

		c.mu.Lock()
		c.credential = &identity.ServiceCredential{
			AccessToken: token.AccessToken,
			ExpiresAt:   token.Expiry,
		}
		c.mu.Unlock()

		if c.recorder != nil {
			c.recorder.RecordCredentialRefresh("success")
		}
		c.log.WithField("expires_at", token.Expiry).Info("service credential refreshed")
		return nil, nil
	})
	return err
}

// MarkUnauthorized is called by the backend client after a 401; it forces
// a refresh so the follow-up retry carries a fresh credential.
func (c *Cache) MarkUnauthorized(ctx context.Context) error {
	c.log.Warn("backend rejected service credential, refreshing")
	return c.Refresh(ctx)
}

// StartScheduledRefresh starts the cron-driven refresh if a schedule is
// configured. Stop tears it down.
func (c *Cache) StartScheduledRefresh() error {
	if c.schedule == "" {
		return nil
	}
	c.cron = cron.New()
	_, err := c.cron.AddFunc(c.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			c.log.WithError(err).Error("scheduled credential refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule credential refresh: %w", err)
	}
	c.cron.Start()
	c.log.WithField("schedule", c.schedule).Info("credential refresh scheduler started")
	return nil
}

// Stop halts the refresh scheduler if it is running
func (c *Cache) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

// Expiry returns the current credential's expiry time, zero when absent
func (c *Cache) Expiry() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.credential == nil {
		return time.Time{}
	}
	return c.credential.ExpiresAt
}

var _ identity.CredentialSource = (*Cache)(nil)
