package quiz

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quizstake/quizstake/pkg/logger"
)

// DefaultStaleWindow is how long a cached snapshot is considered current.
const DefaultStaleWindow = 30 * time.Second

// StatusSnapshot is one atomic read of the cached view state.
type StatusSnapshot struct {
	User      *UserInfo      `json:"user"`
	Stats     *ContractStats `json:"stats"`
	Session   *Session       `json:"session"`
	Balance   *big.Int       `json:"balance"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StatusCache caches session- and account-derived view state read from the
// ledger. A refresh replaces the whole record atomically from fresh reads;
// partial merges never happen.
type StatusCache struct {
	mu sync.RWMutex

	ledger  LedgerReader
	tokens  TokenReader
	account common.Address
	token   common.Address

	staleAfter time.Duration

	user      *UserInfo
	stats     *ContractStats
	session   *Session
	balance   *big.Int
	sessionID *big.Int
	updatedAt time.Time

	log *logger.Logger
}

// NewStatusCache creates a cache for the given account and payment token.
func NewStatusCache(ledger LedgerReader, tokens TokenReader, account, token common.Address, staleAfter time.Duration, log *logger.Logger) *StatusCache {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleWindow
	}
	if log == nil {
		log = logger.NewDefault("status-cache")
	}
	return &StatusCache{
		ledger:     ledger,
		tokens:     tokens,
		account:    account,
		token:      token,
		staleAfter: staleAfter,
		log:        log,
	}
}

// SetActiveSession records which session the refresh loop should track.
func (c *StatusCache) SetActiveSession(id *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == nil {
		c.sessionID = nil
		return
	}
	c.sessionID = new(big.Int).Set(id)
}

// ActiveSessionID returns the tracked session identifier, or nil.
func (c *StatusCache) ActiveSessionID() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sessionID == nil {
		return nil
	}
	return new(big.Int).Set(c.sessionID)
}

// Refresh re-reads user info, contract stats, token balance, and the tracked
// session, then swaps the whole cached record in one step.
func (c *StatusCache) Refresh(ctx context.Context) error {
	sessionID := c.ActiveSessionID()

	user, err := c.ledger.User(ctx, c.account)
	if err != nil {
		cacheRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh user info: %w", err)
	}

	stats, err := c.ledger.Stats(ctx, c.token)
	if err != nil {
		cacheRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh contract stats: %w", err)
	}

	balance, err := c.tokens.BalanceOf(ctx, c.token, c.account)
	if err != nil {
		cacheRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh balance: %w", err)
	}

	var session *Session
	if sessionID != nil {
		session, err = c.ledger.Session(ctx, sessionID)
		if err != nil {
			cacheRefreshes.WithLabelValues("error").Inc()
			return fmt.Errorf("refresh session: %w", err)
		}
	}

	c.mu.Lock()
	c.user = user
	c.stats = stats
	c.balance = balance
	c.session = session
	c.updatedAt = time.Now().UTC()
	c.mu.Unlock()

	cacheRefreshes.WithLabelValues("ok").Inc()
	return nil
}

// Invalidate discards the cached record; the next Snapshot reports stale.
func (c *StatusCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.stats = nil
	c.session = nil
	c.balance = nil
	c.updatedAt = time.Time{}
}

// Snapshot returns the cached record.
func (c *StatusCache) Snapshot() StatusSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return StatusSnapshot{
		User:      c.user,
		Stats:     c.stats,
		Session:   c.session,
		Balance:   c.balance,
		UpdatedAt: c.updatedAt,
	}
}

// Stats returns the cached contract stats, or nil if never refreshed.
func (c *StatusCache) Stats() *ContractStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Stale reports whether the cached record is older than the staleness window.
func (c *StatusCache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.updatedAt) > c.staleAfter
}

// =============================================================================
// Refresher
// =============================================================================

// Refresher drives the cache at a fixed interval, alongside the explicit
// post-operation refresh triggers.
type Refresher struct {
	mu sync.Mutex

	cache    *StatusCache
	interval time.Duration

	running bool
	done    chan struct{}

	log *logger.Logger
}

// NewRefresher creates a refresher for the cache.
func NewRefresher(cache *StatusCache, interval time.Duration, log *logger.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultStaleWindow
	}
	if log == nil {
		log = logger.NewDefault("refresher")
	}
	return &Refresher{
		cache:    cache,
		interval: interval,
		done:     make(chan struct{}),
		log:      log,
	}
}

// Start begins the fixed-interval refresh loop.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("refresher already running")
	}
	r.running = true
	r.done = make(chan struct{})
	r.mu.Unlock()

	r.log.Infof("starting refresh loop (interval: %v)", r.interval)
	go r.loop(ctx)
	return nil
}

// Stop halts the refresh loop.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.done)
	r.log.Info("refresh loop stopped")
}

// IsRunning reports whether the loop is active.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.cache.Refresh(ctx); err != nil {
				r.log.WithError(err).Warn("periodic refresh failed")
			}
		}
	}
}
