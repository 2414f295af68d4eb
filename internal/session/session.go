// package session owns the authentication state machine.
//
// A [Coordinator] is the single writer for session state. Commands read a
// consistent [Snapshot]; interested components subscribe to transitions
// instead of polling. The bearer token itself lives in a [TokenStore] shared
// by every process pointed at the same database file, so a login in one
// terminal is observable from another via [Coordinator.Watch].
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/gateway"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// State is the session lifecycle position.
type State int

const (
	// Anonymous means no token is held.
	Anonymous State = iota
	// Resolving means a token is held and the identity behind it is being fetched.
	Resolving
	// Authenticated means the token resolved to a user.
	Authenticated
	// Invalid means a token is held but identity resolution failed for a
	// reason other than rejection (e.g. the backend was unreachable).
	Invalid
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Resolving:
		return "resolving"
	case Authenticated:
		return "authenticated"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of session state.
type Snapshot struct {
	State State
	User  *models.User
}

// IsAuthenticated reports whether the snapshot carries a resolved user.
func (s Snapshot) IsAuthenticated() bool {
	return s.State == Authenticated && s.User != nil
}

// Identity is the slice of the gateway the coordinator needs.
type Identity interface {
	Login(ctx context.Context, email, password string) (*gateway.Token, error)
	CurrentUser(ctx context.Context) (*models.User, error)
}

// TokenStore persists the bearer token across processes.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Coordinator serializes every session mutation behind one lock.
//
// The lock is held across the network call inside a mutation, so concurrent
// logins and logouts queue rather than interleave. Subscribers are notified
// after the lock is released but before the mutating method returns.
type Coordinator struct {
	mu      sync.Mutex
	state   State
	user    *models.User
	api     Identity
	store   TokenStore
	logger  *log.Logger
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a coordinator in the Anonymous state.
func New(api Identity, store TokenStore, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Coordinator{
		state:  Anonymous,
		api:    api,
		store:  store,
		logger: logger,
		subs:   map[int]func(Snapshot){},
	}
}

// Snapshot returns the current state and user.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, User: c.user}
}

// Subscribe registers fn for every state transition and returns an
// unsubscribe function. fn runs on the goroutine performing the mutation.
func (c *Coordinator) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// notifyLocked captures the snapshot and subscriber list under the lock and
// returns a closure to invoke after release.
func (c *Coordinator) notifyLocked() func() {
	snapshot := Snapshot{State: c.state, User: c.user}
	listeners := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	return func() {
		for _, fn := range listeners {
			fn(snapshot)
		}
	}
}

// Initialize restores the session from the persisted token.
//
// No token means Anonymous. A locally expired token is discarded without a
// network call. Otherwise the identity behind the token is resolved; a
// rejected token downgrades silently to Anonymous, while an unreachable
// backend leaves the session Invalid with the token retained for retry.
func (c *Coordinator) Initialize(ctx context.Context) Snapshot {
	c.mu.Lock()

	token, err := c.store.Load()
	if err != nil {
		c.logger.Warn("failed to load persisted session", "error", err)
		token = ""
	}

	if token == "" {
		c.state = Anonymous
		c.user = nil
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
		return Snapshot{State: Anonymous}
	}

	if tokenExpired(token) {
		c.logger.Info("persisted session expired, discarding")
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("failed to clear expired session", "error", err)
		}
		c.state = Anonymous
		c.user = nil
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
		return Snapshot{State: Anonymous}
	}

	c.state = Resolving
	c.user = nil

	snapshot := c.resolveLocked(ctx)
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
	return snapshot
}

// resolveLocked fetches the identity behind the held token and applies the
// resulting transition. Caller must hold the lock.
func (c *Coordinator) resolveLocked(ctx context.Context) Snapshot {
	user, err := c.api.CurrentUser(ctx)
	switch {
	case err == nil && user != nil:
		c.state = Authenticated
		c.user = user
	case err == nil:
		// Token vanished between load and resolve.
		c.state = Anonymous
		c.user = nil
	case gateway.IsUnauthorized(err):
		c.logger.Info("session token rejected, downgrading to anonymous")
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.Warn("failed to clear rejected session", "error", clearErr)
		}
		c.state = Anonymous
		c.user = nil
	default:
		c.logger.Warn("identity resolution failed, session marked invalid", "error", err)
		c.state = Invalid
		c.user = nil
	}
	return Snapshot{State: c.state, User: c.user}
}

// Login exchanges credentials for a token, persists it, and resolves the user.
//
// The lock is held for the whole exchange, so a concurrent Logout queues
// behind it and observes the final state.
func (c *Coordinator) Login(ctx context.Context, email, password string) (Snapshot, error) {
	c.mu.Lock()

	token, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}

	if err := c.store.Save(token.AccessToken); err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}

	c.state = Resolving
	c.user = nil

	snapshot := c.resolveLocked(ctx)
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
	return snapshot, nil
}

// Logout clears the token and returns to Anonymous. Idempotent: logging out
// while anonymous still succeeds and still notifies.
func (c *Coordinator) Logout() (Snapshot, error) {
	c.mu.Lock()

	if err := c.store.Clear(); err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}

	c.state = Anonymous
	c.user = nil

	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
	return Snapshot{State: Anonymous}, nil
}

// Invalidate discards the session in response to an unauthorized response
// observed elsewhere. The downgrade is silent: no error, just a transition.
func (c *Coordinator) Invalidate() Snapshot {
	c.mu.Lock()

	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear invalidated session", "error", err)
	}

	c.state = Anonymous
	c.user = nil

	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
	return Snapshot{State: Anonymous}
}

// RefreshUser re-resolves the identity behind the held token, e.g. after a
// profile update or a watchlist mutation changed server-side state.
func (c *Coordinator) RefreshUser(ctx context.Context) Snapshot {
	c.mu.Lock()

	token, err := c.store.Load()
	if err != nil || token == "" {
		c.state = Anonymous
		c.user = nil
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
		return Snapshot{State: Anonymous}
	}

	snapshot := c.resolveLocked(ctx)
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
	return snapshot
}

// Watch polls the token store and applies transitions when another process
// changes the persisted session. Returns a stop function; stopping twice is
// harmless. The watcher also stops when ctx is canceled.
func (c *Coordinator) Watch(ctx context.Context, interval time.Duration) func() {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	last, err := c.store.Load()
	if err != nil {
		c.logger.Warn("failed to prime session watcher", "error", err)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				current, err := c.store.Load()
				if err != nil {
					c.logger.Warn("session watcher failed to read store", "error", err)
					continue
				}
				if current == last {
					continue
				}
				last = current
				c.applyExternalChange(ctx, current)
			}
		}
	}()

	return stop
}

// applyExternalChange reacts to a token change made by another process.
func (c *Coordinator) applyExternalChange(ctx context.Context, token string) {
	if token == "" {
		c.logger.Info("session cleared externally, downgrading to anonymous")
		c.mu.Lock()
		c.state = Anonymous
		c.user = nil
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
		return
	}

	c.logger.Info("session token changed externally, resolving identity")
	c.mu.Lock()
	c.state = Resolving
	c.user = nil
	c.resolveLocked(ctx)
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

// tokenExpired reports whether a JWT's exp claim is in the past.
//
// The signature is not verified: the backend is the authority, this check
// only avoids a doomed network call. Opaque tokens and tokens without an exp
// claim are never considered expired locally.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
