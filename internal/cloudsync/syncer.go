package cloudsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"streakcity/internal/clock"
	"streakcity/internal/engine"
	"streakcity/internal/storage"
)

type Choice string

const (
	KeepLocal  Choice = "local"
	KeepRemote Choice = "remote"
)

func ParseChoice(s string) (Choice, error) {
	switch Choice(strings.ToLower(strings.TrimSpace(s))) {
	case KeepLocal:
		return KeepLocal, nil
	case KeepRemote:
		return KeepRemote, nil
	default:
		return "", fmt.Errorf("invalid sync choice %q (want local or remote)", s)
	}
}

// Resolver decides which copy wins when both exist.
type Resolver func(ctx context.Context, local, remote Snapshot) (Choice, error)

// ErrChoiceRequired is returned by Start when both copies exist and neither a
// cached choice nor a resolver is available.
var ErrChoiceRequired = errors.New("local and remote data both exist: choose which to keep")

type Outcome string

const (
	OutcomeUploaded   Outcome = "uploaded"
	OutcomeKeptLocal  Outcome = "kept-local"
	OutcomeKeptRemote Outcome = "kept-remote"
)

const pushTimeout = 15 * time.Second

// DefaultDebounce is the quiet period after the last change before a push.
const DefaultDebounce = 500 * time.Millisecond

// Syncer pushes local state to a Remote, debouncing bursts of changes.
type Syncer struct {
	store    storage.Store
	remote   Remote
	user     string
	debounce time.Duration
	log      *slog.Logger
	clock    clock.Clock

	mu      sync.Mutex
	timer   *time.Timer
	pending bool

	pushMu sync.Mutex
}

type Option func(*Syncer)

func WithDebounce(d time.Duration) Option { return func(s *Syncer) { s.debounce = d } }

func WithLogger(l *slog.Logger) Option { return func(s *Syncer) { s.log = l } }

func WithClock(c clock.Clock) Option { return func(s *Syncer) { s.clock = c } }

func NewSyncer(store storage.Store, remote Remote, user string, opts ...Option) *Syncer {
	s := &Syncer{
		store:    store,
		remote:   remote,
		user:     user,
		debounce: DefaultDebounce,
		log:      slog.New(slog.DiscardHandler),
		clock:    clock.Real{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start reconciles local and remote at session start. With no remote copy the
// local state is uploaded. Otherwise the cached choice, or resolve, decides.
func (s *Syncer) Start(ctx context.Context, resolve Resolver) (Outcome, error) {
	remote, err := s.remote.Fetch(ctx, s.user)
	if err != nil {
		s.log.Error("sync fetch failed", "user", s.user, "err", err)
		return "", fmt.Errorf("fetch remote: %w", err)
	}
	local, err := s.localSnapshot(ctx)
	if err != nil {
		return "", err
	}
	if remote == nil {
		if err := s.push(ctx, local); err != nil {
			return "", err
		}
		return OutcomeUploaded, nil
	}

	choice, err := s.cachedChoice(ctx)
	if err != nil {
		return "", err
	}
	if choice == "" {
		if resolve == nil {
			return "", ErrChoiceRequired
		}
		if choice, err = resolve(ctx, local, *remote); err != nil {
			return "", err
		}
		if err := s.RememberChoice(ctx, choice); err != nil {
			return "", err
		}
	}

	switch choice {
	case KeepRemote:
		values := make(map[string][]byte, len(remote.Values))
		for k, v := range remote.Values {
			if k == storage.KeySyncChoice {
				continue
			}
			values[k] = v
		}
		if err := s.store.Replace(ctx, s.user, values, storage.KeySyncChoice); err != nil {
			return "", fmt.Errorf("apply remote: %w", err)
		}
		s.log.Info("sync kept remote", "user", s.user, "keys", len(values))
		return OutcomeKeptRemote, nil
	default:
		if err := s.push(ctx, local); err != nil {
			return "", err
		}
		return OutcomeKeptLocal, nil
	}
}

// RememberChoice caches the conflict choice for later sessions.
func (s *Syncer) RememberChoice(ctx context.Context, c Choice) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, s.user, map[string][]byte{storage.KeySyncChoice: b}); err != nil {
		return fmt.Errorf("save sync choice: %w", err)
	}
	return nil
}

// ForgetChoice clears the cached conflict choice.
func (s *Syncer) ForgetChoice(ctx context.Context) error {
	return s.store.Delete(ctx, s.user, storage.KeySyncChoice)
}

func (s *Syncer) cachedChoice(ctx context.Context) (Choice, error) {
	raw, ok, err := s.store.Get(ctx, s.user, storage.KeySyncChoice)
	if err != nil || !ok {
		return "", err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.Warn("malformed sync choice", "user", s.user, "err", err)
		return "", nil
	}
	c, err := ParseChoice(v)
	if err != nil {
		s.log.Warn("malformed sync choice", "user", s.user, "err", err)
		return "", nil
	}
	return c, nil
}

func (s *Syncer) localSnapshot(ctx context.Context) (Snapshot, error) {
	raw, err := s.store.Snapshot(ctx, s.user)
	if err != nil {
		return Snapshot{}, fmt.Errorf("local snapshot: %w", err)
	}
	values := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		if k == storage.KeySyncChoice {
			continue
		}
		if !json.Valid(v) {
			s.log.Warn("skipping malformed value", "user", s.user, "key", k)
			continue
		}
		values[k] = v
	}
	return Snapshot{User: s.user, Values: values, UpdatedAt: s.clock.Now()}, nil
}

func (s *Syncer) push(ctx context.Context, snap Snapshot) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	if err := s.remote.Push(ctx, snap); err != nil {
		s.log.Error("sync push failed", "user", s.user, "err", err)
		return fmt.Errorf("push remote: %w", err)
	}
	s.log.Debug("sync pushed", "user", s.user, "keys", len(snap.Values))
	return nil
}

// Push uploads the current local state now.
func (s *Syncer) Push(ctx context.Context) error {
	snap, err := s.localSnapshot(ctx)
	if err != nil {
		return err
	}
	return s.push(ctx, snap)
}

// Schedule queues a push after the debounce window; later calls restart it.
func (s *Syncer) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = true
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Syncer) fire() {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	// Failures are logged by push; local state is never blocked on them.
	_ = s.Push(ctx)
}

// Flush pushes immediately if a push is pending.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if !pending {
		return nil
	}
	return s.Push(ctx)
}

// Attach schedules a push on every engine notification.
func (s *Syncer) Attach(bus *engine.Bus) (detach func()) {
	return bus.Subscribe(func(engine.Event) { s.Schedule() })
}
