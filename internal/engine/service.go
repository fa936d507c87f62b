package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"streakcity/internal/clock"
	"streakcity/internal/storage"
)

// Service owns one user's progression state. Every exported operation runs
// the pending daily reset first and is serialized with every other one.
type Service struct {
	store    storage.Store
	awards   storage.AwardLog
	user     string
	clock    clock.Clock
	rng      *rand.Rand
	log      *slog.Logger
	bus      *Bus
	defaults Settings
	newID    func() string

	mu sync.Mutex
}

type Option func(*Service)

func WithClock(c clock.Clock) Option { return func(s *Service) { s.clock = c } }

func WithRand(r *rand.Rand) Option { return func(s *Service) { s.rng = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

func WithBus(b *Bus) Option { return func(s *Service) { s.bus = b } }

// WithAwardLog overrides the XP log. By default the store is used when it
// implements storage.AwardLog.
func WithAwardLog(l storage.AwardLog) Option { return func(s *Service) { s.awards = l } }

// WithDefaultSettings sets the settings used until the user saves their own.
func WithDefaultSettings(st Settings) Option { return func(s *Service) { s.defaults = st } }

func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

func NewService(store storage.Store, user string, opts ...Option) *Service {
	s := &Service{
		store:    store,
		user:     user,
		clock:    clock.Real{},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      slog.New(slog.DiscardHandler),
		bus:      NewBus(),
		defaults: DefaultSettings(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.awards == nil {
		if l, ok := store.(storage.AwardLog); ok {
			s.awards = l
		}
	}
	return s
}

func (s *Service) Bus() *Bus          { return s.bus }
func (s *Service) User() string       { return s.user }
func (s *Service) Clock() clock.Clock { return s.clock }

// transact runs fn against a fresh unit of work and commits it. Topics touched
// by a committed unit are published once the lock is released.
func (s *Service) transact(ctx context.Context, fn func(tx *txn) error) error {
	s.mu.Lock()
	tx := s.newTxn(ctx)
	err := fn(tx)
	if err == nil {
		err = tx.commit()
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, t := range AllTopics {
		if tx.topics[t] {
			s.bus.Publish(Event{Topic: t, User: s.user, At: tx.now})
		}
	}
	return nil
}

// update is transact preceded by the daily reset.
func (s *Service) update(ctx context.Context, fn func(tx *txn) error) error {
	return s.transact(ctx, func(tx *txn) error {
		if _, err := tx.dailyReset(); err != nil {
			return err
		}
		return fn(tx)
	})
}

// Overview is a consistent read of everything the dashboards show.
type Overview struct {
	Today    string
	Now      time.Time
	Habits   []Habit
	Progress Progress
	Score    Score
	Settings Settings
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var ov Overview
	err := s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		p, err := tx.progress()
		if err != nil {
			return err
		}
		st, err := tx.settings()
		if err != nil {
			return err
		}
		ov = Overview{
			Today:    tx.today,
			Now:      tx.now,
			Habits:   habits,
			Progress: p,
			Score:    CalculateScore(habits),
			Settings: st,
		}
		return nil
	})
	return ov, err
}

func (s *Service) Habits(ctx context.Context) ([]Habit, error) {
	var out []Habit
	err := s.update(ctx, func(tx *txn) error {
		var err error
		out, err = tx.habits()
		return err
	})
	return out, err
}

func (s *Service) Progress(ctx context.Context) (Progress, error) {
	var out Progress
	err := s.update(ctx, func(tx *txn) error {
		var err error
		out, err = tx.progress()
		return err
	})
	return out, err
}

func (s *Service) Score(ctx context.Context) (Score, error) {
	var out Score
	err := s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		out = CalculateScore(habits)
		return nil
	})
	return out, err
}

// History returns the newest XP awards first.
func (s *Service) History(ctx context.Context, limit int) ([]storage.Award, error) {
	if s.awards == nil {
		return nil, nil
	}
	return s.awards.ListAwards(ctx, s.user, limit)
}
