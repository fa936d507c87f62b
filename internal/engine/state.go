package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"streakcity/internal/clock"
	"streakcity/internal/storage"
)

// txn buffers writes, awards and notifications of one operation. Reads see
// the buffered writes.
type txn struct {
	ctx    context.Context
	s      *Service
	now    time.Time
	today  string
	writes map[string][]byte
	topics map[Topic]bool
	awards []storage.Award
}

func (s *Service) newTxn(ctx context.Context) *txn {
	now := s.clock.Now()
	return &txn{
		ctx:    ctx,
		s:      s,
		now:    now,
		today:  clock.DateKey(now),
		writes: map[string][]byte{},
		topics: map[Topic]bool{},
	}
}

func (tx *txn) yesterday() string {
	return clock.DateKey(tx.now.AddDate(0, 0, -1))
}

func (tx *txn) notify(t Topic) { tx.topics[t] = true }

func (tx *txn) get(key string) ([]byte, bool, error) {
	if v, ok := tx.writes[key]; ok {
		return v, true, nil
	}
	v, ok, err := tx.s.store.Get(tx.ctx, tx.s.user, key)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return v, ok, nil
}

// load decodes key into a T. Missing or malformed values yield def.
func load[T any](tx *txn, key string, def T) (T, error) {
	raw, ok, err := tx.get(key)
	if err != nil || !ok {
		return def, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		tx.s.log.Warn("malformed state, using default", "user", tx.s.user, "key", key, "err", err)
		return def, nil
	}
	return v, nil
}

func (tx *txn) set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	tx.writes[key] = b
	return nil
}

func (tx *txn) commit() error {
	if len(tx.writes) > 0 {
		if err := tx.s.store.Put(tx.ctx, tx.s.user, tx.writes); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	if len(tx.awards) > 0 && tx.s.awards != nil {
		// The log is an audit trail; the committed state is authoritative.
		if err := tx.s.awards.AppendAwards(tx.ctx, tx.awards); err != nil {
			tx.s.log.Warn("append xp log", "user", tx.s.user, "err", err)
		}
	}
	return nil
}

func (tx *txn) habits() ([]Habit, error) {
	hs, err := load[[]Habit](tx, storage.KeyHabits, nil)
	if err != nil {
		return nil, err
	}
	for i := range hs {
		sanitizeHabit(&hs[i])
	}
	return hs, nil
}

func sanitizeHabit(h *Habit) {
	if h.Streak < 0 {
		h.Streak = 0
	}
	if h.BestStreak < h.Streak {
		h.BestStreak = h.Streak
	}
	if !h.SelectedDifficulty.IsValid() {
		h.SelectedDifficulty = DefaultDifficulty
	}
}

func (tx *txn) saveHabits(hs []Habit) error {
	if hs == nil {
		hs = []Habit{}
	}
	if err := tx.set(storage.KeyHabits, hs); err != nil {
		return err
	}
	tx.notify(TopicHabits)
	return nil
}

func (tx *txn) intValue(key string) (int, error) {
	n, err := load(tx, key, 0)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (tx *txn) dateValue(key string) (string, error) {
	return load(tx, key, "")
}

func (tx *txn) settings() (Settings, error) {
	st, err := load(tx, storage.KeySettings, tx.s.defaults)
	if st.FlatTaskXP <= 0 {
		st.FlatTaskXP = DefaultFlatTaskXP
	}
	return st, err
}

// xpToday returns today's ledger, replacing a stale one with a zeroed record.
func (tx *txn) xpToday() (XPToday, error) {
	l, err := load(tx, storage.KeyXPToday, XPToday{})
	if err != nil {
		return XPToday{}, err
	}
	if l.Date != tx.today {
		l = XPToday{Date: tx.today}
		if err := tx.set(storage.KeyXPToday, l); err != nil {
			return XPToday{}, err
		}
		return l, nil
	}
	l.Total = l.sum()
	return l, nil
}

func (tx *txn) progress() (Progress, error) {
	xp, err := tx.intValue(storage.KeyXP)
	if err != nil {
		return Progress{}, err
	}
	tokens, err := tx.intValue(storage.KeyFreezeTokens)
	if err != nil {
		return Progress{}, err
	}
	total, err := tx.intValue(storage.KeyTotalCompletions)
	if err != nil {
		return Progress{}, err
	}
	today, err := tx.xpToday()
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		XP:               xp,
		Level:            GetLevel(xp),
		FreezeTokens:     tokens,
		TotalCompletions: total,
		Today:            today,
	}, nil
}

// addXP credits amount to the total (floored at 0) and today's ledger.
func (tx *txn) addXP(amount int, src Source) (XPResult, error) {
	before, err := tx.intValue(storage.KeyXP)
	if err != nil {
		return XPResult{}, err
	}
	after := before + amount
	if after < 0 {
		after = 0
	}
	ledger, err := tx.xpToday()
	if err != nil {
		return XPResult{}, err
	}
	ledger.add(src, amount)

	if err := tx.set(storage.KeyXP, after); err != nil {
		return XPResult{}, err
	}
	if err := tx.set(storage.KeyXPToday, ledger); err != nil {
		return XPResult{}, err
	}
	tx.awards = append(tx.awards, storage.Award{
		User:      tx.s.user,
		Day:       tx.today,
		Source:    string(src),
		Amount:    amount,
		Total:     after,
		CreatedAt: tx.now,
	})
	tx.notify(TopicProgress)

	lb, la := GetLevel(before).Level, GetLevel(after).Level
	return XPResult{Total: after, Level: la, LeveledUp: la > lb}, nil
}

func (tx *txn) addTokens(n int) (int, error) {
	tokens, err := tx.intValue(storage.KeyFreezeTokens)
	if err != nil {
		return 0, err
	}
	tokens += n
	if tokens < 0 {
		tokens = 0
	}
	if err := tx.set(storage.KeyFreezeTokens, tokens); err != nil {
		return 0, err
	}
	tx.notify(TopicTokens)
	return tokens, nil
}

func findHabit(hs []Habit, id string) int {
	for i := range hs {
		if hs[i].ID == id {
			return i
		}
	}
	return -1
}

// AddXP credits XP from an external source. It never rejects.
func (s *Service) AddXP(ctx context.Context, amount int, src Source) (XPResult, error) {
	var out XPResult
	err := s.update(ctx, func(tx *txn) error {
		var err error
		out, err = tx.addXP(amount, src)
		return err
	})
	return out, err
}

func (s *Service) XPToday(ctx context.Context) (XPToday, error) {
	var out XPToday
	err := s.update(ctx, func(tx *txn) error {
		var err error
		out, err = tx.xpToday()
		return err
	})
	return out, err
}

func (s *Service) Settings(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.update(ctx, func(tx *txn) error {
		var err error
		out, err = tx.settings()
		return err
	})
	return out, err
}

func (s *Service) UpdateSettings(ctx context.Context, st Settings) (Settings, error) {
	if st.FlatTaskXP <= 0 {
		st.FlatTaskXP = DefaultFlatTaskXP
	}
	err := s.update(ctx, func(tx *txn) error {
		cur, err := tx.settings()
		if err != nil {
			return err
		}
		if cur == st {
			return nil
		}
		if err := tx.set(storage.KeySettings, st); err != nil {
			return err
		}
		tx.notify(TopicSettings)
		return nil
	})
	return st, err
}
