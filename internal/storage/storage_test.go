package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*KVRepo, *AwardRepo) {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewKVRepo(db), NewAwardRepo(db)
}

func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "u1", KeyXP)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "u1", map[string][]byte{
		KeyXP:         []byte(`120`),
		KeyHabits:     []byte(`[]`),
		KeySyncChoice: []byte(`"local"`),
	}))
	require.NoError(t, s.Put(ctx, "u2", map[string][]byte{KeyXP: []byte(`7`)}))

	v, ok, err := s.Get(ctx, "u1", KeyXP)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `120`, string(v))

	require.NoError(t, s.Put(ctx, "u1", map[string][]byte{KeyXP: []byte(`130`)}))
	v, _, _ = s.Get(ctx, "u1", KeyXP)
	assert.Equal(t, `130`, string(v))

	require.NoError(t, s.Delete(ctx, "u1", KeyHabits))
	_, ok, _ = s.Get(ctx, "u1", KeyHabits)
	assert.False(t, ok)

	require.NoError(t, s.Replace(ctx, "u1", map[string][]byte{KeyFreezeTokens: []byte(`2`)}, KeySyncChoice))
	snap, err := s.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		KeyFreezeTokens: []byte(`2`),
		KeySyncChoice:   []byte(`"local"`),
	}, snap)

	other, err := s.Snapshot(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, `7`, string(other[KeyXP]))
}

func awardContract(t *testing.T, l AwardLog) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, l.AppendAwards(ctx, []Award{
		{User: "u1", Day: "2024-05-01", Source: "task", Amount: 10, Total: 10, CreatedAt: now},
		{User: "u1", Day: "2024-05-01", Source: "earlyBonus", Amount: 8, Total: 18, CreatedAt: now},
		{User: "u2", Day: "2024-05-01", Source: "task", Amount: 20, Total: 20, CreatedAt: now},
	}))

	got, err := l.ListAwards(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "earlyBonus", got[0].Source)
	assert.Equal(t, 18, got[0].Total)
	assert.Equal(t, "task", got[1].Source)

	got, err = l.ListAwards(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteStore(t *testing.T) {
	kv, awards := openTestDB(t)
	storeContract(t, kv)
	awardContract(t, awards)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	storeContract(t, m)
	awardContract(t, m)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "twice.db")
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, dirty, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), v)
	_ = db.Close()
}

func TestResolveDBPath(t *testing.T) {
	p, err := ResolveDBPath("  /tmp/x.db ")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", p)
}
