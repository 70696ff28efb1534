package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newMigratorDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var sqliteMigrations = []Migration{
	{
		Version:    1,
		Name:       "likes",
		UpScript:   "CREATE TABLE likes (liker_id INTEGER NOT NULL, liked_user_id INTEGER NOT NULL)",
		DownScript: "DROP TABLE likes",
	},
	{
		Version:    2,
		Name:       "likes_tuple",
		UpScript:   "CREATE UNIQUE INDEX idx_like_pair ON likes (liker_id, liked_user_id)",
		DownScript: "DROP INDEX idx_like_pair",
	},
}

func TestMigrator_FreshDatabaseHasNothingApplied(t *testing.T) {
	db := newMigratorDB(t)
	m := NewMigrator(db, sqliteMigrations)

	// schema_migrations does not exist yet: sqlite reports "no such table".
	applied, err := m.Applied(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)

	pending, err := m.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestMigrator_UpDownOnSQLite(t *testing.T) {
	db := newMigratorDB(t)
	ctx := context.Background()
	m := NewMigrator(db, sqliteMigrations)

	done, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, done)
	assert.True(t, db.Migrator().HasIndex("likes", "idx_like_pair"))

	done, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, done, "second run applies nothing")

	require.NoError(t, m.Down(ctx, 2))
	assert.False(t, db.Migrator().HasIndex("likes", "idx_like_pair"))
	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	assert.ErrorContains(t, m.Down(ctx, 2), "has not been applied")
	assert.ErrorContains(t, m.Down(ctx, 9), "not found")
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := newMigratorDB(t)
	ctx := context.Background()

	broken := append([]Migration{}, sqliteMigrations[0], Migration{
		Version:  2,
		Name:     "broken",
		UpScript: "CREATE INDEX idx_missing ON no_such_table (id)",
	})
	done, err := NewMigrator(db, broken).Up(ctx)
	require.Error(t, err)
	assert.Equal(t, []int{1}, done)

	applied, err := NewMigrator(db, broken).Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)
}

func TestMigrator_RefusesUnknownAppliedVersions(t *testing.T) {
	db := newMigratorDB(t)
	ctx := context.Background()

	_, err := NewMigrator(db, sqliteMigrations).Up(ctx)
	require.NoError(t, err)

	_, err = NewMigrator(db, sqliteMigrations[:1]).Up(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000002")
}
