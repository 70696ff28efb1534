// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"whvmatch/internal/database"
	"whvmatch/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns an isolated in-memory sqlite database with the full schema.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// NewRedis starts a miniredis server and returns it with a connected client.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateUser inserts a user with the given role and a bcrypt hash of "Password123!".
func CreateUser(t testing.TB, db *gorm.DB, role models.Role, name string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:       fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		Password:    string(hash),
		Role:        role,
		DisplayName: name,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateJob inserts an open job post owned by employerID.
func CreateJob(t testing.TB, db *gorm.DB, employerID uint, title string) *models.JobPost {
	t.Helper()
	job := &models.JobPost{
		EmployerID: employerID,
		Title:      title,
		Industry:   "agriculture",
		State:      "QLD",
		Status:     models.JobStatusOpen,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}
