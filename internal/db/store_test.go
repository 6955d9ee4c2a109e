package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/models"
)

var day = time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *clock.Fake) {
	t.Helper()

	cfg := config.DatabaseConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "punch.db")},
	}
	gdb, err := Open(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })
	require.NoError(t, Migrate(gdb))

	clk := clock.NewFake(day)
	return NewStore(gdb, WithClock(clk), WithBcryptCost(bcrypt.MinCost)), clk
}

func mustAddUser(t *testing.T, s *Store, username string, role models.Role) uint {
	t.Helper()
	id, err := s.AddUser(context.Background(), NewUser{
		Username: username,
		Password: username + "-secret",
		FullName: username + " Example",
		Role:     role,
	})
	require.NoError(t, err)
	return id
}

func mustStart(t *testing.T, s *Store, userID uint) uint {
	t.Helper()
	id, err := s.StartSession(context.Background(), userID, s.Today())
	require.NoError(t, err)
	return id
}

// requireConsistent checks that at most one log is open and that every
// accumulator equals the sum of its closed logs
func requireConsistent(t *testing.T, s *Store, sessionID uint) {
	t.Helper()
	ctx := context.Background()

	session, err := s.GetSession(ctx, sessionID)
	require.NoError(t, err)
	logs, err := s.ListActivityLogs(ctx, sessionID)
	require.NoError(t, err)

	open := 0
	sums := map[models.ActivityType]int64{}
	for _, l := range logs {
		if l.IsOpen() {
			open++
			continue
		}
		sums[l.ActivityType] += l.Duration
	}
	require.LessOrEqual(t, open, 1, "open activities")
	if !session.IsOpen() {
		require.Zero(t, open, "closed session with open activity")
	}
	for _, typ := range models.ActivityTypes() {
		require.Equal(t, sums[typ], session.Total(typ), "accumulator for %s", typ)
	}
}
