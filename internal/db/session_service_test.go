package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/models"
)

func TestStartSessionIsIdempotent(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()
	alice := mustAddUser(t, s, "alice", models.RoleEmployee)

	first, err := s.StartSession(ctx, alice, "2024-03-04")
	require.NoError(t, err)

	clk.Advance(time.Hour)
	second, err := s.StartSession(ctx, alice, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	logs, err := s.ListActivityLogs(ctx, first)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityWork, logs[0].ActivityType)
	assert.True(t, logs[0].IsOpen())

	session, err := s.GetSession(ctx, first)
	require.NoError(t, err)
	assert.True(t, session.LoginTime.Equal(day), "login time unchanged by second start")
}

func TestStartSessionNewDateOpensNewSession(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := mustAddUser(t, s, "alice", models.RoleEmployee)

	first, err := s.StartSession(ctx, alice, "2024-03-04")
	require.NoError(t, err)
	second, err := s.StartSession(ctx, alice, "2024-03-05")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestStartSessionValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.StartSession(ctx, 1, "04/03/2024")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.StartSession(ctx, 999, "2024-03-04")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFullDayScenario(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()
	alice := mustAddUser(t, s, "alice", models.RoleEmployee)
	at := func(hour, minute int) time.Time {
		return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
	}

	clk.Set(at(9, 0))
	sessionID := mustStart(t, s, alice)

	clk.Set(at(9, 30))
	_, err := s.ChangeActivity(ctx, sessionID, models.ActivityBreak)
	require.NoError(t, err)

	clk.Set(at(9, 45))
	_, err = s.ChangeActivity(ctx, sessionID, models.ActivityWork)
	require.NoError(t, err)

	clk.Set(at(17, 0))
	session, err := s.EndSession(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, int64(900), session.TotalBreakTime)
	assert.Equal(t, int64(27900), session.TotalWorkTime)
	require.NotNil(t, session.LogoutTime)
	assert.True(t, session.LogoutTime.Equal(at(17, 0)))

	stats, err := s.CurrentStatistics(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(28800), stats.TotalTime)
	assert.Empty(t, stats.CurrentActivity)

	logs, err := s.ListActivityLogs(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	// each change closes and opens at the same instant
	assert.True(t, logs[0].EndTime.Equal(logs[1].StartTime))
	assert.True(t, logs[1].EndTime.Equal(logs[2].StartTime))

	requireConsistent(t, s, sessionID)
}

func TestEndSessionTwiceIsStateError(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()
	sessionID := mustStart(t, s, mustAddUser(t, s, "alice", models.RoleEmployee))

	clk.Advance(time.Minute)
	_, err := s.EndSession(ctx, sessionID)
	require.NoError(t, err)

	_, err = s.EndSession(ctx, sessionID)
	assert.ErrorIs(t, err, ErrState)

	_, err = s.EndSession(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)

	requireConsistent(t, s, sessionID)
}

func TestEndSessionWithoutOpenActivity(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()
	sessionID := mustStart(t, s, mustAddUser(t, s, "alice", models.RoleEmployee))

	clk.Advance(10 * time.Minute)
	_, err := s.EndActivity(ctx, sessionID)
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)
	session, err := s.EndSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(600), session.TotalWorkTime)
}

func TestOpenSessionFor(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := mustAddUser(t, s, "alice", models.RoleEmployee)

	_, err := s.OpenSessionFor(ctx, alice, s.Today())
	assert.ErrorIs(t, err, ErrNotFound)

	sessionID := mustStart(t, s, alice)
	open, err := s.OpenSessionFor(ctx, alice, s.Today())
	require.NoError(t, err)
	assert.Equal(t, sessionID, open.ID)
}
