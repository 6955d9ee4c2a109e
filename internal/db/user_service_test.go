package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

func TestAddUserValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  NewUser
	}{
		{"empty username", NewUser{Username: "  ", Password: "pw", FullName: "A", Role: models.RoleEmployee}},
		{"empty password", NewUser{Username: "a", Password: "", FullName: "A", Role: models.RoleEmployee}},
		{"empty full name", NewUser{Username: "a", Password: "pw", FullName: "", Role: models.RoleEmployee}},
		{"missing role", NewUser{Username: "a", Password: "pw", FullName: "A"}},
		{"unknown role", NewUser{Username: "a", Password: "pw", FullName: "A", Role: "manager"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddUser(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestAddUserDuplicateLeavesOriginal(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id := mustAddUser(t, s, "alice", models.RoleEmployee)

	_, err := s.AddUser(ctx, NewUser{Username: "alice", Password: "other", FullName: "Impostor", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrDuplicate)

	user, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice Example", user.FullName)
	assert.Equal(t, models.RoleEmployee, user.Role)

	_, err = s.Authenticate(ctx, "alice", "alice-secret")
	assert.NoError(t, err)
}

func TestAddUserNormalizesInput(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddUser(ctx, NewUser{Username: " bob ", Password: "pw", FullName: " Bob B ", Role: "ADMIN"})
	require.NoError(t, err)

	user, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "Bob B", user.FullName)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NotEqual(t, "pw", user.PasswordHash)
}

func TestUpdateUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id := mustAddUser(t, s, "alice", models.RoleEmployee)

	t.Run("keeps password when none given", func(t *testing.T) {
		require.NoError(t, s.UpdateUser(ctx, id, UserUpdate{FullName: "Alice A", Role: models.RoleAdmin}))

		identity, err := s.Authenticate(ctx, "alice", "alice-secret")
		require.NoError(t, err)
		assert.Equal(t, "Alice A", identity.FullName)
		assert.True(t, identity.IsAdmin())
	})

	t.Run("empty password keeps it too", func(t *testing.T) {
		empty := ""
		require.NoError(t, s.UpdateUser(ctx, id, UserUpdate{Password: &empty, FullName: "Alice A", Role: models.RoleAdmin}))
		_, err := s.Authenticate(ctx, "alice", "alice-secret")
		assert.NoError(t, err)
	})

	t.Run("replaces password", func(t *testing.T) {
		pw := "new-secret"
		require.NoError(t, s.UpdateUser(ctx, id, UserUpdate{Password: &pw, FullName: "Alice A", Role: models.RoleEmployee}))

		_, err := s.Authenticate(ctx, "alice", "alice-secret")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Authenticate(ctx, "alice", "new-secret")
		assert.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		err := s.UpdateUser(ctx, id, UserUpdate{FullName: "", Role: models.RoleEmployee})
		assert.ErrorIs(t, err, ErrValidation)
		err = s.UpdateUser(ctx, id, UserUpdate{FullName: "A", Role: "boss"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := s.UpdateUser(ctx, 999, UserUpdate{FullName: "A", Role: models.RoleEmployee})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListUsersOrderedByUsername(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"carol", "alice", "bob"} {
		mustAddUser(t, s, name, models.RoleEmployee)
	}

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

// seedHistory gives user two closed sessions and one open one
func seedHistory(t *testing.T, s *Store, clk interface{ Set(time.Time) }, userID uint) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		start := day.AddDate(0, 0, i)
		clk.Set(start)
		sessionID := mustStart(t, s, userID)

		clk.Set(start.Add(time.Hour))
		_, err := s.ChangeActivity(ctx, sessionID, models.ActivityMeeting)
		require.NoError(t, err)

		if i < 2 {
			clk.Set(start.Add(2 * time.Hour))
			_, err = s.EndSession(ctx, sessionID)
			require.NoError(t, err)
		}
	}
}

func countRows(t *testing.T, gdb *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestDeleteUserCascades(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()
	alice := mustAddUser(t, s, "alice", models.RoleEmployee)
	bob := mustAddUser(t, s, "bob", models.RoleEmployee)
	seedHistory(t, s, clk, alice)
	seedHistory(t, s, clk, bob)

	require.NoError(t, s.DeleteUser(ctx, alice))

	gdb := s.DB()
	assert.Zero(t, countRows(t, gdb, &models.User{}, "id = ?", alice))
	assert.Zero(t, countRows(t, gdb, &models.Session{}, "user_id = ?", alice))
	assert.Zero(t, countRows(t, gdb, &models.ActivityLog{},
		"record_id NOT IN (?)", gdb.Model(&models.Session{}).Select("id")))

	// bob is untouched
	assert.Equal(t, int64(3), countRows(t, gdb, &models.Session{}, "user_id = ?", bob))
	assert.Equal(t, int64(6), countRows(t, gdb, &models.ActivityLog{}, "1 = 1"))

	assert.ErrorIs(t, s.DeleteUser(ctx, alice), ErrNotFound)
	assert.Zero(t, s.userLocks.size())
}

func TestDeleteUserExcludesConcurrentTracking(t *testing.T) {
	for round := 0; round < 5; round++ {
		s, clk := newTestStore(t)
		ctx := context.Background()
		alice := mustAddUser(t, s, "alice", models.RoleEmployee)
		seedHistory(t, s, clk, alice)

		open, err := s.ListActiveSessions(ctx, &alice)
		require.NoError(t, err)
		require.Len(t, open, 1)
		sessionID := open[0].SessionID

		types := models.ActivityTypes()
		var wg sync.WaitGroup
		errs := make(chan error, 64)
		start := make(chan struct{})

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, err := s.ChangeActivity(ctx, sessionID, types[i%len(types)])
				if err != nil && !errors.Is(err, ErrState) && !errors.Is(err, ErrNotFound) {
					errs <- err
				}
			}(i)
		}
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				views, err := s.ListActiveSessions(ctx, nil)
				if err != nil {
					errs <- err
					return
				}
				for _, v := range views {
					if v.Username != "alice" {
						errs <- fmt.Errorf("session #%d listed without its owner", v.SessionID)
					}
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := s.DeleteUser(ctx, alice); err != nil {
				errs <- err
			}
		}()

		close(start)
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err, "round %d", round)
		}

		gdb := s.DB()
		assert.Zero(t, countRows(t, gdb, &models.User{}, "1 = 1"), "round %d", round)
		assert.Zero(t, countRows(t, gdb, &models.Session{}, "1 = 1"), "round %d", round)
		assert.Zero(t, countRows(t, gdb, &models.ActivityLog{}, "1 = 1"), "round %d", round)
		assert.Zero(t, s.userLocks.size())
		assert.Zero(t, s.sessionLocks.size())
	}
}

func TestGetUserByUsernameIsExact(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	upper := mustAddUser(t, s, "Bob", models.RoleEmployee)
	lower := mustAddUser(t, s, "bob", models.RoleEmployee)

	user, err := s.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, lower, user.ID)

	user, err = s.GetUserByUsername(ctx, " Bob ")
	require.NoError(t, err)
	assert.Equal(t, upper, user.ID)

	_, err = s.GetUserByUsername(ctx, "BOB")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveUsername(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	upper := mustAddUser(t, s, "Bob", models.RoleEmployee)
	lower := mustAddUser(t, s, "bob", models.RoleEmployee)
	alice := mustAddUser(t, s, "alice", models.RoleEmployee)

	t.Run("exact match wins over case-insensitive ones", func(t *testing.T) {
		user, err := s.ResolveUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, lower, user.ID)

		user, err = s.ResolveUsername(ctx, "Bob")
		require.NoError(t, err)
		assert.Equal(t, upper, user.ID)
	})

	t.Run("unique case-insensitive match", func(t *testing.T) {
		user, err := s.ResolveUsername(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, alice, user.ID)
	})

	t.Run("ambiguous case-insensitive match", func(t *testing.T) {
		_, err := s.ResolveUsername(ctx, "BOB")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := s.ResolveUsername(ctx, "carol")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

type tableSnapshot struct {
	Users    []models.User
	Sessions []models.Session
	Logs     []models.ActivityLog
}

func snapshot(t *testing.T, gdb *gorm.DB) tableSnapshot {
	t.Helper()
	var snap tableSnapshot
	require.NoError(t, gdb.Order("id").Find(&snap.Users).Error)
	require.NoError(t, gdb.Order("id").Find(&snap.Sessions).Error)
	require.NoError(t, gdb.Order("id").Find(&snap.Logs).Error)
	return snap
}

func TestDeleteUserRollsBackOnFailure(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()
	alice := mustAddUser(t, s, "alice", models.RoleEmployee)
	seedHistory(t, s, clk, alice)

	gdb := s.DB()
	before := snapshot(t, gdb)

	// fail the last step, after logs and sessions are already deleted
	err := gdb.Callback().Delete().Before("gorm:delete").Register("test:fail_users", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			_ = tx.AddError(errors.New("injected failure"))
		}
	})
	require.NoError(t, err)

	err = s.DeleteUser(ctx, alice)
	assert.ErrorIs(t, err, ErrTransaction)

	assert.Equal(t, before, snapshot(t, gdb))
}

func TestImportUsers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustAddUser(t, s, "alice", models.RoleEmployee)

	result, err := s.ImportUsers(ctx, []NewUser{
		{Username: "alice", Password: "x", FullName: "Alice", Role: models.RoleEmployee},
		{Username: "dave", Password: "x", FullName: "Dave", Role: models.RoleAdmin},
		{Username: "erin", Password: "x", FullName: "Erin", Role: models.RoleEmployee},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dave", "erin"}, result.Added)
	assert.Equal(t, []string{"alice"}, result.Skipped)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestImportUsersRejectsInvalidRows(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.ImportUsers(ctx, []NewUser{
		{Username: "frank", Password: "x", FullName: "Frank", Role: models.RoleEmployee},
		{Username: "", Password: "x", FullName: "Nobody", Role: models.RoleEmployee},
		{Username: "gina", Password: "x", FullName: "Gina", Role: "intern"},
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "rows: 2, 3")

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users, "nothing imported when any row is invalid")
}
