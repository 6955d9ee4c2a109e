package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/models"
)

func TestAuthenticate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id := mustAddUser(t, s, "alice", models.RoleEmployee)

	identity, err := s.Authenticate(ctx, "alice", "alice-secret")
	require.NoError(t, err)
	assert.Equal(t, id, identity.ID)
	assert.Equal(t, "alice", identity.Username)
	assert.False(t, identity.IsAdmin())

	_, wrongPassword := s.Authenticate(ctx, "alice", "nope")
	_, unknownUser := s.Authenticate(ctx, "mallory", "nope")
	assert.ErrorIs(t, wrongPassword, ErrNotFound)
	assert.ErrorIs(t, unknownUser, ErrNotFound)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error(), "failures are indistinguishable")

	_, err = s.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBootstrapSeedsOnce(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	seed := config.DefaultUserConfig{Username: "admin", Password: "admin123", FullName: "Administrator"}

	seeded, err := s.Bootstrap(ctx, seed)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.Bootstrap(ctx, seed)
	require.NoError(t, err)
	assert.False(t, seeded)

	identity, err := s.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
