package inmem

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/user-todo-api/internal/domain"
	"github.com/Tomlord1122/user-todo-api/internal/repository"
)

func TestStoreScopesTodosToOwner(t *testing.T) {
	store := New()
	ctx := context.Background()

	alice := &domain.User{Username: "alice"}
	require.NoError(t, store.Users().Create(ctx, alice))
	bob := &domain.User{Username: "bob"}
	require.NoError(t, store.Users().Create(ctx, bob))
	assert.ErrorIs(t, store.Users().Create(ctx, &domain.User{Username: "alice"}), repository.ErrConflict)

	todo := &domain.Todo{UserID: alice.ID, Date: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Todos().Create(ctx, todo))

	_, err := store.Todos().FindByIDForUser(ctx, todo.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.Todos().Delete(ctx, todo.ID, bob.ID), repository.ErrNotFound)

	err = store.Todos().Create(ctx, &domain.Todo{UserID: 999})
	assert.ErrorIs(t, err, repository.ErrOwnerNotFound)
}

func TestStoreRejectsIDsBeyondBigint(t *testing.T) {
	store := New()
	ctx := context.Background()
	var tooLarge uint = math.MaxInt64
	tooLarge++

	_, err := store.Users().FindByID(ctx, math.MaxInt64)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = store.Users().FindByID(ctx, tooLarge)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)

	_, err = store.Todos().FindByIDForUser(ctx, tooLarge, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}
