package repository_test

import (
	"context"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Tomlord1122/user-todo-api/internal/config"
	"github.com/Tomlord1122/user-todo-api/internal/database"
	"github.com/Tomlord1122/user-todo-api/internal/domain"
	"github.com/Tomlord1122/user-todo-api/internal/repository"
)

var (
	startOnce sync.Once
	container *postgres.PostgresContainer
	dbService database.Service
	startErr  error
)

func TestMain(m *testing.M) {
	code := m.Run()

	if dbService != nil {
		_ = dbService.Close()
	}
	if container != nil {
		_ = container.Terminate(context.Background())
	}
	os.Exit(code)
}

func mustStartPostgresContainer(ctx context.Context) (config.DatabaseConfig, error) {
	var (
		dbName = "todos"
		dbUser = "user"
		dbPwd  = "password"
	)

	var err error
	container, err = postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return config.DatabaseConfig{}, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return config.DatabaseConfig{}, err
	}

	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		Username:        dbUser,
		Password:        dbPwd,
		Database:        dbName,
		Schema:          "public",
		SSLMode:         "disable",
		MaxIdleConns:    2,
		MaxOpenConns:    5,
		ConnMaxLifetime: time.Minute,
	}, nil
}

// testDB returns a migrated, empty database. The container is started once
// per package run; tests are skipped when no container runtime is available.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	startOnce.Do(func() {
		ctx := context.Background()
		cfg, err := mustStartPostgresContainer(ctx)
		if err != nil {
			startErr = err
			return
		}
		if err := database.Migrate(cfg); err != nil {
			startErr = err
			return
		}
		dbService, startErr = database.New(cfg, zerolog.Nop())
	})
	require.NoError(t, startErr, "could not start postgres container")

	db := dbService.GetDB()
	require.NoError(t, db.Exec("TRUNCATE todos, users RESTART IDENTITY CASCADE").Error)
	return db
}

func seedUser(t *testing.T, users repository.UserRepository, name string) *domain.User {
	t.Helper()
	user := &domain.User{Username: name}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func seedTodo(t *testing.T, todos repository.TodoRepository, userID uint, date string) *domain.Todo {
	t.Helper()
	d, err := time.Parse(time.DateOnly, date)
	require.NoError(t, err)
	todo := &domain.Todo{UserID: userID, Date: d}
	require.NoError(t, todos.Create(context.Background(), todo))
	return todo
}

func ids(todos []domain.Todo) []uint {
	out := make([]uint, 0, len(todos))
	for _, todo := range todos {
		out = append(out, todo.ID)
	}
	return out
}

func TestHealth(t *testing.T) {
	testDB(t)

	stats := dbService.Health()
	assert.Equal(t, "up", stats["status"])
	assert.Contains(t, stats, "open_connections")
}

func TestGormUserRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewGormUserRepository(db)

	alice := seedUser(t, users, "alice")

	got, err := users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = users.FindByID(ctx, alice.ID+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = users.FindByID(ctx, math.MaxInt64)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = users.Create(ctx, &domain.User{Username: "alice"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestGormTodoRepositoryCreateAndFind(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewGormUserRepository(db)
	todos := repository.NewGormTodoRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	todo := seedTodo(t, todos, alice.ID, "2024-02-29")
	assert.NotZero(t, todo.ID)
	assert.False(t, todo.CreatedAt.IsZero())

	got, err := todos.FindByIDForUser(ctx, todo.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got.Date.Format(time.DateOnly))
	assert.False(t, got.IsChecked)
	assert.Equal(t, "", got.Review)

	_, err = todos.FindByIDForUser(ctx, todo.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = todos.FindByIDForUser(ctx, math.MaxInt64, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = todos.Create(ctx, &domain.Todo{UserID: bob.ID + 100, Date: todo.Date})
	assert.ErrorIs(t, err, repository.ErrOwnerNotFound)
}

func TestGormTodoRepositoryListByUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewGormUserRepository(db)
	todos := repository.NewGormTodoRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	first := seedTodo(t, todos, alice.ID, "2024-03-10")
	second := seedTodo(t, todos, alice.ID, "2019-03-10")
	third := seedTodo(t, todos, alice.ID, "2024-03-11")
	seedTodo(t, todos, bob.ID, "2024-03-10")

	first.Review = "touched"
	require.NoError(t, todos.Update(ctx, first))

	tests := []struct {
		name   string
		filter repository.TodoFilter
		want   []uint
	}{
		{
			name:   "all by created_at",
			filter: repository.TodoFilter{},
			want:   []uint{first.ID, second.ID, third.ID},
		},
		{
			name:   "all by updated_at",
			filter: repository.TodoFilter{SortBy: repository.SortByUpdatedAt},
			want:   []uint{second.ID, third.ID, first.ID},
		},
		{
			name:   "month and day in any year",
			filter: repository.TodoFilter{ByMonthDay: true, Month: 3, Day: 10},
			want:   []uint{first.ID, second.ID},
		},
		{
			name:   "out of range month",
			filter: repository.TodoFilter{ByMonthDay: true, Month: 13, Day: 1},
			want:   []uint{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := todos.ListByUser(ctx, alice.ID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("user without todos", func(t *testing.T) {
		carol := seedUser(t, users, "carol")
		got, err := todos.ListByUser(ctx, carol.ID, repository.TodoFilter{})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestGormTodoRepositoryUpdate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewGormUserRepository(db)
	todos := repository.NewGormTodoRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	todo := seedTodo(t, todos, alice.ID, "2024-05-01")

	todo.IsChecked = true
	todo.Review = "done"
	todo.Date = time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, todos.Update(ctx, todo))

	got, err := todos.FindByIDForUser(ctx, todo.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, got.IsChecked)
	assert.Equal(t, "done", got.Review)
	assert.Equal(t, "2024-05-02", got.Date.Format(time.DateOnly))
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	t.Run("scoped to owner", func(t *testing.T) {
		stolen := *got
		stolen.UserID = bob.ID
		stolen.Review = "stolen"
		assert.ErrorIs(t, todos.Update(ctx, &stolen), repository.ErrNotFound)

		unchanged, err := todos.FindByIDForUser(ctx, todo.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "done", unchanged.Review)
	})

	t.Run("never re-inserts a deleted todo", func(t *testing.T) {
		require.NoError(t, todos.Delete(ctx, todo.ID, alice.ID))
		assert.ErrorIs(t, todos.Update(ctx, got), repository.ErrNotFound)

		var count int64
		require.NoError(t, db.Model(&domain.Todo{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestGormTodoRepositoryDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewGormUserRepository(db)
	todos := repository.NewGormTodoRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	todo := seedTodo(t, todos, alice.ID, "2024-05-01")

	assert.ErrorIs(t, todos.Delete(ctx, todo.ID, bob.ID), repository.ErrNotFound)

	require.NoError(t, todos.Delete(ctx, todo.ID, alice.ID))
	_, err := todos.FindByIDForUser(ctx, todo.ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, todos.Delete(ctx, todo.ID, alice.ID), repository.ErrNotFound)
}

func TestUserDeleteCascadesToTodos(t *testing.T) {
	db := testDB(t)
	users := repository.NewGormUserRepository(db)
	todos := repository.NewGormTodoRepository(db)

	alice := seedUser(t, users, "alice")
	seedTodo(t, todos, alice.ID, "2024-05-01")
	seedTodo(t, todos, alice.ID, "2024-05-02")

	require.NoError(t, db.Delete(&domain.User{}, alice.ID).Error)

	var count int64
	require.NoError(t, db.Model(&domain.Todo{}).Where("user_id = ?", alice.ID).Count(&count).Error)
	assert.Zero(t, count)
}
