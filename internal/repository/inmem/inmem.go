// Package inmem implements the repository contracts in memory. It backs the
// service and HTTP handler tests, where a real PostgreSQL is not needed.
package inmem

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Tomlord1122/user-todo-api/internal/domain"
	"github.com/Tomlord1122/user-todo-api/internal/repository"
)

// Store holds users and todos. The zero value is not usable; call New.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	users  map[uint]domain.User
	todos  map[uint]domain.Todo
	nextID struct{ user, todo uint }
}

// New returns an empty store. Timestamps come from a clock that advances one
// second per write so orderings by created_at and updated_at are stable.
func New() *Store {
	clock := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &Store{
		now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
		users: make(map[uint]domain.User),
		todos: make(map[uint]domain.Todo),
	}
}

// Users returns the store as a repository.UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Todos returns the store as a repository.TodoRepository.
func (s *Store) Todos() repository.TodoRepository { return todoRepo{s} }

// checkIDs fails like the PostgreSQL driver does for ids that do not fit the
// BIGINT id columns.
func checkIDs(ids ...uint) error {
	for _, id := range ids {
		if uint64(id) > math.MaxInt64 {
			return fmt.Errorf("%d is greater than maximum value for int64", id)
		}
	}
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return repository.ErrConflict
		}
	}
	r.s.nextID.user++
	now := r.s.now()
	user.ID = r.s.nextID.user
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type todoRepo struct{ s *Store }

func (r todoRepo) Create(_ context.Context, todo *domain.Todo) error {
	if err := checkIDs(todo.UserID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[todo.UserID]; !ok {
		return repository.ErrOwnerNotFound
	}
	r.s.nextID.todo++
	now := r.s.now()
	todo.ID = r.s.nextID.todo
	todo.CreatedAt, todo.UpdatedAt = now, now
	r.s.todos[todo.ID] = *todo
	return nil
}

func (r todoRepo) FindByIDForUser(_ context.Context, id, userID uint) (*domain.Todo, error) {
	if err := checkIDs(id, userID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.todos[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r todoRepo) ListByUser(_ context.Context, userID uint, filter repository.TodoFilter) ([]domain.Todo, error) {
	if err := checkIDs(userID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	todos := make([]domain.Todo, 0)
	for _, t := range r.s.todos {
		if t.UserID != userID {
			continue
		}
		if filter.ByMonthDay && (int(t.Date.Month()) != filter.Month || t.Date.Day() != filter.Day) {
			continue
		}
		todos = append(todos, t)
	}

	key := func(t domain.Todo) time.Time { return t.CreatedAt }
	if filter.SortBy == repository.SortByUpdatedAt {
		key = func(t domain.Todo) time.Time { return t.UpdatedAt }
	}
	sort.Slice(todos, func(i, j int) bool {
		a, b := key(todos[i]), key(todos[j])
		if a.Equal(b) {
			return todos[i].ID < todos[j].ID
		}
		return a.Before(b)
	})
	return todos, nil
}

func (r todoRepo) Update(_ context.Context, todo *domain.Todo) error {
	if err := checkIDs(todo.ID, todo.UserID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.todos[todo.ID]
	if !ok || stored.UserID != todo.UserID {
		return repository.ErrNotFound
	}
	stored.Date = todo.Date
	stored.IsChecked = todo.IsChecked
	stored.Review = todo.Review
	stored.UpdatedAt = r.s.now()
	r.s.todos[todo.ID] = stored
	*todo = stored
	return nil
}

func (r todoRepo) Delete(_ context.Context, id, userID uint) error {
	if err := checkIDs(id, userID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.todos[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.todos, id)
	return nil
}
