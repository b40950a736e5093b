package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Tomlord1122/user-todo-api/internal/domain"
	"github.com/Tomlord1122/user-todo-api/internal/repository"
)

// TodoService defines the operations on a user's todos. Every operation
// first resolves the user and, where a todo id is given, the todo owned by
// that user; a failed resolution short-circuits before any write.
type TodoService interface {
	// ResolveUser returns the user or ErrUserNotFound.
	ResolveUser(ctx context.Context, userID uint) (*domain.User, error)

	// ResolveOwnedTodo returns the todo with todoID owned by user or
	// ErrTodoNotFound. A todo owned by someone else is never returned.
	ResolveOwnedTodo(ctx context.Context, user *domain.User, todoID uint) (*domain.Todo, error)

	// ListTodos returns the user's todos, optionally restricted to a month
	// and day of any year, ordered ascending by created_at or updated_at.
	ListTodos(ctx context.Context, userID uint, params ListTodosParams) ([]TodoResponse, error)

	// CreateTodo decodes a TodoPayload from body, validates it and stores a
	// new todo owned by the user.
	CreateTodo(ctx context.Context, userID uint, body Decoder) (*TodoResponse, error)

	// GetTodo returns one todo owned by the user.
	GetTodo(ctx context.Context, userID, todoID uint) (*TodoResponse, error)

	// UpdateTodo applies a partial update: fields missing from the payload
	// keep their stored values.
	UpdateTodo(ctx context.Context, userID, todoID uint, body Decoder) (*TodoResponse, error)

	// DeleteTodo permanently removes one todo owned by the user.
	DeleteTodo(ctx context.Context, userID, todoID uint) error

	// SetChecked stores the truthiness of the supplied is_checked value.
	SetChecked(ctx context.Context, userID, todoID uint, body Decoder) (*TodoResponse, error)

	// SetReview stores the supplied review. An empty review is allowed.
	SetReview(ctx context.Context, userID, todoID uint, body Decoder) (*TodoResponse, error)

	// ClearReview resets the review to the empty string.
	ClearReview(ctx context.Context, userID, todoID uint) error
}

type todoService struct {
	users  repository.UserRepository
	todos  repository.TodoRepository
	logger zerolog.Logger
}

// NewTodoService returns a TodoService backed by the given repositories.
func NewTodoService(users repository.UserRepository, todos repository.TodoRepository, logger zerolog.Logger) TodoService {
	return &todoService{
		users:  users,
		todos:  todos,
		logger: logger.With().Str("component", "todo_service").Logger(),
	}
}

func (s *todoService) ResolveUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Uint("user_id", userID).
			Msg("failed to fetch user")
		return nil, fmt.Errorf("fetch user %d: %w", userID, err)
	}
	return user, nil
}

func (s *todoService) ResolveOwnedTodo(ctx context.Context, user *domain.User, todoID uint) (*domain.Todo, error) {
	todo, err := s.todos.FindByIDForUser(ctx, todoID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		s.logger.Error().
			Err(err).
			Uint("user_id", user.ID).
			Uint("todo_id", todoID).
			Msg("failed to fetch todo")
		return nil, fmt.Errorf("fetch todo %d: %w", todoID, err)
	}
	return todo, nil
}

func (s *todoService) resolve(ctx context.Context, userID, todoID uint) (*domain.Todo, error) {
	user, err := s.ResolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ResolveOwnedTodo(ctx, user, todoID)
}

func (s *todoService) ListTodos(ctx context.Context, userID uint, params ListTodosParams) ([]TodoResponse, error) {
	user, err := s.ResolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	filter := repository.TodoFilter{SortBy: sortField(params.SortBy)}
	if params.Month != nil && params.Day != nil {
		month, errMonth := parseInt(*params.Month)
		day, errDay := parseInt(*params.Day)
		if errMonth != nil || errDay != nil {
			return nil, ErrInvalidDateFilter
		}
		filter.ByMonthDay = true
		filter.Month, filter.Day = month, day
	}

	todos, err := s.todos.ListByUser(ctx, user.ID, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Uint("user_id", user.ID).
			Msg("failed to list todos")
		return nil, fmt.Errorf("list todos: %w", err)
	}

	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, newTodoResponse(&todos[i]))
	}
	return responses, nil
}

func (s *todoService) CreateTodo(ctx context.Context, userID uint, body Decoder) (*TodoResponse, error) {
	user, err := s.ResolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var payload TodoPayload
	if err := body(&payload); err != nil {
		return nil, err
	}

	in, err := validateTodoPayload(payload, false)
	if err != nil {
		return nil, err
	}

	todo := &domain.Todo{UserID: user.ID}
	if err := applyTodoInput(todo, in); err != nil {
		return nil, err
	}

	if err := s.todos.Create(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Uint("user_id", user.ID).
			Msg("failed to create todo")
		return nil, fmt.Errorf("create todo: %w", err)
	}
	s.logger.Info().
		Uint("user_id", user.ID).
		Uint("todo_id", todo.ID).
		Msg("created todo")

	response := newTodoResponse(todo)
	return &response, nil
}

func (s *todoService) GetTodo(ctx context.Context, userID, todoID uint) (*TodoResponse, error) {
	todo, err := s.resolve(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}
	response := newTodoResponse(todo)
	return &response, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, userID, todoID uint, body Decoder) (*TodoResponse, error) {
	todo, err := s.resolve(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	var payload TodoPayload
	if err := body(&payload); err != nil {
		return nil, err
	}

	in, err := validateTodoPayload(payload, true)
	if err != nil {
		return nil, err
	}
	if err := applyTodoInput(todo, in); err != nil {
		return nil, err
	}

	return s.save(ctx, todo, "updated todo")
}

func (s *todoService) DeleteTodo(ctx context.Context, userID, todoID uint) error {
	todo, err := s.resolve(ctx, userID, todoID)
	if err != nil {
		return err
	}

	if err := s.todos.Delete(ctx, todo.ID, todo.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTodoNotFound
		}
		s.logger.Error().
			Err(err).
			Uint("todo_id", todo.ID).
			Msg("failed to delete todo")
		return fmt.Errorf("delete todo %d: %w", todo.ID, err)
	}
	s.logger.Info().
		Uint("user_id", todo.UserID).
		Uint("todo_id", todo.ID).
		Msg("deleted todo")
	return nil
}

func (s *todoService) SetChecked(ctx context.Context, userID, todoID uint, body Decoder) (*TodoResponse, error) {
	todo, err := s.resolve(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	var req CheckRequest
	if err := body(&req); err != nil {
		return nil, err
	}

	checked, err := requireTruthy(req.IsChecked, ErrIsCheckedRequired)
	if err != nil {
		return nil, err
	}
	todo.IsChecked = checked

	return s.save(ctx, todo, "updated todo check")
}

func (s *todoService) SetReview(ctx context.Context, userID, todoID uint, body Decoder) (*TodoResponse, error) {
	todo, err := s.resolve(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	var req ReviewRequest
	if err := body(&req); err != nil {
		return nil, err
	}
	raw, err := requirePresent(req.Review, ErrReviewRequired)
	if err != nil {
		return nil, err
	}
	review, msg := decodeString(raw, true)
	if msg != "" {
		return nil, &ValidationError{Fields: map[string][]string{"review": {msg}}}
	}
	todo.Review = review

	return s.save(ctx, todo, "updated todo review")
}

func (s *todoService) ClearReview(ctx context.Context, userID, todoID uint) error {
	todo, err := s.resolve(ctx, userID, todoID)
	if err != nil {
		return err
	}

	todo.Review = ""
	_, err = s.save(ctx, todo, "cleared todo review")
	return err
}

func (s *todoService) save(ctx context.Context, todo *domain.Todo, msg string) (*TodoResponse, error) {
	if err := s.todos.Update(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		s.logger.Error().
			Err(err).
			Uint("todo_id", todo.ID).
			Msg("failed to update todo")
		return nil, fmt.Errorf("update todo %d: %w", todo.ID, err)
	}
	s.logger.Info().
		Uint("user_id", todo.UserID).
		Uint("todo_id", todo.ID).
		Msg(msg)

	response := newTodoResponse(todo)
	return &response, nil
}

// sortField maps the sort_by parameter onto a column. Unknown values fall
// back to created_at.
func sortField(raw string) repository.SortField {
	if repository.SortField(raw) == repository.SortByUpdatedAt {
		return repository.SortByUpdatedAt
	}
	return repository.SortByCreatedAt
}

func parseInt(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}
