package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/user-todo-api/internal/domain"
)

// SortField is a column todos can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// TodoFilter narrows a listing. When ByMonthDay is set only todos whose date
// falls on Month/Day, in any year, are returned.
type TodoFilter struct {
	ByMonthDay bool
	Month      int
	Day        int
	SortBy     SortField
}

// TodoRepository defines the todo data operations. Every lookup and write is
// scoped to the owning user.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByIDForUser(ctx context.Context, id, userID uint) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID uint, filter TodoFilter) ([]domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id, userID uint) error
}

type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository returns a TodoRepository backed by GORM.
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return translateError(r.db.WithContext(ctx).Create(todo).Error)
}

func (r *gormTodoRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&todo, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &todo, nil
}

func (r *gormTodoRepository) ListByUser(ctx context.Context, userID uint, filter TodoFilter) ([]domain.Todo, error) {
	sortBy := filter.SortBy
	if sortBy != SortByUpdatedAt {
		sortBy = SortByCreatedAt
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.ByMonthDay {
		query = query.Where(`EXTRACT(MONTH FROM "date") = ? AND EXTRACT(DAY FROM "date") = ?`, filter.Month, filter.Day)
	}

	todos := make([]domain.Todo, 0)
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: string(sortBy)}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&todos).Error
	if err != nil {
		return nil, translateError(err)
	}
	return todos, nil
}

// Update writes the mutable columns of todo. It never inserts: a todo removed
// concurrently yields ErrNotFound.
func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	result := r.db.WithContext(ctx).
		Model(todo).
		Where("user_id = ?", todo.UserID).
		Select("Date", "IsChecked", "Review", "UpdatedAt").
		Updates(todo)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes the todo.
func (r *gormTodoRepository) Delete(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Todo{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
