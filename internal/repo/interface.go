package repo

import (
	"context"
	"time"

	"github.com/mkuznetsov/todo-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами.
// Каждый запрос ограничен владельцем: чужая задача неотличима от несуществующей.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, ownerID string, id int64) (model.Task, error)
	List(ctx context.Context, ownerID string, f model.TaskFilter) ([]model.Task, error)
	Counts(ctx context.Context, ownerID string) (Counts, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	ToggleComplete(ctx context.Context, ownerID string, id int64) (model.Task, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// Counts - агрегаты по всем задачам владельца
type Counts struct {
	Total     int
	Pending   int
	Completed int
}

// TaskCache кэширует ответ списка для владельца
type TaskCache interface {
	GetList(ctx context.Context, ownerID string) (*model.TaskList, error)
	SetList(ctx context.Context, ownerID string, list model.TaskList, ttl time.Duration) error
	Invalidate(ctx context.Context, ownerID string) error
}
