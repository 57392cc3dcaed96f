package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mkuznetsov/todo-api/internal/event"
	"github.com/mkuznetsov/todo-api/internal/model"
	"github.com/mkuznetsov/todo-api/internal/repo"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxListLimit      = 100
	listCacheTTL      = 30 * time.Second
)

// ValidationError - ошибка валидации тела запроса, с указанием поля
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// ParamError - непонятное значение query-параметра
type ParamError struct {
	Param  string
	Detail string
}

func (e *ParamError) Error() string { return e.Detail }

type TaskService struct {
	repo   repo.TaskRepository
	cache  repo.TaskCache  // nil, если Redis не настроен
	events event.Publisher // nil, если Kafka не настроена
}

func NewTaskService(taskRepo repo.TaskRepository, cache repo.TaskCache, events event.Publisher) *TaskService {
	return &TaskService{repo: taskRepo, cache: cache, events: events}
}

func (s *TaskService) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if err := validate(t); err != nil {
		return t, err
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return created, err
	}

	s.afterMutation(ctx, event.TaskCreated, created.OwnerID, created.ID)
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID string, id int64) (model.Task, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *TaskService) List(ctx context.Context, ownerID string, f model.TaskFilter) (model.TaskList, error) {
	applyDefaults(&f)
	if err := validateFilter(f); err != nil {
		return model.TaskList{}, err
	}

	cacheable := s.cache != nil && f == defaultFilter()
	if cacheable {
		if cached, err := s.cache.GetList(ctx, ownerID); err == nil && cached != nil {
			return *cached, nil
		}
	}

	tasks, err := s.repo.List(ctx, ownerID, f)
	if err != nil {
		return model.TaskList{}, err
	}

	// Агрегаты считаются по всем задачам владельца, фильтр их не сужает
	counts, err := s.repo.Counts(ctx, ownerID)
	if err != nil {
		return model.TaskList{}, err
	}

	list := model.TaskList{
		Tasks:     tasks,
		Total:     counts.Total,
		Pending:   counts.Pending,
		Completed: counts.Completed,
	}

	if cacheable {
		s.cache.SetList(ctx, ownerID, list, listCacheTTL)
	}
	return list, nil
}

func (s *TaskService) Update(ctx context.Context, t model.Task) (model.Task, error) {
	if err := validate(t); err != nil {
		return t, err
	}

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return updated, err
	}

	s.afterMutation(ctx, event.TaskUpdated, updated.OwnerID, updated.ID)
	return updated, nil
}

func (s *TaskService) ToggleComplete(ctx context.Context, ownerID string, id int64) (model.Task, error) {
	toggled, err := s.repo.ToggleComplete(ctx, ownerID, id)
	if err != nil {
		return toggled, err
	}

	s.afterMutation(ctx, event.TaskToggled, ownerID, id)
	return toggled, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.afterMutation(ctx, event.TaskDeleted, ownerID, id)
	return nil
}

// afterMutation сбрасывает кэш владельца и публикует событие.
// Обе операции best-effort: ошибки не отменяют успешную мутацию.
func (s *TaskService) afterMutation(ctx context.Context, action, ownerID string, taskID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownerID)
	}
	if s.events != nil {
		s.events.Publish(ctx, event.Event{
			Action:  action,
			OwnerID: ownerID,
			TaskID:  taskID,
			At:      time.Now().UTC(),
		})
	}
}

func validate(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Detail: "title must not be empty"}
	}
	if utf8.RuneCountInString(t.Title) > maxTitleLen {
		return &ValidationError{Field: "title", Detail: fmt.Sprintf("title must be at most %d characters", maxTitleLen)}
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > maxDescriptionLen {
		return &ValidationError{Field: "description", Detail: fmt.Sprintf("description must be at most %d characters", maxDescriptionLen)}
	}
	return nil
}

func defaultFilter() model.TaskFilter {
	return model.TaskFilter{Status: "all", Sort: "created", Order: "desc", Limit: maxListLimit}
}

func applyDefaults(f *model.TaskFilter) {
	if f.Status == "" {
		f.Status = "all"
	}
	if f.Sort == "" {
		f.Sort = "created"
	}
	if f.Order == "" {
		f.Order = "desc"
	}
	if f.Limit == 0 {
		f.Limit = maxListLimit
	}
}

func validateFilter(f model.TaskFilter) error {
	switch f.Status {
	case "all", "pending", "completed":
	default:
		return &ParamError{Param: "status", Detail: fmt.Sprintf("status must be one of all, pending, completed; got %q", f.Status)}
	}

	switch f.Sort {
	case "created", "updated", "title":
	default:
		return &ParamError{Param: "sort", Detail: fmt.Sprintf("sort must be one of created, updated, title; got %q", f.Sort)}
	}

	switch f.Order {
	case "asc", "desc":
	default:
		return &ParamError{Param: "order", Detail: fmt.Sprintf("order must be asc or desc; got %q", f.Order)}
	}

	if f.Limit < 1 || f.Limit > maxListLimit {
		return &ParamError{Param: "limit", Detail: fmt.Sprintf("limit must be between 1 and %d", maxListLimit)}
	}
	if f.Offset < 0 {
		return &ParamError{Param: "offset", Detail: "offset must not be negative"}
	}
	return nil
}
