package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkuznetsov/todo-api/internal/model"
)

var ErrorNotFound = errors.New("not found")

// Колонки сортировки по ключам из запроса. Репозиторий сам ограничивает
// значения, даже если сервис уже провалидировал параметры.
var sortColumns = map[string]string{
	"created": "created_at",
	"updated": "updated_at",
	"title":   "title",
}

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (owner_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, owner_id, title, description, completed, created_at, updated_at
	`, t.OwnerID, t.Title, t.Description).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TaskRepo) Get(ctx context.Context, ownerID string, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, ownerID string, f model.TaskFilter) ([]model.Task, error) {
	column, ok := sortColumns[f.Sort]
	if !ok {
		return nil, fmt.Errorf("unknown sort key %q", f.Sort)
	}
	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}

	// Вторичная сортировка по id в том же направлении дает стабильный порядок
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1
		  AND ($2::text = 'all' OR completed = ($2 = 'completed'))
		ORDER BY %s %s, id %s
		LIMIT $3 OFFSET $4
	`, column, direction, direction)

	rows, err := r.pool.Query(ctx, query, ownerID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, f.Limit)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Counts(ctx context.Context, ownerID string) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE NOT completed),
		       count(*) FILTER (WHERE completed)
		FROM tasks
		WHERE owner_id = $1
	`, ownerID).Scan(&c.Total, &c.Pending, &c.Completed)
	return c, err
}

func (r *TaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, updated_at = clock_timestamp()
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, description, completed, created_at, updated_at
	`, t.ID, t.OwnerID, t.Title, t.Description).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) ToggleComplete(ctx context.Context, ownerID string, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET completed = NOT completed, updated_at = clock_timestamp()
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, description, completed, created_at, updated_at
	`, id, ownerID).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}
