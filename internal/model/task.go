package model

import "time"

type Task struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskFilter struct {
	Status string // all | pending | completed
	Sort   string // created | updated | title
	Order  string // asc | desc
	Limit  int
	Offset int
}

// TaskList - список задач с агрегатами по ВСЕМ задачам владельца,
// независимо от фильтра
type TaskList struct {
	Tasks     []Task `json:"tasks"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Completed int    `json:"completed"`
}
