package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsov/todo-api/internal/event"
	"github.com/mkuznetsov/todo-api/internal/model"
	"github.com/mkuznetsov/todo-api/internal/repo"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, ownerID string, id int64) (model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID string, f model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, ownerID, f)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Counts(ctx context.Context, ownerID string) (repo.Counts, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(repo.Counts), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) ToggleComplete(ctx context.Context, ownerID string, id int64) (model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockTaskCache - мок кэша
type MockTaskCache struct {
	mock.Mock
}

func (m *MockTaskCache) GetList(ctx context.Context, ownerID string) (*model.TaskList, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskList), args.Error(1)
}

func (m *MockTaskCache) SetList(ctx context.Context, ownerID string, list model.TaskList, ttl time.Duration) error {
	args := m.Called(ctx, ownerID, list, ttl)
	return args.Error(0)
}

func (m *MockTaskCache) Invalidate(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// MockPublisher - мок продюсера событий
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func TestTaskService_Create_Validation(t *testing.T) {
	tests := []struct {
		name      string
		task      model.Task
		wantField string
	}{
		{
			name:      "empty title",
			task:      model.Task{OwnerID: "alice", Title: ""},
			wantField: "title",
		},
		{
			name:      "whitespace title",
			task:      model.Task{OwnerID: "alice", Title: "   "},
			wantField: "title",
		},
		{
			name:      "title over 200 characters",
			task:      model.Task{OwnerID: "alice", Title: strings.Repeat("a", 201)},
			wantField: "title",
		},
		{
			name:      "multibyte title over 200 characters",
			task:      model.Task{OwnerID: "alice", Title: strings.Repeat("я", 201)},
			wantField: "title",
		},
		{
			name:      "description over 1000 characters",
			task:      model.Task{OwnerID: "alice", Title: "ok", Description: strPtr(strings.Repeat("b", 1001))},
			wantField: "description",
		},
		{
			name: "title exactly 200 characters is valid",
			task: model.Task{OwnerID: "alice", Title: strings.Repeat("a", 200)},
		},
		{
			name: "description exactly 1000 characters is valid",
			task: model.Task{OwnerID: "alice", Title: "ok", Description: strPtr(strings.Repeat("b", 1000))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			svc := NewTaskService(mockRepo, nil, nil)

			if tt.wantField == "" {
				created := tt.task
				created.ID = 1
				mockRepo.On("Create", mock.Anything, tt.task).Return(created, nil)
			}

			_, err := svc.Create(context.Background(), tt.task)

			if tt.wantField != "" {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				mockRepo.AssertNotCalled(t, "Create")
				return
			}

			require.NoError(t, err)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Create_InvalidatesCacheAndPublishes(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskCache)
	mockEvents := new(MockPublisher)
	svc := NewTaskService(mockRepo, mockCache, mockEvents)

	task := model.Task{OwnerID: "alice", Title: "Buy milk"}
	created := task
	created.ID = 42

	mockRepo.On("Create", mock.Anything, task).Return(created, nil)
	mockCache.On("Invalidate", mock.Anything, "alice").Return(nil)
	mockEvents.On("Publish", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		return e.Action == event.TaskCreated && e.OwnerID == "alice" && e.TaskID == 42
	})).Return(nil)

	got, err := svc.Create(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestTaskService_Create_NoEventOnRepoError(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockEvents := new(MockPublisher)
	svc := NewTaskService(mockRepo, nil, mockEvents)

	task := model.Task{OwnerID: "alice", Title: "Buy milk"}
	mockRepo.On("Create", mock.Anything, task).Return(model.Task{}, assert.AnError)

	_, err := svc.Create(context.Background(), task)
	assert.Error(t, err)
	mockEvents.AssertNotCalled(t, "Publish")
}

func TestTaskService_List_ParamValidation(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.TaskFilter
		wantParam string
	}{
		{name: "unknown status", filter: model.TaskFilter{Status: "done"}, wantParam: "status"},
		{name: "unknown sort", filter: model.TaskFilter{Sort: "priority"}, wantParam: "sort"},
		{name: "unknown order", filter: model.TaskFilter{Order: "up"}, wantParam: "order"},
		{name: "limit too big", filter: model.TaskFilter{Limit: 101}, wantParam: "limit"},
		{name: "negative limit", filter: model.TaskFilter{Limit: -5}, wantParam: "limit"},
		{name: "negative offset", filter: model.TaskFilter{Offset: -1}, wantParam: "offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			svc := NewTaskService(mockRepo, nil, nil)

			_, err := svc.List(context.Background(), "alice", tt.filter)

			var pErr *ParamError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, tt.wantParam, pErr.Param)
			mockRepo.AssertNotCalled(t, "List")
		})
	}
}

func TestTaskService_List_DefaultsAndCounts(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	svc := NewTaskService(mockRepo, nil, nil)

	want := defaultFilter()
	tasks := []model.Task{{ID: 1, OwnerID: "alice", Title: "T1"}}

	mockRepo.On("List", mock.Anything, "alice", want).Return(tasks, nil)
	mockRepo.On("Counts", mock.Anything, "alice").Return(repo.Counts{Total: 3, Pending: 2, Completed: 1}, nil)

	list, err := svc.List(context.Background(), "alice", model.TaskFilter{})
	require.NoError(t, err)

	assert.Equal(t, tasks, list.Tasks)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 2, list.Pending)
	assert.Equal(t, 1, list.Completed)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_List_CacheHitSkipsRepo(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskCache)
	svc := NewTaskService(mockRepo, mockCache, nil)

	cached := &model.TaskList{Tasks: []model.Task{{ID: 1}}, Total: 1, Pending: 1}
	mockCache.On("GetList", mock.Anything, "alice").Return(cached, nil)

	list, err := svc.List(context.Background(), "alice", model.TaskFilter{})
	require.NoError(t, err)

	assert.Equal(t, *cached, list)
	mockRepo.AssertNotCalled(t, "List")
	mockRepo.AssertNotCalled(t, "Counts")
}

func TestTaskService_List_CacheMissPopulatesCache(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskCache)
	svc := NewTaskService(mockRepo, mockCache, nil)

	tasks := []model.Task{{ID: 1, OwnerID: "alice", Title: "T1"}}
	mockCache.On("GetList", mock.Anything, "alice").Return(nil, nil)
	mockRepo.On("List", mock.Anything, "alice", defaultFilter()).Return(tasks, nil)
	mockRepo.On("Counts", mock.Anything, "alice").Return(repo.Counts{Total: 1, Pending: 1}, nil)
	mockCache.On("SetList", mock.Anything, "alice", mock.AnythingOfType("model.TaskList"), listCacheTTL).Return(nil)

	_, err := svc.List(context.Background(), "alice", model.TaskFilter{})
	require.NoError(t, err)

	mockCache.AssertExpectations(t)
}

func TestTaskService_List_FilteredQueryBypassesCache(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskCache)
	svc := NewTaskService(mockRepo, mockCache, nil)

	filter := model.TaskFilter{Status: "pending", Sort: "created", Order: "desc", Limit: 100}
	mockRepo.On("List", mock.Anything, "alice", filter).Return([]model.Task{}, nil)
	mockRepo.On("Counts", mock.Anything, "alice").Return(repo.Counts{Total: 2, Pending: 0, Completed: 2}, nil)

	list, err := svc.List(context.Background(), "alice", model.TaskFilter{Status: "pending"})
	require.NoError(t, err)

	// Агрегаты не сужаются фильтром
	assert.Equal(t, 2, list.Total)
	mockCache.AssertNotCalled(t, "GetList")
	mockCache.AssertNotCalled(t, "SetList")
}

func TestTaskService_Toggle_PropagatesNotFound(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockEvents := new(MockPublisher)
	svc := NewTaskService(mockRepo, nil, mockEvents)

	mockRepo.On("ToggleComplete", mock.Anything, "alice", int64(99)).Return(model.Task{}, repo.ErrorNotFound)

	_, err := svc.ToggleComplete(context.Background(), "alice", 99)
	assert.ErrorIs(t, err, repo.ErrorNotFound)
	mockEvents.AssertNotCalled(t, "Publish")
}

func TestTaskService_Delete_PublishesEvent(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockCache := new(MockTaskCache)
	mockEvents := new(MockPublisher)
	svc := NewTaskService(mockRepo, mockCache, mockEvents)

	mockRepo.On("Delete", mock.Anything, "alice", int64(7)).Return(nil)
	mockCache.On("Invalidate", mock.Anything, "alice").Return(nil)
	mockEvents.On("Publish", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		return e.Action == event.TaskDeleted && e.TaskID == 7
	})).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "alice", 7))
	mockEvents.AssertExpectations(t)
}

func TestTaskService_Update_Validation(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	svc := NewTaskService(mockRepo, nil, nil)

	_, err := svc.Update(context.Background(), model.Task{ID: 1, OwnerID: "alice", Title: ""})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
	mockRepo.AssertNotCalled(t, "Update")
}
