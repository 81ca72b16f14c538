package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// TaskProgressStore remembers which synthesized tasks a user ticked off.
type TaskProgressStore interface {
	Completed(ctx context.Context, owner viewmodel.Participant) (viewmodel.CompletedSet, error)
	Toggle(ctx context.Context, owner viewmodel.Participant, id viewmodel.TaskID) (bool, error)
}

// NewTaskProgressStore keeps progress in redis, or in memory when no client is configured.
func NewTaskProgressStore(client *redis.Client) TaskProgressStore {
	if client == nil {
		return &memoryTaskProgress{sets: make(map[string]viewmodel.CompletedSet)}
	}
	return &redisTaskProgress{client: client}
}

func taskProgressKey(owner viewmodel.Participant) string {
	return fmt.Sprintf("tasks:completed:%s:%d", owner.Type, owner.ID)
}

type redisTaskProgress struct {
	client *redis.Client
}

func (r *redisTaskProgress) Completed(ctx context.Context, owner viewmodel.Participant) (viewmodel.CompletedSet, error) {
	members, err := r.client.SMembers(ctx, taskProgressKey(owner)).Result()
	if err != nil {
		return nil, err
	}
	return viewmodel.NewCompletedSet(members...), nil
}

// toggleTaskScript flips membership in one step so concurrent toggles cannot both remove.
var toggleTaskScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
	redis.call("SREM", KEYS[1], ARGV[1])
	return 0
end
redis.call("SADD", KEYS[1], ARGV[1])
return 1
`)

// Toggle adds the task, or removes it when it was already present. It reports the new state.
func (r *redisTaskProgress) Toggle(ctx context.Context, owner viewmodel.Participant, id viewmodel.TaskID) (bool, error) {
	state, err := toggleTaskScript.Run(ctx, r.client, []string{taskProgressKey(owner)}, string(id)).Int()
	if err != nil {
		return false, fmt.Errorf("toggle task: %w", err)
	}
	return state == 1, nil
}

type memoryTaskProgress struct {
	mu   sync.Mutex
	sets map[string]viewmodel.CompletedSet
}

func (m *memoryTaskProgress) Completed(_ context.Context, owner viewmodel.Participant) (viewmodel.CompletedSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.sets[taskProgressKey(owner)]
	copied := make(viewmodel.CompletedSet, len(current))
	for id := range current {
		copied[id] = struct{}{}
	}
	return copied, nil
}

func (m *memoryTaskProgress) Toggle(_ context.Context, owner viewmodel.Participant, id viewmodel.TaskID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := taskProgressKey(owner)
	next := viewmodel.ToggleTask(m.sets[key], id)
	m.sets[key] = next
	return next.Has(id), nil
}

func studentOwner(id uint) viewmodel.Participant {
	return viewmodel.Participant{ID: id, Type: models.UserTypeStudent}
}

func teacherOwner(id uint) viewmodel.Participant {
	return viewmodel.Participant{ID: id, Type: models.UserTypeTeacher}
}

func planContains(tasks []viewmodel.Task, id viewmodel.TaskID) bool {
	for _, task := range tasks {
		if task.ID == id {
			return true
		}
	}
	return false
}
