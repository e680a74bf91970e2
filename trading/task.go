package trading

import (
	"fmt"
	"time"

	"github.com/hupe1980/trademesh/core"
)

// Task lifecycle states.
const (
	TaskQueued     = "queued"
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// Task is a unit of scheduled work managed by the task scheduler. The
// priority reuses the message priority levels so queue ordering matches
// message urgency.
type Task struct {
	TaskID    string         `json:"task_id" validate:"required,uuid4"`
	TaskType  string         `json:"task_type" validate:"required"`
	Priority  core.Priority  `json:"priority" validate:"oneof=high medium low"`
	CreatedAt time.Time      `json:"created_at"`
	Status    string         `json:"status" validate:"oneof=queued processing completed failed"`
	Payload   map[string]any `json:"payload"`
}

// NewTask builds a queued task with a fresh ID and the current UTC
// creation time. A nil payload becomes an empty map.
func NewTask(taskType string, priority core.Priority, payload map[string]any) Task {
	if payload == nil {
		payload = map[string]any{}
	}
	return Task{
		TaskID:    core.NewID(),
		TaskType:  taskType,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
		Status:    TaskQueued,
		Payload:   payload,
	}
}

// Validate checks task identity, priority and lifecycle status.
func (t Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	return nil
}
