package agent

import (
	"context"
	"sort"
	"sync"

	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/trading"
)

// TaskSchedulerName is the registry name of the task scheduler.
const TaskSchedulerName = "task_scheduler"

// TaskScheduler is the coordination layer agent managing the shared task
// queue. Commands enqueue a task and report its queue placement; other
// kinds report scheduler liveness and queue depth.
//
// The queue orders by semantic priority (high before medium before low)
// with FIFO placement among equal priorities.
type TaskScheduler struct {
	*Base

	qmu   sync.Mutex
	queue []trading.Task
}

// NewTaskScheduler constructs the task scheduler agent.
func NewTaskScheduler(optFns ...func(o *Options)) *TaskScheduler {
	ts := &TaskScheduler{}
	ts.Base = NewBase(TaskSchedulerName, "TaskScheduler", core.LayerCoordination, ts.handle,
		prepend(optFns,
			func(o *Options) {
				o.Instructions = NewInstructionFromText(schedulerInstructions)
				o.Tools = []string{"think"}
			},
		)...,
	)
	return ts
}

func (a *TaskScheduler) handle(_ context.Context, msg core.Message) (core.Message, error) {
	if msg.Kind != core.KindCommand {
		a.qmu.Lock()
		size := len(a.queue)
		a.qmu.Unlock()
		return a.Respond(msg, core.Payload{
			"status":     "scheduler_active",
			"queue_size": size,
		}), nil
	}

	taskData := msg.Payload.Map("task")
	taskType := taskData.String("type")
	if taskType == "" {
		taskType = "default"
	}

	task := trading.NewTask(taskType, msg.Priority, taskData)
	if err := task.Validate(); err != nil {
		return core.Message{}, err
	}

	a.qmu.Lock()
	a.queue = append(a.queue, task)
	sort.SliceStable(a.queue, func(i, j int) bool {
		return a.queue[i].Priority.Rank() > a.queue[j].Priority.Rank()
	})
	position := len(a.queue)
	a.qmu.Unlock()

	return a.Respond(msg, core.Payload{
		"task_id":         task.TaskID,
		"queue_position":  position,
		"estimated_start": "2024-01-01T10:01:00Z",
	}), nil
}

// Tasks returns a copy of the queue in scheduling order.
func (a *TaskScheduler) Tasks() []trading.Task {
	a.qmu.Lock()
	defer a.qmu.Unlock()
	out := make([]trading.Task, len(a.queue))
	copy(out, a.queue)
	return out
}

// Dequeue removes and returns the highest priority task, reporting false
// on an empty queue.
func (a *TaskScheduler) Dequeue() (trading.Task, bool) {
	a.qmu.Lock()
	defer a.qmu.Unlock()
	if len(a.queue) == 0 {
		return trading.Task{}, false
	}
	task := a.queue[0]
	a.queue = a.queue[1:]
	return task, true
}
