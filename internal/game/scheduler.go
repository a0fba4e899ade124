package game

import (
	"sort"
	"time"
)

// TaskID identifies a scheduled task.
type TaskID uint64

// Scheduler runs deferred work. Implementations must never run a task after
// it has been cancelled.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) TaskID
	Cancel(id TaskID)
}

// Task is a pending deferred call.
type Task struct {
	ID    TaskID
	Delay time.Duration

	due time.Duration
	fn  func()
}

// Queue is a Scheduler driven by its owner. Tests advance virtual time with
// Advance; an event loop drains new tasks, waits on its own timer and calls
// Fire. Queue is not safe for concurrent use.
type Queue struct {
	now   time.Duration
	next  TaskID
	tasks map[TaskID]*Task
	fresh []TaskID
}

// NewQueue returns an empty queue at virtual time zero.
func NewQueue() *Queue {
	return &Queue{tasks: map[TaskID]*Task{}}
}

// Schedule implements Scheduler.
func (q *Queue) Schedule(delay time.Duration, fn func()) TaskID {
	if delay < 0 {
		delay = 0
	}
	q.next++
	id := q.next
	q.tasks[id] = &Task{ID: id, Delay: delay, due: q.now + delay, fn: fn}
	q.fresh = append(q.fresh, id)
	return id
}

// Cancel implements Scheduler.
func (q *Queue) Cancel(id TaskID) {
	delete(q.tasks, id)
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Drain returns tasks scheduled since the previous Drain that are still pending.
func (q *Queue) Drain() []Task {
	if len(q.fresh) == 0 {
		return nil
	}
	out := make([]Task, 0, len(q.fresh))
	for _, id := range q.fresh {
		if t, ok := q.tasks[id]; ok {
			out = append(out, Task{ID: t.ID, Delay: t.Delay})
		}
	}
	q.fresh = q.fresh[:0]
	return out
}

// Fire runs the task with the given id if it is still pending.
func (q *Queue) Fire(id TaskID) bool {
	t, ok := q.tasks[id]
	if !ok {
		return false
	}
	delete(q.tasks, id)
	if t.due > q.now {
		q.now = t.due
	}
	t.fn()
	return true
}

// Advance moves virtual time forward by d and runs every task that becomes
// due, earliest first. It returns the number of tasks run.
func (q *Queue) Advance(d time.Duration) int {
	target := q.now + d
	ran := 0
	for {
		due := q.dueTasks(target)
		if len(due) == 0 {
			break
		}
		t := due[0]
		delete(q.tasks, t.ID)
		q.now = t.due
		t.fn()
		ran++
	}
	q.now = target
	return ran
}

func (q *Queue) dueTasks(target time.Duration) []*Task {
	var due []*Task
	for _, t := range q.tasks {
		if t.due <= target {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].ID < due[j].ID
		}
		return due[i].due < due[j].due
	})
	return due
}
