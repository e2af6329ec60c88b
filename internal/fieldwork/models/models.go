package models

import (
	dErrors "govdash/pkg/domain-errors"
)

// TaskStatus is the checklist state of one task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// Task is one assignment on a field worker's checklist.
type Task struct {
	ID      int        `json:"id"`
	Type    string     `json:"type"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	Status  TaskStatus `json:"status"`
	Urgent  bool       `json:"urgent"`
}

// CanComplete fails for a task that is already done.
func (t *Task) CanComplete() error {
	if t.Status == TaskCompleted {
		return dErrors.New(dErrors.CodeInvariantViolation, "task already completed")
	}
	return nil
}

// ShowUrgent reports whether the urgent badge applies: completed tasks are
// never flagged.
func (t Task) ShowUrgent() bool {
	return t.Urgent && t.Status != TaskCompleted
}

// SeedTasks is the default checklist every worker starts with.
func SeedTasks() []Task {
	return []Task{
		{ID: 1, Type: "Home Visit", Name: "Ramesh Kumar (Elderly)", Address: "Plot 4, Sector 12", Status: TaskPending, Urgent: true},
		{ID: 2, Type: "Child Enrolment", Name: "Anjali (Age 5)", Address: "Anganwadi Center 4", Status: TaskPending},
		{ID: 3, Type: "Biometric Update", Name: "Sita Devi", Address: "Near Post Office", Status: TaskCompleted},
	}
}

// PendingCount counts tasks not yet completed.
func PendingCount(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status == TaskPending {
			n++
		}
	}
	return n
}

// Performance is the worker's headline figures.
type Performance struct {
	CoveragePercent int `json:"coveragePercent"`
	FollowUps       int `json:"followUps"`
	Assisted        int `json:"citizensAssisted"`
}

// Checklist is the field worker's view of their day.
type Checklist struct {
	UserID      string      `json:"userId"`
	Zone        string      `json:"zone"`
	Pending     int         `json:"pending"`
	Tasks       []Task      `json:"tasks"`
	Performance Performance `json:"performance"`
}

// CompleteResult reports the task after a completion request. Changed is
// false when the task was already done.
type CompleteResult struct {
	Task    Task `json:"task"`
	Changed bool `json:"changed"`
	Pending int  `json:"pending"`
}
