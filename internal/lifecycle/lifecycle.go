// Package lifecycle holds the project state machine. Operations are pure:
// they take a project value and return the updated value, leaving persistence
// to the caller.
package lifecycle

import (
	"strings"
	"time"

	"leadline/internal/domain"
)

const (
	StatusNew       = "new"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Terminal reports whether no further status transition is allowed.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// Create builds a fresh project record from a parsed inquiry.
func Create(inq domain.Inquiry, id string, now time.Time) domain.Project {
	return domain.Project{
		ID:          id,
		Inquiry:     inq,
		Status:      StatusNew,
		Checklist:   map[string]bool{},
		TaskDetails: map[string]domain.TaskDetail{},
		CreatedAt:   stamp(now),
	}
}

// Assign sets the assignee and moves the project to assigned. Re-assignment
// is allowed while the project is open; the original assignment time is kept.
func Assign(p domain.Project, employeeID string, now time.Time) (domain.Project, error) {
	if strings.TrimSpace(employeeID) == "" {
		return p, ValidationError{Field: "employee_id", Reason: "must not be empty"}
	}
	if Terminal(p.Status) {
		return p, InvalidTransitionError{From: p.Status, Op: "assign"}
	}
	p.AssignedTo = &employeeID
	p.Status = StatusAssigned
	if p.AssignedAt == nil {
		ts := stamp(now)
		p.AssignedAt = &ts
	}
	return p, nil
}

// UpdateChecklist replaces the checklist without touching the status.
func UpdateChecklist(p domain.Project, checklist map[string]bool) domain.Project {
	p.Checklist = copyChecklist(checklist)
	return p
}

// Complete records the final checklist and moves the project to completed.
// Completion is legal from new as well as assigned; the update path never
// required a prior assignment.
func Complete(p domain.Project, checklist map[string]bool, now time.Time) (domain.Project, error) {
	if Terminal(p.Status) {
		return p, InvalidTransitionError{From: p.Status, Op: "complete"}
	}
	if checklist != nil {
		p.Checklist = copyChecklist(checklist)
	}
	p.Status = StatusCompleted
	ts := stamp(now)
	p.CompletedAt = &ts
	return p, nil
}

// Cancel moves the project to cancelled. A reason is required.
func Cancel(p domain.Project, reason string, now time.Time) (domain.Project, error) {
	if strings.TrimSpace(reason) == "" {
		return p, ValidationError{Field: "reason", Reason: "must not be empty"}
	}
	if Terminal(p.Status) {
		return p, InvalidTransitionError{From: p.Status, Op: "cancel"}
	}
	p.Status = StatusCancelled
	p.CancelReason = reason
	ts := stamp(now)
	p.CancelledAt = &ts
	return p, nil
}

// SaveTaskDetail upserts the evidence for one checklist task. Status is not
// affected; details may still be attached to terminal projects.
func SaveTaskDetail(p domain.Project, taskID string, detail domain.TaskDetail) (domain.Project, error) {
	if strings.TrimSpace(taskID) == "" {
		return p, ValidationError{Field: "task_id", Reason: "must not be empty"}
	}
	details := make(map[string]domain.TaskDetail, len(p.TaskDetails)+1)
	for k, v := range p.TaskDetails {
		details[k] = v
	}
	if detail.Photos == nil {
		detail.Photos = []string{}
	}
	details[taskID] = detail
	p.TaskDetails = details
	return p, nil
}

func copyChecklist(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func stamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}
