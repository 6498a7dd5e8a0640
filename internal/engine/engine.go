package engine

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadline/internal/config"
	"leadline/internal/domain"
	"leadline/internal/events"
	"leadline/internal/lifecycle"
	"leadline/internal/message"
	"leadline/internal/repo"
)

// Engine orchestrates parsing and lifecycle operations over storage. Each
// operation is one read-modify-write: load the record, apply the pure
// lifecycle function, persist the row and append an event in one tx.
type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time

	parser *message.Parser
}

func New(db *sql.DB, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
		parser: message.New(
			message.WithMarkers(cfg.Parser.Markers),
			message.WithAliases(cfg.Parser.Labels),
		),
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Parse converts raw message text into a structured inquiry using the
// configured parser.
func (e Engine) Parse(text string) domain.Inquiry {
	if e.parser == nil {
		return message.Parse(text)
	}
	return e.parser.Parse(text)
}

// IngestMessage parses one inbound messenger payload and creates a project
// from it. Empty text is rejected; everything else degrades to a mostly
// empty record rather than failing.
func (e Engine) IngestMessage(ctx context.Context, text, actorID string) (domain.Project, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Project{}, lifecycle.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return e.CreateProject(ctx, e.Parse(text), actorID)
}

// CreateProject stores a new project in status new.
func (e Engine) CreateProject(ctx context.Context, inq domain.Inquiry, actorID string) (domain.Project, error) {
	p := lifecycle.Create(inq, uuid.New().String(), e.now())
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertProject(ctx, tx, p); err != nil {
		return domain.Project{}, err
	}
	if err := e.Events.Append(ctx, tx, "project.created", p.ID, actorID, events.EventPayload{
		"site_name": p.SiteName,
		"source":    p.Source,
	}); err != nil {
		return domain.Project{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// Assign puts a project in the hands of an employee. When a roster is
// configured, the employee must be on it.
func (e Engine) Assign(ctx context.Context, projectID, employeeID, actorID string) (domain.Project, error) {
	if len(e.Config.Employees) > 0 {
		if _, ok := e.Config.EmployeeByID(employeeID); !ok && employeeID != "" {
			return domain.Project{}, lifecycle.ValidationError{Field: "employee_id", Reason: "is not on the roster"}
		}
	}
	return e.mutate(ctx, projectID, actorID, "project.assigned",
		func(p domain.Project) (domain.Project, events.EventPayload, error) {
			updated, err := lifecycle.Assign(p, employeeID, e.now())
			return updated, events.EventPayload{"employee_id": employeeID}, err
		})
}

// UpdateChecklist replaces the checklist without changing the status.
func (e Engine) UpdateChecklist(ctx context.Context, projectID string, checklist map[string]bool, actorID string) (domain.Project, error) {
	return e.mutate(ctx, projectID, actorID, "project.checklist.updated",
		func(p domain.Project) (domain.Project, events.EventPayload, error) {
			updated := lifecycle.UpdateChecklist(p, checklist)
			return updated, events.EventPayload{"tasks": len(checklist)}, nil
		})
}

// Complete finishes a project with its final checklist.
func (e Engine) Complete(ctx context.Context, projectID string, checklist map[string]bool, actorID string) (domain.Project, error) {
	return e.mutate(ctx, projectID, actorID, "project.completed",
		func(p domain.Project) (domain.Project, events.EventPayload, error) {
			updated, err := lifecycle.Complete(p, checklist, e.now())
			return updated, events.EventPayload{"assigned_to": strValue(updated.AssignedTo)}, err
		})
}

// Cancel aborts a project with a reason.
func (e Engine) Cancel(ctx context.Context, projectID, reason, actorID string) (domain.Project, error) {
	return e.mutate(ctx, projectID, actorID, "project.cancelled",
		func(p domain.Project) (domain.Project, events.EventPayload, error) {
			updated, err := lifecycle.Cancel(p, reason, e.now())
			return updated, events.EventPayload{"reason": reason}, err
		})
}

// SaveTaskDetail upserts evidence for one checklist task.
func (e Engine) SaveTaskDetail(ctx context.Context, projectID, taskID string, detail domain.TaskDetail, actorID string) (domain.Project, error) {
	return e.mutate(ctx, projectID, actorID, "project.task_detail.saved",
		func(p domain.Project) (domain.Project, events.EventPayload, error) {
			updated, err := lifecycle.SaveTaskDetail(p, taskID, detail)
			return updated, events.EventPayload{"task_id": taskID, "photos": len(detail.Photos)}, err
		})
}

func (e Engine) mutate(ctx context.Context, projectID, actorID, evtType string,
	apply func(domain.Project) (domain.Project, events.EventPayload, error)) (domain.Project, error) {
	p, err := e.Repo.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	updated, payload, err := apply(p)
	if err != nil {
		return domain.Project{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateProject(ctx, tx, updated); err != nil {
		return domain.Project{}, err
	}
	if err := e.Events.Append(ctx, tx, evtType, updated.ID, actorID, payload); err != nil {
		return domain.Project{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	return updated, nil
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
