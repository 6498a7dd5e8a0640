package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"leadline/internal/domain"
	"leadline/internal/lifecycle"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

const projectColumns = `id,site_name,construction_type,building_type,address,units,customer_type,contact,contact_name,source,inquiry,memo_json,status,assigned_to,checklist_json,task_details_json,cancel_reason,created_at,assigned_at,completed_at,cancelled_at`

func (r Repo) InsertProject(ctx context.Context, tx *sql.Tx, p domain.Project) error {
	memoJSON, checklistJSON, detailsJSON, err := encodeProjectJSON(p)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO projects(`+projectColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.SiteName, p.ConstructionType, p.BuildingType, p.Address, p.Units, p.CustomerType,
		p.Contact, p.ContactName, p.Source, p.Inquiry.Inquiry, memoJSON, p.Status,
		nullableStringPtr(p.AssignedTo), checklistJSON, detailsJSON, nullable(p.CancelReason),
		p.CreatedAt, nullableStringPtr(p.AssignedAt), nullableStringPtr(p.CompletedAt), nullableStringPtr(p.CancelledAt))
	return err
}

func (r Repo) UpdateProject(ctx context.Context, tx *sql.Tx, p domain.Project) error {
	memoJSON, checklistJSON, detailsJSON, err := encodeProjectJSON(p)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE projects SET site_name=?, construction_type=?, building_type=?, address=?, units=?, customer_type=?, contact=?, contact_name=?, source=?, inquiry=?, memo_json=?, status=?, assigned_to=?, checklist_json=?, task_details_json=?, cancel_reason=?, assigned_at=?, completed_at=?, cancelled_at=? WHERE id=?`,
		p.SiteName, p.ConstructionType, p.BuildingType, p.Address, p.Units, p.CustomerType,
		p.Contact, p.ContactName, p.Source, p.Inquiry.Inquiry, memoJSON, p.Status,
		nullableStringPtr(p.AssignedTo), checklistJSON, detailsJSON, nullable(p.CancelReason),
		nullableStringPtr(p.AssignedAt), nullableStringPtr(p.CompletedAt), nullableStringPtr(p.CancelledAt), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=?`, id)
	return scanProject(row.Scan)
}

// ProjectFilters narrows ListProjects. Status "new" means new and
// unassigned, matching the inbox view. ActiveOnly excludes terminal states.
type ProjectFilters struct {
	Status     string
	AssignedTo string
	ActiveOnly bool
	Limit      int
}

func (r Repo) ListProjects(ctx context.Context, f ProjectFilters) ([]domain.Project, error) {
	var clauses []string
	var args []any
	if f.Status == lifecycle.StatusNew {
		clauses = append(clauses, "status=? AND assigned_to IS NULL")
		args = append(args, f.Status)
	} else if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	if f.AssignedTo != "" {
		clauses = append(clauses, "assigned_to=?")
		args = append(args, f.AssignedTo)
	}
	if f.ActiveOnly {
		clauses = append(clauses, "status NOT IN (?,?)")
		args = append(args, lifecycle.StatusCompleted, lifecycle.StatusCancelled)
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	query := `SELECT ` + projectColumns + ` FROM projects ` + where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func scanProject(scan func(...any) error) (domain.Project, error) {
	var p domain.Project
	var memoJSON, checklistJSON, detailsJSON string
	var assignedTo, cancelReason, assignedAt, completedAt, cancelledAt sql.NullString
	err := scan(&p.ID, &p.SiteName, &p.ConstructionType, &p.BuildingType, &p.Address, &p.Units,
		&p.CustomerType, &p.Contact, &p.ContactName, &p.Source, &p.Inquiry.Inquiry, &memoJSON,
		&p.Status, &assignedTo, &checklistJSON, &detailsJSON, &cancelReason,
		&p.CreatedAt, &assignedAt, &completedAt, &cancelledAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(memoJSON), &p.Memo); err != nil {
		return p, fmt.Errorf("decode memo: %w", err)
	}
	if err := json.Unmarshal([]byte(checklistJSON), &p.Checklist); err != nil {
		return p, fmt.Errorf("decode checklist: %w", err)
	}
	if err := json.Unmarshal([]byte(detailsJSON), &p.TaskDetails); err != nil {
		return p, fmt.Errorf("decode task details: %w", err)
	}
	if assignedTo.Valid {
		p.AssignedTo = &assignedTo.String
	}
	if cancelReason.Valid {
		p.CancelReason = cancelReason.String
	}
	if assignedAt.Valid {
		p.AssignedAt = &assignedAt.String
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.String
	}
	if cancelledAt.Valid {
		p.CancelledAt = &cancelledAt.String
	}
	return p, nil
}

func encodeProjectJSON(p domain.Project) (memo, checklist, details string, err error) {
	m, err := json.Marshal(p.Memo)
	if err != nil {
		return "", "", "", fmt.Errorf("encode memo: %w", err)
	}
	c, err := json.Marshal(emptyIfNilBool(p.Checklist))
	if err != nil {
		return "", "", "", fmt.Errorf("encode checklist: %w", err)
	}
	d, err := json.Marshal(emptyIfNilDetail(p.TaskDetails))
	if err != nil {
		return "", "", "", fmt.Errorf("encode task details: %w", err)
	}
	return string(m), string(c), string(d), nil
}

func emptyIfNilBool(in map[string]bool) map[string]bool {
	if in == nil {
		return map[string]bool{}
	}
	return in
}

func emptyIfNilDetail(in map[string]domain.TaskDetail) map[string]domain.TaskDetail {
	if in == nil {
		return map[string]domain.TaskDetail{}
	}
	return in
}

func (r Repo) LatestEvents(ctx context.Context, limit int, projectID, evtType string) ([]domain.Event, error) {
	clauses := []string{"1=1"}
	var args []any
	if projectID != "" {
		clauses = append(clauses, "project_id=?")
		args = append(args, projectID)
	}
	if evtType != "" {
		clauses = append(clauses, "type=?")
		args = append(args, evtType)
	}
	where := "WHERE " + strings.Join(clauses, " AND ")
	query := fmt.Sprintf(`SELECT id,ts,type,project_id,actor_id,payload_json FROM events %s ORDER BY id DESC LIMIT ?`, where)
	args = append(args, limit)
	return r.queryEvents(ctx, query, args...)
}

// EventsAfter returns events with IDs greater than the cursor in ascending order.
func (r Repo) EventsAfter(ctx context.Context, limit int, cursor int64) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id,ts,type,project_id,actor_id,payload_json FROM events WHERE id>? ORDER BY id ASC LIMIT ?`
	return r.queryEvents(ctx, query, cursor, limit)
}

// LatestEventID returns the most recent event ID.
func (r Repo) LatestEventID(ctx context.Context) (int64, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT COALESCE(MAX(id),0) FROM events`)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r Repo) queryEvents(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		var projectID, payload sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &projectID, &e.ActorID, &payload); err != nil {
			return nil, err
		}
		if projectID.Valid {
			e.ProjectID = projectID.String
		}
		if payload.Valid {
			e.Payload = payload.String
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return *v
}
