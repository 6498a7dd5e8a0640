package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadline/internal/db"
	"leadline/internal/domain"
	"leadline/internal/lifecycle"
	"leadline/internal/migrate"
	"leadline/internal/repo"
)

func newTestRepo(t *testing.T) (repo.Repo, context.Context) {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.Repo{DB: conn}, context.Background()
}

func insert(t *testing.T, r repo.Repo, ctx context.Context, p domain.Project) {
	t.Helper()
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := r.InsertProject(ctx, tx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func newProject(id, createdAt string) domain.Project {
	return domain.Project{
		ID:          id,
		Status:      lifecycle.StatusNew,
		Checklist:   map[string]bool{},
		TaskDetails: map[string]domain.TaskDetail{},
		CreatedAt:   createdAt,
	}
}

func TestProjectRoundTrip(t *testing.T) {
	r, ctx := newTestRepo(t)
	p := newProject("p1", "2024-06-01T09:00:00Z")
	p.SiteName = "장미아파트"
	p.Inquiry.Inquiry = "도색 문의"
	p.Memo = domain.InquiryMemo{ConstructionType: "도색공사", ExpectedDate: "2024년 10월"}
	p.Checklist = map[string]bool{"estimate": true}
	p.TaskDetails = map[string]domain.TaskDetail{
		"estimate": {Photos: []string{"a.jpg"}, Memo: "확인"},
	}
	insert(t, r, ctx, p)

	got, err := r.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SiteName != "장미아파트" || got.Inquiry.Inquiry != "도색 문의" {
		t.Fatalf("fields: %+v", got)
	}
	if got.Memo.ConstructionType != "도색공사" {
		t.Fatalf("memo: %+v", got.Memo)
	}
	if !got.Checklist["estimate"] {
		t.Fatalf("checklist: %v", got.Checklist)
	}
	if d := got.TaskDetails["estimate"]; len(d.Photos) != 1 || d.Memo != "확인" {
		t.Fatalf("details: %+v", got.TaskDetails)
	}
	if got.AssignedTo != nil || got.CancelReason != "" {
		t.Fatalf("nullable fields: %+v", got)
	}

	if _, err := r.GetProject(ctx, "missing"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
}

func TestUpdateProjectNotFound(t *testing.T) {
	r, ctx := newTestRepo(t)
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	err = r.UpdateProject(ctx, tx, newProject("ghost", "2024-06-01T09:00:00Z"))
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProjectsFilters(t *testing.T) {
	r, ctx := newTestRepo(t)

	fresh := newProject("p1", "2024-06-01T09:00:00Z")
	insert(t, r, ctx, fresh)

	emp := "emp-1"
	assignedAt := "2024-06-01T10:00:00Z"
	assigned := newProject("p2", "2024-06-01T10:00:00Z")
	assigned.Status = lifecycle.StatusAssigned
	assigned.AssignedTo = &emp
	assigned.AssignedAt = &assignedAt
	insert(t, r, ctx, assigned)

	completedAt := "2024-06-02T09:00:00Z"
	done := newProject("p3", "2024-06-01T11:00:00Z")
	done.Status = lifecycle.StatusCompleted
	done.AssignedTo = &emp
	done.CompletedAt = &completedAt
	insert(t, r, ctx, done)

	// status=new only matches unassigned rows.
	items, err := r.ListProjects(ctx, repo.ProjectFilters{Status: lifecycle.StatusNew})
	if err != nil {
		t.Fatalf("list new: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Fatalf("new filter: %+v", items)
	}

	items, err = r.ListProjects(ctx, repo.ProjectFilters{AssignedTo: "emp-1", ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p2" {
		t.Fatalf("active filter: %+v", items)
	}

	items, err = r.ListProjects(ctx, repo.ProjectFilters{AssignedTo: "emp-1"})
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("assigned filter: %+v", items)
	}

	// Newest first.
	items, err = r.ListProjects(ctx, repo.ProjectFilters{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(items) != 3 || items[0].ID != "p3" || items[2].ID != "p1" {
		t.Fatalf("order: %+v", items)
	}

	items, err = r.ListProjects(ctx, repo.ProjectFilters{Limit: 2})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("limit: %+v", items)
	}
}

func TestEventsCursor(t *testing.T) {
	r, ctx := newTestRepo(t)
	ts := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	for _, typ := range []string{"project.created", "project.assigned", "project.completed"} {
		if _, err := r.DB.ExecContext(ctx,
			`INSERT INTO events(ts,type,project_id,actor_id,payload_json) VALUES (?,?,?,?,?)`,
			ts, typ, "p1", "tester", "{}"); err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	latest, err := r.LatestEventID(ctx)
	if err != nil || latest != 3 {
		t.Fatalf("latest id %d: %v", latest, err)
	}

	events, err := r.EventsAfter(ctx, 10, 1)
	if err != nil {
		t.Fatalf("events after: %v", err)
	}
	if len(events) != 2 || events[0].Type != "project.assigned" {
		t.Fatalf("cursor events: %+v", events)
	}

	events, err = r.LatestEvents(ctx, 2, "p1", "")
	if err != nil {
		t.Fatalf("latest events: %v", err)
	}
	if len(events) != 2 || events[0].Type != "project.completed" {
		t.Fatalf("latest order: %+v", events)
	}
}

func TestAPIKeys(t *testing.T) {
	r, ctx := newTestRepo(t)
	hash := repo.HashAPIKey("  secret-key  ")
	if hash != repo.HashAPIKey("secret-key") {
		t.Fatalf("hash should ignore surrounding whitespace")
	}

	key := domain.APIKey{ID: "k1", ActorID: "emp-1", Name: "ci", KeyHash: hash}
	if err := r.InsertAPIKey(ctx, key); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := r.GetAPIKeyByHash(ctx, hash)
	if err != nil || got.ActorID != "emp-1" {
		t.Fatalf("lookup: %+v %v", got, err)
	}

	if _, err := r.GetAPIKeyByHash(ctx, "nope"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("missing key: %v", err)
	}

	keys, err := r.ListAPIKeys(ctx, "emp-1")
	if err != nil || len(keys) != 1 {
		t.Fatalf("list: %v %v", keys, err)
	}

	if err := r.DeleteAPIKey(ctx, "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.GetAPIKeyByHash(ctx, hash); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("deleted key still found: %v", err)
	}
}
