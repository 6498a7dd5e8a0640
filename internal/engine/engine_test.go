package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadline/internal/config"
	"leadline/internal/db"
	"leadline/internal/domain"
	"leadline/internal/engine"
	"leadline/internal/lifecycle"
	"leadline/internal/migrate"
	"leadline/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T, cfg *config.Config) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, cfg)
	eng.Now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Ctx: context.Background()}
}

func domainDetail(memo string, photos ...string) domain.TaskDetail {
	return domain.TaskDetail{Memo: memo, Photos: photos}
}

const inquiryMessage = `현장 : 장미아파트
건물유형 : 아파트
연락처 : 010-1234-5678
유입경로 : 홈페이지
문의내용 : 복도 도색 견적 문의
---
공사유형 : 도색공사
예정시기 : 2024년 10월`

func TestIngestMessageCreatesProject(t *testing.T) {
	env := newTestEnv(t, nil)
	p, err := env.Engine.IngestMessage(env.Ctx, inquiryMessage, "jandi")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if p.Status != lifecycle.StatusNew {
		t.Fatalf("status %q", p.Status)
	}
	if p.SiteName != "장미아파트" || p.Contact != "010-1234-5678" {
		t.Fatalf("parsed fields: %+v", p)
	}
	if p.Memo.ConstructionType != "도색공사" || p.ConstructionType != "도색공사" {
		t.Fatalf("construction type: %+v", p.Memo)
	}

	stored, err := env.Engine.Repo.GetProject(env.Ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if stored.Inquiry.Inquiry != "복도 도색 견적 문의" {
		t.Fatalf("stored inquiry %q", stored.Inquiry.Inquiry)
	}
	if stored.CreatedAt != "2024-06-01T09:00:00Z" {
		t.Fatalf("created at %q", stored.CreatedAt)
	}

	events, err := env.Engine.Repo.LatestEvents(env.Ctx, 10, p.ID, "project.created")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 || events[0].ActorID != "jandi" {
		t.Fatalf("created event: %+v", events)
	}
}

func TestIngestEmptyMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.Engine.IngestMessage(env.Ctx, "  \n ", "jandi")
	var ve lifecycle.ValidationError
	if !errors.As(err, &ve) || ve.Field != "text" {
		t.Fatalf("expected text validation error, got %v", err)
	}
}

func TestAssignChecksRoster(t *testing.T) {
	cfg := &config.Config{
		Employees: []config.Employee{{ID: "emp-1", Name: "김철수"}},
	}
	env := newTestEnv(t, cfg)
	p, err := env.Engine.IngestMessage(env.Ctx, inquiryMessage, "jandi")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if _, err := env.Engine.Assign(env.Ctx, p.ID, "emp-9", "admin"); err == nil {
		t.Fatalf("expected roster rejection")
	}

	assigned, err := env.Engine.Assign(env.Ctx, p.ID, "emp-1", "admin")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != lifecycle.StatusAssigned || *assigned.AssignedTo != "emp-1" {
		t.Fatalf("assigned state: %+v", assigned)
	}
	if assigned.AssignedAt == nil {
		t.Fatalf("assigned at not set")
	}

	events, err := env.Engine.Repo.LatestEvents(env.Ctx, 10, p.ID, "project.assigned")
	if err != nil || len(events) != 1 {
		t.Fatalf("assigned events: %v %v", events, err)
	}
}

func TestAssignUnknownProject(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.Engine.Assign(env.Ctx, "missing", "emp-1", "admin")
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompleteThenCancelConflicts(t *testing.T) {
	env := newTestEnv(t, nil)
	p, err := env.Engine.IngestMessage(env.Ctx, inquiryMessage, "jandi")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	done, err := env.Engine.Complete(env.Ctx, p.ID, map[string]bool{"estimate": true}, "emp-1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != lifecycle.StatusCompleted || !done.Checklist["estimate"] {
		t.Fatalf("completed state: %+v", done)
	}

	_, err = env.Engine.Cancel(env.Ctx, p.ID, "too late", "emp-1")
	var te lifecycle.InvalidTransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	// The failed cancel must not leave a trace.
	stored, err := env.Engine.Repo.GetProject(env.Ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if stored.Status != lifecycle.StatusCompleted || stored.CancelReason != "" {
		t.Fatalf("stored state after failed cancel: %+v", stored)
	}
}

func TestSaveTaskDetailRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	p, err := env.Engine.IngestMessage(env.Ctx, inquiryMessage, "jandi")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	updated, err := env.Engine.SaveTaskDetail(env.Ctx, p.ID, "estimate", domainDetail("현장 확인", "a.jpg"), "emp-1")
	if err != nil {
		t.Fatalf("save detail: %v", err)
	}
	if d := updated.TaskDetails["estimate"]; d.Memo != "현장 확인" || len(d.Photos) != 1 {
		t.Fatalf("detail %+v", updated.TaskDetails)
	}

	stored, err := env.Engine.Repo.GetProject(env.Ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if d := stored.TaskDetails["estimate"]; d.Photos[0] != "a.jpg" {
		t.Fatalf("stored detail %+v", stored.TaskDetails)
	}
}

func TestUpdateChecklistKeepsStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	p, err := env.Engine.IngestMessage(env.Ctx, inquiryMessage, "jandi")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	updated, err := env.Engine.UpdateChecklist(env.Ctx, p.ID, map[string]bool{"estimate": false, "visit": true}, "emp-1")
	if err != nil {
		t.Fatalf("update checklist: %v", err)
	}
	if updated.Status != lifecycle.StatusNew {
		t.Fatalf("status changed to %q", updated.Status)
	}
	if len(updated.Checklist) != 2 || !updated.Checklist["visit"] {
		t.Fatalf("checklist %v", updated.Checklist)
	}
}
