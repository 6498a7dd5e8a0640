package server

import (
	"encoding/json"

	"leadline/internal/domain"
)

// Request payloads

// JandiWebhookRequest mirrors the outgoing-webhook payload the messenger
// posts. Only token and the message text matter; newer payload revisions
// nest the text under data.content.
type JandiWebhookRequest struct {
	Token      string `json:"token,omitempty"`
	TeamName   string `json:"teamName,omitempty"`
	RoomName   string `json:"roomName,omitempty"`
	WriterName string `json:"writerName,omitempty"`
	Text       string `json:"text,omitempty"`
	Data       *struct {
		Content string `json:"content,omitempty"`
	} `json:"data,omitempty"`
}

func (r JandiWebhookRequest) MessageText() string {
	if r.Text != "" {
		return r.Text
	}
	if r.Data != nil {
		return r.Data.Content
	}
	return ""
}

type AssignRequest struct {
	EmployeeID string `json:"employee_id"`
}

type ChecklistRequest struct {
	Checklist map[string]bool `json:"checklist"`
}

type CompleteRequest struct {
	Checklist map[string]bool `json:"checklist,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type TaskDetailRequest struct {
	Photos     []string `json:"photos,omitempty"`
	PTFileName string   `json:"pt_file_name,omitempty"`
	Memo       string   `json:"memo,omitempty"`
}

// Response payloads

type MemoResponse struct {
	ConstructionType string `json:"construction_type,omitempty"`
	ExpectedDate     string `json:"expected_date,omitempty"`
	Note             string `json:"note,omitempty"`
}

type ProjectResponse struct {
	ID               string                          `json:"id"`
	SiteName         string                          `json:"site_name"`
	ConstructionType string                          `json:"construction_type"`
	BuildingType     string                          `json:"building_type"`
	Address          string                          `json:"address"`
	Units            string                          `json:"units"`
	CustomerType     string                          `json:"customer_type"`
	Contact          string                          `json:"contact"`
	ContactName      string                          `json:"contact_name"`
	Source           string                          `json:"source"`
	Inquiry          string                          `json:"inquiry"`
	Memo             *MemoResponse                   `json:"memo,omitempty"`
	Status           string                          `json:"status" enum:"new,assigned,completed,cancelled"`
	AssignedTo       *string                         `json:"assigned_to,omitempty"`
	Checklist        map[string]bool                 `json:"checklist"`
	TaskDetails      map[string]domain.TaskDetail    `json:"task_details"`
	CancelReason     string                          `json:"cancel_reason,omitempty"`
	CreatedAt        string                          `json:"created_at" format:"date-time"`
	AssignedAt       *string                         `json:"assigned_at,omitempty" format:"date-time"`
	CompletedAt      *string                         `json:"completed_at,omitempty" format:"date-time"`
	CancelledAt      *string                         `json:"cancelled_at,omitempty" format:"date-time"`
}

type EventResponse struct {
	ID        int64          `json:"id"`
	TS        string         `json:"ts" format:"date-time"`
	Type      string         `json:"type"`
	ProjectID string         `json:"project_id,omitempty"`
	ActorID   string         `json:"actor_id"`
	Payload   map[string]any `json:"payload"`
}

// Conversion helpers

func domainTaskDetail(req TaskDetailRequest) domain.TaskDetail {
	photos := req.Photos
	if photos == nil {
		photos = []string{}
	}
	return domain.TaskDetail{
		Photos:     photos,
		PTFileName: req.PTFileName,
		Memo:       req.Memo,
	}
}

func projectResponse(p domain.Project) ProjectResponse {
	res := ProjectResponse{
		ID:               p.ID,
		SiteName:         p.SiteName,
		ConstructionType: p.ConstructionType,
		BuildingType:     p.BuildingType,
		Address:          p.Address,
		Units:            p.Units,
		CustomerType:     p.CustomerType,
		Contact:          p.Contact,
		ContactName:      p.ContactName,
		Source:           p.Source,
		Inquiry:          p.Inquiry.Inquiry,
		Status:           p.Status,
		AssignedTo:       p.AssignedTo,
		Checklist:        nonNilChecklist(p.Checklist),
		TaskDetails:      nonNilDetails(p.TaskDetails),
		CancelReason:     p.CancelReason,
		CreatedAt:        p.CreatedAt,
		AssignedAt:       p.AssignedAt,
		CompletedAt:      p.CompletedAt,
		CancelledAt:      p.CancelledAt,
	}
	if !p.Memo.IsZero() {
		res.Memo = &MemoResponse{
			ConstructionType: p.Memo.ConstructionType,
			ExpectedDate:     p.Memo.ExpectedDate,
			Note:             p.Memo.Note,
		}
	}
	return res
}

func mapProjects(items []domain.Project) []ProjectResponse {
	res := []ProjectResponse{}
	for _, p := range items {
		res = append(res, projectResponse(p))
	}
	return res
}

func eventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		TS:        e.TS,
		Type:      e.Type,
		ProjectID: e.ProjectID,
		ActorID:   e.ActorID,
		Payload:   decodeJSONMap(e.Payload),
	}
}

func mapEvents(items []domain.Event) []EventResponse {
	res := []EventResponse{}
	for _, e := range items {
		res = append(res, eventResponse(e))
	}
	return res
}

// JSON helpers

func decodeJSONMap(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return map[string]any{}
	}
	return obj
}

func nonNilChecklist(in map[string]bool) map[string]bool {
	if in == nil {
		return map[string]bool{}
	}
	return in
}

func nonNilDetails(in map[string]domain.TaskDetail) map[string]domain.TaskDetail {
	if in == nil {
		return map[string]domain.TaskDetail{}
	}
	return in
}
