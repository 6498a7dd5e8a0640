package domain

// Inquiry is the structured form of one inbound messenger inquiry.
// Every field defaults to the empty string when the message does not
// carry it; Memo's zero value stands in for an absent memo section.
type Inquiry struct {
	SiteName         string      `json:"site_name"`
	ConstructionType string      `json:"construction_type"`
	BuildingType     string      `json:"building_type"`
	Address          string      `json:"address"`
	Units            string      `json:"units"`
	CustomerType     string      `json:"customer_type"`
	Contact          string      `json:"contact"`
	ContactName      string      `json:"contact_name"`
	Source           string      `json:"source"`
	Inquiry          string      `json:"inquiry"`
	Memo             InquiryMemo `json:"memo"`
}

// InquiryMemo holds the internal-only fields of the memo section.
// All fields are optional.
type InquiryMemo struct {
	ConstructionType string `json:"construction_type,omitempty"`
	ExpectedDate     string `json:"expected_date,omitempty"`
	Note             string `json:"note,omitempty"`
}

// IsZero reports whether no memo field was extracted.
func (m InquiryMemo) IsZero() bool {
	return m == InquiryMemo{}
}

// Project is the lifecycle-tracked record derived from an inquiry.
type Project struct {
	ID string `json:"id"`
	Inquiry
	Status       string                `json:"status" enum:"new,assigned,completed,cancelled"`
	AssignedTo   *string               `json:"assigned_to,omitempty"`
	Checklist    map[string]bool       `json:"checklist"`
	TaskDetails  map[string]TaskDetail `json:"task_details"`
	CancelReason string                `json:"cancel_reason,omitempty"`
	CreatedAt    string                `json:"created_at" format:"date-time"`
	AssignedAt   *string               `json:"assigned_at,omitempty" format:"date-time"`
	CompletedAt  *string               `json:"completed_at,omitempty" format:"date-time"`
	CancelledAt  *string               `json:"cancelled_at,omitempty" format:"date-time"`
}

// TaskDetail is the evidence attached to one checklist task.
type TaskDetail struct {
	Photos     []string `json:"photos"`
	PTFileName string   `json:"pt_file_name,omitempty"`
	Memo       string   `json:"memo,omitempty"`
}

type Event struct {
	ID        int64  `json:"id"`
	TS        string `json:"ts" format:"date-time"`
	Type      string `json:"type"`
	ProjectID string `json:"project_id,omitempty"`
	ActorID   string `json:"actor_id"`
	Payload   string `json:"payload_json"`
}

type APIKey struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}
