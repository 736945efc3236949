package viewmodels

type Course struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Slug              string `json:"slug"`
	Description       string `json:"description"`
	Price             string `json:"price"`
	ThumbnailID       string `json:"thumbnail_id,omitempty"`
	CategoryID        string `json:"category_id,omitempty"`
	TeacherID         string `json:"teacher_id"`
	IsPublished       bool   `json:"is_published"`
	PublishedAt       string `json:"published_at,omitempty"`
	ApprovalStatus    string `json:"approval_status,omitempty"`
	HasPendingChanges bool   `json:"has_pending_changes"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type Lesson struct {
	ID                string `json:"id"`
	CourseID          string `json:"course_id"`
	Title             string `json:"title"`
	Slug              string `json:"slug"`
	Description       string `json:"description"`
	VideoID           string `json:"video_id,omitempty"`
	Position          int    `json:"position"`
	IsPublished       bool   `json:"is_published"`
	HasPendingChanges bool   `json:"has_pending_changes"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// GovernanceEntity is the engine's view of a target as returned by the
// workflow endpoints.
type GovernanceEntity struct {
	Kind               string         `json:"kind"`
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	IsPublished        bool           `json:"is_published"`
	ApprovalStatus     string         `json:"approval_status,omitempty"`
	Fields             map[string]any `json:"fields"`
	HasPendingChanges  bool           `json:"has_pending_changes"`
	ChangeKind         string         `json:"change_kind,omitempty"`
	PendingSubmittedBy string         `json:"pending_submitted_by,omitempty"`
	PendingSubmittedAt string         `json:"pending_submitted_at,omitempty"`
	PublishRequestedBy string         `json:"publish_requested_by,omitempty"`
	PublishRequestedAt string         `json:"publish_requested_at,omitempty"`
}

type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

type AuditEntry struct {
	ID            string                 `json:"id"`
	TargetType    string                 `json:"target_type"`
	TargetID      string                 `json:"target_id"`
	TargetTitle   string                 `json:"target_title,omitempty"`
	SubmittedBy   string                 `json:"submitted_by"`
	SubmittedRole string                 `json:"submitted_role"`
	Status        string                 `json:"status"`
	Changes       map[string]FieldChange `json:"changes,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	DecidedBy     string                 `json:"decided_by,omitempty"`
	DecidedAt     string                 `json:"decided_at,omitempty"`
	CreatedAt     string                 `json:"created_at"`
}
