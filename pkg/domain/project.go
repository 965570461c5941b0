package domain

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ProjectStatuses lists every project status.
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectCompleted, ProjectOnHold, ProjectCancelled}

// Valid returns true if s is a known project status.
func (s ProjectStatus) Valid() bool { return valid(ProjectStatuses, s) }

// Project groups transactions for reporting.
type Project struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	StartDate   *Timestamp    `json:"start_date,omitempty"`
	EndDate     *Timestamp    `json:"end_date,omitempty"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   Timestamp     `json:"created_at"`
	UpdatedAt   *Timestamp    `json:"updated_at,omitempty"`
}

// ProjectCreate is the payload for creating a project.
type ProjectCreate struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	StartDate   *Timestamp    `json:"start_date,omitempty"`
	EndDate     *Timestamp    `json:"end_date,omitempty"`
	IsActive    bool          `json:"is_active"`
}

// ProjectUpdate is a partial project update.
type ProjectUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	StartDate   *Timestamp     `json:"start_date,omitempty"`
	EndDate     *Timestamp     `json:"end_date,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"`
}
