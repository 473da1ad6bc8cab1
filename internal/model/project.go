package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a staging job for a real-estate listing.
type Project struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Status            string           `json:"status"`
	OwnerID           int64            `json:"owner_id"`
	Address           string           `json:"address,omitempty"`
	StartDate         *time.Time       `json:"start_date,omitempty"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	Revenue           *decimal.Decimal `json:"revenue,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	Highlighted       bool             `json:"highlighted"`
	InventoryAssigned bool             `json:"inventory_assigned"`
	Priority          int64            `json:"priority"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	// Populated by portfolio queries only.
	Images []ProjectImage `json:"images,omitempty"`
}

// Project statuses.
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// ProjectFields holds the editable attributes of a project.
type ProjectFields struct {
	Name      string
	Status    string
	Address   string
	StartDate *time.Time
	EndDate   *time.Time
	Revenue   *decimal.Decimal
	Notes     string
}

// ProjectImage is a photo of a staged project. DisplayOrder is dense and zero-based.
type ProjectImage struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Image        Image     `json:"image"`
	Thumbnail    *Image    `json:"thumbnail,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}
