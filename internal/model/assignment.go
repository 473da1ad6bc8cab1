package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Assignment commits some quantity of one inventory item to one project.
// While ReturnedAt is nil the quantity counts towards the item's InUse.
type Assignment struct {
	ID           int64           `json:"id"`
	ProjectID    int64           `json:"project_id"`
	InventoryID  int64           `json:"inventory_id"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	AssignedAt   time.Time       `json:"assigned_at"`
	ReturnedAt   *time.Time      `json:"returned_at,omitempty"`
	AssignedBy   *int64          `json:"assigned_by,omitempty"`
	ReturnedBy   *int64          `json:"returned_by,omitempty"`

	// Joined fields (not always populated).
	ItemName    string `json:"item_name,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

// Open reports whether the assignment still holds units.
func (a *Assignment) Open() bool {
	return a.ReturnedAt == nil
}

// LedgerDrift reports an item whose InUse disagrees with its open assignments.
type LedgerDrift struct {
	ItemID       int64 `json:"item_id"`
	InUse        int   `json:"in_use"`
	OpenQuantity int   `json:"open_quantity"`
}
