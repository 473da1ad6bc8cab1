package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Image is a reference to an already-hosted image and its pixel size.
type Image struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// InventoryItem is a catalog entry: one kind of staging piece owned in some count.
type InventoryItem struct {
	ID          int64           `json:"id"`
	OID         int64           `json:"o_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Vendor      string          `json:"vendor,omitempty"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	Count       int             `json:"count"`
	InUse       int             `json:"in_use"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Width       float64         `json:"width,omitempty"`
	Height      float64         `json:"height,omitempty"`
	Depth       float64         `json:"depth,omitempty"`
	Image       *Image          `json:"image,omitempty"`
	Thumbnail   *Image          `json:"thumbnail,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Available returns the units not held by any open assignment.
func (i *InventoryItem) Available() int {
	return i.Count - i.InUse
}

// ItemFields holds the editable attributes of an inventory item.
type ItemFields struct {
	Name        string
	Category    string
	Vendor      string
	Description string
	Location    string
	Count       int
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Width       float64
	Height      float64
	Depth       float64
	Image       *Image
	Thumbnail   *Image
}

// ExtraImage is a secondary photo of an inventory item.
type ExtraImage struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Image     Image     `json:"image"`
	Title     string    `json:"title,omitempty"`
	Thumbnail *Image    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Availability summarizes how many units of an item can still be assigned.
type Availability struct {
	Total     int `json:"total"`
	InUse     int `json:"in_use"`
	Available int `json:"available"`
}

// Adjacent holds the neighbouring catalog sequence numbers of an item.
type Adjacent struct {
	Prev *int64 `json:"prev"`
	Next *int64 `json:"next"`
}
