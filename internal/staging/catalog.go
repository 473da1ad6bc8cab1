package staging

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/store"
)

func checkItemFields(f *model.ItemFields) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)
	if f.Name == "" {
		return apperr.Invariant("item name is required")
	}
	if f.Count < 0 {
		return apperr.Invariant("count must not be negative, got %d", f.Count)
	}
	if f.Price.IsNegative() || f.Cost.IsNegative() {
		return apperr.Invariant("price and cost must not be negative")
	}
	return nil
}

// CreateItem adds an item to the end of the catalog with nothing in use.
func (s *Service) CreateItem(ctx context.Context, id model.Identity, f model.ItemFields) (*model.InventoryItem, error) {
	p, err := s.auth.RequireAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkItemFields(&f); err != nil {
		return nil, err
	}

	var item *model.InventoryItem
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		item, err = store.CreateItem(ctx, tx, f, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item created", "user", p.Username, "item", item.ID, "o_id", item.OID, "name", item.Name)
	return item, nil
}

// UpdateItem rewrites an item's attributes. The count may not drop below the
// units in use.
func (s *Service) UpdateItem(ctx context.Context, id model.Identity, itemID int64, f model.ItemFields) (*model.InventoryItem, error) {
	p, err := s.auth.RequireAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkItemFields(&f); err != nil {
		return nil, err
	}

	var item *model.InventoryItem
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := requireItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if f.Count < current.InUse {
			return apperr.Invariant("count %d is below the %d units in use", f.Count, current.InUse)
		}
		if err := store.UpdateItem(ctx, tx, itemID, f, s.now()); err != nil {
			return err
		}
		item, err = store.GetItem(ctx, tx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item updated", "user", p.Username, "item", itemID)
	return item, nil
}

// ArchiveItem hides an item from the active catalog. Items with units in use
// cannot be archived.
func (s *Service) ArchiveItem(ctx context.Context, id model.Identity, itemID int64) (*model.InventoryItem, error) {
	return s.setItemActive(ctx, id, itemID, false)
}

// RestoreItem returns an archived item to the active catalog.
func (s *Service) RestoreItem(ctx context.Context, id model.Identity, itemID int64) (*model.InventoryItem, error) {
	return s.setItemActive(ctx, id, itemID, true)
}

func (s *Service) setItemActive(ctx context.Context, id model.Identity, itemID int64, active bool) (*model.InventoryItem, error) {
	p, err := s.auth.RequireAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	var item *model.InventoryItem
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := requireItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if !active && current.InUse > 0 {
			return apperr.Invariant("item %d has %d units in use", itemID, current.InUse)
		}
		if err := store.SetItemActive(ctx, tx, itemID, active, s.now()); err != nil {
			return err
		}
		item, err = store.GetItem(ctx, tx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item active changed", "user", p.Username, "item", itemID, "active", active)
	return item, nil
}

// AddExtraImage appends an image to an item's gallery.
func (s *Service) AddExtraImage(ctx context.Context, id model.Identity, itemID int64, image model.Image, title string, thumb *model.Image) (*model.ExtraImage, error) {
	if _, err := s.auth.RequireAdmin(ctx, id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(image.Path) == "" {
		return nil, apperr.Invariant("image path is required")
	}

	var extra *model.ExtraImage
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireItem(ctx, tx, itemID); err != nil {
			return err
		}
		var err error
		extra, err = store.AddExtraImage(ctx, tx, itemID, image, strings.TrimSpace(title), thumb, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return extra, nil
}

// DeleteExtraImage removes one image from an item's gallery.
func (s *Service) DeleteExtraImage(ctx context.Context, id model.Identity, itemID, imageID int64) error {
	if _, err := s.auth.RequireAdmin(ctx, id); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		img, err := store.GetExtraImage(ctx, tx, imageID)
		if err != nil {
			return err
		}
		if img == nil || img.ItemID != itemID {
			return apperr.NotFound("extra image", imageID)
		}
		return store.DeleteExtraImage(ctx, tx, imageID)
	})
}
