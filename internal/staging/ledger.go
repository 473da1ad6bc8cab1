package staging

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/metrics"
	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/store"
)

// Assign commits quantity units of an inventory item to a project. The caller
// must own the project or be an admin. The item's price is snapshotted onto the
// assignment.
func (s *Service) Assign(ctx context.Context, id model.Identity, projectID, inventoryID int64, quantity int) (*model.Assignment, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}

	var a *model.Assignment
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		project, err := requireProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := p.RequireOwnerOrAdmin(project.OwnerID); err != nil {
			return err
		}

		item, err := requireItem(ctx, tx, inventoryID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			return apperr.Invariant("quantity must be positive, got %d", quantity)
		}
		if !item.Active {
			return apperr.Invariant("item %d is archived", item.ID)
		}
		if quantity > item.Available() {
			return apperr.Insufficient(quantity, item.Available())
		}

		now := s.now()
		ok, err := store.IncrementInUse(ctx, tx, item.ID, quantity, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Insufficient(quantity, item.Available())
		}

		a, err = store.CreateAssignment(ctx, tx, project.ID, item.ID, quantity, item.Price, &p.UserID, now)
		if err != nil {
			return err
		}
		return store.MarkInventoryAssigned(ctx, tx, project.ID, now)
	})
	if err != nil {
		if apperr.Is(err, apperr.KindInsufficientAvailability) {
			metrics.RejectedAssignments.Inc()
		}
		return nil, err
	}

	metrics.AssignmentsTotal.Inc()
	metrics.UnitsAssigned.Add(float64(quantity))
	s.logger.Info("inventory assigned", "user", p.Username,
		"assignment", a.ID, "project", projectID, "item", inventoryID, "quantity", quantity)
	return a, nil
}

// Return closes an open assignment and releases its units. The caller must own
// the assignment's project or be an admin.
func (s *Service) Return(ctx context.Context, id model.Identity, assignmentID int64) (*model.Assignment, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}

	var a *model.Assignment
	var clamped bool
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		a, err = store.GetAssignment(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if a == nil {
			return apperr.NotFound("assignment", assignmentID)
		}
		project, err := requireProject(ctx, tx, a.ProjectID)
		if err != nil {
			return err
		}
		if err := p.RequireOwnerOrAdmin(project.OwnerID); err != nil {
			return err
		}

		now := s.now()
		ok, err := store.MarkReturned(ctx, tx, a.ID, &p.UserID, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Invariant("assignment %d was already returned", a.ID)
		}

		clamped, err = s.release(ctx, tx, a)
		if err != nil {
			return err
		}

		a, err = store.GetAssignment(ctx, tx, a.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := "returned"
	if clamped {
		result = "clamped"
	}
	metrics.ReturnsTotal.WithLabelValues(result).Inc()
	s.logger.Info("inventory returned", "user", p.Username,
		"assignment", a.ID, "project", a.ProjectID, "item", a.InventoryID, "quantity", a.Quantity)
	return a, nil
}

// release takes an assignment's units out of use. When in_use is lower than
// the quantity the ledger has drifted: strict mode fails, permissive mode
// floors in_use at zero. It reports whether a clamp happened.
func (s *Service) release(ctx context.Context, tx *sql.Tx, a *model.Assignment) (bool, error) {
	now := s.now()
	ok, err := store.DecrementInUse(ctx, tx, a.InventoryID, a.Quantity, false, now)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}

	metrics.LedgerDrift.Inc()
	inUse := -1
	if item, err := store.GetItem(ctx, tx, a.InventoryID); err != nil {
		return false, err
	} else if item != nil {
		inUse = item.InUse
	}

	if s.ledgerMode != LedgerPermissive {
		s.logger.Error("ledger drift", "assignment", a.ID, "item", a.InventoryID,
			"quantity", a.Quantity, "in_use", inUse)
		return false, apperr.Invariant("item %d has fewer units in use than assignment %d returns", a.InventoryID, a.ID)
	}

	s.logger.Warn("ledger drift, clamping in_use", "assignment", a.ID, "item", a.InventoryID,
		"quantity", a.Quantity, "in_use", inUse)
	if _, err := store.DecrementInUse(ctx, tx, a.InventoryID, a.Quantity, true, now); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteProject releases a project's open assignments and removes the project
// with its images and ledger rows.
func (s *Service) DeleteProject(ctx context.Context, id model.Identity, projectID int64) error {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return err
	}

	var released int
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		project, err := requireProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := p.RequireOwnerOrAdmin(project.OwnerID); err != nil {
			return err
		}

		open, err := store.ListAssignments(ctx, tx, store.AssignmentFilter{ProjectID: projectID, OpenOnly: true})
		if err != nil {
			return err
		}
		for i := range open {
			if _, err := s.release(ctx, tx, &open[i]); err != nil {
				return err
			}
			released += open[i].Quantity
		}

		if err := store.DeleteProjectAssignments(ctx, tx, projectID); err != nil {
			return err
		}
		if err := store.DeleteProjectImages(ctx, tx, projectID); err != nil {
			return err
		}
		return store.DeleteProject(ctx, tx, projectID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted", "user", p.Username, "project", projectID, "units_released", released)
	return nil
}

// DeleteItem removes an item that has no units in use, together with its
// extra images. Ledger rows that reference it are kept.
func (s *Service) DeleteItem(ctx context.Context, id model.Identity, itemID int64) error {
	p, err := s.auth.RequireAdmin(ctx, id)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		item, err := requireItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item.InUse > 0 {
			return apperr.Invariant("item %d has %d units in use", item.ID, item.InUse)
		}
		if err := store.DeleteItemExtraImages(ctx, tx, itemID); err != nil {
			return err
		}
		return store.DeleteItem(ctx, tx, itemID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("item deleted", "user", p.Username, "item", itemID)
	return nil
}

// ListProjectAssignments returns a project's assignments, newest first. Returned
// assignments are included only if includeReturned is set.
func (s *Service) ListProjectAssignments(ctx context.Context, id model.Identity, projectID int64, includeReturned bool) ([]model.Assignment, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := requireProject(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}
	if err := p.RequireOwnerOrAdmin(project.OwnerID); err != nil {
		return nil, err
	}
	return store.ListAssignments(ctx, s.db, store.AssignmentFilter{ProjectID: projectID, OpenOnly: !includeReturned})
}

// ListItemAssignments returns every assignment of an inventory item, newest
// first. Items that were deleted still have their history.
func (s *Service) ListItemAssignments(ctx context.Context, id model.Identity, itemID int64) ([]model.Assignment, error) {
	if _, err := s.auth.RequireAdmin(ctx, id); err != nil {
		return nil, err
	}
	return store.ListAssignments(ctx, s.db, store.AssignmentFilter{InventoryID: itemID})
}

// VerifyLedger returns the items whose in_use differs from the sum of their
// open assignments. An empty result means the ledger is consistent.
func (s *Service) VerifyLedger(ctx context.Context, id model.Identity) ([]model.LedgerDrift, error) {
	p, err := s.auth.RequireAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	drift, err := store.ListLedgerDrift(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("verifying ledger: %w", err)
	}
	if len(drift) > 0 {
		s.logger.Warn("ledger verification found drift", "user", p.Username, "items", len(drift))
	}
	return drift, nil
}
