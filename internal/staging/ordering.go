package staging

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/metrics"
	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/ordering"
	"github.com/erazemk/stagehouse/internal/store"
)

// MoveItem swaps an item's catalog position with its neighbour in dir. The
// catalog is ordered by ascending o_id and moves wrap around its ends.
func (s *Service) MoveItem(ctx context.Context, id model.Identity, itemID int64, dir ordering.Direction) (*model.InventoryItem, error) {
	if _, err := s.auth.RequireAdmin(ctx, id); err != nil {
		return nil, err
	}

	var item *model.InventoryItem
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		keys, err := store.ListItemOrderKeys(ctx, tx)
		if err != nil {
			return err
		}
		i := indexOfKey(keys, itemID)
		if i < 0 {
			return apperr.NotFound("item", itemID)
		}
		if j, ok := ordering.CyclicNeighbor(len(keys), i, dir); ok {
			if err := store.SwapOrderKeys(ctx, tx, keys[i], keys[j], s.now()); err != nil {
				return err
			}
			metrics.Reorders.WithLabelValues(metrics.CollectionCatalog).Inc()
		}
		item, err = store.GetItem(ctx, tx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func indexOfKey(keys []store.OrderKey, id int64) int {
	for i, k := range keys {
		if k.ID == id {
			return i
		}
	}
	return -1
}

// SwapExtraImages exchanges the extra images at two 1-based positions of an
// item's gallery. The gallery is ordered by creation, so the rows trade their
// content rather than their order.
func (s *Service) SwapExtraImages(ctx context.Context, id model.Identity, itemID int64, p1, p2 int) ([]model.ExtraImage, error) {
	return s.reorderExtraImages(ctx, id, itemID, func(n int) (int, int, bool, error) {
		i, err := positionIndex(n, p1)
		if err != nil {
			return 0, 0, false, err
		}
		j, err := positionIndex(n, p2)
		if err != nil {
			return 0, 0, false, err
		}
		return i, j, i != j, nil
	})
}

// MoveExtraImage moves the extra image at a 1-based position one step in dir,
// wrapping around the ends of the gallery.
func (s *Service) MoveExtraImage(ctx context.Context, id model.Identity, itemID int64, position int, dir ordering.Direction) ([]model.ExtraImage, error) {
	return s.reorderExtraImages(ctx, id, itemID, cyclicTarget(position, dir))
}

func (s *Service) reorderExtraImages(ctx context.Context, id model.Identity, itemID int64, pick targetFunc) ([]model.ExtraImage, error) {
	if _, err := s.auth.RequireAdmin(ctx, id); err != nil {
		return nil, err
	}

	var images []model.ExtraImage
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireItem(ctx, tx, itemID); err != nil {
			return err
		}
		var err error
		images, err = store.ListExtraImages(ctx, tx, itemID)
		if err != nil {
			return err
		}

		i, j, ok, err := pick(len(images))
		if err != nil || !ok {
			return err
		}
		if err := store.SwapExtraImageContent(ctx, tx, &images[i], &images[j]); err != nil {
			return err
		}
		metrics.Reorders.WithLabelValues(metrics.CollectionExtraImages).Inc()

		images, err = store.ListExtraImages(ctx, tx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// SwapProjectImages exchanges the display order of the project images at two
// 1-based positions.
func (s *Service) SwapProjectImages(ctx context.Context, id model.Identity, projectID int64, p1, p2 int) ([]model.ProjectImage, error) {
	return s.reorderProjectImages(ctx, id, projectID, func(n int) (int, int, bool, error) {
		i, err := positionIndex(n, p1)
		if err != nil {
			return 0, 0, false, err
		}
		j, err := positionIndex(n, p2)
		if err != nil {
			return 0, 0, false, err
		}
		return i, j, i != j, nil
	})
}

// MoveProjectImage moves the project image at a 1-based position one step in
// dir, wrapping around the ends.
func (s *Service) MoveProjectImage(ctx context.Context, id model.Identity, projectID int64, position int, dir ordering.Direction) ([]model.ProjectImage, error) {
	return s.reorderProjectImages(ctx, id, projectID, cyclicTarget(position, dir))
}

func (s *Service) reorderProjectImages(ctx context.Context, id model.Identity, projectID int64, pick targetFunc) ([]model.ProjectImage, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}

	var images []model.ProjectImage
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		project, err := requireProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := p.RequireOwnerOrAdmin(project.OwnerID); err != nil {
			return err
		}
		images, err = store.ListProjectImages(ctx, tx, projectID)
		if err != nil {
			return err
		}

		i, j, ok, err := pick(len(images))
		if err != nil || !ok {
			return err
		}
		ids := projectImageIDs(images)
		ids[i], ids[j] = ids[j], ids[i]
		if err := store.SetProjectImageOrder(ctx, tx, ids); err != nil {
			return err
		}
		metrics.Reorders.WithLabelValues(metrics.CollectionProjectImages).Inc()

		images, err = store.ListProjectImages(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// SetProjectImageOrder rewrites a project's image order. orderedIDs must hold
// each of the project's image IDs exactly once.
func (s *Service) SetProjectImageOrder(ctx context.Context, id model.Identity, projectID int64, orderedIDs []int64) ([]model.ProjectImage, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}

	var images []model.ProjectImage
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		project, err := requireProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := p.RequireOwnerOrAdmin(project.OwnerID); err != nil {
			return err
		}
		current, err := store.ListProjectImages(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !ordering.IsPermutation(orderedIDs, projectImageIDs(current)) {
			return apperr.Invariant("image order must list each of the project's %d images exactly once", len(current))
		}
		if err := store.SetProjectImageOrder(ctx, tx, orderedIDs); err != nil {
			return err
		}
		metrics.Reorders.WithLabelValues(metrics.CollectionProjectImages).Inc()

		images, err = store.ListProjectImages(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

func projectImageIDs(images []model.ProjectImage) []int64 {
	ids := make([]int64, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}
	return ids
}

// targetFunc picks the two indexes to swap in a collection of n elements.
// ok is false for a no-op.
type targetFunc func(n int) (i, j int, ok bool, err error)

func cyclicTarget(position int, dir ordering.Direction) targetFunc {
	return func(n int) (int, int, bool, error) {
		i, err := positionIndex(n, position)
		if err != nil {
			return 0, 0, false, err
		}
		j, ok := ordering.CyclicNeighbor(n, i, dir)
		return i, j, ok, nil
	}
}

func positionIndex(n, position int) (int, error) {
	i, err := ordering.PositionIndex(n, position)
	if err != nil {
		return 0, apperr.PositionNotFound(position, n)
	}
	return i, nil
}

// ProjectMove is a change to a project's place in the priority order.
type ProjectMove string

// Project moves.
const (
	MoveUp    ProjectMove = ProjectMove(ordering.Up)
	MoveDown  ProjectMove = ProjectMove(ordering.Down)
	MoveFirst ProjectMove = "first"
	MoveLast  ProjectMove = "last"
)

// ParseProjectMove parses "up", "down", "first" or "last".
func ParseProjectMove(s string) (ProjectMove, error) {
	switch ProjectMove(s) {
	case MoveUp, MoveDown, MoveFirst, MoveLast:
		return ProjectMove(s), nil
	}
	return "", fmt.Errorf("invalid move %q", s)
}

// MoveProject changes a project's priority. Projects are ordered by ascending
// (priority, id). Up and down swap with the neighbour; moving the first project
// up sends it to the end and moving the last one down sends it to the front.
func (s *Service) MoveProject(ctx context.Context, id model.Identity, projectID int64, move ProjectMove) (*model.Project, error) {
	if _, err := s.auth.RequireAdmin(ctx, id); err != nil {
		return nil, err
	}

	var project *model.Project
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		keys, err := store.ListProjectOrderKeys(ctx, tx)
		if err != nil {
			return err
		}
		i := indexOfKey(keys, projectID)
		if i < 0 {
			return apperr.NotFound("project", projectID)
		}

		changed, err := s.applyProjectMove(ctx, tx, keys, i, move)
		if err != nil {
			return err
		}
		if changed {
			metrics.Reorders.WithLabelValues(metrics.CollectionProjects).Inc()
		}

		project, err = store.GetProject(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) applyProjectMove(ctx context.Context, tx *sql.Tx, keys []store.OrderKey, i int, move ProjectMove) (bool, error) {
	n := len(keys)
	if n < 2 {
		return false, nil
	}

	switch move {
	case MoveUp, MoveDown:
		dir := ordering.Direction(move)
		if ordering.Wraps(n, i, dir) {
			if dir == ordering.Up {
				return s.applyProjectMove(ctx, tx, keys, i, MoveLast)
			}
			return s.applyProjectMove(ctx, tx, keys, i, MoveFirst)
		}
		j, _ := ordering.CyclicNeighbor(n, i, dir)
		return true, store.SwapProjectPriorities(ctx, tx, keys[i], keys[j], s.now())
	case MoveFirst, MoveLast:
		if (move == MoveFirst && i == 0) || (move == MoveLast && i == n-1) {
			return false, nil
		}
		lo, hi, err := store.ProjectPriorityBounds(ctx, tx)
		if err != nil {
			return false, err
		}
		priority := hi + 1
		if move == MoveFirst {
			priority = lo - 1
		}
		return true, store.SetProjectPriority(ctx, tx, keys[i].ID, priority, s.now())
	}
	return false, apperr.Invariant("unknown project move %q", move)
}
