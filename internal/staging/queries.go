package staging

import (
	"context"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/ordering"
	"github.com/erazemk/stagehouse/internal/store"
)

func requireItem(ctx context.Context, q store.DBTX, id int64) (*model.InventoryItem, error) {
	item, err := store.GetItem(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("item", id)
	}
	return item, nil
}

func requireProject(ctx context.Context, q store.DBTX, id int64) (*model.Project, error) {
	project, err := store.GetProject(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project", id)
	}
	return project, nil
}

// GetAvailability returns how many units of an item are free. It returns nil
// for an unknown item.
func (s *Service) GetAvailability(ctx context.Context, itemID int64) (*model.Availability, error) {
	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil || item == nil {
		return nil, err
	}
	return &model.Availability{Total: item.Count, InUse: item.InUse, Available: item.Available()}, nil
}

// GetAdjacent returns the catalog numbers before and after oid when browsing
// the active catalog from the newest item down. Either side is nil at an end,
// and both are nil when oid is not an active item.
func (s *Service) GetAdjacent(ctx context.Context, oid int64) (model.Adjacent, error) {
	oids, err := store.ListActiveOIDsDesc(ctx, s.db)
	if err != nil {
		return model.Adjacent{}, err
	}

	i := -1
	for k, v := range oids {
		if v == oid {
			i = k
			break
		}
	}

	var adj model.Adjacent
	prev, next := ordering.BoundedAdjacent(len(oids), i)
	if prev >= 0 {
		adj.Prev = &oids[prev]
	}
	if next >= 0 {
		adj.Next = &oids[next]
	}
	return adj, nil
}

// GetCategories returns the distinct non-empty item categories, ascending.
func (s *Service) GetCategories(ctx context.Context) ([]string, error) {
	return store.ListCategories(ctx, s.db)
}

// GetHighlightedPortfolio returns up to limit highlighted projects, newest
// first, each with its images in display order. A limit of zero or less uses
// the configured default.
func (s *Service) GetHighlightedPortfolio(ctx context.Context, limit int) ([]model.Project, error) {
	if limit <= 0 {
		limit = s.portfolioLimit
	}
	projects, err := store.ListHighlightedProjects(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Images, err = store.ListProjectImages(ctx, s.db, projects[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// GetItem returns an item by ID.
func (s *Service) GetItem(ctx context.Context, itemID int64) (*model.InventoryItem, error) {
	return requireItem(ctx, s.db, itemID)
}

// GetItemByOID returns an item by its catalog number.
func (s *Service) GetItemByOID(ctx context.Context, oid int64) (*model.InventoryItem, error) {
	item, err := store.GetItemByOID(ctx, s.db, oid)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("catalog number", oid)
	}
	return item, nil
}

// ListItems returns catalog items in catalog order.
func (s *Service) ListItems(ctx context.Context, f store.ItemFilter) ([]model.InventoryItem, error) {
	return store.ListItems(ctx, s.db, f)
}

// ListExtraImages returns an item's extra images in gallery order.
func (s *Service) ListExtraImages(ctx context.Context, itemID int64) ([]model.ExtraImage, error) {
	if _, err := requireItem(ctx, s.db, itemID); err != nil {
		return nil, err
	}
	return store.ListExtraImages(ctx, s.db, itemID)
}

// GetProject returns a project the caller owns, or any project for admins.
func (s *Service) GetProject(ctx context.Context, id model.Identity, projectID int64) (*model.Project, error) {
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
	return project, nil
}

// ListProjects returns projects in priority order. Admins see every project,
// other users see their own.
func (s *Service) ListProjects(ctx context.Context, id model.Identity) ([]model.Project, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}
	var ownerID int64
	if !p.IsAdmin() {
		ownerID = p.UserID
	}
	return store.ListProjects(ctx, s.db, ownerID)
}

// ListProjectImages returns a project's images in display order.
func (s *Service) ListProjectImages(ctx context.Context, id model.Identity, projectID int64) ([]model.ProjectImage, error) {
	if _, err := s.GetProject(ctx, id, projectID); err != nil {
		return nil, err
	}
	return store.ListProjectImages(ctx, s.db, projectID)
}
