package staging

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/store"
)

func checkProjectFields(f *model.ProjectFields) error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return apperr.Invariant("project name is required")
	}
	if f.Status == "" {
		f.Status = model.ProjectStatusDraft
	}
	if !model.ValidProjectStatus(f.Status) {
		return apperr.Invariant("invalid project status %q", f.Status)
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return apperr.Invariant("end date is before start date")
	}
	return nil
}

// CreateProject creates a project owned by the caller at the end of the
// priority order.
func (s *Service) CreateProject(ctx context.Context, id model.Identity, f model.ProjectFields) (*model.Project, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkProjectFields(&f); err != nil {
		return nil, err
	}

	var project *model.Project
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		project, err = store.CreateProject(ctx, tx, p.UserID, f, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project created", "user", p.Username, "project", project.ID, "name", project.Name)
	return project, nil
}

// UpdateProject rewrites a project's attributes.
func (s *Service) UpdateProject(ctx context.Context, id model.Identity, projectID int64, f model.ProjectFields) (*model.Project, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkProjectFields(&f); err != nil {
		return nil, err
	}

	var project *model.Project
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := requireProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := p.RequireOwnerOrAdmin(current.OwnerID); err != nil {
			return err
		}
		if err := store.UpdateProject(ctx, tx, projectID, f, s.now()); err != nil {
			return err
		}
		project, err = store.GetProject(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project updated", "user", p.Username, "project", projectID)
	return project, nil
}

// SetProjectHighlighted adds a project to or removes it from the portfolio.
func (s *Service) SetProjectHighlighted(ctx context.Context, id model.Identity, projectID int64, highlighted bool) (*model.Project, error) {
	p, err := s.auth.RequireAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	var project *model.Project
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireProject(ctx, tx, projectID); err != nil {
			return err
		}
		if err := store.SetProjectHighlighted(ctx, tx, projectID, highlighted, s.now()); err != nil {
			return err
		}
		var err error
		project, err = store.GetProject(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project highlight changed", "user", p.Username, "project", projectID, "highlighted", highlighted)
	return project, nil
}

// AddProjectImage appends an image to the end of a project's display order.
func (s *Service) AddProjectImage(ctx context.Context, id model.Identity, projectID int64, image model.Image, thumb *model.Image) (*model.ProjectImage, error) {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(image.Path) == "" {
		return nil, apperr.Invariant("image path is required")
	}

	var img *model.ProjectImage
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		project, err := requireProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := p.RequireOwnerOrAdmin(project.OwnerID); err != nil {
			return err
		}
		img, err = store.AddProjectImage(ctx, tx, projectID, image, thumb, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// DeleteProjectImage removes a project image and closes the gap it leaves in
// the display order.
func (s *Service) DeleteProjectImage(ctx context.Context, id model.Identity, projectID, imageID int64) error {
	p, err := s.auth.RequireAuthenticated(ctx, id)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		project, err := requireProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := p.RequireOwnerOrAdmin(project.OwnerID); err != nil {
			return err
		}
		img, err := store.GetProjectImage(ctx, tx, imageID)
		if err != nil {
			return err
		}
		if img == nil || img.ProjectID != projectID {
			return apperr.NotFound("project image", imageID)
		}
		if err := store.DeleteProjectImage(ctx, tx, imageID); err != nil {
			return err
		}
		rest, err := store.ListProjectImages(ctx, tx, projectID)
		if err != nil {
			return err
		}
		return store.SetProjectImageOrder(ctx, tx, projectImageIDs(rest))
	})
}
