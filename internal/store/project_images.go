package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/stagehouse/internal/model"
)

const projectImageColumns = `id, project_id, path, width, height, thumb_path, thumb_width, thumb_height, display_order, created_at`

func scanProjectImage(s scanner) (*model.ProjectImage, error) {
	img := &model.ProjectImage{}
	var thumb imageCols
	dest := []any{&img.ID, &img.ProjectID, &img.Image.Path, &img.Image.Width, &img.Image.Height}
	dest = append(dest, thumb.dest()...)
	dest = append(dest, &img.DisplayOrder, &img.CreatedAt)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	img.Thumbnail = thumb.image()
	return img, nil
}

// AddProjectImage appends an image at the end of a project's display order.
func AddProjectImage(ctx context.Context, q DBTX, projectID int64, image model.Image, thumb *model.Image, now time.Time) (*model.ProjectImage, error) {
	args := []any{projectID, image.Path, image.Width, image.Height}
	args = append(args, imageArgs(thumb)...)
	args = append(args, projectID, now)

	result, err := q.ExecContext(ctx,
		`INSERT INTO project_images (project_id, path, width, height, thumb_path, thumb_width, thumb_height,
		     display_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COUNT(*) FROM project_images WHERE project_id = ?), ?)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("adding project image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting project image id: %w", err)
	}
	return GetProjectImage(ctx, q, id)
}

// GetProjectImage returns a project image by ID.
func GetProjectImage(ctx context.Context, q DBTX, id int64) (*model.ProjectImage, error) {
	img, err := scanProjectImage(q.QueryRowContext(ctx,
		`SELECT `+projectImageColumns+` FROM project_images WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting project image: %w", err)
	}
	return img, nil
}

// ListProjectImages returns a project's images by ascending display order.
func ListProjectImages(ctx context.Context, q DBTX, projectID int64) ([]model.ProjectImage, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+projectImageColumns+` FROM project_images WHERE project_id = ? ORDER BY display_order, id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing project images: %w", err)
	}
	defer rows.Close()

	var images []model.ProjectImage
	for rows.Next() {
		img, err := scanProjectImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// SetProjectImageOrder writes display_order = index for each ID, in list order.
func SetProjectImageOrder(ctx context.Context, q DBTX, ids []int64) error {
	for i, id := range ids {
		if _, err := q.ExecContext(ctx,
			`UPDATE project_images SET display_order = ? WHERE id = ?`, i, id,
		); err != nil {
			return fmt.Errorf("setting project image order: %w", err)
		}
	}
	return nil
}

// DeleteProjectImage removes one project image. Callers re-densify the order.
func DeleteProjectImage(ctx context.Context, q DBTX, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM project_images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project image: %w", err)
	}
	return nil
}

// DeleteProjectImages removes every image of a project.
func DeleteProjectImages(ctx context.Context, q DBTX, projectID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM project_images WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("deleting project images: %w", err)
	}
	return nil
}
