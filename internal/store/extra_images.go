package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/stagehouse/internal/model"
)

const extraImageColumns = `id, item_id, path, width, height, title, thumb_path, thumb_width, thumb_height, created_at`

func scanExtraImage(s scanner) (*model.ExtraImage, error) {
	img := &model.ExtraImage{}
	var thumb imageCols
	dest := []any{&img.ID, &img.ItemID, &img.Image.Path, &img.Image.Width, &img.Image.Height, &img.Title}
	dest = append(dest, thumb.dest()...)
	dest = append(dest, &img.CreatedAt)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	img.Thumbnail = thumb.image()
	return img, nil
}

// AddExtraImage attaches a secondary image to an item.
func AddExtraImage(ctx context.Context, q DBTX, itemID int64, image model.Image, title string, thumb *model.Image, now time.Time) (*model.ExtraImage, error) {
	args := []any{itemID, image.Path, image.Width, image.Height, title}
	args = append(args, imageArgs(thumb)...)
	args = append(args, now)

	result, err := q.ExecContext(ctx,
		`INSERT INTO extra_images (item_id, path, width, height, title, thumb_path, thumb_width, thumb_height, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("adding extra image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting extra image id: %w", err)
	}
	return GetExtraImage(ctx, q, id)
}

// GetExtraImage returns an extra image by ID.
func GetExtraImage(ctx context.Context, q DBTX, id int64) (*model.ExtraImage, error) {
	img, err := scanExtraImage(q.QueryRowContext(ctx,
		`SELECT `+extraImageColumns+` FROM extra_images WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting extra image: %w", err)
	}
	return img, nil
}

// ListExtraImages returns an item's extra images in position order.
func ListExtraImages(ctx context.Context, q DBTX, itemID int64) ([]model.ExtraImage, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+extraImageColumns+` FROM extra_images WHERE item_id = ? ORDER BY created_at, id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing extra images: %w", err)
	}
	defer rows.Close()

	var images []model.ExtraImage
	for rows.Next() {
		img, err := scanExtraImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning extra image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// SwapExtraImageContent exchanges the image, title and thumbnail of two extra
// images, which swaps their positions while IDs and creation order stay put.
func SwapExtraImageContent(ctx context.Context, q DBTX, a, b *model.ExtraImage) error {
	for _, pair := range [][2]*model.ExtraImage{{a, b}, {b, a}} {
		dst, src := pair[0], pair[1]
		args := []any{src.Image.Path, src.Image.Width, src.Image.Height, src.Title}
		args = append(args, imageArgs(src.Thumbnail)...)
		args = append(args, dst.ID)
		if _, err := q.ExecContext(ctx,
			`UPDATE extra_images SET path = ?, width = ?, height = ?, title = ?,
			     thumb_path = ?, thumb_width = ?, thumb_height = ?
			 WHERE id = ?`,
			args...,
		); err != nil {
			return fmt.Errorf("swapping extra images: %w", err)
		}
	}
	return nil
}

// DeleteExtraImage removes one extra image.
func DeleteExtraImage(ctx context.Context, q DBTX, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM extra_images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting extra image: %w", err)
	}
	return nil
}

// DeleteItemExtraImages removes every extra image of an item.
func DeleteItemExtraImages(ctx context.Context, q DBTX, itemID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM extra_images WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting item extra images: %w", err)
	}
	return nil
}
