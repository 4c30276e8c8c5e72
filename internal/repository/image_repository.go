package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/nyumbalink/nyumbalink/internal/model"
)

const imageCols = "id, property_id, object_id, filename, content_type, size_bytes, sort_order, created_at"

// ImageRepo stores listing image metadata; the bytes live in the image
// store under ObjectID.
type ImageRepo struct {
	db *sql.DB
	x  *sqlx.DB
}

func NewImageRepo(db *sql.DB) *ImageRepo {
	return &ImageRepo{db: db, x: sqlx.NewDb(db, "mysql")}
}

func scanImage(s scanner) (model.PropertyImage, error) {
	var img model.PropertyImage
	err := s.Scan(&img.ID, &img.PropertyID, &img.ObjectID, &img.Filename, &img.ContentType,
		&img.SizeBytes, &img.SortOrder, &img.CreatedAt)
	return img, err
}

// Add records an uploaded image at the end of the listing's gallery.  The
// property row is locked so concurrent uploads cannot exceed
// model.MaxImagesPerProperty.
func (r *ImageRepo) Add(ctx context.Context, img *model.PropertyImage) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	if err = tx.QueryRowContext(ctx, "SELECT 1 FROM properties WHERE id = ? FOR UPDATE", img.PropertyID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPropertyNotFound
		}
		return err
	}
	var (
		count   int
		maxSort sql.NullInt64
	)
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*), MAX(sort_order) FROM property_images WHERE property_id = ?",
		img.PropertyID).Scan(&count, &maxSort); err != nil {
		return err
	}
	if count >= model.MaxImagesPerProperty {
		return ErrImageLimit
	}
	img.SortOrder = 0
	if maxSort.Valid {
		img.SortOrder = uint32(maxSort.Int64) + 1
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO property_images (property_id, object_id, filename, content_type, size_bytes, sort_order) VALUES (?,?,?,?,?,?)",
		img.PropertyID, img.ObjectID, img.Filename, img.ContentType, img.SizeBytes, img.SortOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	saved, err := scanImage(tx.QueryRowContext(ctx, "SELECT "+imageCols+" FROM property_images WHERE id = ?", id))
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	*img = saved
	return nil
}

// ListByProperty returns a listing's images in gallery order.
func (r *ImageRepo) ListByProperty(ctx context.Context, propertyID uint64) ([]model.PropertyImage, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+imageCols+" FROM property_images WHERE property_id = ? ORDER BY sort_order, id", propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PropertyImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// Covers returns the first image of each listing in ids, keyed by
// property id.  Listings without images are absent from the map.
func (r *ImageRepo) Covers(ctx context.Context, ids []uint64) (map[uint64]model.PropertyImage, error) {
	out := make(map[uint64]model.PropertyImage, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(
		"SELECT "+imageCols+" FROM property_images WHERE property_id IN (?) ORDER BY property_id, sort_order, id", ids)
	if err != nil {
		return nil, err
	}
	rows, err := r.x.QueryContext(ctx, r.x.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		if _, seen := out[img.PropertyID]; !seen {
			out[img.PropertyID] = img
		}
	}
	return out, rows.Err()
}

// Get returns one image of a listing.
func (r *ImageRepo) Get(ctx context.Context, propertyID, imageID uint64) (model.PropertyImage, error) {
	img, err := scanImage(r.db.QueryRowContext(ctx,
		"SELECT "+imageCols+" FROM property_images WHERE id = ? AND property_id = ?", imageID, propertyID))
	if errors.Is(err, sql.ErrNoRows) {
		return img, ErrImageNotFound
	}
	return img, err
}

// Delete removes the metadata row and returns it so the caller can delete
// the stored object.
func (r *ImageRepo) Delete(ctx context.Context, propertyID, imageID uint64) (model.PropertyImage, error) {
	img, err := r.Get(ctx, propertyID, imageID)
	if err != nil {
		return img, err
	}
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM property_images WHERE id = ? AND property_id = ?", imageID, propertyID); err != nil {
		return img, err
	}
	return img, nil
}

// Count returns how many images a listing has.
func (r *ImageRepo) Count(ctx context.Context, propertyID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM property_images WHERE property_id = ?", propertyID).Scan(&n)
	return n, err
}
