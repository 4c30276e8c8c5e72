package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/jmoiron/sqlx"

    "github.com/nyumbalink/nyumbalink/internal/model"
    "github.com/nyumbalink/nyumbalink/internal/search"
)

// propertyCols lists properties columns under alias p in the order
// scanProperty expects.  The names double as sqlx db tags.
const propertyCols = `p.id, p.owner_id, p.title, p.description, p.property_type, p.region,
    p.district, p.address, p.price_tzs, p.bedrooms, p.bathrooms, p.area_sqm,
    p.amenities, p.status, p.is_featured, p.views, p.created_at, p.updated_at`

// PropertyRepo provides CRUD and search over listings.  Plain queries use
// database/sql like the other repositories; Search scans through sqlx so
// the dynamic column list maps onto model.Property by tag.
type PropertyRepo struct {
    db *sql.DB
    x  *sqlx.DB
}

// NewPropertyRepo wraps db; the sqlx handle shares its pool.
func NewPropertyRepo(db *sql.DB) *PropertyRepo {
    return &PropertyRepo{db: db, x: sqlx.NewDb(db, "mysql")}
}

// DB exposes the underlying handle for callers that need a transaction
// spanning repositories.
func (r *PropertyRepo) DB() *sql.DB { return r.db }

func scanProperty(s scanner) (model.Property, error) {
    var (
        p    model.Property
        area sql.NullInt64
    )
    err := s.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Type, &p.Region,
        &p.District, &p.Address, &p.PriceTZS, &p.Bedrooms, &p.Bathrooms, &area,
        &p.Amenities, &p.Status, &p.IsFeatured, &p.Views, &p.CreatedAt, &p.UpdatedAt)
    if area.Valid {
        v := uint32(area.Int64)
        p.AreaSqm = &v
    }
    return p, err
}

// Create inserts p and reloads it so defaults and timestamps are filled.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) error {
    if p.Status == "" {
        p.Status = model.StatusAvailable
    }
    p.Amenities = p.Amenities.Normalize()
    res, err := r.db.ExecContext(ctx, `INSERT INTO properties
        (owner_id, title, description, property_type, region, district, address,
         price_tzs, bedrooms, bathrooms, area_sqm, amenities, status)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
        p.OwnerID, p.Title, p.Description, p.Type, p.Region, p.District, p.Address,
        p.PriceTZS, p.Bedrooms, p.Bathrooms, p.AreaSqm, p.Amenities, p.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    created, err := r.GetByID(ctx, uint64(id))
    if err != nil {
        return err
    }
    *p = created
    return nil
}

// GetByID returns a listing regardless of status.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (model.Property, error) {
    p, err := scanProperty(r.db.QueryRowContext(ctx,
        "SELECT "+propertyCols+" FROM properties p WHERE p.id = ?", id))
    if errors.Is(err, sql.ErrNoRows) {
        return p, ErrPropertyNotFound
    }
    return p, err
}

// GetByIDAndOwner returns ErrPropertyNotFound when the listing does not
// exist and ErrForbidden when it belongs to someone else.
func (r *PropertyRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Property, error) {
    p, err := r.GetByID(ctx, id)
    if err != nil {
        return p, err
    }
    if p.OwnerID != ownerID {
        return model.Property{}, ErrForbidden
    }
    return p, nil
}

// Update overwrites the editable fields of an owned listing.  Status,
// featured flag and view count are changed through their own methods.
func (r *PropertyRepo) Update(ctx context.Context, p *model.Property) error {
    if _, err := r.GetByIDAndOwner(ctx, p.ID, p.OwnerID); err != nil {
        return err
    }
    p.Amenities = p.Amenities.Normalize()
    if _, err := r.db.ExecContext(ctx, `UPDATE properties SET
        title=?, description=?, property_type=?, region=?, district=?, address=?,
        price_tzs=?, bedrooms=?, bathrooms=?, area_sqm=?, amenities=?
        WHERE id=? AND owner_id=?`,
        p.Title, p.Description, p.Type, p.Region, p.District, p.Address,
        p.PriceTZS, p.Bedrooms, p.Bathrooms, p.AreaSqm, p.Amenities,
        p.ID, p.OwnerID); err != nil {
        return err
    }
    updated, err := r.GetByID(ctx, p.ID)
    if err != nil {
        return err
    }
    *p = updated
    return nil
}

// SetStatus changes the status of an owned listing.
func (r *PropertyRepo) SetStatus(ctx context.Context, id, ownerID uint64, status model.PropertyStatus) (model.Property, error) {
    if _, err := r.GetByIDAndOwner(ctx, id, ownerID); err != nil {
        return model.Property{}, err
    }
    if _, err := r.db.ExecContext(ctx,
        "UPDATE properties SET status=? WHERE id=? AND owner_id=?", status, id, ownerID); err != nil {
        return model.Property{}, err
    }
    return r.GetByID(ctx, id)
}

// SetFeatured toggles the featured flag.  Only super admins reach this.
func (r *PropertyRepo) SetFeatured(ctx context.Context, id uint64, featured bool) (model.Property, error) {
    if _, err := r.db.ExecContext(ctx,
        "UPDATE properties SET is_featured=? WHERE id=?", featured, id); err != nil {
        return model.Property{}, err
    }
    return r.GetByID(ctx, id)
}

// Delete removes a listing and everything hanging off it inside one
// transaction and returns the storage object ids of its images so the
// caller can remove the files.  ownerID 0 skips the ownership check and is
// reserved for super admins.
func (r *PropertyRepo) Delete(ctx context.Context, id, ownerID uint64) (objectIDs []string, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            err = tx.Commit()
        }
    }()

    var dbOwner uint64
    if err = tx.QueryRowContext(ctx,
        "SELECT owner_id FROM properties WHERE id = ? FOR UPDATE", id).Scan(&dbOwner); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            err = ErrPropertyNotFound
        }
        return nil, err
    }
    if ownerID != 0 && dbOwner != ownerID {
        err = ErrForbidden
        return nil, err
    }

    rows, err := tx.QueryContext(ctx, "SELECT object_id FROM property_images WHERE property_id = ?", id)
    if err != nil {
        return nil, err
    }
    for rows.Next() {
        var oid string
        if err = rows.Scan(&oid); err != nil {
            rows.Close()
            return nil, err
        }
        objectIDs = append(objectIDs, oid)
    }
    rows.Close()
    if err = rows.Err(); err != nil {
        return nil, err
    }

    // Children first; the foreign keys cascade as well but explicit deletes
    // keep the order obvious.
    for _, q := range []string{
        "DELETE FROM payments WHERE property_id = ?",
        "DELETE FROM booking_requests WHERE property_id = ?",
        "DELETE FROM property_inquiries WHERE property_id = ?",
        "DELETE FROM property_images WHERE property_id = ?",
        "DELETE FROM properties WHERE id = ?",
    } {
        if _, err = tx.ExecContext(ctx, q, id); err != nil {
            return nil, err
        }
    }
    return objectIDs, nil
}

// ListByOwner returns an owner's listings newest first, any status.
func (r *PropertyRepo) ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]model.Property, int64, error) {
    page, pageSize = search.ClampInt(page, pageSize)
    return r.Search(ctx, search.Query{
        OwnerID:  &ownerID,
        Status:   search.StatusAny,
        Sort:     search.SortNewest,
        Page:     page,
        PageSize: pageSize,
    })
}

// IncrementViews bumps the view counter of a listing.
func (r *PropertyRepo) IncrementViews(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx, "UPDATE properties SET views = views + 1 WHERE id = ?", id)
    return err
}

// Search runs a search.Query: one COUNT for the total, then the requested
// page in the whitelisted order.
func (r *PropertyRepo) Search(ctx context.Context, q search.Query) ([]model.Property, int64, error) {
    cl := search.Build(q)

    var total int64
    if err := r.x.GetContext(ctx, &total,
        "SELECT COUNT(*) FROM properties p WHERE "+cl.Where, cl.Args...); err != nil {
        return nil, 0, err
    }
    out := []model.Property{}
    if total == 0 || int64(q.Offset()) >= total {
        return out, total, nil
    }
    args := append(append([]any{}, cl.Args...), q.PageSize, q.Offset())
    if err := r.x.SelectContext(ctx, &out,
        "SELECT "+propertyCols+" FROM properties p WHERE "+cl.Where+
            " ORDER BY "+cl.OrderBy+" LIMIT ? OFFSET ?", args...); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}

// CountByStatus returns listing counts per status, for one owner when
// ownerID is non-zero or platform wide otherwise.
func (r *PropertyRepo) CountByStatus(ctx context.Context, ownerID uint64) (map[model.PropertyStatus]int64, error) {
    out := map[model.PropertyStatus]int64{
        model.StatusAvailable:   0,
        model.StatusOccupied:    0,
        model.StatusMaintenance: 0,
    }
    q := "SELECT status, COUNT(*) FROM properties"
    var args []any
    if ownerID != 0 {
        q += " WHERE owner_id = ?"
        args = append(args, ownerID)
    }
    rows, err := r.db.QueryContext(ctx, q+" GROUP BY status", args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var (
            st model.PropertyStatus
            n  int64
        )
        if err := rows.Scan(&st, &n); err != nil {
            return nil, err
        }
        out[st] = n
    }
    return out, rows.Err()
}
