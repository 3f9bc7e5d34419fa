// Package repo implements the SQL persistence layer for cellar records,
// backed by GORM. This file provides repository functions for the Wine model.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside a transaction. They follow the "thin repository" approach: no
// business rules, only persistence and query composition. Every query is
// scoped by the owning user id; a record owned by someone else is reported
// exactly like a missing one.
//
// Error semantics:
//   - When a wine is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateWine inserts w. A random UUID is assigned when w.ID is empty.
// The persisted record is returned.
func CreateWine(ctx context.Context, db *gorm.DB, w domain.Wine) (*domain.Wine, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if err := db.WithContext(ctx).Create(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWines returns every wine owned by userID, most recently added first.
// Ties on AddedAt are broken by id so the order is stable between calls.
func ListWines(ctx context.Context, db *gorm.DB, userID string) ([]domain.Wine, error) {
	out := []domain.Wine{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}

// GetWine fetches a single wine by id and owner.
func GetWine(ctx context.Context, db *gorm.DB, userID, id string) (*domain.Wine, error) {
	var w domain.Wine
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateWine writes the non-nil fields of p. An empty patch only checks
// that the record exists.
func UpdateWine(ctx context.Context, db *gorm.DB, userID, id string, p domain.WinePatch) error {
	cols := patchColumns(p)
	if len(cols) == 0 {
		_, err := GetWine(ctx, db, userID, id)
		return err
	}
	res := db.WithContext(ctx).
		Model(&domain.Wine{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWine removes the wine identified by id and owned by userID.
func DeleteWine(ctx context.Context, db *gorm.DB, userID, id string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Wine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// patchColumns maps a patch onto column names. A map is used instead of a
// struct so zero values (quantity 0, empty notes) are written.
func patchColumns(p domain.WinePatch) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Producer != nil {
		cols["producer"] = *p.Producer
	}
	if p.Varietal != nil {
		cols["varietal"] = *p.Varietal
	}
	if p.Vintage != nil {
		cols["vintage"] = *p.Vintage
	}
	if p.Region != nil {
		cols["region"] = *p.Region
	}
	if p.Type != nil {
		cols["type"] = string(*p.Type)
	}
	if p.Quantity != nil {
		cols["quantity"] = *p.Quantity
	}
	if p.Valuation != nil {
		cols["valuation"] = *p.Valuation
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	return cols
}
