package repository

import (
	"context"

	"bouw-backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	// Quantity returns the quantity on hand, or zero when no entry exists.
	Quantity(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error)
	// FindForUpdate reads and row-locks the entry. Only meaningful inside a transaction.
	FindForUpdate(ctx context.Context, productID, locationID uuid.UUID) (*model.StockEntry, error)
	// Adjust adds delta to the entry, creating it when absent, and returns
	// the resulting quantity. The result may be negative.
	Adjust(ctx context.Context, productID, locationID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	Delete(ctx context.Context, productID, locationID uuid.UUID) error
	// ListByLocation returns the stocked products at a location ordered by product name.
	ListByLocation(ctx context.Context, q StockQuery) ([]model.StockedProduct, error)
	ListAll(ctx context.Context) ([]model.StockRow, error)
}

// StockQuery filters ListByLocation.
type StockQuery struct {
	LocationID   uuid.UUID
	Category     *string
	Search       string
	PositiveOnly bool
	Limit        int
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) Quantity(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	var entry model.StockEntry
	err := conn(ctx, r.db).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Take(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return entry.Quantity, nil
}

func (r *stockRepo) FindForUpdate(ctx context.Context, productID, locationID uuid.UUID) (*model.StockEntry, error) {
	var entry model.StockEntry
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Take(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

const adjustSQL = `INSERT INTO stock (product_id, location_id, quantity, updated_at)
VALUES (?, ?, ?, NOW())
ON CONFLICT (product_id, location_id)
DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = NOW()
RETURNING quantity`

func (r *stockRepo) Adjust(ctx context.Context, productID, locationID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var qty decimal.Decimal
	row := conn(ctx, r.db).Raw(adjustSQL, productID, locationID, delta).Row()
	if err := row.Scan(&qty); err != nil {
		return decimal.Zero, err
	}
	return qty, nil
}

func (r *stockRepo) Delete(ctx context.Context, productID, locationID uuid.UUID) error {
	return conn(ctx, r.db).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Delete(&model.StockEntry{}).Error
}

func (r *stockRepo) ListByLocation(ctx context.Context, q StockQuery) ([]model.StockedProduct, error) {
	var entries []model.StockEntry
	db := conn(ctx, r.db).
		Joins("Product").
		Where("stock.location_id = ?", q.LocationID)
	if q.Category != nil && *q.Category != "" {
		db = db.Where(`"Product".category = ?`, *q.Category)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		db = db.Where(`(LOWER("Product".name) LIKE LOWER(?) OR LOWER("Product".sku) LIKE LOWER(?) OR LOWER("Product".ean) LIKE LOWER(?))`, pattern, pattern, pattern)
	}
	if q.PositiveOnly {
		db = db.Where("stock.quantity > 0")
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if err := db.Order(`"Product".name ASC`).Find(&entries).Error; err != nil {
		return nil, err
	}

	result := make([]model.StockedProduct, 0, len(entries))
	for _, e := range entries {
		sp := model.StockedProduct{LocationID: e.LocationID, Quantity: e.Quantity}
		if e.Product != nil {
			sp.Product = *e.Product
		}
		result = append(result, sp)
	}
	return result, nil
}

func (r *stockRepo) ListAll(ctx context.Context) ([]model.StockRow, error) {
	var rows []model.StockRow
	err := conn(ctx, r.db).
		Table("stock").
		Select(`stock.product_id, products.name AS product_name, products.sku, products.category,
			products.unit, products.min_stock, stock.location_id, locations.name AS location_name, stock.quantity`).
		Joins("JOIN products ON products.id = stock.product_id").
		Joins("JOIN locations ON locations.id = stock.location_id").
		Order("locations.name ASC, products.name ASC").
		Scan(&rows).Error
	return rows, err
}
