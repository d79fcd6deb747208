package repository

import (
	"context"
	"time"

	"bouw-backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindAll(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	Update(ctx context.Context, tx *model.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// StockMovementData is one day of the stock movement chart.
type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

// DashboardStats is the overview shown on the dashboard.
type DashboardStats struct {
	TotalProducts      int64 `json:"total_products"`
	LowStockCount      int64 `json:"low_stock_count"`
	NegativeStockCount int64 `json:"negative_stock_count"`
	TransactionsToday  int64 `json:"transactions_today"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	return conn(ctx, r.db).Create(tx).Error
}

func (r *transactionRepo) FindAll(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	db := conn(ctx, r.db).Preload("Product").Preload("Location").Preload("User")
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LocationID != nil {
		db = db.Where("location_id = ?", *filter.LocationID)
	}
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}
	err := db.Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := conn(ctx, r.db).Preload("Product").Preload("Location").Preload("User").First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) Update(ctx context.Context, tx *model.Transaction) error {
	return conn(ctx, r.db).
		Model(&model.Transaction{}).
		Where("id = ?", tx.ID).
		Updates(map[string]interface{}{
			"product_id":  tx.ProductID,
			"location_id": tx.LocationID,
			"project_id":  tx.ProjectID,
			"quantity":    tx.Quantity,
			"note":        tx.Note,
			"updated_by":  tx.UpdatedBy,
		}).Error
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := conn(ctx, r.db).Delete(&model.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate transactions per day; outbound quantities are stored negative.
	rows, err := conn(ctx, r.db).Model(&model.Transaction{}).
		Select(`
			TO_CHAR(created_at, 'YYYY-MM-DD') as date,
			COALESCE(SUM(CASE WHEN type = 'in' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'out' THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *transactionRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := conn(ctx, r.db)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	// Products whose total stock over all locations is below min_stock.
	err := db.Raw(`
		SELECT COUNT(*) FROM products p
		WHERE COALESCE((SELECT SUM(s.quantity) FROM stock s WHERE s.product_id = p.id), 0) < p.min_stock
	`).Scan(&stats.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	if err := db.Model(&model.StockEntry{}).Where("quantity < 0").Count(&stats.NegativeStockCount).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Transaction{}).Where("created_at >= CURRENT_DATE").Count(&stats.TransactionsToday).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
