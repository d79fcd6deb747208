package service

import (
	"context"
	"fmt"

	"bouw-backoffice/internal/metrics"
	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BookingService interface {
	BookOut(ctx context.Context, req BookOutRequest) (*model.BookingResult, error)
	BookIn(ctx context.Context, req BookInRequest) (*model.BookingResult, error)
	MoveStock(ctx context.Context, req MoveStockRequest) error
	EditTransaction(ctx context.Context, id uuid.UUID, upd model.TransactionUpdate, actor Actor) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID, actor Actor) error
	ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
}

type BookOutRequest struct {
	Lines     []model.BookingLine
	Actor     Actor
	ProjectID *uuid.UUID
	Note      string
}

type BookInRequest struct {
	Lines []model.BookingLine
	Actor Actor
	Note  string
}

type MoveStockRequest struct {
	ProductID      uuid.UUID
	FromLocationID uuid.UUID
	ToLocationID   uuid.UUID
	Quantity       decimal.Decimal
	Actor          Actor
}

type bookingService struct {
	tx           repository.TxManager
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	stockRepo    repository.StockRepository
	txRepo       repository.TransactionRepository
	warnings     WarningPublisher
	wsHub        Broadcaster
	log          *zap.Logger
}

func NewBookingService(
	tx repository.TxManager,
	pRepo repository.ProductRepository,
	lRepo repository.LocationRepository,
	sRepo repository.StockRepository,
	tRepo repository.TransactionRepository,
	warnings WarningPublisher,
	hub Broadcaster,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		tx:           tx,
		productRepo:  pRepo,
		locationRepo: lRepo,
		stockRepo:    sRepo,
		txRepo:       tRepo,
		warnings:     warnings,
		wsHub:        hub,
		log:          log.Named("booking"),
	}
}

// resolvedLine carries the names a warning needs.
type resolvedLine struct {
	model.BookingLine
	product  *model.Product
	location *model.Location
}

// resolveLines drops incomplete lines and loads the referenced products and
// locations. It performs no writes.
func (s *bookingService) resolveLines(ctx context.Context, lines []model.BookingLine) ([]resolvedLine, error) {
	products := make(map[uuid.UUID]*model.Product)
	locations := make(map[uuid.UUID]*model.Location)

	var out []resolvedLine
	for _, l := range lines {
		if l.ProductID == uuid.Nil || l.LocationID == uuid.Nil || !l.Quantity.IsPositive() {
			continue
		}
		if !model.FitsScale(l.Quantity, model.QuantityScale) {
			return nil, apperror.Validationf("quantity %s has more than %d decimals", l.Quantity, model.QuantityScale)
		}

		p, ok := products[l.ProductID]
		if !ok {
			found, err := s.productRepo.FindByID(ctx, l.ProductID)
			if err != nil {
				return nil, referenceError(err, fmt.Sprintf("unknown product %s", l.ProductID))
			}
			p = found
			products[l.ProductID] = p
		}

		loc, ok := locations[l.LocationID]
		if !ok {
			found, err := s.locationRepo.FindByID(ctx, l.LocationID)
			if err != nil {
				return nil, referenceError(err, fmt.Sprintf("unknown location %s", l.LocationID))
			}
			loc = found
			locations[l.LocationID] = loc
		}

		out = append(out, resolvedLine{BookingLine: l, product: p, location: loc})
	}

	if len(out) == 0 {
		return nil, apperror.Validation("at least one line needs a product, a location and a quantity greater than 0")
	}
	return out, nil
}

// BookOut posts one outbound transaction per valid line and deducts stock.
// Insufficient stock never blocks the booking: the shortfall is returned as
// a warning and stock is allowed to go negative. Lines on the same product
// and location are applied in order, so each sees the quantity left by the
// previous one.
func (s *bookingService) BookOut(ctx context.Context, req BookOutRequest) (*model.BookingResult, error) {
	// 1. Validate before any write
	lines, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	result := &model.BookingResult{
		TransactionIDs: make([]uuid.UUID, 0, len(lines)),
		Warnings:       []model.StockWarning{},
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, l := range lines {
			// 2. Ledger entry
			entry := &model.Transaction{
				ProductID:  l.ProductID,
				LocationID: l.LocationID,
				ProjectID:  req.ProjectID,
				UserID:     req.Actor.ID,
				Quantity:   l.Quantity.Abs().Neg(),
				Type:       model.TxOut,
				Note:       req.Note,
			}
			entry.CreatedBy = req.Actor.ID.String()
			entry.UpdatedBy = req.Actor.ID.String()
			if err := s.txRepo.Create(ctx, entry); err != nil {
				return apperror.Store(err)
			}
			result.TransactionIDs = append(result.TransactionIDs, entry.ID)

			// 3. Atomic stock adjust; previous = new + requested
			newQty, err := s.stockRepo.Adjust(ctx, l.ProductID, l.LocationID, l.Quantity.Neg())
			if err != nil {
				return apperror.Store(err)
			}
			available := newQty.Add(l.Quantity)

			// 4. Shortfall is data, not an error
			if l.Quantity.GreaterThan(available) {
				result.Warnings = append(result.Warnings, model.StockWarning{
					ProductID:    l.ProductID,
					ProductName:  l.product.Name,
					LocationID:   l.LocationID,
					LocationName: l.location.Name,
					Available:    available,
					Requested:    l.Quantity,
				})
			}
		}

		s.tx.AfterCommit(ctx, func() { s.afterBookOut(req, lines, result) })
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *bookingService) afterBookOut(req BookOutRequest, lines []resolvedLine, result *model.BookingResult) {
	metrics.BookingsTotal.WithLabelValues("out").Inc()
	metrics.BookingLinesTotal.Add(float64(len(lines)))

	s.log.Info("stock booked out",
		zap.String("actor_id", req.Actor.ID.String()),
		zap.Int("lines", len(lines)),
		zap.Int("warnings", len(result.Warnings)),
	)

	if len(result.Warnings) > 0 {
		metrics.StockWarningsTotal.Add(float64(len(result.Warnings)))
		warnings := make([]model.StockWarning, len(result.Warnings))
		copy(warnings, result.Warnings)
		s.warnings.Publish(model.StockWarningRaised{
			Warnings:  warnings,
			ActorID:   req.Actor.ID,
			ProjectID: req.ProjectID,
		})
	}

	go broadcast(s.wsHub, map[string]interface{}{
		"type":            "stock_update",
		"action":          "stock_booked_out",
		"lines":           bookingLinesPayload(lines),
		"transaction_ids": result.TransactionIDs,
		"warnings":        len(result.Warnings),
		"user":            req.Actor.payload(),
		"message":         fmt.Sprintf("%s booked out %d line(s)", req.Actor.Name, len(lines)),
	})
}

// BookIn records a receipt: positive transaction and stock increase.
func (s *bookingService) BookIn(ctx context.Context, req BookInRequest) (*model.BookingResult, error) {
	lines, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	result := &model.BookingResult{
		TransactionIDs: make([]uuid.UUID, 0, len(lines)),
		Warnings:       []model.StockWarning{},
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, l := range lines {
			entry := &model.Transaction{
				ProductID:  l.ProductID,
				LocationID: l.LocationID,
				UserID:     req.Actor.ID,
				Quantity:   l.Quantity.Abs(),
				Type:       model.TxIn,
				Note:       req.Note,
			}
			entry.CreatedBy = req.Actor.ID.String()
			entry.UpdatedBy = req.Actor.ID.String()
			if err := s.txRepo.Create(ctx, entry); err != nil {
				return apperror.Store(err)
			}
			result.TransactionIDs = append(result.TransactionIDs, entry.ID)

			if _, err := s.stockRepo.Adjust(ctx, l.ProductID, l.LocationID, l.Quantity); err != nil {
				return apperror.Store(err)
			}
		}

		s.tx.AfterCommit(ctx, func() {
			metrics.BookingsTotal.WithLabelValues("in").Inc()
			go broadcast(s.wsHub, map[string]interface{}{
				"type":            "stock_update",
				"action":          "stock_booked_in",
				"lines":           bookingLinesPayload(lines),
				"transaction_ids": result.TransactionIDs,
				"user":            req.Actor.payload(),
				"message":         fmt.Sprintf("%s booked in %d line(s)", req.Actor.Name, len(lines)),
			})
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MoveStock transfers quantity between two locations. The source entry is
// removed when nothing is left.
func (s *bookingService) MoveStock(ctx context.Context, req MoveStockRequest) error {
	// 1. Local validation
	if req.ProductID == uuid.Nil {
		return apperror.Validation("product is required")
	}
	if req.FromLocationID == uuid.Nil || req.ToLocationID == uuid.Nil {
		return apperror.Validation("source and destination location are required")
	}
	if req.FromLocationID == req.ToLocationID {
		return apperror.Validation("source and destination location must differ")
	}
	if !req.Quantity.IsPositive() {
		return apperror.Validation("quantity must be greater than 0")
	}
	if !model.FitsScale(req.Quantity, model.QuantityScale) {
		return apperror.Validationf("quantity %s has more than %d decimals", req.Quantity, model.QuantityScale)
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return referenceError(err, "unknown product")
	}
	from, err := s.locationRepo.FindByID(ctx, req.FromLocationID)
	if err != nil {
		return referenceError(err, "unknown source location")
	}
	to, err := s.locationRepo.FindByID(ctx, req.ToLocationID)
	if err != nil {
		return referenceError(err, "unknown destination location")
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 2. Lock the source row and check the movable quantity
		source, err := s.stockRepo.FindForUpdate(ctx, req.ProductID, req.FromLocationID)
		if err != nil {
			if apperror.IsNotFound(apperror.Store(err)) {
				return apperror.Validationf("no stock of %s at %s", product.Name, from.Name)
			}
			return apperror.Store(err)
		}
		if req.Quantity.GreaterThan(source.Quantity) {
			return apperror.Validationf("cannot move %s, only %s of %s at %s",
				req.Quantity.String(), source.Quantity.String(), product.Name, from.Name)
		}

		// 3. Decrement source, drop the row when empty
		remaining, err := s.stockRepo.Adjust(ctx, req.ProductID, req.FromLocationID, req.Quantity.Neg())
		if err != nil {
			return apperror.Store(err)
		}
		if !remaining.IsPositive() {
			if err := s.stockRepo.Delete(ctx, req.ProductID, req.FromLocationID); err != nil {
				return apperror.Store(err)
			}
		}

		// 4. Increment destination
		if _, err := s.stockRepo.Adjust(ctx, req.ProductID, req.ToLocationID, req.Quantity); err != nil {
			return apperror.Store(err)
		}

		s.tx.AfterCommit(ctx, func() {
			metrics.BookingsTotal.WithLabelValues("move").Inc()
			go broadcast(s.wsHub, map[string]interface{}{
				"type":   "stock_update",
				"action": "stock_moved",
				"move": map[string]interface{}{
					"product_id":       product.ID,
					"product_name":     product.Name,
					"from_location_id": from.ID,
					"to_location_id":   to.ID,
					"quantity":         req.Quantity,
				},
				"user": req.Actor.payload(),
				"message": fmt.Sprintf("%s moved %s %s from %s to %s",
					req.Actor.Name, req.Quantity.String(), product.Name, from.Name, to.Name),
			})
		})
		return nil
	})
}

// EditTransaction changes a ledger row in place. Stock is not reconciled.
func (s *bookingService) EditTransaction(ctx context.Context, id uuid.UUID, upd model.TransactionUpdate, actor Actor) (*model.Transaction, error) {
	// 1. Validate update
	if upd.ProductID != nil && *upd.ProductID == uuid.Nil {
		return nil, apperror.Validation("product cannot be empty")
	}
	if upd.LocationID != nil && *upd.LocationID == uuid.Nil {
		return nil, apperror.Validation("location cannot be empty")
	}
	if upd.Quantity != nil && upd.Quantity.IsZero() {
		return nil, apperror.Validation("quantity cannot be 0")
	}
	if upd.Quantity != nil && !model.FitsScale(*upd.Quantity, model.QuantityScale) {
		return nil, apperror.Validationf("quantity %s has more than %d decimals", upd.Quantity, model.QuantityScale)
	}

	// 2. Load row
	existing, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}

	// 3. Apply fields; quantity keeps the sign of the transaction type
	if upd.ProductID != nil {
		if _, err := s.productRepo.FindByID(ctx, *upd.ProductID); err != nil {
			return nil, referenceError(err, "unknown product")
		}
		existing.ProductID = *upd.ProductID
	}
	if upd.LocationID != nil {
		if _, err := s.locationRepo.FindByID(ctx, *upd.LocationID); err != nil {
			return nil, referenceError(err, "unknown location")
		}
		existing.LocationID = *upd.LocationID
	}
	if upd.ProjectID != nil {
		if *upd.ProjectID == uuid.Nil {
			existing.ProjectID = nil
		} else {
			projectID := *upd.ProjectID
			existing.ProjectID = &projectID
		}
	}
	if upd.Quantity != nil {
		q := upd.Quantity.Abs()
		if existing.Type == model.TxOut {
			q = q.Neg()
		}
		existing.Quantity = q
	}
	if upd.Note != nil {
		existing.Note = *upd.Note
	}
	existing.UpdatedBy = actor.ID.String()

	// 4. Persist
	if err := s.txRepo.Update(ctx, existing); err != nil {
		return nil, apperror.Store(err)
	}

	s.log.Info("transaction edited without stock reconciliation",
		zap.String("transaction_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
	)

	go broadcast(s.wsHub, map[string]interface{}{
		"type":           "stock_update",
		"action":         "transaction_updated",
		"transaction_id": id,
		"user":           actor.payload(),
		"message":        fmt.Sprintf("%s updated a transaction", actor.Name),
	})

	updated, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return updated, nil
}

// DeleteTransaction removes the ledger row only. Stock is not reconciled.
func (s *bookingService) DeleteTransaction(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.txRepo.Delete(ctx, id); err != nil {
		return apperror.Store(err)
	}

	s.log.Info("transaction deleted without stock reconciliation",
		zap.String("transaction_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
	)

	go broadcast(s.wsHub, map[string]interface{}{
		"type":           "stock_update",
		"action":         "transaction_deleted",
		"transaction_id": id,
		"user":           actor.payload(),
		"message":        fmt.Sprintf("%s deleted a transaction", actor.Name),
	})
	return nil
}

func (s *bookingService) ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	txs, err := s.txRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return txs, nil
}

func (s *bookingService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return tx, nil
}

func bookingLinesPayload(lines []resolvedLine) []map[string]interface{} {
	out := make([]map[string]interface{}, len(lines))
	for i, l := range lines {
		out[i] = map[string]interface{}{
			"product_id":    l.ProductID,
			"product_name":  l.product.Name,
			"location_id":   l.LocationID,
			"location_name": l.location.Name,
			"quantity":      l.Quantity,
		}
	}
	return out
}
