package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

var maxHoursPerLine = decimal.NewFromInt(24)

const hoursScale = 2

type TimeRegistrationService interface {
	Submit(ctx context.Context, req SubmitTimeRequest) (*SubmitTimeResult, error)
	ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.TimeRegistration, error)
}

type SubmitTimeRequest struct {
	Actor     Actor
	ProjectID uuid.UUID
	Date      time.Time
	Lines     []model.WorkLine
}

type SubmitTimeResult struct {
	Registrations []model.TimeRegistration `json:"registrations"`
	Warnings      []model.StockWarning     `json:"warnings"`
}

type timeRegistrationService struct {
	tx          repository.TxManager
	repo        repository.TimeRegistrationRepository
	projectRepo repository.ProjectRepository
	workCodes   WorkCodeService
	booking     BookingService
	log         *zap.Logger
}

func NewTimeRegistrationService(
	tx repository.TxManager,
	repo repository.TimeRegistrationRepository,
	projectRepo repository.ProjectRepository,
	workCodes WorkCodeService,
	booking BookingService,
	log *zap.Logger,
) TimeRegistrationService {
	return &timeRegistrationService{
		tx:          tx,
		repo:        repo,
		projectRepo: projectRepo,
		workCodes:   workCodes,
		booking:     booking,
		log:         log.Named("timeregistration"),
	}
}

// Submit validates the draft, books out the catalog materials against the
// project and stores one registration per work line, in one transaction.
func (s *timeRegistrationService) Submit(ctx context.Context, req SubmitTimeRequest) (*SubmitTimeResult, error) {
	// 1. Draft shape
	if len(req.Lines) == 0 {
		return nil, apperror.Validation("at least one work line is required")
	}
	if req.Date.IsZero() {
		return nil, apperror.Validation("date is required")
	}
	if _, err := s.projectRepo.FindByID(ctx, req.ProjectID); err != nil {
		return nil, referenceError(err, "unknown project")
	}

	// 2. Work codes allowed for the project
	available, err := s.workCodes.ResolveAvailableCodes(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(available))
	for _, c := range available {
		allowed[c.Code] = true
	}

	// 3. Lines and materials
	var bookingLines []model.BookingLine
	for i, line := range req.Lines {
		if !line.Hours.IsPositive() || line.Hours.GreaterThan(maxHoursPerLine) {
			return nil, apperror.Validationf("line %d: hours must be greater than 0 and at most 24", i+1)
		}
		if !model.FitsScale(line.Hours, hoursScale) {
			return nil, apperror.Validationf("line %d: hours have more than %d decimals", i+1, hoursScale)
		}
		code := strings.TrimSpace(line.WorkCode)
		if code == "" {
			return nil, apperror.Validationf("line %d: work code is required", i+1)
		}
		if !allowed[code] {
			return nil, apperror.Validationf("line %d: work code %q is not available for this project", i+1, code)
		}
		for j, m := range line.Materials {
			bl, err := validateMaterial(m)
			if err != nil {
				return nil, apperror.Validationf("line %d, material %d: %s", i+1, j+1, err.Error())
			}
			if bl != nil {
				bookingLines = append(bookingLines, *bl)
			}
		}
	}

	// 4. Rows to store
	day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	rows := make([]model.TimeRegistration, 0, len(req.Lines))
	for _, line := range req.Lines {
		row := model.TimeRegistration{
			UserID:      req.Actor.ID,
			ProjectID:   req.ProjectID,
			Date:        day,
			WorkCode:    strings.TrimSpace(line.WorkCode),
			Description: line.Description,
			Hours:       line.Hours,
			Materials:   datatypes.JSONSlice[model.MaterialRecord](line.Materials.Records()),
		}
		row.CreatedBy = req.Actor.ID.String()
		row.UpdatedBy = req.Actor.ID.String()
		rows = append(rows, row)
	}

	result := &SubmitTimeResult{Warnings: []model.StockWarning{}}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 5. Book out catalog materials
		if len(bookingLines) > 0 {
			projectID := req.ProjectID
			booked, err := s.booking.BookOut(ctx, BookOutRequest{
				Lines:     bookingLines,
				Actor:     req.Actor,
				ProjectID: &projectID,
				Note:      fmt.Sprintf("Tijdregistratie %s", day.Format(dateLayout)),
			})
			if err != nil {
				return err
			}
			result.Warnings = booked.Warnings
		}

		// 6. Registrations
		if err := s.repo.CreateBatch(ctx, rows); err != nil {
			return apperror.Store(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Registrations = rows
	s.log.Info("time registered",
		zap.String("user_id", req.Actor.ID.String()),
		zap.String("project_id", req.ProjectID.String()),
		zap.String("date", day.Format(dateLayout)),
		zap.Int("lines", len(rows)),
		zap.Int("material_bookings", len(bookingLines)),
	)
	return result, nil
}

// validateMaterial checks one material line and returns the booking line for
// catalog products.
func validateMaterial(m model.MaterialLine) (*model.BookingLine, error) {
	switch v := m.(type) {
	case model.ProductMaterial:
		if v.ProductID == uuid.Nil {
			return nil, fmt.Errorf("product is required")
		}
		if v.LocationID == uuid.Nil {
			return nil, fmt.Errorf("location is required")
		}
		if err := checkMaterialQuantity(v.Quantity); err != nil {
			return nil, err
		}
		return &model.BookingLine{ProductID: v.ProductID, LocationID: v.LocationID, Quantity: v.Quantity}, nil
	case model.FreeTextMaterial:
		if strings.TrimSpace(v.Description) == "" {
			return nil, fmt.Errorf("description is required")
		}
		if err := checkMaterialQuantity(v.Quantity); err != nil {
			return nil, err
		}
		return nil, nil
	case nil:
		return nil, fmt.Errorf("material is empty")
	}
	return nil, fmt.Errorf("unsupported material type %T", m)
}

func (s *timeRegistrationService) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.TimeRegistration, error) {
	if to.Before(from) {
		return nil, apperror.Validation("'to' must not be before 'from'")
	}
	rows, err := s.repo.FindByUser(ctx, userID, from, to)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return rows, nil
}

func checkMaterialQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return fmt.Errorf("quantity must be greater than 0")
	}
	if !model.FitsScale(q, model.QuantityScale) {
		return fmt.Errorf("quantity %s has more than %d decimals", q, model.QuantityScale)
	}
	return nil
}
