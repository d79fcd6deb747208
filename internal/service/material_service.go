package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minSearchLength   = 2
	searchResultLimit = 10
	bookableListLimit = 50
)

type MaterialService interface {
	SearchByText(ctx context.Context, query string) ([]model.Product, error)
	Scan(ctx context.Context, decodedText string) (*SelectionResult, error)
	BrowseByLocationAndCategory(ctx context.Context, locationID uuid.UUID, category *string) ([]model.StockedProduct, error)
	SearchBookable(ctx context.Context, locationID uuid.UUID, query string) ([]model.StockedProduct, error)
	ConfirmLine(ctx context.Context, productID, locationID uuid.UUID, quantity decimal.Decimal) (*ConfirmedLine, error)
}

// SelectionResult is the outcome of a search or scan. Selected is nil when
// the user still has to pick from Candidates.
type SelectionResult struct {
	Query      string          `json:"query"`
	Candidates []model.Product `json:"candidates"`
	Selected   *model.Product  `json:"selected"`
}

// ConfirmedLine is a validated product, location and quantity.
type ConfirmedLine struct {
	Product  model.Product   `json:"product"`
	Location model.Location  `json:"location"`
	Quantity decimal.Decimal `json:"quantity"`
}

type materialService struct {
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	stockRepo    repository.StockRepository
}

func NewMaterialService(pRepo repository.ProductRepository, lRepo repository.LocationRepository, sRepo repository.StockRepository) MaterialService {
	return &materialService{
		productRepo:  pRepo,
		locationRepo: lRepo,
		stockRepo:    sRepo,
	}
}

// SearchByText matches name, SKU and EAN case-insensitively. Queries shorter
// than two characters yield no candidates.
func (s *materialService) SearchByText(ctx context.Context, query string) ([]model.Product, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < minSearchLength {
		return []model.Product{}, nil
	}

	products, err := s.productRepo.Search(ctx, q, searchResultLimit)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return products, nil
}

// AutoSelectOnExactMatch picks the candidate whose EAN or SKU equals query,
// or the only candidate when there is exactly one.
func AutoSelectOnExactMatch(query string, candidates []model.Product) (*model.Product, bool) {
	q := strings.TrimSpace(query)
	if q != "" {
		for i := range candidates {
			if candidates[i].EAN == q || candidates[i].SKU == q {
				return &candidates[i], true
			}
		}
	}
	if len(candidates) == 1 {
		return &candidates[0], true
	}
	return nil, false
}

func (s *materialService) Scan(ctx context.Context, decodedText string) (*SelectionResult, error) {
	candidates, err := s.SearchByText(ctx, decodedText)
	if err != nil {
		return nil, err
	}

	result := &SelectionResult{Query: strings.TrimSpace(decodedText), Candidates: candidates}
	if selected, ok := AutoSelectOnExactMatch(decodedText, candidates); ok {
		result.Selected = selected
	}
	return result, nil
}

// BrowseByLocationAndCategory lists every product stocked at the location,
// including zero and negative quantities.
func (s *materialService) BrowseByLocationAndCategory(ctx context.Context, locationID uuid.UUID, category *string) ([]model.StockedProduct, error) {
	if locationID == uuid.Nil {
		return nil, apperror.Validation("location is required")
	}

	items, err := s.stockRepo.ListByLocation(ctx, repository.StockQuery{
		LocationID: locationID,
		Category:   category,
	})
	if err != nil {
		return nil, apperror.Store(err)
	}
	return items, nil
}

// SearchBookable only offers products with a positive quantity at the location.
func (s *materialService) SearchBookable(ctx context.Context, locationID uuid.UUID, query string) ([]model.StockedProduct, error) {
	if locationID == uuid.Nil {
		return nil, apperror.Validation("location is required")
	}

	q := strings.TrimSpace(query)
	limit := bookableListLimit
	if q != "" {
		if utf8.RuneCountInString(q) < minSearchLength {
			return []model.StockedProduct{}, nil
		}
		limit = searchResultLimit
	}

	items, err := s.stockRepo.ListByLocation(ctx, repository.StockQuery{
		LocationID:   locationID,
		Search:       q,
		PositiveOnly: true,
		Limit:        limit,
	})
	if err != nil {
		return nil, apperror.Store(err)
	}
	return items, nil
}

func (s *materialService) ConfirmLine(ctx context.Context, productID, locationID uuid.UUID, quantity decimal.Decimal) (*ConfirmedLine, error) {
	// 1. Local checks first, nothing is read before they pass
	if productID == uuid.Nil {
		return nil, apperror.Validation("product is required")
	}
	if locationID == uuid.Nil {
		return nil, apperror.Validation("location is required")
	}
	if !quantity.IsPositive() {
		return nil, apperror.Validation("quantity must be greater than 0")
	}
	if !model.FitsScale(quantity, model.QuantityScale) {
		return nil, apperror.Validationf("quantity %s has more than %d decimals", quantity, model.QuantityScale)
	}

	// 2. Resolve product and location
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, referenceError(err, "unknown product")
	}
	location, err := s.locationRepo.FindByID(ctx, locationID)
	if err != nil {
		return nil, referenceError(err, "unknown location")
	}

	return &ConfirmedLine{Product: *product, Location: *location, Quantity: quantity}, nil
}
