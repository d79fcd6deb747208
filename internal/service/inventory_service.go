package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"
	"bouw-backoffice/pkg/objectstore"

	"github.com/google/uuid"
)

var ErrSKUExists = apperror.Validation("SKU already exists")

var photoContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// InventoryService manages the product and location master data the
// booking engines read from.
type InventoryService interface {
	CreateProduct(ctx context.Context, req *model.Product, actor Actor) error
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.Product, actor Actor) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	PhotoUploadURL(ctx context.Context, id uuid.UUID, contentType string, actor Actor) (*objectstore.UploadURL, error)
	CreateLocation(ctx context.Context, req *model.Location, actor Actor) error
	GetAllLocations(ctx context.Context) ([]model.Location, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	presigner    objectstore.Presigner
	wsHub        Broadcaster
}

// NewInventoryService accepts a nil presigner when object storage is not configured.
func NewInventoryService(pRepo repository.ProductRepository, lRepo repository.LocationRepository, presigner objectstore.Presigner, hub Broadcaster) InventoryService {
	return &inventoryService{
		productRepo:  pRepo,
		locationRepo: lRepo,
		presigner:    presigner,
		wsHub:        hub,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *model.Product, actor Actor) error {
	// 1. Validate struct
	req.SKU = strings.TrimSpace(req.SKU)
	req.EAN = strings.TrimSpace(req.EAN)
	if err := validate(req); err != nil {
		return err
	}

	// 2. Duplicate SKU
	existing, err := s.productRepo.FindBySKU(ctx, req.SKU)
	if err == nil && existing != nil {
		return ErrSKUExists
	}
	if err != nil && !apperror.IsNotFound(apperror.Store(err)) {
		return apperror.Store(err)
	}

	// 3. Audit fields
	req.ID = uuid.Nil
	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()

	// 4. Save
	if err := s.productRepo.Create(ctx, req); err != nil {
		return apperror.Store(err)
	}

	// 5. Broadcast
	go broadcast(s.wsHub, map[string]interface{}{
		"type":   "stock_update",
		"action": "product_created",
		"product": map[string]interface{}{
			"id":       req.ID,
			"sku":      req.SKU,
			"name":     req.Name,
			"category": req.Category,
		},
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s created product '%s'", actor.Name, req.Name),
	})
	return nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.Product, actor Actor) (*model.Product, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	req.EAN = strings.TrimSpace(req.EAN)
	if err := validate(req); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}

	if req.SKU != existing.SKU {
		other, err := s.productRepo.FindBySKU(ctx, req.SKU)
		if err == nil && other != nil && other.ID != id {
			return nil, ErrSKUExists
		}
	}

	oldMinStock := existing.MinStock
	existing.Name = req.Name
	existing.SKU = req.SKU
	existing.EAN = req.EAN
	existing.Category = req.Category
	existing.Unit = req.Unit
	existing.MinStock = req.MinStock
	existing.Supplier = req.Supplier
	existing.UpdatedBy = actor.ID.String()

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, apperror.Store(err)
	}

	go broadcast(s.wsHub, map[string]interface{}{
		"type":   "stock_update",
		"action": "product_updated",
		"product": map[string]interface{}{
			"id":            existing.ID,
			"sku":           existing.SKU,
			"name":          existing.Name,
			"old_min_stock": oldMinStock,
			"new_min_stock": existing.MinStock,
		},
		"user":    actor.payload(),
		"message": fmt.Sprintf("%s updated product '%s'", actor.Name, existing.Name),
	})

	return existing, nil
}

func (s *inventoryService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return products, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return product, nil
}

// PhotoUploadURL presigns an upload and stores the object key as the
// product's photo reference.
func (s *inventoryService) PhotoUploadURL(ctx context.Context, id uuid.UUID, contentType string, actor Actor) (*objectstore.UploadURL, error) {
	if s.presigner == nil {
		return nil, apperror.Validation(objectstore.ErrDisabled.Error())
	}
	ext, ok := photoContentTypes[contentType]
	if !ok {
		return nil, apperror.Validationf("unsupported content type %q", contentType)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}

	key := path.Join("products", product.ID.String(), uuid.NewString()+ext)
	upload, err := s.presigner.PresignPut(ctx, key, contentType)
	if err != nil {
		if errors.Is(err, objectstore.ErrDisabled) {
			return nil, apperror.Validation(err.Error())
		}
		return nil, &apperror.Error{Kind: apperror.KindStore, Message: "presign upload failed", Err: err}
	}

	product.PhotoKey = &key
	product.UpdatedBy = actor.ID.String()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, apperror.Store(err)
	}
	return upload, nil
}

func (s *inventoryService) CreateLocation(ctx context.Context, req *model.Location, actor Actor) error {
	req.Name = strings.TrimSpace(req.Name)
	req.LicensePlate = strings.ToUpper(strings.TrimSpace(req.LicensePlate))
	if err := validate(req); err != nil {
		return err
	}

	req.ID = uuid.Nil
	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()
	if err := s.locationRepo.Create(ctx, req); err != nil {
		return apperror.Store(err)
	}
	return nil
}

func (s *inventoryService) GetAllLocations(ctx context.Context) ([]model.Location, error) {
	locations, err := s.locationRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return locations, nil
}
