package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
)

// CatalogService manages live product listings and their approval lifecycle.
type CatalogService interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// ListFarmerStock returns a farmer's approved listings.
	ListFarmerStock(ctx context.Context, farmerName string) ([]domain.Product, error)

	// SetProductStatus moves a listing through its approval lifecycle.
	// Approval triggers the notification fan-out.
	SetProductStatus(ctx context.Context, productID uuid.UUID, status domain.ProductStatus) (*domain.Product, error)

	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

type catalogService struct {
	store         domain.CatalogStore
	notifications NotificationService
	logger        *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(store domain.CatalogStore, notifications NotificationService, logger *slog.Logger) CatalogService {
	return &catalogService{
		store:         store,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateProduct validates and inserts a new listing in Pending status.
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	product.Status = domain.ProductPending
	return s.store.CreateProduct(ctx, product)
}

// GetProduct loads one listing.
func (s *catalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	return s.store.GetProduct(ctx, productID)
}

// ListProducts returns every listing.
func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListProducts(ctx)
}

// ListFarmerStock returns a farmer's approved listings.
func (s *catalogService) ListFarmerStock(ctx context.Context, farmerName string) ([]domain.Product, error) {
	return s.store.ListApprovedByFarmer(ctx, farmerName)
}

// SetProductStatus updates the listing status. Moving to Approved fans out
// notifications; a fan-out failure does not undo the approval.
func (s *catalogService) SetProductStatus(ctx context.Context, productID uuid.UUID, status domain.ProductStatus) (*domain.Product, error) {
	product, err := s.store.UpdateProductStatus(ctx, productID, status)
	if err != nil {
		return nil, err
	}

	if product.Status == domain.ProductApproved {
		if _, err := s.notifications.FanOutApproval(ctx, product); err != nil {
			s.logger.Warn("approval fan-out failed",
				slog.String("product_id", product.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	return product, nil
}

// DeleteProduct removes a listing.
func (s *catalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return s.store.DeleteProduct(ctx, productID)
}
