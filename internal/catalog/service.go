package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pestilink/pestilink-backend/pkg/db/models"
	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
	"github.com/pestilink/pestilink-backend/pkg/logger"
	"gorm.io/gorm"
)

// Notifier announces new listings to farmers.
type Notifier interface {
	ProductListed(ctx context.Context, product *models.Product) error
}

// ImageRemover discards stored images once a listing stops referencing them.
type ImageRemover interface {
	Remove(ctx context.Context, filename string) error
}

// Service defines catalog operations beyond repository reads.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	ListShopProducts(ctx context.Context, shopOwnerID uuid.UUID) ([]ProductDTO, error)
	SearchProducts(ctx context.Context, query string) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, shopOwnerID, productID uuid.UUID) error
}

type service struct {
	repo     *Repository
	notifier Notifier
	images   ImageRemover
	logg     *logger.Logger
}

// NewService wires catalog dependencies.
func NewService(repo *Repository, notifier Notifier, images ImageRemover, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("catalog notifier required")
	}
	if images == nil {
		return nil, fmt.Errorf("image remover required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, notifier: notifier, images: images, logg: logg}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if input.ShopOwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.Cost.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must be positive")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	product := &models.Product{
		ID:             uuid.New(),
		Name:           input.Name,
		Specifications: input.Specifications,
		Chemicals:      input.Chemicals,
		CropType:       input.CropType,
		Cost:           input.Cost,
		Quantity:       input.Quantity,
		ShopOwnerID:    input.ShopOwnerID,
		ShopName:       input.ShopName,
		ImageFilename:  input.ImageFilename,
	}
	if _, err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}

	// The listing is committed; a failed announcement must not undo it.
	if err := s.notifier.ProductListed(ctx, product); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "product_id", product.ID.String()), "announce product listing", err)
	}

	return FromModel(product), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return FromModels(products), nil
}

func (s *service) ListShopProducts(ctx context.Context, shopOwnerID uuid.UUID) ([]ProductDTO, error) {
	if shopOwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	products, err := s.repo.ListByShopOwner(ctx, shopOwnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop products")
	}
	return FromModels(products), nil
}

func (s *service) SearchProducts(ctx context.Context, query string) ([]ProductDTO, error) {
	if query == "" {
		return s.ListProducts(ctx)
	}
	products, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return FromModels(products), nil
}

func (s *service) UpdateProduct(ctx context.Context, input UpdateProductInput) (*ProductDTO, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.ShopOwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	product, err := s.repo.FindByID(ctx, input.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.ShopOwnerID != input.ShopOwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
		}
		product.Name = *input.Name
	}
	if input.Specifications != nil {
		product.Specifications = *input.Specifications
	}
	if input.Chemicals != nil {
		product.Chemicals = *input.Chemicals
	}
	if input.CropType != nil {
		product.CropType = *input.CropType
	}
	if input.Cost != nil {
		if !input.Cost.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must be positive")
		}
		product.Cost = *input.Cost
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		product.Quantity = *input.Quantity
	}
	var replacedImage string
	if input.ImageFilename != nil {
		if product.ImageFilename != nil && *product.ImageFilename != *input.ImageFilename {
			replacedImage = *product.ImageFilename
		}
		product.ImageFilename = input.ImageFilename
	}

	if _, err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	// The listing no longer references the old image, so cleanup is best effort.
	if replacedImage != "" {
		if err := s.images.Remove(ctx, replacedImage); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "filename", replacedImage), "remove replaced product image", err)
		}
	}
	return FromModel(product), nil
}

func (s *service) DeleteProduct(ctx context.Context, shopOwnerID, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if shopOwnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.ShopOwnerID != shopOwnerID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	if product.ImageFilename != nil {
		if err := s.images.Remove(ctx, *product.ImageFilename); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "filename", *product.ImageFilename), "remove deleted product image", err)
		}
	}
	return nil
}
