package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pestilink/pestilink-backend/pkg/db/models"
)

// ProductDTO is the transport shape for catalog reads.
type ProductDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Specifications string          `json:"specifications"`
	Chemicals      string          `json:"chemicals"`
	CropType       string          `json:"crop_type"`
	Cost           decimal.Decimal `json:"cost"`
	Quantity       int             `json:"quantity"`
	ShopOwnerID    uuid.UUID       `json:"shop_owner_id"`
	ShopName       string          `json:"shop_name"`
	ImageFilename  *string         `json:"image_filename,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateProductInput captures the fields a shop owner submits for a new listing.
type CreateProductInput struct {
	Name           string
	Specifications string
	Chemicals      string
	CropType       string
	Cost           decimal.Decimal
	Quantity       int
	ShopOwnerID    uuid.UUID
	ShopName       string
	ImageFilename  *string
}

// UpdateProductInput carries the mutable listing fields. Nil pointers leave
// the stored value untouched.
type UpdateProductInput struct {
	ProductID      uuid.UUID
	ShopOwnerID    uuid.UUID
	Name           *string
	Specifications *string
	Chemicals      *string
	CropType       *string
	Cost           *decimal.Decimal
	Quantity       *int
	ImageFilename  *string
}

// FromModel maps the persistence model to the transport shape.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Specifications: p.Specifications,
		Chemicals:      p.Chemicals,
		CropType:       p.CropType,
		Cost:           p.Cost,
		Quantity:       p.Quantity,
		ShopOwnerID:    p.ShopOwnerID,
		ShopName:       p.ShopName,
		ImageFilename:  p.ImageFilename,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// FromModels maps a slice of products to transport shapes.
func FromModels(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *FromModel(&products[i]))
	}
	return out
}
