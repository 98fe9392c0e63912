package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pestilink/pestilink-backend/api/middleware"
	"github.com/pestilink/pestilink-backend/api/responses"
	"github.com/pestilink/pestilink-backend/api/validators"
	"github.com/pestilink/pestilink-backend/internal/catalog"
	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
	"github.com/pestilink/pestilink-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const maxSearchQueryLen = 120

type createProductRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=200"`
	Specifications string          `json:"specifications" validate:"max=2000"`
	Chemicals      string          `json:"chemicals" validate:"max=2000"`
	CropType       string          `json:"crop_type" validate:"max=100"`
	Cost           decimal.Decimal `json:"cost"`
	Quantity       int             `json:"quantity" validate:"min=0"`
	ImageFilename  *string         `json:"image_filename,omitempty"`
}

type updateProductRequest struct {
	Name           *string          `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Specifications *string          `json:"specifications,omitempty" validate:"omitempty,max=2000"`
	Chemicals      *string          `json:"chemicals,omitempty" validate:"omitempty,max=2000"`
	CropType       *string          `json:"crop_type,omitempty" validate:"omitempty,max=100"`
	Cost           *decimal.Decimal `json:"cost,omitempty"`
	Quantity       *int             `json:"quantity,omitempty" validate:"omitempty,min=0"`
	ImageFilename  *string          `json:"image_filename,omitempty"`
}

// actorFromContext resolves the authenticated user id seeded by the auth middleware.
func actorFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// CreateProduct handles listing creation for shop owners.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ownerID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			Name:           body.Name,
			Specifications: body.Specifications,
			Chemicals:      body.Chemicals,
			CropType:       body.CropType,
			Cost:           body.Cost,
			Quantity:       body.Quantity,
			ShopOwnerID:    ownerID,
			ShopName:       middleware.UsernameFromContext(r.Context()),
			ImageFilename:  body.ImageFilename,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ListProducts returns the full catalog, or a filtered view when a search
// term is present.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query := validators.ParseQueryString(r, "q", maxSearchQueryLen)
		products, err := svc.SearchProducts(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// ListMyProducts returns the authenticated shop owner's listings.
func ListMyProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ownerID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListShopProducts(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// GetProduct fetches a single listing by id.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// UpdateProduct applies a partial update to one of the owner's listings.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ownerID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), catalog.UpdateProductInput{
			ProductID:      productID,
			ShopOwnerID:    ownerID,
			Name:           body.Name,
			Specifications: body.Specifications,
			Chemicals:      body.Chemicals,
			CropType:       body.CropType,
			Cost:           body.Cost,
			Quantity:       body.Quantity,
			ImageFilename:  body.ImageFilename,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes one of the owner's listings.
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ownerID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.DeleteProduct(r.Context(), ownerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
