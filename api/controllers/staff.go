package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/phoneshop-backend/api/responses"
	"github.com/angelmondragon/phoneshop-backend/api/validators"
	"github.com/angelmondragon/phoneshop-backend/internal/orders"
	product "github.com/angelmondragon/phoneshop-backend/internal/products"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
)

type createProductRequest struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Slug           string          `json:"slug" validate:"omitempty,max=255"`
	Manufacturer   string          `json:"manufacturer" validate:"omitempty,max=100"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock" validate:"min=0"`
	Available      *bool           `json:"available,omitempty"`
	Description    string          `json:"description"`
	Specifications string          `json:"specifications"`
	ImageURL       *string         `json:"image_url,omitempty" validate:"omitempty,url"`
}

type updateProductRequest struct {
	Name           *string          `json:"name,omitempty" validate:"omitempty,max=255"`
	Slug           *string          `json:"slug,omitempty" validate:"omitempty,max=255"`
	Manufacturer   *string          `json:"manufacturer,omitempty" validate:"omitempty,max=100"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Stock          *int             `json:"stock,omitempty"`
	Available      *bool            `json:"available,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Specifications *string          `json:"specifications,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty" validate:"omitempty,url"`
}

type updateOrderRequest struct {
	Status         *string `json:"status,omitempty"`
	Paid           *bool   `json:"paid,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
}

// StaffProductCreate adds a product to the catalog. New products are for
// sale unless available is explicitly false.
func StaffProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		available := true
		if body.Available != nil {
			available = *body.Available
		}
		dto, err := svc.CreateProduct(r.Context(), product.CreateProductInput{
			Name:           body.Name,
			Slug:           body.Slug,
			Manufacturer:   body.Manufacturer,
			Price:          body.Price,
			Stock:          body.Stock,
			Available:      available,
			Description:    body.Description,
			Specifications: body.Specifications,
			ImageURL:       body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// StaffProductUpdate edits a product. Sending available=false takes it off sale.
func StaffProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(r.Context(), productID, product.UpdateProductInput{
			Name:           body.Name,
			Slug:           body.Slug,
			Manufacturer:   body.Manufacturer,
			Price:          body.Price,
			Stock:          body.Stock,
			Available:      body.Available,
			Description:    body.Description,
			Specifications: body.Specifications,
			ImageURL:       body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// StaffOrderUpdate changes an order's status, paid flag or tracking number.
func StaffOrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.UpdateOrderInput{
			OrderID:        orderID,
			Paid:           body.Paid,
			TrackingNumber: body.TrackingNumber,
		}
		if body.Status != nil {
			status, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(*body.Status)))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
					WithDetails(map[string]string{"status": "must be one of placed, shipped, delivered, cancelled"}))
				return
			}
			input.Status = &status
		}

		order, err := svc.UpdateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
