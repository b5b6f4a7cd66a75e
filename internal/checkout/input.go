package checkout

import (
	"strings"

	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
)

// ShippingInput is the delivery contact captured by the checkout form.
type ShippingInput struct {
	FirstName  string `json:"first_name" validate:"required,max=50"`
	LastName   string `json:"last_name" validate:"required,max=50"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	Address    string `json:"address" validate:"required,max=250"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
}

func (in ShippingInput) normalized() ShippingInput {
	return ShippingInput{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
	}
}

func (in ShippingInput) validate() error {
	required := map[string]string{
		"first_name":  in.FirstName,
		"last_name":   in.LastName,
		"email":       in.Email,
		"address":     in.Address,
		"city":        in.City,
		"postal_code": in.PostalCode,
	}
	details := map[string]string{}
	for field, value := range required {
		if value == "" {
			details[field] = "is required"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
