package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/phoneshop-backend/api/middleware"
	"github.com/angelmondragon/phoneshop-backend/api/responses"
	"github.com/angelmondragon/phoneshop-backend/api/validators"
	"github.com/angelmondragon/phoneshop-backend/internal/cart"
	"github.com/angelmondragon/phoneshop-backend/internal/cartintent"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
)

type intentRelay interface {
	Park(ctx context.Context, state *visitor.State, intent visitor.PendingIntent) error
	Replay(ctx context.Context, state *visitor.State) (*cartintent.ReplayResult, error)
}

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity,omitempty"`
	Override  bool   `json:"override"`
}

type addToCartResponse struct {
	*cart.AddResult
	Message string       `json:"notice"`
	Cart    cart.CartDTO `json:"cart"`
}

// CartView returns the session cart and drains its pending notices.
func CartView(svc cart.Service, store visitor.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		state, err := visitorState(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.Load(r.Context(), state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notices := state.DrainFlashes()
		if len(notices) > 0 {
			if err := store.Save(r.Context(), state); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session"))
				return
			}
		}
		responses.WriteSuccess(w, cart.NewCartDTO(c, notices))
	}
}

// CartAdd adds a product for signed-in shoppers. Anonymous shoppers get the
// request parked on their session and a 303 pointing at the login endpoint.
func CartAdd(svc cart.Service, relay intentRelay, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || relay == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		state, err := visitorState(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := decodeAddToCart(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if middleware.UserUUIDFromContext(r.Context()) == nil {
			if err := relay.Park(r.Context(), state, intent); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			location := cartintent.RedirectLocation()
			w.Header().Set("Location", location)
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeAuthRequired, "Please log in to add items to your cart.").
					WithDetails(map[string]string{"location": location}))
			return
		}

		result, err := svc.Add(r.Context(), state, intent.ProductID, intent.Quantity, intent.Override)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Load(r.Context(), state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addToCartResponse{
			AddResult: result,
			Message:   result.Notice(),
			Cart:      cart.NewCartDTO(c, nil),
		})
	}
}

// CartRemove drops a product from the cart and returns the updated cart.
func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		state, err := visitorState(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), state, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Load(r.Context(), state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.NewCartDTO(c, nil))
	}
}

// CartCompletePending replays the add-to-cart parked before login.
func CartCompletePending(relay intentRelay, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if relay == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart relay unavailable"))
			return
		}
		state, err := visitorState(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == nil || state.BoundToOther(*userID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "session belongs to another account"))
			return
		}

		result, err := relay.Replay(r.Context(), state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func decodeAddToCart(r *http.Request) (visitor.PendingIntent, error) {
	var body addToCartRequest
	if validators.IsFormRequest(r) {
		values, err := validators.ParseFormValues(r)
		if err != nil {
			return visitor.PendingIntent{}, err
		}
		qty, err := validators.FormInt(values, "quantity", 1)
		if err != nil {
			return visitor.PendingIntent{}, err
		}
		override, err := validators.FormBool(values, "override")
		if err != nil {
			return visitor.PendingIntent{}, err
		}
		body = addToCartRequest{ProductID: values.Get("product_id"), Quantity: &qty, Override: override}
		if err := validators.ValidateStruct(&body); err != nil {
			return visitor.PendingIntent{}, err
		}
	} else if err := validators.DecodeJSONBody(r, &body); err != nil {
		return visitor.PendingIntent{}, err
	}

	productID, err := uuid.Parse(strings.TrimSpace(body.ProductID))
	if err != nil {
		return visitor.PendingIntent{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"product_id": "must be a valid id"})
	}
	quantity := 1
	if body.Quantity != nil {
		quantity = *body.Quantity
	}
	if quantity < 1 {
		return visitor.PendingIntent{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}
	return visitor.PendingIntent{ProductID: productID, Quantity: quantity, Override: body.Override}, nil
}
