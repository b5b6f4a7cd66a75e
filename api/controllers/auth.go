package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/phoneshop-backend/api/responses"
	"github.com/angelmondragon/phoneshop-backend/api/validators"
	"github.com/angelmondragon/phoneshop-backend/internal/auth"
	"github.com/angelmondragon/phoneshop-backend/internal/cartintent"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
)

type intentReplayer interface {
	Replay(ctx context.Context, state *visitor.State) (*cartintent.ReplayResult, error)
}

type authResponse struct {
	*auth.LoginResponse
	CartIntent *cartintent.ReplayResult `json:"cart_intent,omitempty"`
}

// AuthLogin issues tokens, binds the visitor session to the user and replays
// any add-to-cart parked before login.
func AuthLogin(svc auth.Service, relay intentReplayer, store visitor.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || relay == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		replay, err := attachSession(r, result, relay, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-PS-Token", result.AccessToken)
		responses.WriteSuccess(w, authResponse{LoginResponse: result, CartIntent: replay})
	}
}

// AuthRegister creates a customer account, signs it in and replays any
// parked add-to-cart.
func AuthRegister(reg auth.RegisterService, svc auth.Service, relay intentReplayer, store visitor.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil || relay == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := reg.Register(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		replay, err := attachSession(r, result, relay, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-PS-Token", result.AccessToken)
		responses.WriteSuccessStatus(w, http.StatusCreated, authResponse{LoginResponse: result, CartIntent: replay})
	}
}

// DevStaffRegister creates a staff account. Mounted only in dev.
func DevStaffRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := reg.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// attachSession binds the visitor session to the signed-in user. A session
// still bound to another account is reset first. Customers get their parked
// intent replayed; staff cannot shop, so theirs is left.
func attachSession(r *http.Request, result *auth.LoginResponse, relay intentReplayer, store visitor.Store) (*cartintent.ReplayResult, error) {
	state, err := visitorState(r)
	if err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "login returned no user")
	}

	if state.BoundToOther(result.User.ID) {
		state.Reset()
	}
	state.BindUser(result.User.ID)
	if err := store.Save(r.Context(), state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind session")
	}
	if result.User.Role != enums.UserRoleCustomer {
		return nil, nil
	}

	replay, err := relay.Replay(r.Context(), state)
	if err != nil {
		return nil, err
	}
	return replay, nil
}
