package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/phoneshop-backend/api/middleware"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
)

func visitorState(r *http.Request) (*visitor.State, error) {
	state := middleware.VisitorFromContext(r.Context())
	if state == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "visitor session unavailable")
	}
	return state, nil
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	id := middleware.UserUUIDFromContext(r.Context())
	if id == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return *id, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).
			WithDetails(map[string]string{name: "must be a valid id"})
	}
	return id, nil
}
