package controllers

import (
	"net/http"

	"github.com/velorie/teamhub-backend/api/responses"
	"github.com/velorie/teamhub-backend/internal/users"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

// MyProfile returns the authenticated user together with their projects.
func MyProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetProfile(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toUserView(user))
	}
}
