package controllers

import (
	"net/http"

	"github.com/velorie/teamhub-backend/api/responses"
	"github.com/velorie/teamhub-backend/api/validators"
	"github.com/velorie/teamhub-backend/internal/users"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type createEmployeeRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// ListEmployees returns every employee account with their projects.
func ListEmployees(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		employees, err := svc.ListEmployees(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toUserViews(employees))
	}
}

// CreateEmployee provisions a new account and greets it with a notification.
func CreateEmployee(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.CreateEmployee(r.Context(), body.Login, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toUserView(user))
	}
}
