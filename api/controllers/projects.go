package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velorie/teamhub-backend/api/middleware"
	"github.com/velorie/teamhub-backend/api/responses"
	"github.com/velorie/teamhub-backend/api/validators"
	"github.com/velorie/teamhub-backend/internal/projects"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

type assignMemberRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// Zero is a valid income, so the field carries no required tag.
type setIncomeRequest struct {
	Income decimal.Decimal `json:"income"`
}

type broadcastRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// CreateProject registers a new project.
func CreateProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		var body createProjectRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Create(r.Context(), projects.CreateInput{
			Name:        body.Name,
			Description: body.Description,
			ImageURL:    body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toProjectView(project))
	}
}

// ListProjects scopes the listing by role: the admin sees everything,
// employees see only projects they belong to.
func ListProjects(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list []projectView
		if middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin) {
			all, err := svc.ListForAdmin(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			list = toProjectViews(all)
		} else {
			mine, err := svc.ListForMember(r.Context(), uid)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			list = toProjectViews(mine)
		}
		responses.WriteSuccess(w, list)
	}
}

// AssignProjectMember grants an employee access to the project.
func AssignProjectMember(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}

		var body assignMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Assign(r.Context(), projectID, body.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"assigned": true})
	}
}

// SetProjectIncome records the project's earned income.
func SetProjectIncome(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}

		var body setIncomeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.SetIncome(r.Context(), projectID, body.Income)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProjectView(project))
	}
}

// BroadcastProjectPush sends an announcement to every member of the project.
func BroadcastProjectPush(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}

		var body broadcastRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Broadcast(r.Context(), projectID, body.Text); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"sent": true})
	}
}
