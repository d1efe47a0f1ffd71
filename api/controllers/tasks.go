package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/api/middleware"
	"github.com/velorie/teamhub-backend/api/responses"
	"github.com/velorie/teamhub-backend/api/validators"
	"github.com/velorie/teamhub-backend/internal/tasks"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type createTaskRequest struct {
	AssigneeID  uuid.UUID `json:"assigneeId" validate:"required"`
	Title       string    `json:"title" validate:"required,min=1,max=256"`
	Description string    `json:"description" validate:"max=2000"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
}

// CreateTask assigns a new task inside the project to one employee.
func CreateTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tasks service unavailable"))
			return
		}

		projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}

		var body createTaskRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.Create(r.Context(), tasks.CreateInput{
			ProjectID:   projectID,
			AssigneeID:  body.AssigneeID,
			Title:       body.Title,
			Description: body.Description,
			DueDate:     body.DueDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toTaskView(task))
	}
}

// ListProjectTasks returns project tasks scoped by the caller's role:
// the admin sees the whole board, employees only their own assignments.
func ListProjectTasks(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tasks service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}

		role := enums.UserRole(middleware.RoleFromContext(r.Context()))
		list, err := svc.ListForUser(r.Context(), projectID, uid, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]taskView, 0, len(list))
		for i := range list {
			views = append(views, toTaskView(&list[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// CompleteTask marks the task done on behalf of the caller.
func CompleteTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tasks service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid task id"))
			return
		}

		role := enums.UserRole(middleware.RoleFromContext(r.Context()))
		if err := svc.Complete(r.Context(), taskID, uid, role); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"done": true})
	}
}
