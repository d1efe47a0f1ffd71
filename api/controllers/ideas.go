package controllers

import (
	"net/http"

	"github.com/velorie/teamhub-backend/api/responses"
	"github.com/velorie/teamhub-backend/api/validators"
	"github.com/velorie/teamhub-backend/internal/ideas"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type createIdeaRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=256"`
	Description string `json:"description" validate:"required,max=2000"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

// CreateIdea stores a note on the ideas board.
func CreateIdea(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		var body createIdeaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		idea, err := svc.Create(r.Context(), ideas.CreateInput{
			Title:       body.Title,
			Description: body.Description,
			ImageURL:    body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toIdeaView(idea))
	}
}

// ListIdeas returns the ideas board, newest first.
func ListIdeas(svc ideas.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ideas service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]ideaView, 0, len(list))
		for i := range list {
			views = append(views, toIdeaView(&list[i]))
		}
		responses.WriteSuccess(w, views)
	}
}
