package controllers

import (
	"net/http"

	"github.com/velorie/teamhub-backend/api/responses"
	"github.com/velorie/teamhub-backend/internal/users"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type statsResponse struct {
	TeamCount    int64  `json:"teamCount"`
	AdminBalance string `json:"adminBalance"`
}

// DashboardStats summarizes the team for the admin dashboard.
func DashboardStats(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		stats, err := svc.DashboardStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statsResponse{
			TeamCount:    stats.TeamCount,
			AdminBalance: stats.AdminBalance.StringFixed(2),
		})
	}
}
