package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/api/middleware"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
)

// The view types decouple the wire format from the gorm models. Balances and
// amounts travel as fixed two-decimal strings.

type userView struct {
	ID        uuid.UUID     `json:"id"`
	Login     string        `json:"login"`
	Role      string        `json:"role"`
	Balance   string        `json:"balance"`
	CreatedAt time.Time     `json:"createdAt"`
	Projects  []projectView `json:"projects,omitempty"`
}

type projectView struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl"`
	Income      string     `json:"income"`
	CreatedAt   time.Time  `json:"createdAt"`
	Members     []userView `json:"members,omitempty"`
}

type taskView struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	AssigneeID  uuid.UUID  `json:"assigneeId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"dueDate"`
	Status      string     `json:"status"`
	DoneAt      *time.Time `json:"doneAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type orderView struct {
	ID        uuid.UUID  `json:"id"`
	Client    string     `json:"client"`
	DueDate   time.Time  `json:"dueDate"`
	Amount    string     `json:"amount"`
	Todo      string     `json:"todo"`
	Status    string     `json:"status"`
	DoneAt    *time.Time `json:"doneAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ideaView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

type notificationView struct {
	ID        uuid.UUID      `json:"id"`
	Kind      string         `json:"kind"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	ProjectID *uuid.UUID     `json:"projectId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"readAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toUserView(u *models.User) userView {
	view := userView{
		ID:        u.ID,
		Login:     u.Login,
		Role:      string(u.Role),
		Balance:   u.Balance.StringFixed(2),
		CreatedAt: u.CreatedAt,
	}
	for i := range u.Projects {
		view.Projects = append(view.Projects, toProjectView(&u.Projects[i]))
	}
	return view
}

func toUserViews(users []models.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, toUserView(&users[i]))
	}
	return views
}

func toProjectView(p *models.Project) projectView {
	view := projectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Income:      p.Income.StringFixed(2),
		CreatedAt:   p.CreatedAt,
	}
	for i := range p.Members {
		member := p.Members[i]
		view.Members = append(view.Members, userView{
			ID:        member.ID,
			Login:     member.Login,
			Role:      string(member.Role),
			Balance:   member.Balance.StringFixed(2),
			CreatedAt: member.CreatedAt,
		})
	}
	return view
}

func toProjectViews(projects []models.Project) []projectView {
	views := make([]projectView, 0, len(projects))
	for i := range projects {
		views = append(views, toProjectView(&projects[i]))
	}
	return views
}

func toTaskView(t *models.Task) taskView {
	return taskView{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		DoneAt:      t.DoneAt,
		CreatedAt:   t.CreatedAt,
	}
}

func toOrderView(o *models.Order) orderView {
	return orderView{
		ID:        o.ID,
		Client:    o.Client,
		DueDate:   o.DueDate,
		Amount:    o.Amount.StringFixed(2),
		Todo:      o.Todo,
		Status:    string(o.Status),
		DoneAt:    o.DoneAt,
		CreatedAt: o.CreatedAt,
	}
}

func toIdeaView(i *models.Idea) ideaView {
	return ideaView{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		CreatedAt:   i.CreatedAt,
	}
}

func toNotificationView(n *models.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		ProjectID: n.ProjectID,
		Data:      n.Data,
		Read:      n.Read(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// actorID resolves the authenticated user from the request context.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
