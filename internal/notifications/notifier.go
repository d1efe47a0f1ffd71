package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/velorie/teamhub-backend/internal/push"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
	"github.com/velorie/teamhub-backend/pkg/types"
)

// Message is one notification to be recorded and pushed.
type Message struct {
	Kind      enums.NotificationKind
	Title     string
	Body      string
	ProjectID *uuid.UUID
	Data      map[string]any
}

// Dispatcher fans a payload out to a user's registered endpoints.
type Dispatcher interface {
	Deliver(ctx context.Context, userID uuid.UUID, payload push.Payload)
}

// MemberLister resolves the recipients of a project-wide notification.
type MemberLister interface {
	ListMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// Notifier appends to the ledger and then attempts push delivery. The ledger
// write is the source of truth: if it fails nothing is pushed, and once it
// succeeds no delivery outcome can fail the operation.
type Notifier struct {
	logg       *logger.Logger
	repo       Repository
	dispatcher Dispatcher
	members    MemberLister
	now        func() time.Time
}

// NotifierParams carries the notifier dependencies.
type NotifierParams struct {
	Logger     *logger.Logger
	Repository Repository
	Dispatcher Dispatcher
	Members    MemberLister
}

func NewNotifier(params NotifierParams) (*Notifier, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "push dispatcher required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "project member lister required")
	}
	return &Notifier{
		logg:       params.Logger,
		repo:       params.Repository,
		dispatcher: params.Dispatcher,
		members:    params.Members,
		now:        time.Now,
	}, nil
}

// Notify records the message for the user and pushes it to their endpoints.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, msg Message) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if !msg.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown notification kind")
	}
	if msg.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	row := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: msg.ProjectID,
		Kind:      msg.Kind,
		Title:     msg.Title,
		Body:      msg.Body,
		Data:      types.JSONMap(msg.Data),
		CreatedAt: n.now().UTC(),
	}
	if err := n.repo.Create(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append notification")
	}

	data := map[string]any{}
	for k, v := range msg.Data {
		data[k] = v
	}
	if msg.ProjectID != nil {
		data["projectId"] = msg.ProjectID.String()
	}
	data["notificationId"] = row.ID.String()

	n.dispatcher.Deliver(ctx, userID, push.NewPayload(msg.Title, msg.Body, data))
	return nil
}

// NotifyProject notifies every member of the project. A failed ledger write
// for one member does not stop the rest; the combined error reports all of
// them.
func (n *Notifier) NotifyProject(ctx context.Context, projectID uuid.UUID, msg Message) error {
	if projectID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}

	memberIDs, err := n.members.ListMemberIDs(ctx, projectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list project members")
	}

	if msg.ProjectID == nil {
		pid := projectID
		msg.ProjectID = &pid
	}

	var errs error
	for _, memberID := range memberIDs {
		if err := n.Notify(ctx, memberID, msg); err != nil {
			n.logg.Error(n.logg.WithUserID(ctx, memberID.String()), "failed to notify project member", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
