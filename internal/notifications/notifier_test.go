package notifications

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/internal/push"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
	"github.com/velorie/teamhub-backend/pkg/pagination"
)

type fakeLedger struct {
	createFn func(ctx context.Context, n *models.Notification) error
	created  []*models.Notification
}

func (f *fakeLedger) Create(ctx context.Context, n *models.Notification) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, n); err != nil {
			return err
		}
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeLedger) List(context.Context, uuid.UUID, int, *pagination.Cursor) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeLedger) MarkRead(context.Context, uuid.UUID, uuid.UUID, time.Time) (bool, error) {
	return false, nil
}

func (f *fakeLedger) CountUnread(context.Context, uuid.UUID) (int64, error) { return 0, nil }

type fakeDispatcher struct {
	delivered []push.Payload
	users     []uuid.UUID
}

func (f *fakeDispatcher) Deliver(_ context.Context, userID uuid.UUID, payload push.Payload) {
	f.users = append(f.users, userID)
	f.delivered = append(f.delivered, payload)
}

type fakeMembers struct {
	ids []uuid.UUID
	err error
}

func (f *fakeMembers) ListMemberIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return f.ids, f.err
}

func newTestNotifier(t *testing.T, ledger *fakeLedger, dispatcher *fakeDispatcher, members *fakeMembers) *Notifier {
	t.Helper()
	n, err := NewNotifier(NotifierParams{
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repository: ledger,
		Dispatcher: dispatcher,
		Members:    members,
	})
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}
	return n
}

func TestNotifyAppendsThenDelivers(t *testing.T) {
	ledger := &fakeLedger{}
	dispatcher := &fakeDispatcher{}
	n := newTestNotifier(t, ledger, dispatcher, &fakeMembers{})

	userID := uuid.New()
	err := n.Notify(context.Background(), userID, Message{
		Kind:  enums.NotificationMoneyReceived,
		Title: "Wallet",
		Body:  "You received 150.00",
		Data:  map[string]any{"url": "/#wallet"},
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(ledger.created) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(ledger.created))
	}
	row := ledger.created[0]
	if row.UserID != userID || row.Kind != enums.NotificationMoneyReceived {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.Read() {
		t.Fatal("new entries must start unread")
	}

	if len(dispatcher.delivered) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(dispatcher.delivered))
	}
	payload := dispatcher.delivered[0]
	if payload.Title != "Wallet" || payload.Data["url"] != "/#wallet" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Data["notificationId"] != row.ID.String() {
		t.Fatal("payload must reference the ledger entry")
	}
}

func TestNotifyLedgerFailureSkipsDelivery(t *testing.T) {
	ledger := &fakeLedger{
		createFn: func(context.Context, *models.Notification) error {
			return errors.New("insert failed")
		},
	}
	dispatcher := &fakeDispatcher{}
	n := newTestNotifier(t, ledger, dispatcher, &fakeMembers{})

	err := n.Notify(context.Background(), uuid.New(), Message{
		Kind:  enums.NotificationAdminMessage,
		Title: "Announcement",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(dispatcher.delivered) != 0 {
		t.Fatal("delivery must not run when the ledger write fails")
	}
}

func TestNotifyValidation(t *testing.T) {
	n := newTestNotifier(t, &fakeLedger{}, &fakeDispatcher{}, &fakeMembers{})

	cases := []struct {
		name   string
		userID uuid.UUID
		msg    Message
	}{
		{"nil recipient", uuid.Nil, Message{Kind: enums.NotificationAdminMessage, Title: "x"}},
		{"bad kind", uuid.New(), Message{Kind: "mystery", Title: "x"}},
		{"empty title", uuid.New(), Message{Kind: enums.NotificationAdminMessage}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := n.Notify(context.Background(), tc.userID, tc.msg)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNotifyProjectFansOutToMembers(t *testing.T) {
	memberA, memberB := uuid.New(), uuid.New()
	ledger := &fakeLedger{}
	dispatcher := &fakeDispatcher{}
	n := newTestNotifier(t, ledger, dispatcher, &fakeMembers{ids: []uuid.UUID{memberA, memberB}})

	projectID := uuid.New()
	err := n.NotifyProject(context.Background(), projectID, Message{
		Kind:  enums.NotificationAdminMessage,
		Title: "Announcement",
		Body:  "standup moved to 10:00",
	})
	if err != nil {
		t.Fatalf("NotifyProject: %v", err)
	}

	if len(ledger.created) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(ledger.created))
	}
	for _, row := range ledger.created {
		if row.ProjectID == nil || *row.ProjectID != projectID {
			t.Fatalf("expected project id stamped on row, got %+v", row)
		}
	}
	if len(dispatcher.users) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(dispatcher.users))
	}
}

func TestNotifyProjectContinuesPastFailures(t *testing.T) {
	memberA, memberB := uuid.New(), uuid.New()
	ledger := &fakeLedger{
		createFn: func(_ context.Context, row *models.Notification) error {
			if row.UserID == memberA {
				return errors.New("insert failed")
			}
			return nil
		},
	}
	dispatcher := &fakeDispatcher{}
	n := newTestNotifier(t, ledger, dispatcher, &fakeMembers{ids: []uuid.UUID{memberA, memberB}})

	err := n.NotifyProject(context.Background(), uuid.New(), Message{
		Kind:  enums.NotificationAdminMessage,
		Title: "Announcement",
	})
	if err == nil {
		t.Fatal("expected combined error")
	}
	if len(ledger.created) != 1 || ledger.created[0].UserID != memberB {
		t.Fatalf("expected the second member to still be notified, got %+v", ledger.created)
	}
}
