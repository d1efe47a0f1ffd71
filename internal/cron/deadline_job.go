package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	"github.com/velorie/teamhub-backend/pkg/enums"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type openOrderReader interface {
	FindOpen(ctx context.Context) ([]models.Order, error)
	LatchDeadlineFlag(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, column string) (bool, error)
}

type adminFinder interface {
	FindAdmin(ctx context.Context) (*models.User, error)
}

type deadlineNotifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg notifications.Message) error
}

// deadlineThreshold is one alert window before an order's due date. An order
// whose remaining time falls inside (after, within] and whose flag column is
// still false gets exactly one alert.
type deadlineThreshold struct {
	label   string
	column  string
	within  time.Duration
	after   time.Duration
	latched func(models.Order) bool
}

var deadlineThresholds = []deadlineThreshold{
	{
		label:   "7 days",
		column:  "notified_7d",
		within:  7 * 24 * time.Hour,
		after:   6 * 24 * time.Hour,
		latched: func(o models.Order) bool { return o.Notified7d },
	},
	{
		label:   "3 days",
		column:  "notified_3d",
		within:  3 * 24 * time.Hour,
		after:   2 * 24 * time.Hour,
		latched: func(o models.Order) bool { return o.Notified3d },
	},
	{
		label:   "24 hours",
		column:  "notified_24h",
		within:  24 * time.Hour,
		after:   23 * time.Hour,
		latched: func(o models.Order) bool { return o.Notified24h },
	},
}

// DeadlineJobParams configure the order deadline scanner.
type DeadlineJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Orders   openOrderReader
	Users    adminFinder
	Notifier deadlineNotifier
}

// NewDeadlineJob builds the job that alerts the admin about orders
// approaching their due date.
func NewDeadlineJob(params DeadlineJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("admin finder required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &deadlineJob{
		logg:     params.Logger,
		db:       params.DB,
		orders:   params.Orders,
		users:    params.Users,
		notifier: params.Notifier,
		now:      time.Now,
	}, nil
}

type deadlineJob struct {
	logg     *logger.Logger
	db       txRunner
	orders   openOrderReader
	users    adminFinder
	notifier deadlineNotifier
	now      func() time.Time
}

func (j *deadlineJob) Name() string { return "order-deadlines" }

func (j *deadlineJob) Run(ctx context.Context) error {
	admin, err := j.users.FindAdmin(ctx)
	if err != nil {
		return fmt.Errorf("resolve admin recipient: %w", err)
	}

	orders, err := j.orders.FindOpen(ctx)
	if err != nil {
		return fmt.Errorf("query open orders: %w", err)
	}

	now := j.now().UTC()
	alerted := 0
	var errs []error
	for _, order := range orders {
		for _, threshold := range deadlineThresholds {
			fired, err := j.fireThreshold(ctx, admin.ID, order, threshold, now)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if fired {
				alerted++
			}
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"open":    len(orders),
		"alerted": alerted,
	}), "deadline scan complete")
	return multierr.Combine(errs...)
}

func (j *deadlineJob) fireThreshold(ctx context.Context, adminID uuid.UUID, order models.Order, threshold deadlineThreshold, now time.Time) (bool, error) {
	if threshold.latched(order) {
		return false, nil
	}
	remaining := order.DueDate.Sub(now)
	if remaining > threshold.within || remaining <= threshold.after {
		return false, nil
	}

	// The UPDATE re-checks status and flag so a concurrent completion or a
	// scan racing on stale rows cannot double-fire.
	latched := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := j.orders.LatchDeadlineFlag(ctx, tx, order.ID, threshold.column)
		if err != nil {
			return err
		}
		latched = ok
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("latch %s flag for order %s: %w", threshold.column, order.ID, err)
	}
	if !latched {
		return false, nil
	}

	// The flag commits before the notify call. A crash here means one missed
	// alert, never a duplicate.
	msg := notifications.Message{
		Kind:  enums.NotificationOrderDeadline,
		Title: "Orders",
		Body:  fmt.Sprintf("Order for %s is due in %s (%s)", order.Client, threshold.label, order.DueDate.Format("2006-01-02 15:04")),
		Data: map[string]any{
			"orderId":   order.ID.String(),
			"threshold": threshold.column,
			"url":       "/#orders",
		},
	}
	if err := j.notifier.Notify(ctx, adminID, msg); err != nil {
		return false, fmt.Errorf("notify admin about order %s: %w", order.ID, err)
	}
	return true, nil
}
