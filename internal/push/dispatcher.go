package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/internal/subscriptions"
	"github.com/velorie/teamhub-backend/pkg/config"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type sendFunc func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// Dispatcher fans one payload out to every registered endpoint of a user.
// Delivery is best effort: transport failures are logged and dropped, and
// endpoints the push service reports as gone are pruned from the registry.
type Dispatcher struct {
	logg *logger.Logger
	repo subscriptions.Repository
	cfg  config.PushConfig
	send sendFunc
}

// DispatcherParams carries the dispatcher dependencies.
type DispatcherParams struct {
	Logger     *logger.Logger
	Repository subscriptions.Repository
	Config     config.PushConfig
}

// NewDispatcher validates params and wires the webpush client.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	if params.Config.VAPIDPublicKey == "" || params.Config.VAPIDPrivateKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "VAPID key pair required")
	}

	client := &http.Client{Timeout: params.Config.Timeout}
	send := func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		opts.HTTPClient = client
		return webpush.SendNotificationWithContext(ctx, message, sub, opts)
	}

	return &Dispatcher{
		logg: params.Logger,
		repo: params.Repository,
		cfg:  params.Config,
		send: send,
	}, nil
}

// Deliver pushes the payload to all endpoints of the user and waits for every
// attempt to finish. It never fails the caller: a notification already sits in
// the ledger by the time delivery starts, and a dead endpoint must not undo it.
func (d *Dispatcher) Deliver(ctx context.Context, userID uuid.UUID, payload Payload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		d.logg.Error(ctx, "failed to encode push payload", err)
		return
	}

	subs, err := d.repo.ListByUser(ctx, userID)
	if err != nil {
		d.logg.Error(d.logg.WithUserID(ctx, userID.String()), "failed to load push subscriptions", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub subscriptionRecord) {
			defer wg.Done()
			d.attempt(ctx, sub, raw)
		}(subscriptionRecord{UserID: sub.UserID, Endpoint: sub.Endpoint, P256dh: sub.P256dh, Auth: sub.Auth})
	}
	wg.Wait()
}

type subscriptionRecord struct {
	UserID   uuid.UUID
	Endpoint string
	P256dh   string
	Auth     string
}

func (d *Dispatcher) attempt(ctx context.Context, sub subscriptionRecord, raw []byte) {
	ctx = d.logg.WithFields(ctx, map[string]any{
		"user_id":  sub.UserID.String(),
		"endpoint": sub.Endpoint,
	})

	resp, err := d.send(ctx, raw, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      d.cfg.Subscriber,
		VAPIDPublicKey:  d.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: d.cfg.VAPIDPrivateKey,
		TTL:             int(d.cfg.TTL / time.Second),
	})
	if err != nil {
		d.logg.Warn(ctx, "push delivery failed")
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Endpoint is permanently dead per the push service, drop it.
		if err := d.repo.Remove(ctx, sub.UserID, sub.Endpoint); err != nil {
			d.logg.Error(ctx, "failed to prune dead subscription", err)
			return
		}
		d.logg.Info(ctx, "pruned dead push subscription")
	case resp.StatusCode >= http.StatusBadRequest:
		d.logg.Warn(d.logg.WithField(ctx, "status", resp.StatusCode), "push service rejected delivery")
	}
}
