package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/velorie/teamhub-backend/api/middleware"
	"github.com/velorie/teamhub-backend/internal/subscriptions"
	"github.com/velorie/teamhub-backend/pkg/config"
	"github.com/velorie/teamhub-backend/pkg/db/models"
)

type testSubscriptionsService struct {
	registerFn func(ctx context.Context, userID uuid.UUID, endpoint string, keys subscriptions.Keys) error
	removeFn   func(ctx context.Context, userID uuid.UUID, endpoint string) error
}

func (s *testSubscriptionsService) Register(ctx context.Context, userID uuid.UUID, endpoint string, keys subscriptions.Keys) error {
	if s.registerFn != nil {
		return s.registerFn(ctx, userID, endpoint, keys)
	}
	return nil
}

func (s *testSubscriptionsService) List(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	return nil, nil
}

func (s *testSubscriptionsService) Remove(ctx context.Context, userID uuid.UUID, endpoint string) error {
	if s.removeFn != nil {
		return s.removeFn(ctx, userID, endpoint)
	}
	return nil
}

func TestPushVAPIDKey(t *testing.T) {
	cfg := config.PushConfig{VAPIDPublicKey: "public-key"}
	req := httptest.NewRequest(http.MethodGet, "/api/push/vapid-public-key", nil)
	resp := httptest.NewRecorder()
	PushVAPIDKey(cfg)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["publicKey"] != "public-key" {
		t.Fatalf("unexpected key %q", envelope.Data["publicKey"])
	}
}

func TestPushSubscribeRegistersEndpoint(t *testing.T) {
	userID := uuid.New()
	var captured struct {
		endpoint string
		keys     subscriptions.Keys
	}
	svc := &testSubscriptionsService{
		registerFn: func(ctx context.Context, uid uuid.UUID, endpoint string, keys subscriptions.Keys) error {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			captured.endpoint = endpoint
			captured.keys = keys
			return nil
		},
	}

	body := `{"endpoint":"https://push.example.com/send/abc","keys":{"p256dh":"p-key","auth":"a-key"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/push/subscribe", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	PushSubscribe(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.endpoint != "https://push.example.com/send/abc" {
		t.Fatalf("unexpected endpoint %q", captured.endpoint)
	}
	if captured.keys.P256dh != "p-key" || captured.keys.Auth != "a-key" {
		t.Fatalf("unexpected keys %+v", captured.keys)
	}
}

func TestPushSubscribeValidatesBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing endpoint", `{"keys":{"p256dh":"p","auth":"a"}}`},
		{"bad endpoint", `{"endpoint":"not-a-url","keys":{"p256dh":"p","auth":"a"}}`},
		{"missing keys", `{"endpoint":"https://push.example.com/send/abc","keys":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/push/subscribe", strings.NewReader(tc.body))
			req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
			resp := httptest.NewRecorder()
			PushSubscribe(&testSubscriptionsService{}, testControllerLogger())(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestPushUnsubscribe(t *testing.T) {
	userID := uuid.New()
	removed := ""
	svc := &testSubscriptionsService{
		removeFn: func(ctx context.Context, uid uuid.UUID, endpoint string) error {
			removed = endpoint
			return nil
		},
	}

	body := `{"endpoint":"https://push.example.com/send/abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/push/unsubscribe", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	PushUnsubscribe(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if removed != "https://push.example.com/send/abc" {
		t.Fatalf("unexpected endpoint %q", removed)
	}
}
