package service

import (
	"context"
	"testing"

	"github.com/eventmind/eventmind/config"
	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubRepo struct {
	subs []*entity.PushSubscription
}

func (r *stubSubRepo) Create(ctx context.Context, sub *entity.PushSubscription) error {
	r.subs = append(r.subs, sub)
	return nil
}

func (r *stubSubRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.PushSubscription, error) {
	return r.subs, nil
}

func (r *stubSubRepo) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	for i, sub := range r.subs {
		if sub.Endpoint == endpoint {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return nil
		}
	}
	return entity.ErrSubscriptionNotFound
}

func (r *stubSubRepo) DeleteByEndpoints(ctx context.Context, userID uuid.UUID, endpoints []string) error {
	return nil
}

func validSubscribeRequest() *SubscribeRequest {
	return &SubscribeRequest{
		Endpoint: "https://push.example.com/sub-1",
		Keys: SubscriptionKeys{
			P256dh: "p256dh-key",
			Auth:   "auth-secret",
		},
	}
}

func TestSubscribe(t *testing.T) {
	repo := &stubSubRepo{}
	svc := NewSubscriptionService(repo, &config.PushConfig{VAPIDPublicKey: "pub-key"})
	userID := uuid.New()

	err := svc.Subscribe(context.Background(), userID, validSubscribeRequest())
	require.NoError(t, err)
	require.Len(t, repo.subs, 1)
	assert.Equal(t, userID, repo.subs[0].UserID)
	assert.Equal(t, "https://push.example.com/sub-1", repo.subs[0].Endpoint)
}

func TestSubscribeRejectsMalformedSubscription(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *SubscribeRequest)
	}{
		{
			name:   "plain http endpoint",
			mutate: func(req *SubscribeRequest) { req.Endpoint = "http://push.example.com/sub-1" },
		},
		{
			name:   "not a url",
			mutate: func(req *SubscribeRequest) { req.Endpoint = "https://" },
		},
		{
			name:   "missing p256dh key",
			mutate: func(req *SubscribeRequest) { req.Keys.P256dh = "" },
		},
		{
			name:   "missing auth secret",
			mutate: func(req *SubscribeRequest) { req.Keys.Auth = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubSubRepo{}
			svc := NewSubscriptionService(repo, &config.PushConfig{})

			req := validSubscribeRequest()
			tt.mutate(req)

			err := svc.Subscribe(context.Background(), uuid.New(), req)
			assert.ErrorIs(t, err, entity.ErrInvalidSubscription)
			assert.Empty(t, repo.subs)
		})
	}
}

func TestUnsubscribe(t *testing.T) {
	repo := &stubSubRepo{}
	svc := NewSubscriptionService(repo, &config.PushConfig{})
	userID := uuid.New()

	require.NoError(t, svc.Subscribe(context.Background(), userID, validSubscribeRequest()))
	require.NoError(t, svc.Unsubscribe(context.Background(), userID, "https://push.example.com/sub-1"))

	err := svc.Unsubscribe(context.Background(), userID, "https://push.example.com/sub-1")
	assert.ErrorIs(t, err, entity.ErrSubscriptionNotFound)
}

func TestVAPIDPublicKey(t *testing.T) {
	svc := NewSubscriptionService(&stubSubRepo{}, &config.PushConfig{VAPIDPublicKey: "pub-key"})
	assert.Equal(t, "pub-key", svc.VAPIDPublicKey())
}
