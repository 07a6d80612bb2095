package service

import (
	"context"
	"net/url"
	"time"

	"github.com/eventmind/eventmind/config"
	repository "github.com/eventmind/eventmind/internal/database/postgres"
	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
)

type SubscriptionKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// SubscribeRequest mirrors the PushSubscription object browsers hand
// out from the Push API.
type SubscribeRequest struct {
	Endpoint string           `json:"endpoint" binding:"required,url"`
	Keys     SubscriptionKeys `json:"keys" binding:"required"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
}

type subscriptionService struct {
	subRepo repository.SubscriptionRepository
	pushCfg *config.PushConfig
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, pushCfg *config.PushConfig) SubscriptionService {
	return &subscriptionService{
		subRepo: subRepo,
		pushCfg: pushCfg,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, req *SubscribeRequest) error {
	if err := validateSubscription(req); err != nil {
		return err
	}

	sub := &entity.PushSubscription{
		ID:        uuid.New(),
		UserID:    userID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		CreatedAt: time.Now(),
	}

	return s.subRepo.Create(ctx, sub)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return s.subRepo.DeleteByEndpoint(ctx, userID, endpoint)
}

func (s *subscriptionService) VAPIDPublicKey() string {
	return s.pushCfg.VAPIDPublicKey
}

// validateSubscription checks the shape browsers hand out: push
// service endpoints are https only, and both encryption keys must be
// present for the payload to be decryptable.
func validateSubscription(req *SubscribeRequest) error {
	endpoint, err := url.Parse(req.Endpoint)
	if err != nil || endpoint.Scheme != "https" || endpoint.Host == "" {
		return entity.ErrInvalidSubscription
	}
	if req.Keys.P256dh == "" || req.Keys.Auth == "" {
		return entity.ErrInvalidSubscription
	}
	return nil
}
