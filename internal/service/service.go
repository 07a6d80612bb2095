package service

import (
	"context"

	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, string, error)
	Login(ctx context.Context, req *LoginRequest) (*entity.User, string, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}

type EventService interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, req *CreateEventRequest) (*entity.Event, error)
	GetUserEvents(ctx context.Context, userID uuid.UUID, status entity.EventStatus) ([]*entity.Event, error)
	UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, req *UpdateEventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID uuid.UUID, req *SubscribeRequest) error
	Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error
	VAPIDPublicKey() string
}
