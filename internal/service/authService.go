package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventmind/eventmind/internal/auth"
	repository "github.com/eventmind/eventmind/internal/database/postgres"
	"github.com/eventmind/eventmind/internal/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	UserName  string `json:"user_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest accepts either email or user name plus the password.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	UserName string `json:"user_name"`
	Password string `json:"password" binding:"required"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	// The unique constraints on email and user_name are the source of
	// truth; a pre-check would still race with concurrent registers.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*entity.User, string, error) {
	if req.Email == "" && req.UserName == "" {
		return nil, "", entity.ErrInvalidInput
	}

	var (
		user *entity.User
		err  error
	)
	if req.Email != "" {
		user, err = s.userRepo.GetByEmail(ctx, req.Email)
	} else {
		user, err = s.userRepo.GetByUserName(ctx, req.UserName)
	}
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, "", entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
