package services

import (
	"context"
	"errors"
	"fmt"

	"taskboard-service/models"
	"taskboard-service/utils"

	"github.com/google/uuid"
)

// AuthService issues session tokens and resolves the current user from
// one. Authorization policy itself lives in the storage layer; this
// only answers "who is calling".
type AuthService struct {
	users  UserStore
	secret []byte
}

func NewAuthService(users UserStore, secret []byte) *AuthService {
	return &AuthService{users: users, secret: secret}
}

func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("email and password are required")
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user := models.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Password:    hashed,
		CreatedAt:   nowUTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login checks credentials and returns the user with a signed token.
// Bad credentials read as unauthenticated without detail.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, "", models.ErrUnauthenticated
	}
	if err != nil {
		return models.User{}, "", err
	}
	if !utils.CheckPassword(user.Password, password) {
		return models.User{}, "", models.ErrUnauthenticated
	}

	token, err := utils.GenerateToken(s.secret, user.ID, user.Email)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// CurrentUser resolves a bearer token to its user record.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, models.ErrUnauthenticated
	}
	claims, err := utils.ValidateToken(s.secret, token)
	if err != nil {
		return models.User{}, models.ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, models.ErrUnauthenticated
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
