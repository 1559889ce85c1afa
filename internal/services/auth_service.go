package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	pgrepo "github.com/shubhamsharmax50/ai-mock-interviewer/internal/repositories/postgres"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*models.User, string, error)
	SignIn(ctx context.Context, email, password string) (*models.User, string, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	users    pgrepo.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users pgrepo.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &authService{users: users, secret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

func (s *authService) SignUp(ctx context.Context, name, email, password string) (*models.User, string, error) {
	const op = "AuthService.SignUp"

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "name, email, and password are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", utils.E(utils.CodeConflict, op, "email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to check existing user", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return u, token, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "AuthService.SignIn"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	if err := utils.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return u, token, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "AuthService.CurrentUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	return u, nil
}

func (s *authService) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}
