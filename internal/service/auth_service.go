package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/superimpress/backend/internal/config"
	"github.com/superimpress/backend/internal/domain"
	"github.com/superimpress/backend/internal/password"
	"github.com/superimpress/backend/internal/repository"
	"github.com/superimpress/backend/internal/token"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token expired")
)

type AuthService struct {
	userRepo repository.UserRepository
	codec    *token.Codec
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, codec *token.Codec, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codec:    codec,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := ValidateRegisterInput(input.Name, input.Email, input.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashed,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies an email/password pair. Both an unknown email and a
// wrong password collapse into ErrInvalidCredentials so callers cannot tell
// which check failed.
func (s *AuthService) Authenticate(ctx context.Context, email, plaintext string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, plaintext string) (*AuthResult, error) {
	user, err := s.Authenticate(ctx, email, plaintext)
	if err != nil {
		return nil, err
	}

	return s.IssueTokens(ctx, user)
}

// IssueTokens creates an access/refresh token pair for the user and persists
// the refresh token's hash and expiry on the user record. Concurrent logins
// are last-write-wins: only the newest refresh token stays redeemable.
func (s *AuthService) IssueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.codec.Issue(user.Email, token.KindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.codec.Issue(user.Email, token.KindRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshHash, err := password.HashToken(refreshToken)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.cfg.RefreshTokenTTL)
	user.RefreshTokenHash = &refreshHash
	user.RefreshTokenExpiresAt = &expiresAt

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The token
// must match the hash stored on the user record, so logout or a newer login
// invalidates older refresh tokens before they expire. The refresh token
// itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, *domain.User, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	if claims.Kind != token.KindRefresh {
		return "", nil, fmt.Errorf("%w: wrong token kind", ErrInvalidRefreshToken)
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return "", nil, fmt.Errorf("%w: unknown subject", ErrInvalidRefreshToken)
	}

	if user.RefreshTokenHash == nil || !password.VerifyToken(refreshToken, *user.RefreshTokenHash) {
		return "", nil, fmt.Errorf("%w: not the current token", ErrInvalidRefreshToken)
	}

	if user.RefreshTokenExpiresAt == nil || time.Now().After(*user.RefreshTokenExpiresAt) {
		return "", nil, ErrExpiredRefreshToken
	}

	accessToken, err := s.codec.Issue(user.Email, token.KindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", nil, err
	}

	return accessToken, user, nil
}

// Logout clears the stored refresh token, invalidating it immediately.
// Access tokens already issued stay valid until their own expiry because
// verification is stateless.
func (s *AuthService) Logout(ctx context.Context, user *domain.User) error {
	user.RefreshTokenHash = nil
	user.RefreshTokenExpiresAt = nil
	return s.userRepo.Update(ctx, user)
}

// ResolveAccessToken turns a raw access token into the authenticated user.
// Any failure is terminal for the request; the caller surfaces a single
// unauthenticated outcome without the sub-reason.
func (s *AuthService) ResolveAccessToken(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != token.KindAccess {
		return nil, errors.New("not an access token")
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
