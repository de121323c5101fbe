package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/superimpress/backend/internal/config"
	"github.com/superimpress/backend/internal/domain"
	"github.com/superimpress/backend/internal/password"
	"github.com/superimpress/backend/internal/repository"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var ErrOAuthExchange = errors.New("oauth exchange failed")

// OAuthService handles the callback leg of redirect-based external login:
// exchange the provider code, fetch the user's identity and find-or-create
// the matching local user. Token issuance afterwards is identical to
// password login.
type OAuthService struct {
	userRepo    repository.UserRepository
	provider    string
	oauthCfg    *oauth2.Config
	userInfoURL string
}

func NewOAuthService(userRepo repository.UserRepository, cfg *config.Config, provider string) *OAuthService {
	return &OAuthService{
		userRepo: userRepo,
		provider: provider,
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
		userInfoURL: cfg.OAuthUserInfoURL,
	}
}

func (s *OAuthService) Provider() string {
	return s.provider
}

// AuthURL returns the provider redirect URL carrying the state nonce.
func (s *OAuthService) AuthURL(state string) string {
	return s.oauthCfg.AuthCodeURL(state)
}

type externalIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleCallback exchanges the provider code for an identity and resolves it
// to a local user: first by (provider, oauth_id), then by email (linking the
// external identity to an existing account), otherwise by creating a new
// user with an unguessable placeholder password.
func (s *OAuthService) HandleCallback(ctx context.Context, code string) (*domain.User, error) {
	tok, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	identity, raw, err := s.fetchIdentity(ctx, tok)
	if err != nil {
		return nil, err
	}
	if identity.ID == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: provider returned incomplete identity", ErrOAuthExchange)
	}

	user, err := s.userRepo.GetByOAuth(ctx, s.provider, identity.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	provider := s.provider
	oauthID := identity.ID

	user, err = s.userRepo.GetByEmail(ctx, identity.Email)
	if err == nil {
		user.OAuthProvider = &provider
		user.OAuthID = &oauthID
		user.OAuthProfile = raw
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// No local password exists for this account; a random placeholder keeps
	// the column non-null without enabling password login.
	placeholder, err := password.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	name := identity.Name
	if name == "" {
		name = identity.Email
	}

	user = &domain.User{
		Name:          name,
		Email:         identity.Email,
		PasswordHash:  placeholder,
		OAuthProvider: &provider,
		OAuthID:       &oauthID,
		OAuthProfile:  raw,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *OAuthService) fetchIdentity(ctx context.Context, tok *oauth2.Token) (*externalIdentity, []byte, error) {
	client := s.oauthCfg.Client(ctx, tok)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: userinfo returned status %d", ErrOAuthExchange, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	var identity externalIdentity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	return &identity, raw, nil
}
