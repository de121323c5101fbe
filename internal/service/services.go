package service

import (
	"github.com/superimpress/backend/internal/config"
	"github.com/superimpress/backend/internal/repository"
	"github.com/superimpress/backend/internal/token"
)

type Services struct {
	Auth  *AuthService
	Post  *PostService
	OAuth *OAuthService // nil when no provider is configured
}

func NewServices(repos *repository.Repositories, codec *token.Codec, cfg *config.Config) *Services {
	services := &Services{
		Auth: NewAuthService(repos.User, codec, cfg),
		Post: NewPostService(repos.Post),
	}

	if cfg.OAuthEnabled() {
		services.OAuth = NewOAuthService(repos.User, cfg, "google")
	}

	return services
}
