package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/superimpress/backend/internal/api/middleware"
	"github.com/superimpress/backend/internal/config"
	"github.com/superimpress/backend/internal/domain"
	"github.com/superimpress/backend/internal/service"
)

const refreshTokenCookie = "refresh_token"

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public projection of a user. Password and token
// hashes are never included.
type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrEmailTaken):
			http.Error(w, "Email already registered", http.StatusConflict)
		default:
			log.Printf("ERROR [auth.Register] failed to register user: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{
		Message: "User created successfully. Please login to continue.",
		User:    toUserResponse(user),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Incorrect email or password", http.StatusUnauthorized)
			return
		}
		log.Printf("ERROR [auth.Login] failed to login: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setAuthCookies(w, h.cfg, result.AccessToken, result.RefreshToken)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Message: "Login successful",
		User:    toUserResponse(result.User),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), user); err != nil {
		log.Printf("ERROR [auth.Logout] failed to logout: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	clearAuthCookies(w, h.cfg)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Successfully logged out"})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "Refresh token not found", http.StatusUnauthorized)
		return
	}

	accessToken, user, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefreshToken), errors.Is(err, service.ErrExpiredRefreshToken):
			log.Printf("ERROR [auth.Refresh] refresh rejected: %v", err)
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
		default:
			log.Printf("ERROR [auth.Refresh] failed to refresh: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	setCookie(w, h.cfg, middleware.AccessTokenCookie, accessToken, int(h.cfg.AccessTokenTTL.Seconds()))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Message: "Token refreshed successfully",
		User:    toUserResponse(user),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

func setAuthCookies(w http.ResponseWriter, cfg *config.Config, accessToken, refreshToken string) {
	setCookie(w, cfg, middleware.AccessTokenCookie, accessToken, int(cfg.AccessTokenTTL.Seconds()))
	setCookie(w, cfg, refreshTokenCookie, refreshToken, int(cfg.RefreshTokenTTL.Seconds()))
}

func clearAuthCookies(w http.ResponseWriter, cfg *config.Config) {
	setCookie(w, cfg, middleware.AccessTokenCookie, "", -1)
	setCookie(w, cfg, refreshTokenCookie, "", -1)
}

func setCookie(w http.ResponseWriter, cfg *config.Config, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
