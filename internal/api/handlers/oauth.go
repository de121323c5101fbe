package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/superimpress/backend/internal/config"
	"github.com/superimpress/backend/internal/oauth"
	"github.com/superimpress/backend/internal/service"
)

// OAuthHandler implements redirect-based external login. The callback does
// not set session cookies directly: it stashes a one-time code in the
// injected code store and redirects to the frontend, which redeems the code
// over XHR so the cookies end up on the API origin.
type OAuthHandler struct {
	oauthService *service.OAuthService
	authService  *service.AuthService
	states       *oauth.CodeStore
	loginCodes   *oauth.CodeStore
	cfg          *config.Config
}

func NewOAuthHandler(oauthService *service.OAuthService, authService *service.AuthService, states, loginCodes *oauth.CodeStore, cfg *config.Config) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		authService:  authService,
		states:       states,
		loginCodes:   loginCodes,
		cfg:          cfg,
	}
}

func (h *OAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "provider") != h.oauthService.Provider() {
		http.Error(w, "Unknown provider", http.StatusNotFound)
		return
	}

	state := uuid.NewString()
	h.states.Put(state, 0)

	http.Redirect(w, r, h.oauthService.AuthURL(state), http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "provider") != h.oauthService.Provider() {
		http.Error(w, "Unknown provider", http.StatusNotFound)
		return
	}

	state := r.URL.Query().Get("state")
	if _, ok := h.states.Redeem(state); !ok {
		http.Error(w, "Invalid state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	user, err := h.oauthService.HandleCallback(r.Context(), code)
	if err != nil {
		log.Printf("ERROR [oauth.Callback] callback failed: %v", err)
		http.Error(w, "OAuth login failed", http.StatusBadGateway)
		return
	}

	loginCode := uuid.NewString()
	h.loginCodes.Put(loginCode, user.ID)

	http.Redirect(w, r, h.cfg.FrontendURL+"/oauth/complete?code="+loginCode, http.StatusTemporaryRedirect)
}

type ExchangeRequest struct {
	Code string `json:"code"`
}

// Exchange redeems a one-time login code for a session, issuing tokens
// exactly as password login does.
func (h *OAuthHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := h.loginCodes.Redeem(req.Code)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "Invalid or expired login code", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR [oauth.Exchange] failed to load user: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	result, err := h.authService.IssueTokens(r.Context(), user)
	if err != nil {
		log.Printf("ERROR [oauth.Exchange] failed to issue tokens: %v", err)
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
