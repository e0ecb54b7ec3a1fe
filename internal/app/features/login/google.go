// internal/app/features/login/google.go
package login

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie = "creatorhub-oauth-state"
	oauthStateMaxAge = 10 * time.Minute
)

// googleFlow implements the Google sign-in round trip. The CSRF state
// travels in a signed cookie instead of a server-side store.
type googleFlow struct {
	cfg    *oauth2.Config
	cookie *securecookie.SecureCookie
	log    *zap.Logger
}

func newGoogleFlow(clientID, clientSecret, baseURL, stateKey string, logger *zap.Logger) *googleFlow {
	return &googleFlow{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  strings.TrimRight(baseURL, "/") + "/api/auth/google/callback",
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		cookie: securecookie.New([]byte(stateKey), nil),
		log:    logger,
	}
}

// ServeGoogleLogin handles GET /api/auth/google: sets the state cookie
// and redirects to Google's consent screen.
func (h *Handler) ServeGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.GoogleEnabled {
		webjson.Error(w, http.StatusNotFound, "google sign-in is not configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("oauth state generation failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	encoded, err := h.google.cookie.Encode(oauthStateCookie, state)
	if err != nil {
		h.Log.Error("oauth state encode failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(oauthStateMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeGoogleCallback handles GET /api/auth/google/callback: verifies
// state, exchanges the code, fetches the Google profile, and signs in
// the matching account. Unknown emails get a creator account.
func (h *Handler) ServeGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.GoogleEnabled {
		webjson.Error(w, http.StatusNotFound, "google sign-in is not configured")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "missing oauth state")
		return
	}
	var state string
	if err := h.google.cookie.Decode(oauthStateCookie, cookie.Value, &state); err != nil ||
		state == "" || state != r.URL.Query().Get("state") {
		h.Log.Warn("oauth state mismatch")
		webjson.Error(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		webjson.Error(w, http.StatusBadRequest, "missing oauth code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token, err := h.google.cfg.Exchange(ctx, code)
	if err != nil {
		h.Log.Error("oauth code exchange failed", zap.Error(err))
		webjson.Error(w, http.StatusBadGateway, "google sign-in failed")
		return
	}

	info, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("google userinfo fetch failed", zap.Error(err))
		webjson.Error(w, http.StatusBadGateway, "google sign-in failed")
		return
	}
	if !info.EmailVerified {
		webjson.Error(w, http.StatusForbidden, "google account email is not verified")
		return
	}

	u, err := h.Users.GetByEmail(ctx, info.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		created, cerr := h.Users.Create(ctx, models.User{
			FullName: info.Name,
			Email:    info.Email,
			Role:     models.RoleCreator,
		})
		if cerr != nil {
			h.Log.Error("google account create failed", zap.Error(cerr))
			webjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		u = &created
	} else if err != nil {
		h.Log.Error("user lookup failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.signIn(w, r, u); err != nil {
		h.Log.Error("session create failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

// generateState returns a cryptographically random state token.
func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
