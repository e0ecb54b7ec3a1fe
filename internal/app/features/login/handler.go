// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost for password hashing.
const bcryptCost = 10

type Handler struct {
	Users         *userstore.Store
	Log           *zap.Logger
	GoogleEnabled bool

	google *googleFlow
}

// NewHandler constructs the login handler. googleClientID/Secret may be
// empty; Google sign-in is then disabled.
func NewHandler(db *mongo.Database, googleClientID, googleClientSecret, baseURL, stateKey string, logger *zap.Logger) *Handler {
	h := &Handler{
		Users:         userstore.New(db),
		Log:           logger,
		GoogleEnabled: googleClientID != "" && googleClientSecret != "",
	}
	if h.GoogleEnabled {
		h.google = newGoogleFlow(googleClientID, googleClientSecret, baseURL, stateKey, logger)
	}
	return h
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleRegister creates an account and signs it in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" {
		webjson.Error(w, http.StatusBadRequest, "full name is required")
		return
	}
	if !validate.SimpleEmailValid(req.Email) {
		webjson.Error(w, http.StatusBadRequest, "a valid email address is required")
		return
	}
	if len(req.Password) < 8 {
		webjson.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	switch req.Role {
	case models.RoleManager, models.RoleCreator:
	default:
		webjson.Error(w, http.StatusBadRequest, `role must be "manager" or "creator"`)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			webjson.Error(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		h.Log.Error("user create failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.signIn(w, r, &u); err != nil {
		h.Log.Error("session create failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and establishes a session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("user lookup failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Google-only accounts have no password hash.
	if u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		webjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.signIn(w, r, u); err != nil {
		h.Log.Error("session create failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, u)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u *models.User) error {
	return auth.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	})
}
