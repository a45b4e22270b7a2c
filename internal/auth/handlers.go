package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"roombooking/internal/api"
	"roombooking/internal/fault"
	"roombooking/internal/user"
	"roombooking/pkg/config"
	"roombooking/pkg/token"
)

type Handlers struct {
	Cfg   config.Config
	Users *user.Repository
}

type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone"`
	AdminSecretKey string `json:"adminSecretKey"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	if err := validator.New().Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", ve.Error())
			return
		}
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request")
		return
	}

	if _, err := h.Users.FindByEmail(r.Context(), req.Email); err == nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email already registered")
		return
	} else if fault.KindOf(err) != fault.NotFound {
		api.WriteFault(w, err)
		return
	}

	role := token.RoleUser
	if h.Cfg.AdminSecretKey != "" && req.AdminSecretKey == h.Cfg.AdminSecretKey {
		role = token.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
		Phone:        req.Phone,
	}
	if err := h.Users.Create(r.Context(), u); err != nil {
		api.WriteFault(w, err)
		return
	}

	h.respondWithToken(w, u)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid json")
		return
	}
	if err := validator.New().Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email and password are required")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid credentials")
		return
	}

	h.respondWithToken(w, u)
}

func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity")
		return
	}

	u, err := h.Users.GetByID(r.Context(), id.ID)
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) respondWithToken(w http.ResponseWriter, u *user.User) {
	s, err := token.Sign(token.Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, h.Cfg.JWTSecret, h.Cfg.TokenTTL, time.Now())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, AuthResponse{Token: s, User: u})
}
