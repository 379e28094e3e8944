package users

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lacantine/menu-catalog/auth"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
	"github.com/lacantine/menu-catalog/validation"
)

type UserProvider interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetRole(ctx context.Context, id uint, role auth.Role) (*models.User, error)
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt}
}

type UserHandler struct {
	repo     UserProvider
	sessions *auth.Sessions
}

func NewUserHandler(r UserProvider, sessions *auth.Sessions) *UserHandler {
	return &UserHandler{repo: r, sessions: sessions}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// HandleRegister creates a USER account and signs it in.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var input RegisterInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}

	email := models.NormalizeEmail(input.Email)
	v := make(validation.Violations)
	validation.Required(models.FieldEmail, email, v)
	validation.Email(models.FieldEmail, email, v)
	validation.MinLength("password", input.Password, auth.MinPasswordLength, v)
	if err := v.Err(); err != nil {
		httpx.Error(w, r, err)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	user := &models.User{Email: email, Name: strings.TrimSpace(input.Name), Password: hash, Role: auth.RoleUser}
	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		httpx.Error(w, r, err)
		return
	}

	h.sessions.Create(w, user.ID)
	logging.FromContext(r.Context()).Info("user registered", "user_id", user.ID)
	httpx.OK(w, http.StatusCreated, newUserResponse(user))
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin starts a session. Unknown emails and wrong passwords are
// answered alike.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), input.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			err = auth.ErrUnauthorized
		}
		httpx.Error(w, r, err)
		return
	}
	if !auth.CheckPassword(user.Password, input.Password) {
		logging.FromContext(r.Context()).Warn("login failed", "user_id", user.ID)
		httpx.Error(w, r, auth.ErrUnauthorized)
		return
	}

	h.sessions.Create(w, user.ID)
	httpx.OK(w, http.StatusOK, newUserResponse(user))
}

func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.Authorize(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	user, err := h.repo.GetByID(r.Context(), principal.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, newUserResponse(user))
}

type RoleInput struct {
	Role auth.Role `json:"role"`
}

// HandleSetRole assigns a role to a user.
func (h *UserHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id", models.ErrUserNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var input RoleInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}

	user, err := h.repo.SetRole(r.Context(), id, auth.Role(strings.ToUpper(string(input.Role))))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	logging.FromContext(r.Context()).Info("role assigned", "user_id", user.ID, "role", user.Role, "by", principal.UserID)
	httpx.OK(w, http.StatusOK, newUserResponse(user))
}
