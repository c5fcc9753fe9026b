// internal/app/features/authapi/handler.go
package authapi

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/campusvoice/internal/app/store/users"
	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/app/system/auditlog"
	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/dalemusser/campusvoice/internal/app/system/authutil"
	"github.com/dalemusser/campusvoice/internal/app/system/httpjson"
	"github.com/dalemusser/campusvoice/internal/app/system/normalize"
	"github.com/dalemusser/campusvoice/internal/app/system/ratelimit"
	"github.com/dalemusser/campusvoice/internal/app/system/timeouts"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid credentials"
)

type Handler struct {
	Users        *userstore.Store
	Auth         *auth.Manager
	LoginLimiter *ratelimit.LoginLimiter
	AuditLog     *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(db *mongo.Database, authMgr *auth.Manager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        userstore.New(db),
		Auth:         authMgr,
		LoginLimiter: limiter,
		AuditLog:     audit,
		Log:          logger,
	}
}

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type tokenResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

func toUserJSON(u models.User) userJSON {
	return userJSON{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/register                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}

	name := normalize.Name(req.Name)
	email := normalize.Email(req.Email)
	role := normalize.Role(req.Role)

	var fields []apperr.FieldError
	if name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Msg: "Name is required"})
	}
	if !authutil.IsValidEmail(email) {
		fields = append(fields, apperr.FieldError{Field: "email", Msg: "Please include a valid email"})
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		fields = append(fields, apperr.FieldError{Field: "password", Msg: err.Error()})
	}
	if !models.IsValidRole(role) {
		fields = append(fields, apperr.FieldError{Field: "role", Msg: "Role must be either student or faculty"})
	}
	if len(fields) > 0 {
		apperr.Write(w, r, h.Log, apperr.Validation("Invalid registration", fields...))
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		apperr.Write(w, r, h.Log, apperr.Internal(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apperr.Write(w, r, h.Log, apperr.Conflict(msgUserExists))
			return
		}
		apperr.Write(w, r, h.Log, apperr.Internal(err))
		return
	}

	h.AuditLog.UserRegistered(ctx, r, u.ID, u.Role)
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	h.writeToken(w, r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/login                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	var fields []apperr.FieldError
	if !authutil.IsValidEmail(email) {
		fields = append(fields, apperr.FieldError{Field: "email", Msg: "Please include a valid email"})
	}
	if req.Password == "" {
		fields = append(fields, apperr.FieldError{Field: "password", Msg: "Password is required"})
	}
	if len(fields) > 0 {
		apperr.Write(w, r, h.Log, apperr.Validation("Invalid login", fields...))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.LoginLimiter != nil {
		if ok, reason := h.LoginLimiter.Check(r, email); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, email)
			apperr.Write(w, r, h.Log, apperr.RateLimited(reason))
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
			apperr.Write(w, r, h.Log, apperr.Conflict(msgInvalidCredentials))
			return
		}
		apperr.Write(w, r, h.Log, apperr.Internal(err))
		return
	}

	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		apperr.Write(w, r, h.Log, apperr.Conflict(msgInvalidCredentials))
		return
	}

	if h.LoginLimiter != nil {
		h.LoginLimiter.ResetEmail(email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, email)
	h.writeToken(w, r, *u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/auth/user                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apperr.Write(w, r, h.Log, apperr.Unauthorized("Authentication required"))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]userJSON{
		"user": {ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/logout                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogout clears the browser cookie. Bearer tokens are stateless and
// stay valid until they expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Auth.ClearTokenCookie(w)
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) writeToken(w http.ResponseWriter, r *http.Request, u models.User) {
	token, expires, err := h.Auth.IssueToken(u.ID.Hex())
	if err != nil {
		apperr.Write(w, r, h.Log, apperr.Internal(err))
		return
	}
	if err := h.Auth.SetTokenCookie(w, token, expires); err != nil {
		h.Log.Warn("set auth cookie failed", zap.Error(err))
	}
	apperr.WriteJSON(w, http.StatusOK, tokenResponse{Token: token, User: toUserJSON(u)})
}
