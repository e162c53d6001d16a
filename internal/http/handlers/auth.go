package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"net/http"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/auth"
	"github.com/MrHoror07/sevenaiproo/internal/config"
	"github.com/MrHoror07/sevenaiproo/internal/domain/session"
	"github.com/MrHoror07/sevenaiproo/internal/domain/user"
	"github.com/MrHoror07/sevenaiproo/internal/http/middlewares"
	"github.com/MrHoror07/sevenaiproo/internal/observability"
	"github.com/gin-gonic/gin"
)

// AuthService is the slice of the auth facade this handler needs; tests fake
// it without a database.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (user.User, session.Session, error)
	Login(ctx context.Context, in auth.LoginInput) (user.User, session.Session, error)
	Logout(ctx context.Context, token string, meta audit.RequestMeta) error
}

type AuthHandler struct {
	svc  AuthService
	prom *observability.Prom
}

func NewAuthHandler(svc AuthService, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{svc: svc, prom: prom}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	User      user.Projection `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// name is optional; fall back to the mailbox part of the address
	if req.Name == "" {
		req.Name, _, _ = strings.Cut(req.Email, "@")
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, sess, err := h.svc.Register(cctx, auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Meta:     requestMeta(ctx),
	})

	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			h.observe("register", "conflict")
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	h.observe("register", "ok")

	ctx.JSON(http.StatusCreated, sessionResponse{
		User:      u.Projection(),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, sess, err := h.svc.Login(cctx, auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Meta:     requestMeta(ctx),
	})

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.observe("login", "failed")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not sign in")
		return
	}

	h.observe("login", "ok")

	ctx.JSON(http.StatusOK, sessionResponse{
		User:      u.Projection(),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	})
}

// Logout revokes the presented session. Runs behind RequireAuth, so the token
// on the context is known-valid.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, ok := middlewares.SessionToken(ctx)

	if !ok || token == "" {
		ctx.Status(http.StatusNoContent)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if err := h.svc.Logout(cctx, token, requestMeta(ctx)); err != nil {
		RespondInternal(ctx, "Could not sign out")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u.Projection()})
}

func (h *AuthHandler) observe(op, result string) {
	if h.prom != nil {
		h.prom.AuthResults.WithLabelValues(op, result).Inc()
	}
}

func requestMeta(ctx *gin.Context) audit.RequestMeta {
	return audit.RequestMeta{
		IPAddress: ctx.ClientIP(),
		UserAgent: ctx.GetHeader("User-Agent"),
	}
}
