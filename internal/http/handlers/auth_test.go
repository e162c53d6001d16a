package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrHoror07/sevenaiproo/internal/audit"
	"github.com/MrHoror07/sevenaiproo/internal/auth"
	"github.com/MrHoror07/sevenaiproo/internal/domain/session"
	"github.com/MrHoror07/sevenaiproo/internal/domain/user"
	"github.com/MrHoror07/sevenaiproo/internal/http/handlers"
	"github.com/MrHoror07/sevenaiproo/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of the handlers.AuthService interface

type fakeAuthService struct {
	registerFn func(ctx context.Context, in auth.RegisterInput) (user.User, session.Session, error)
	loginFn    func(ctx context.Context, in auth.LoginInput) (user.User, session.Session, error)
	logoutFn   func(ctx context.Context, token string, meta audit.RequestMeta) error
}

func (f *fakeAuthService) Register(ctx context.Context, in auth.RegisterInput) (user.User, session.Session, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, in)
	}
	return user.User{}, session.Session{}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, in auth.LoginInput) (user.User, session.Session, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, in)
	}
	return user.User{}, session.Session{}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, token string, meta audit.RequestMeta) error {
	if f.logoutFn != nil {
		return f.logoutFn(ctx, token, meta)
	}
	return nil
}

// small helper which returns a gin engine to mount one handler per test

func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h...)

	return r
}

// withUser injects an authenticated identity the way RequireAuth would.
func withUser(u user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxUser, u)
		c.Set(middlewares.CtxToken, "tok-"+u.ID)
		c.Next()
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRegisterHandler(t *testing.T) {
	expiry := time.Now().UTC().Add(7 * 24 * time.Hour)

	tests := []struct {
		name       string
		body       string
		registerFn func(ctx context.Context, in auth.RegisterInput) (user.User, session.Session, error)
		wantStatus int
		wantToken  string
	}{
		{
			name: "creates account and returns session",
			body: `{"email":"new@example.com","password":"longenough1","name":"New User"}`,
			registerFn: func(ctx context.Context, in auth.RegisterInput) (user.User, session.Session, error) {
				if in.Email != "new@example.com" {
					t.Fatalf("unexpected email forwarded: %s", in.Email)
				}
				u := user.User{ID: "u1", Email: in.Email, Name: in.Name, Role: user.RoleUser, Status: user.StatusActive}
				return u, session.Session{Token: "signed-token", UserID: "u1", ExpiresAt: expiry}, nil
			},
			wantStatus: http.StatusCreated,
			wantToken:  "signed-token",
		},
		{
			name: "missing name falls back to the mailbox part",
			body: `{"email":"jordan@example.com","password":"longenough1"}`,
			registerFn: func(ctx context.Context, in auth.RegisterInput) (user.User, session.Session, error) {
				if in.Name != "jordan" {
					t.Fatalf("name = %q, want jordan", in.Name)
				}
				u := user.User{ID: "u2", Email: in.Email, Name: in.Name, Role: user.RoleUser, Status: user.StatusActive}
				return u, session.Session{Token: "signed-token-2", UserID: "u2", ExpiresAt: expiry}, nil
			},
			wantStatus: http.StatusCreated,
			wantToken:  "signed-token-2",
		},
		{
			name: "duplicate email is a conflict",
			body: `{"email":"dup@example.com","password":"longenough1","name":"Dup"}`,
			registerFn: func(ctx context.Context, in auth.RegisterInput) (user.User, session.Session, error) {
				return user.User{}, session.Session{}, auth.ErrEmailTaken
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "short password rejected before the service is called",
			body:       `{"email":"a@example.com","password":"short","name":"A"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed email rejected",
			body:       `{"email":"not-an-email","password":"longenough1","name":"A"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{registerFn: tt.registerFn}
			if tt.registerFn == nil {
				svc.registerFn = func(ctx context.Context, in auth.RegisterInput) (user.User, session.Session, error) {
					t.Fatal("service should not be called on invalid input")
					return user.User{}, session.Session{}, nil
				}
			}

			h := handlers.NewAuthHandler(svc, nil)
			r := setupRouter(http.MethodPost, "/auth/register", h.Register)

			w := doJSON(t, r, http.MethodPost, "/auth/register", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantToken != "" {
				var resp struct {
					Token string `json:"token"`
					User  struct {
						ID string `json:"id"`
					} `json:"user"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if resp.Token != tt.wantToken {
					t.Fatalf("token = %q, want %q", resp.Token, tt.wantToken)
				}
				if resp.User.ID == "" {
					t.Fatal("expected user projection in response")
				}
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginFn    func(ctx context.Context, in auth.LoginInput) (user.User, session.Session, error)
		wantStatus int
	}{
		{
			name: "valid credentials",
			body: `{"email":"u@example.com","password":"correct-horse"}`,
			loginFn: func(ctx context.Context, in auth.LoginInput) (user.User, session.Session, error) {
				u := user.User{ID: "u1", Email: in.Email, Role: user.RoleUser}
				return u, session.Session{Token: "tok", UserID: "u1"}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown email and wrong password look identical",
			body: `{"email":"nobody@example.com","password":"whatever1"}`,
			loginFn: func(ctx context.Context, in auth.LoginInput) (user.User, session.Session, error) {
				return user.User{}, session.Session{}, auth.ErrInvalidCredentials
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing password rejected",
			body:       `{"email":"u@example.com"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{loginFn: tt.loginFn}

			h := handlers.NewAuthHandler(svc, nil)
			r := setupRouter(http.MethodPost, "/auth/login", h.Login)

			w := doJSON(t, r, http.MethodPost, "/auth/login", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusUnauthorized {
				var resp struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if resp.Error.Code != "invalid_credentials" {
					t.Fatalf("error code = %q, want invalid_credentials", resp.Error.Code)
				}
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	var revoked string

	svc := &fakeAuthService{
		logoutFn: func(ctx context.Context, token string, meta audit.RequestMeta) error {
			revoked = token
			return nil
		},
	}

	h := handlers.NewAuthHandler(svc, nil)
	u := user.User{ID: "u1", Role: user.RoleUser}
	r := setupRouter(http.MethodPost, "/auth/logout", withUser(u), h.Logout)

	w := doJSON(t, r, http.MethodPost, "/auth/logout", `{}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	if revoked != "tok-u1" {
		t.Fatalf("revoked token = %q, want tok-u1", revoked)
	}
}

func TestMeHandler(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeAuthService{}, nil)

	t.Run("returns the projection of the current user", func(t *testing.T) {
		u := user.User{ID: "u1", Email: "u@example.com", Name: "U", Role: user.RoleUser, Status: user.StatusActive, PasswordHash: "secret"}
		r := setupRouter(http.MethodGet, "/auth/me", withUser(u), h.Me)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		if bytes.Contains(w.Body.Bytes(), []byte("secret")) {
			t.Fatal("password hash leaked into the response")
		}
	})

	t.Run("missing identity context", func(t *testing.T) {
		r := setupRouter(http.MethodGet, "/auth/me", h.Me)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}
