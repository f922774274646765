package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fittrack/web/internal/backend"
	"github.com/fittrack/web/internal/middleware"
	"github.com/fittrack/web/internal/session"
	"github.com/fittrack/web/internal/telemetry/metrics"
	"github.com/fittrack/web/internal/telemetry/tracing"
	"github.com/fittrack/web/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=auth_test

type backendAuth interface {
	Login(ctx context.Context, loginReq backend.LoginRequest) (*session.Credential, string, error)
	Register(ctx context.Context, registerReq backend.RegisterRequest) (string, error)
	Logout(ctx context.Context, cred *session.Credential) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
}

// Handler runs the login flows against the backend and owns the browser session cookie.
type Handler struct {
	backend backendAuth
	store   session.Store
	cookies session.CookieSettings
}

func NewHandler(backend backendAuth, store session.Store, cookies session.CookieSettings) *Handler {
	return &Handler{
		backend: backend,
		store:   store,
		cookies: cookies,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	authRouter := mainRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/register", handler.handleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/logout", handler.handleLogout).Methods("POST", "OPTIONS").Name("logout")
	authRouter.HandleFunc("/forgot-password", handler.handleForgotPassword).Methods("POST", "OPTIONS").Name("forgot-password")
	authRouter.HandleFunc("/reset-password/{token}", handler.handleResetPassword).Methods("POST", "OPTIONS").Name("reset-password")

	// rate limit the auth endpoints to prevent credential stuffing
	authRouter.Use(middleware.RateLimit(rateLimiter, "auth", allowedPerMin, metricsManager))
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			pkg.WriteMessage(w, http.StatusBadRequest, "Login failed!")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			pkg.WriteMessage(w, http.StatusBadRequest, "Login failed!")
			return
		}
		loginReq = loginRequest{
			Email:    r.Form.Get("email"),
			Password: r.Form.Get("password"),
		}
	}

	if err := validateLogin(loginReq.Email, loginReq.Password); err != nil {
		span.SetStatus(codes.Error, err.Error())
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	cred, msg, err := handler.backend.Login(ctx, backend.LoginRequest{
		Email:    loginReq.Email,
		Password: loginReq.Password,
	})
	if err != nil {
		log.Tracef("failed login attempt for user: %s: %s", loginReq.Email, err)
		span.SetStatus(codes.Error, err.Error())
		writeBackendError(w, err, "Login failed!")
		return
	}

	sid, err := handler.store.Save(ctx, cred)
	if err != nil {
		log.Errorf("login failed, store session: %s", err)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Login failed!")
		return
	}

	handler.cookies.Write(w, sid)
	span.SetStatus(codes.Ok, "logged-in")
	pkg.WriteMessage(w, http.StatusOK, msg)
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.register")
	defer span.End()

	var regReq registerRequest
	if err := json.NewDecoder(r.Body).Decode(&regReq); err != nil {
		log.Errorf("register, unmarshal json params: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid registration data")
		return
	}

	if err := regReq.validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := handler.backend.Register(ctx, backend.RegisterRequest{
		Name:           regReq.Name,
		Email:          regReq.Email,
		Password:       regReq.Password,
		Age:            regReq.Age,
		Height:         regReq.Height,
		Weight:         regReq.Weight,
		Gender:         regReq.Gender,
		ActivityLevel:  regReq.ActivityLevel,
		ProfilePicture: regReq.ProfilePicture,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeBackendError(w, err, "Something went wrong")
		return
	}

	span.SetStatus(codes.Ok, "registered")
	pkg.WriteMessage(w, http.StatusCreated, msg)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	// the browser cookie goes away whatever the backend says
	handler.cookies.Expire(w)

	sid, ok := handler.cookies.Read(r)
	if !ok {
		pkg.WriteMessage(w, http.StatusOK, "Logged out")
		return
	}

	cred, err := handler.store.Credential(ctx, sid)
	switch {
	case err == nil:
		if err := handler.backend.Logout(ctx, cred); err != nil {
			log.Warnf("logout, backend logout: %s", err)
		}
	case !errors.Is(err, session.ErrNoCredential):
		log.Errorf("logout, get credential: %s", err)
	}

	if err := handler.store.Clear(ctx, sid); err != nil {
		log.Errorf("logout, clear session: %s", err)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}

	span.SetStatus(codes.Ok, "logged-out")
	pkg.WriteMessage(w, http.StatusOK, "Logged out")
}

func (handler *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.forgotPassword")
	defer span.End()

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := validateEmail(req.Email); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := handler.backend.ForgotPassword(ctx, req.Email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeBackendError(w, err, "Failed to send reset email")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, msg)
}

func (handler *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.resetPassword")
	defer span.End()

	token := mux.Vars(r)["token"]

	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := validateReset(req.Password, req.ConfirmPassword); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := handler.backend.ResetPassword(ctx, token, req.Password)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeBackendError(w, err, "Something went wrong!")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, msg)
}

// writeBackendError keeps the backend status and message, transport failures become 502.
func writeBackendError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		pkg.WriteMessage(w, apiErr.StatusCode, apiErr.Message)
		return
	}

	log.Errorf("backend call: %s", err)
	pkg.WriteMessage(w, backend.StatusCode(err), fallback)
}
