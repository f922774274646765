package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/fittrack/web/internal/session"
)

const (
	sessionCheckPath   = "/api/auth/dashboard"
	loginPath          = "/api/auth/l"
	registerPath       = "/api/auth/r"
	logoutPath         = "/api/auth/logout"
	forgotPasswordPath = "/api/forgot-password"
	resetPasswordPath  = "/api/auth/reset-password/"
)

var ErrNoSessionCookies = errors.New("backend login response carried no session cookies")

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"passw"`
	Age            int    `json:"age"`
	Height         int    `json:"height"`
	Weight         int    `json:"weight"`
	Gender         string `json:"gender"`
	ActivityLevel  string `json:"activityLevel"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// VerifySession asks the backend whether cred grants protected access.
// Only the status matters, the body is ignored.
func (c *Client) VerifySession(ctx context.Context, cred *session.Credential) error {
	_, err := c.Do(ctx, http.MethodGet, sessionCheckPath, cred, nil)
	return err
}

// Login returns the credential made of the cookies the backend set.
func (c *Client) Login(ctx context.Context, loginReq LoginRequest) (*session.Credential, string, error) {
	resp, err := c.Do(ctx, http.MethodPost, loginPath, nil, loginReq)
	if err != nil {
		return nil, "", err
	}

	cred := session.NewCredential(resp.Cookies(), time.Now())
	if cred.Empty() {
		return nil, "", ErrNoSessionCookies
	}

	return cred, messageOf(resp.Body, "Login successful!"), nil
}

func (c *Client) Register(ctx context.Context, registerReq RegisterRequest) (string, error) {
	resp, err := c.Do(ctx, http.MethodPost, registerPath, nil, registerReq)
	if err != nil {
		return "", err
	}
	return messageOf(resp.Body, "User registered successfully"), nil
}

func (c *Client) Logout(ctx context.Context, cred *session.Credential) error {
	_, err := c.Do(ctx, http.MethodPost, logoutPath, cred, nil)
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := c.Do(ctx, http.MethodPost, forgotPasswordPath, nil, map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	return messageOf(resp.Body, "Password reset link sent"), nil
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	resp, err := c.Do(ctx, http.MethodPost, resetPasswordPath+url.PathEscape(token), nil, map[string]string{"password": password})
	if err != nil {
		return "", err
	}
	return messageOf(resp.Body, "Password reset successful"), nil
}

func messageOf(body []byte, fallback string) string {
	var msg MessageResponse
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		return fallback
	}
	return msg.Message
}
