package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// noRedirectClient keeps gate redirects visible to the tests.
var noRedirectClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

func postLogin(ctx context.Context, t *testing.T, email, password string) *http.Response {
	t.Helper()
	loginReqJson, err := json.Marshal(loginRequest{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/auth/login", serverEndpoint), bytes.NewBuffer(loginReqJson))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := noRedirectClient.Do(req)
	require.NoError(t, err)
	return resp
}

// doLogin logs the test user in and returns the session cookie.
func doLogin(ctx context.Context, t *testing.T) *http.Cookie {
	t.Helper()
	resp := postLogin(ctx, t, testEmail, testPassword)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "fittrack_sid" {
			return c
		}
	}
	t.Fatal("session cookie missing in login response")
	return nil
}

func doGet(ctx context.Context, t *testing.T, path string, sid *http.Cookie) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, "GET", serverEndpoint+path, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if sid != nil {
		req.AddCookie(sid)
	}

	resp, err := noRedirectClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}
