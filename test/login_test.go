package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := map[string]struct {
		email              string
		password           string
		expectedStatusCode int
		expectedMessage    string
		expectSession      bool
	}{
		"good creds": {
			email:              testEmail,
			password:           testPassword,
			expectedStatusCode: http.StatusOK,
			expectedMessage:    "Login successful",
			expectSession:      true,
		},
		"wrong password": {
			email:              testEmail,
			password:           "Wrong#123",
			expectedStatusCode: http.StatusUnauthorized,
			expectedMessage:    "Invalid credentials",
		},
		"invalid email": {
			email:              "not-an-email",
			password:           testPassword,
			expectedStatusCode: http.StatusBadRequest,
			expectedMessage:    "Invalid email",
		},
		"short password": {
			email:              testEmail,
			password:           "123",
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postLogin(ctx, t, tc.email, tc.password)
			defer resp.Body.Close()
			require.Equal(t, tc.expectedStatusCode, resp.StatusCode)

			respBytes, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var msgResp map[string]string
			require.NoError(t, json.Unmarshal(respBytes, &msgResp))
			if tc.expectedMessage != "" {
				assert.Equal(t, tc.expectedMessage, msgResp["message"])
			}

			var sid *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == "fittrack_sid" {
					sid = c
				}
			}
			if !tc.expectSession {
				assert.Nil(t, sid)
				return
			}

			require.NotNil(t, sid)
			assert.True(t, sid.HttpOnly)
			// backend cookie stays server side
			assert.NotContains(t, sid.Value, testBackendToken)
			for _, c := range resp.Cookies() {
				assert.NotEqual(t, "token", c.Name)
			}

			keys, err := s.redisClient.SMembers(ctx, "fittrack-sessions").Result()
			require.NoError(t, err)
			assert.NotEmpty(t, keys)
		})
	}
}

func (s *IntegrationTestSuite) TestLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sid := doLogin(ctx, t)

	resp, _ := doGet(ctx, t, "/dashboard", sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/auth/logout", serverEndpoint), nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.AddCookie(sid)
	logoutResp, err := noRedirectClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, logoutResp.Body.Close())
	require.Equal(t, http.StatusOK, logoutResp.StatusCode)

	// stored credential is gone, the old cookie no longer opens the dashboard
	resp, body := doGet(ctx, t, "/dashboard", sid)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/l", resp.Header.Get("Location"))
	assert.NotContains(t, body, testIndexHTML)
}
