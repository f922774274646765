package test

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestDashboard_noCredential() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, p := range []string{"/dashboard", "/dashboard/workout", "/dashboard/bmi"} {
		resp, body := doGet(ctx, t, p, nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode, p)
		assert.Equal(t, "/l", resp.Header.Get("Location"), p)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"), p)
		assert.NotContains(t, body, testIndexHTML, p)
	}
	// one verification per navigation, even without a credential
	assert.Equal(t, int32(3), s.backend.verifyCalls.Load())
}

func (s *IntegrationTestSuite) TestDashboard_authorized() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sid := doLogin(ctx, t)
	for _, p := range []string{"/dashboard", "/dashboard/workout", "/dashboard/progress"} {
		resp, body := doGet(ctx, t, p, sid)
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
		assert.Equal(t, testIndexHTML, body, p)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"), p)
	}
	assert.Equal(t, int32(3), s.backend.verifyCalls.Load())

	resp, body := doGet(ctx, t, "/api/session", sid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"verdict":"authorized"}`, body)
}

func (s *IntegrationTestSuite) TestDashboard_backendFailureIsFailClosed() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sid := doLogin(ctx, t)
	s.backend.failVerify.Store(true)

	resp, body := doGet(ctx, t, "/dashboard/workout", sid)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/l", resp.Header.Get("Location"))
	assert.NotContains(t, body, testIndexHTML)

	resp, body = doGet(ctx, t, "/api/session", sid)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"verdict":"unauthorized"}`, body)

	// no caching across mounts, recovery is immediate
	s.backend.failVerify.Store(false)
	resp, body = doGet(ctx, t, "/dashboard/workout", sid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testIndexHTML, body)
}

func (s *IntegrationTestSuite) TestDashboard_dataRelay() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, _ := doGet(ctx, t, "/api/workouts", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	sid := doLogin(ctx, t)
	resp, body := doGet(ctx, t, "/api/workouts", sid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"_id":"w1","type":"Running","duration":30}]`, body)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		serverEndpoint+"/api/workouts/c",
		bytes.NewBufferString(`{"type":"Running","duration":30}`),
	)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sid)
	postResp, err := noRedirectClient.Do(req)
	require.NoError(t, err)
	defer postResp.Body.Close()
	postBody, err := io.ReadAll(postResp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, postResp.StatusCode)
	assert.JSONEq(t, `{"message":"Workout saved"}`, string(postBody))
}

func (s *IntegrationTestSuite) TestPublicPagesAndBMI() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, p := range []string{"/", "/l", "/r", "/fp"} {
		resp, body := doGet(ctx, t, p, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
		assert.Equal(t, testIndexHTML, body, p)
	}

	resp, body := doGet(ctx, t, "/api/bmi?weight=70&height=175", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{
		"bmi": 22.9,
		"status": "Normal weight",
		"description": "Great! You're in the healthy weight range. Keep up the good work!"
	}`, body)
}
