package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/superimpress/backend/internal/testutil"
)

func TestOAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := ts.NewClient(t)

	t.Run("redirects to the provider with a state nonce", func(t *testing.T) {
		resp, err := client.Get(ts.APIURL("/auth/oauth/google/login"))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "auth.example.com", location.Host)
		assert.Equal(t, "test-client-id", location.Query().Get("client_id"))
		assert.NotEmpty(t, location.Query().Get("state"))
	})

	t.Run("unknown provider", func(t *testing.T) {
		resp, err := client.Get(ts.APIURL("/auth/oauth/github/login"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestOAuthHandler_Exchange(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, _ := testutil.NewUserBuilder().
		WithEmail("oauth@x.com").
		Build(t, ts.DB.DB)

	t.Run("valid code issues a session", func(t *testing.T) {
		ts.Stores.LoginCodes.Put("valid-code", user.ID)

		body, _ := json.Marshal(map[string]string{"code": "valid-code"})
		resp, err := http.Post(ts.APIURL("/auth/oauth/exchange"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		access := testutil.ResponseCookie(resp, "access_token")
		require.NotNil(t, access)
		assert.NotEmpty(t, access.Value)

		refresh := testutil.ResponseCookie(resp, "refresh_token")
		require.NotNil(t, refresh)
		assert.NotEmpty(t, refresh.Value)

		var result testutil.AuthResponse
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, user.Email, result.User.Email)
	})

	t.Run("a code cannot be redeemed twice", func(t *testing.T) {
		ts.Stores.LoginCodes.Put("once", user.ID)

		body, _ := json.Marshal(map[string]string{"code": "once"})
		resp, err := http.Post(ts.APIURL("/auth/oauth/exchange"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ = json.Marshal(map[string]string{"code": "once"})
		resp, err = http.Post(ts.APIURL("/auth/oauth/exchange"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown code", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"code": "never-issued"})
		resp, err := http.Post(ts.APIURL("/auth/oauth/exchange"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("callback with an unknown state", func(t *testing.T) {
		client := ts.NewClient(t)
		resp, err := client.Get(ts.APIURL("/auth/oauth/google/callback?state=forged&code=abc"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
