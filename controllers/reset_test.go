package controllers

import (
	"net/http"
	"testing"

	"github.com/ecotrack/wastage-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForgotPassword_UnknownEmail(t *testing.T) {
	t.Parallel()
	r, _, sender := newTestRouter()

	rec := doRequest(t, r, http.MethodPost, "/forgot-password", map[string]string{"email": "nobody@x.com"})

	// Account existence must not leak: same generic reply, nothing delivered.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "If an account with that email exists, a password reset link has been sent.",
		decodeBody(t, rec)["message"])
	assert.Empty(t, sender.tokens)
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()
	r, _, sender := newTestRouter()
	registerUser(t, r, "A", "a@x.com", "old-password")

	rec := doRequest(t, r, http.MethodPost, "/forgot-password", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.tokens, 1)
	assert.Equal(t, []string{"a@x.com"}, sender.emails)

	token := sender.tokens[0]
	// 32 random bytes, hex encoded.
	assert.Len(t, token, 64)

	rec = doRequest(t, r, http.MethodPost, "/reset-password", map[string]string{
		"token":    token,
		"password": "new-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password has been reset successfully.", decodeBody(t, rec)["message"])

	// The old password is gone, the new one works.
	rec = doRequest(t, r, http.MethodPost, "/login", models.Credentials{Email: "a@x.com", Password: "old-password"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doRequest(t, r, http.MethodPost, "/login", models.Credentials{Email: "a@x.com", Password: "new-password"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The token is single-use.
	rec = doRequest(t, r, http.MethodPost, "/reset-password", map[string]string{
		"token":    token,
		"password": "another-password",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token is invalid or has expired.", decodeBody(t, rec)["message"])
}

func TestResetPassword_UnknownToken(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestRouter()

	rec := doRequest(t, r, http.MethodPost, "/reset-password", map[string]string{
		"token":    "deadbeef",
		"password": "whatever",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token is invalid or has expired.", decodeBody(t, rec)["message"])
}

func TestForgotPassword_RepeatedRequestsKeepOldTokenLive(t *testing.T) {
	t.Parallel()
	r, _, sender := newTestRouter()
	registerUser(t, r, "A", "a@x.com", "p1")

	doRequest(t, r, http.MethodPost, "/forgot-password", map[string]string{"email": "a@x.com"})
	doRequest(t, r, http.MethodPost, "/forgot-password", map[string]string{"email": "a@x.com"})
	require.Len(t, sender.tokens, 2)

	// A new request does not invalidate the earlier token.
	rec := doRequest(t, r, http.MethodPost, "/reset-password", map[string]string{
		"token":    sender.tokens[0],
		"password": "new-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}
