package user

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmlyf_back_end/internal/middleware"
)

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	NewUser      bool   `json:"new_user"`
	User         struct {
		ID    string `json:"id"`
		Phone string `json:"phone"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (e *testEnv) otpLogin(t *testing.T, phone, name string) loginResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/users/otp/request", map[string]string{"phone": phone}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	code := e.otp.last("9876543210")
	require.Len(t, code, 6)

	w = e.do(t, http.MethodPost, "/api/users/otp/verify", map[string]string{"phone": phone, "otp": code, "name": name}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp loginResponse
	decode(t, w, &resp)
	return resp
}

func TestOTPLoginCreatesAccountOnce(t *testing.T) {
	env := newTestEnv(t)

	first := env.otpLogin(t, "+91 98765-43210", "Asha")
	assert.True(t, first.NewUser)
	assert.Equal(t, "9876543210", first.User.Phone, "phone is stored normalized")
	assert.Equal(t, "Asha", first.User.Name)
	assert.Equal(t, "customer", first.User.Role)
	assert.NotEmpty(t, first.AccessToken)
	assert.Len(t, first.RefreshToken, 64)

	second := env.otpLogin(t, "9876543210", "")
	assert.False(t, second.NewUser)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestOTPVerifySetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/users/otp/request", map[string]string{"phone": "9876543210"}, "")
	code := env.otp.last("9876543210")

	w := env.do(t, http.MethodPost, "/api/users/otp/verify", map[string]string{"phone": "9876543210", "otp": code}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var found bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.TokenCookie {
			found = true
			assert.True(t, ck.HttpOnly)
			assert.NotEmpty(t, ck.Value)
		}
	}
	assert.True(t, found, "token cookie must be set")
}

func TestOTPVerifyFailures(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/users/otp/request", map[string]string{"phone": "12345"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/otp/verify", map[string]string{"phone": "9876543210", "otp": "123456"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "no code was requested")

	env.do(t, http.MethodPost, "/api/users/otp/request", map[string]string{"phone": "9876543210"}, "")
	code := env.otp.last("9876543210")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	w = env.do(t, http.MethodPost, "/api/users/otp/verify", map[string]string{"phone": "9876543210", "otp": wrong}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/otp/verify", map[string]string{"phone": "9876543210", "otp": code}, "")
	assert.Equal(t, http.StatusOK, w.Code, "a wrong attempt does not burn the code")
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	login := env.otpLogin(t, "9876543210", "Asha")

	w := env.do(t, http.MethodPost, "/api/users/refresh", map[string]string{"refresh_token": login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed loginResponse
	decode(t, w, &refreshed)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)

	w = env.do(t, http.MethodPost, "/api/users/refresh", map[string]string{"refresh_token": login.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a refresh token is single use")
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	env := newTestEnv(t)
	login := env.otpLogin(t, "9876543210", "Asha")

	w := env.do(t, http.MethodGet, "/api/users/me", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/logout", map[string]string{"refresh_token": login.RefreshToken}, login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/users/me", nil, login.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/refresh", map[string]string{"refresh_token": login.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.customer(t, "9876543210")

	w := env.do(t, http.MethodPut, "/api/users/me", map[string]any{
		"name":      "Asha Rao",
		"email":     "asha@example.com",
		"addresses": []any{validAddress()},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var u struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Addresses []struct {
			City string `json:"city"`
		} `json:"addresses"`
	}
	decode(t, w, &u)
	assert.Equal(t, "Asha Rao", u.Name)
	assert.Equal(t, "asha@example.com", u.Email)
	require.Len(t, u.Addresses, 1)
	assert.Equal(t, "Pune", u.Addresses[0].City)

	w = env.do(t, http.MethodPut, "/api/users/me", map[string]any{"name": "A", "email": "nope"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
