package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/shop-auth/pkg/iam"
	"github.com/shopcore/shop-auth/pkg/inmem"
	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/ratelimit"
	"github.com/shopcore/shop-auth/pkg/role"
	"github.com/shopcore/shop-auth/pkg/router"
	"github.com/shopcore/shop-auth/pkg/signup"
	"github.com/shopcore/shop-auth/pkg/tokengenerator"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, opts ...func(*router.Config)) *httptest.Server {
	t.Helper()

	store := inmem.NewStore()
	jwtService := tokengenerator.NewJwtService(testSecret)
	cookieSetter := tokengenerator.NewCookieSetter(true, false)

	roleService := role.NewRoleService(store)
	identityService := login.NewIdentityService(store, jwtService)
	signupService := signup.NewSignupService(identityService, store,
		signup.WithAdminEmail("admin@shop.example"),
	)
	userService := iam.NewUserService(store, roleService)

	cfg := router.Config{
		AuthHandle: signup.NewHandle(signupService, cookieSetter),
		UserHandle: iam.NewHandle(userService),
		RoleHandle: role.NewHandle(roleService),
		JwtAuth:    jwtauth.New("HS256", []byte(testSecret), nil),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	server := httptest.NewServer(router.New(cfg))
	t.Cleanup(server.Close)
	return server
}

type authResponse struct {
	Identity struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"identity"`
	SessionToken string `json:"sessionToken"`
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSignupLoginAndAuthenticatedAccess(t *testing.T) {
	server := newTestServer(t)

	// Signup
	resp := postJSON(t, server.URL+"/auth/signup", map[string]string{
		"email":    "alice@example.com",
		"name":     "Alice",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var signedUp authResponse
	decodeJSON(t, resp, &signedUp)
	assert.Equal(t, "alice@example.com", signedUp.Identity.Email)
	assert.NotEmpty(t, signedUp.SessionToken)

	// Login
	resp = postJSON(t, server.URL+"/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loggedIn authResponse
	decodeJSON(t, resp, &loggedIn)
	require.NotEmpty(t, loggedIn.SessionToken)

	// The token opens the management surface
	req, err := http.NewRequest(http.MethodGet, server.URL+"/users", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+loggedIn.SessionToken)

	usersResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, usersResp.StatusCode)

	var users []struct {
		Email string `json:"email"`
		Role  *struct {
			Name string `json:"name"`
		} `json:"role"`
	}
	decodeJSON(t, usersResp, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
	require.NotNil(t, users[0].Role)
	assert.Equal(t, role.DefaultRoleName, users[0].Role.Name)
}

func TestDuplicateSignupIsGenericOverHTTP(t *testing.T) {
	server := newTestServer(t)

	body := map[string]string{"email": "alice@example.com", "password": "correct horse"}
	resp := postJSON(t, server.URL+"/auth/signup", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/auth/signup", body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var envelope struct {
		Message string `json:"message"`
	}
	decodeJSON(t, resp, &envelope)
	assert.Equal(t, "unable to create account", envelope.Message)
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/auth/signup", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var messages []string
	for _, body := range []map[string]string{
		{"email": "nobody@example.com", "password": "correct horse"},
		{"email": "alice@example.com", "password": "wrong password"},
	} {
		resp := postJSON(t, server.URL+"/auth/login", body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var envelope struct {
			Message string `json:"message"`
		}
		decodeJSON(t, resp, &envelope)
		messages = append(messages, envelope.Message)
	}
	assert.Equal(t, messages[0], messages[1])
}

func TestManagementRoutesRequireToken(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/users", "/roles"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	server := newTestServer(t, func(cfg *router.Config) {
		cfg.RateLimit = ratelimit.NewMiddleware(2, 0.0001)
	})

	body := map[string]string{"email": "nobody@example.com", "password": "correct horse"}
	for i := 0; i < 2; i++ {
		resp := postJSON(t, server.URL+"/auth/login", body)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := postJSON(t, server.URL+"/auth/login", body)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// The management surface sits outside the limited group
	healthResp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	healthResp.Body.Close()
	assert.Equal(t, http.StatusOK, healthResp.StatusCode)
}
