package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pliqo-backend/config"
	"pliqo-backend/middleware"
	"pliqo-backend/referral"
	"pliqo-backend/scheduler"
	"pliqo-backend/store"
	"pliqo-backend/wager"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()

	c := &config.Config{
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
	mem := store.NewMemory()
	sched := scheduler.New(nil)
	t.Cleanup(sched.Shutdown)
	Init(c, mem, referral.New(mem, nil), wager.New(mem, nil), sched)

	r := gin.New()
	r.POST("/auth/register", RegisterHandler)
	r.POST("/auth/login", LoginHandler)
	r.POST("/auth/refresh", RefreshHandler)

	authed := r.Group("/", middleware.AuthMiddleware(c))
	{
		authed.GET("/users/me", MeHandler)
		authed.POST("/users/me/notify-payment", NotifyPaymentHandler)
		authed.GET("/users/me/sponsor", SponsorHandler)
		authed.GET("/users/referrals/requests", ReferralRequestsHandler)
		authed.POST("/users/:id/activate", ActivateHandler)
		authed.GET("/sales", SalesHandler)
		authed.POST("/bets", CreateBetHandler)
		authed.GET("/bets", ListBetsHandler)
		authed.POST("/bets/:id/deposit", DepositHandler)
		authed.POST("/bets/:id/start", StartBetHandler)
	}

	admin := r.Group("/", middleware.AuthMiddleware(c), middleware.AdminMiddleware())
	{
		admin.POST("/bets/:id/payout", PayoutHandler)
	}
	return r, mem
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func registerHTTP(t *testing.T, r *gin.Engine, name, sponsorID string) (id, token string) {
	t.Helper()
	w, out := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"name":      name,
		"email":     name + "@test.local",
		"password":  "secret123",
		"plan":      99,
		"sponsorId": sponsorID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := out["user"].(map[string]any)
	return user["id"].(string), out["token"].(string)
}

func TestAuthFlow(t *testing.T) {
	r, _ := testRouter(t)

	_, token := registerHTTP(t, r, "alice", "")

	w, out := doJSON(t, r, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", out["name"])
	assert.Equal(t, false, out["active"])

	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@test.local", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, out = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@test.local", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, out["refresh_token"])

	w, out = doJSON(t, r, http.MethodPost, "/auth/refresh", "", gin.H{
		"refresh_token": out["refresh_token"],
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, out["token"])

	w, _ = doJSON(t, r, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActivationFlowOverHTTP(t *testing.T) {
	r, _ := testRouter(t)

	aliceID, aliceToken := registerHTTP(t, r, "alice", "")
	bobID, bobToken := registerHTTP(t, r, "bob", aliceID)

	// Bob without a sponsor request yet: alice sees nothing.
	w, _ := doJSON(t, r, http.MethodGet, "/users/referrals/requests", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w, _ = doJSON(t, r, http.MethodPost, "/users/me/notify-payment", bobToken, gin.H{
		"proofUrl": "http://proof/1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, out := doJSON(t, r, http.MethodGet, "/users/me/sponsor", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["pending"])

	// A stranger cannot approve bob.
	_, malloryToken := registerHTTP(t, r, "mallory", "")
	w, _ = doJSON(t, r, http.MethodPost, "/users/"+bobID+"/activate", malloryToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, out = doJSON(t, r, http.MethodPost, "/users/"+bobID+"/activate", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, out["user"].(map[string]any)["active"])

	// Request cleared, sale credited to alice.
	w, _ = doJSON(t, r, http.MethodGet, "/users/referrals/requests", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var sales []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, float64(99), sales[0]["amount"])
	assert.Equal(t, bobID, sales[0]["buyerId"])
}

func TestBetFlowOverHTTP(t *testing.T) {
	r, _ := testRouter(t)

	_, aliceToken := registerHTTP(t, r, "alice", "")
	bobID, bobToken := registerHTTP(t, r, "bob", "")

	w, _ := doJSON(t, r, http.MethodPost, "/bets", aliceToken, gin.H{
		"opponentId": bobID, "amount": 101,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out := doJSON(t, r, http.MethodPost, "/bets", aliceToken, gin.H{
		"opponentId": bobID, "amount": 20,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	betID := out["id"].(string)

	// Starting before both deposits is a conflict.
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/bets/%s/start", betID), aliceToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/bets/%s/deposit", betID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/bets/%s/deposit", betID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, out = doJSON(t, r, http.MethodPost, fmt.Sprintf("/bets/%s/start", betID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	bet := out["bet"].(map[string]any)
	assert.Equal(t, "completed", bet["status"])
	assert.Equal(t, float64(40), bet["prizeAmount"])

	// Non-admin cannot confirm the payout.
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/bets/%s/payout", betID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The loser's retry does not reroll.
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/bets/%s/start", betID), aliceToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
