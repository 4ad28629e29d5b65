package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pliqo-backend/config"
	"pliqo-backend/models"
	"pliqo-backend/referral"
	"pliqo-backend/scheduler"
	"pliqo-backend/store"
	"pliqo-backend/wager"
)

var (
	cfg       *config.Config
	st        store.Store
	referrals *referral.Service
	wagers    *wager.Service
	bots      *scheduler.Scheduler
)

// Init wires the handler package to its collaborators. Must run before
// any route is served.
func Init(c *config.Config, s store.Store, r *referral.Service, w *wager.Service, sched *scheduler.Scheduler) {
	cfg = c
	st = s
	referrals = r
	wagers = w
	bots = sched
}

// currentUser loads the authenticated user set by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	d, err := st.Read(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	u := d.FindUser(userID)
	if u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return u, true
}

// respondError maps domain errors onto HTTP statuses. Anything
// unrecognized becomes a generic 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, referral.ErrNoSponsor),
		errors.Is(err, referral.ErrEmailTaken),
		errors.Is(err, referral.ErrInvalidPlan),
		errors.Is(err, wager.ErrInvalidAmount),
		errors.Is(err, wager.ErrSelfWager),
		errors.Is(err, wager.ErrNoOpponents):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, referral.ErrForbidden),
		errors.Is(err, wager.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, referral.ErrUserNotFound),
		errors.Is(err, wager.ErrBetNotFound),
		errors.Is(err, wager.ErrOpponentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, wager.ErrDepositsIncomplete),
		errors.Is(err, wager.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
