package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pliqo-backend/models"
)

// NotifyPaymentHandler records the caller's payment claim towards their
// sponsor, with an optional proof attachment.
func NotifyPaymentHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		ProofURL  string `json:"proofUrl"`
		ProofNote string `json:"proofNote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := referrals.NotifyPayment(c.Request.Context(), user.ID, req.ProofURL, req.ProofNote); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ReferralRequestsHandler lists activation requests addressed to the
// caller as sponsor.
func ReferralRequestsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	views, err := referrals.RequestsForSponsor(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// ActivateHandler approves a referral's activation, credits the
// commission and clears the request.
func ActivateHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		ProofURL  string `json:"proofUrl"`
		ProofNote string `json:"proofNote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := referrals.Activate(c.Request.Context(), user.ID, c.Param("id"), req.ProofURL, req.ProofNote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": gin.H{
		"id":     target.ID,
		"name":   target.Name,
		"plan":   target.Plan,
		"active": target.Active,
	}})
}

// SponsorHandler returns the caller's sponsor profile, payment details
// and the pending-request flag.
func SponsorHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	info, err := referrals.SponsorInfo(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// PendingReferralsHandler lists the caller's not-yet-active referrals.
func PendingReferralsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := referrals.PendingReferrals(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ReferralStatsHandler aggregates the caller's referral funnel.
func ReferralStatsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := referrals.Stats(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ReferralVisitHandler tracks a landing visit. Unauthenticated.
func ReferralVisitHandler(c *gin.Context) {
	trackReferralEvent(c, models.ReferralEventVisit)
}

// ReferralVideoHandler tracks a landing video view. Unauthenticated.
func ReferralVideoHandler(c *gin.Context) {
	trackReferralEvent(c, models.ReferralEventVideoView)
}

func trackReferralEvent(c *gin.Context, eventType string) {
	var req struct {
		SponsorID string `json:"sponsorId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sponsorId required"})
		return
	}
	if err := referrals.TrackEvent(c.Request.Context(), eventType, req.SponsorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SalesHandler lists the ledger entries credited to the caller, newest
// first.
func SalesHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	sales, err := referrals.SalesFor(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, sales)
}
