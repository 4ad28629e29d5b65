package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateBetHandler opens a bet against a named opponent.
func CreateBetHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		OpponentID    string `json:"opponentId"`
		OpponentEmail string `json:"opponentEmail"`
		Amount        int    `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := wagers.Create(c.Request.Context(), user.ID, req.OpponentID, req.OpponentEmail, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bet)
}

// CreateRandomBetHandler opens a bet against a randomly drawn opponent.
func CreateRandomBetHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Amount int `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := wagers.CreateRandom(c.Request.Context(), user.ID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bet)
}

// ListBetsHandler lists the caller's bets; admins see everything.
func ListBetsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	views, err := wagers.List(c.Request.Context(), user.ID, user.IsAdmin())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// DepositHandler flags the caller's deposit on a bet.
func DepositHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	bet, err := wagers.MarkDeposit(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bet": bet})
}

// StartBetHandler resolves the bet once both deposits are flagged.
func StartBetHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	bet, err := wagers.Resolve(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bet": bet})
}

// PayoutHandler marks the prize as delivered. Admin only (enforced by
// route middleware).
func PayoutHandler(c *gin.Context) {
	bet, err := wagers.ConfirmPayout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bet": bet})
}
