package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pliqo-backend/logging"
	"pliqo-backend/models"
	"pliqo-backend/scheduler"
)

const defaultBotPeriod = time.Minute

// BinaryStartHandler starts (or restarts) the caller's binary
// simulation bot. Starting again replaces the running task.
func BinaryStartHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Symbol   string `json:"symbol"`
		PeriodMs int    `json:"periodMs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	symbol := req.Symbol
	if symbol == "" {
		symbol = "BTCUSDT"
	}
	period := defaultBotPeriod
	if req.PeriodMs > 0 {
		period = time.Duration(req.PeriodMs) * time.Millisecond
	}

	bots.Start(models.BotKindBinary, user.ID, period,
		scheduler.BinarySimTask(st, logging.L(), user.ID, symbol))
	c.JSON(http.StatusOK, gin.H{"ok": true, "running": true})
}

// BinaryStopHandler stops the caller's binary simulation bot.
func BinaryStopHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	bots.Stop(models.BotKindBinary, user.ID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "running": false})
}

// BinaryStatusHandler reports the bot state and its last 50 log lines.
func BinaryStatusHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	d, err := st.Read(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	logs := []models.BotLog{}
	for _, l := range d.BotLogs {
		if l.UserID == user.ID && l.Bot == models.BotKindBinary {
			logs = append(logs, l)
		}
	}
	if len(logs) > 50 {
		logs = logs[len(logs)-50:]
	}
	c.JSON(http.StatusOK, gin.H{
		"running": bots.Running(models.BotKindBinary, user.ID),
		"logs":    logs,
	})
}
