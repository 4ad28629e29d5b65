package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pliqo-backend/store"
)

// LevelsHandler lists the level catalog.
func LevelsHandler(c *gin.Context) {
	d, err := st.Read(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, d.Levels)
}

// SetUserLevelHandler sets a user's level. Admin only.
func SetUserLevelHandler(c *gin.Context) {
	var req struct {
		Level int `json:"level" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetID := c.Param("id")
	var found bool
	err := st.Update(c.Request.Context(), func(d *store.Data) error {
		u := d.FindUser(targetID)
		if u == nil {
			return nil
		}
		u.Level = req.Level
		found = true
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AdminPaymentHandler shows where bet deposits should be sent: the
// admin's contact and payment settings.
func AdminPaymentHandler(c *gin.Context) {
	d, err := st.Read(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	admin := d.FindAdmin()
	if admin == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"admin": gin.H{
			"id":             admin.ID,
			"name":           admin.Name,
			"whatsappNumber": admin.WhatsappNumber,
		},
		"payment": d.FindPayment(admin.ID),
	})
}
