package handlers

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"pliqo-backend/models"
	"pliqo-backend/store"
)

// TwoFASetupHandler generates a TOTP secret for the caller and returns
// the provisioning QR as a PNG data URL. The secret stays disabled
// until verified through TwoFAEnableHandler.
func TwoFASetupHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Pliqo",
		AccountName: user.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate secret"})
		return
	}

	err = st.Update(c.Request.Context(), func(d *store.Data) error {
		for i := range d.TwoFA {
			if d.TwoFA[i].UserID == user.ID {
				d.TwoFA[i].Secret = key.Secret()
				d.TwoFA[i].Enabled = false
				return nil
			}
		}
		d.TwoFA = append(d.TwoFA, models.TwoFA{
			UserID:    user.ID,
			Secret:    key.Secret(),
			Enabled:   false,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render qr"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret": key.Secret(),
		"qr":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

// TwoFAEnableHandler verifies the first code and switches enforcement on.
func TwoFAEnableHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var enabled bool
	err := st.Update(c.Request.Context(), func(d *store.Data) error {
		for i := range d.TwoFA {
			if d.TwoFA[i].UserID == user.ID {
				if totp.Validate(req.Code, d.TwoFA[i].Secret) {
					d.TwoFA[i].Enabled = true
					enabled = true
				}
				return nil
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !enabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "enabled": true})
}

// TwoFADisableHandler turns enforcement off after a valid code.
func TwoFADisableHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var disabled bool
	err := st.Update(c.Request.Context(), func(d *store.Data) error {
		kept := d.TwoFA[:0]
		for _, t := range d.TwoFA {
			if t.UserID == user.ID && totp.Validate(req.Code, t.Secret) {
				disabled = true
				continue
			}
			kept = append(kept, t)
		}
		d.TwoFA = kept
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !disabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "enabled": false})
}
