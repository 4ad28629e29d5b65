package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pliqo-backend/models"
	"pliqo-backend/store"
)

// SettingsHandler upserts the caller's payment settings and contact
// fields. Landing video/headline are admin-only knobs.
func SettingsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Payment *struct {
			PaypalEmail         string `json:"paypalEmail"`
			BinanceID           string `json:"binanceId"`
			BinancePayLink      string `json:"binancePayLink"`
			WesternUnionName    string `json:"westernUnionName"`
			BankTransferDetails string `json:"bankTransferDetails"`
			CurrencyCode        string `json:"currencyCode"`
		} `json:"payment"`
		WhatsappNumber  string `json:"whatsappNumber"`
		AvatarURL       string `json:"avatarUrl"`
		LandingVideoURL string `json:"landingVideoUrl"`
		LandingHeadline string `json:"landingHeadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := st.Update(c.Request.Context(), func(d *store.Data) error {
		u := d.FindUser(user.ID)
		if u == nil {
			return nil
		}
		if req.Payment != nil {
			p := d.FindPayment(u.ID)
			if p == nil {
				d.PaymentSettings = append(d.PaymentSettings, models.PaymentSettings{
					ID:     uuid.NewString(),
					UserID: u.ID,
				})
				p = &d.PaymentSettings[len(d.PaymentSettings)-1]
			}
			p.PaypalEmail = req.Payment.PaypalEmail
			p.BinanceID = req.Payment.BinanceID
			p.BinancePayLink = req.Payment.BinancePayLink
			p.WesternUnionName = req.Payment.WesternUnionName
			p.BankTransferDetails = req.Payment.BankTransferDetails
			p.CurrencyCode = req.Payment.CurrencyCode
		}
		u.WhatsappNumber = req.WhatsappNumber
		if req.AvatarURL != "" {
			u.AvatarURL = req.AvatarURL
		}
		if u.IsAdmin() {
			u.LandingVideoURL = req.LandingVideoURL
			u.LandingHeadline = req.LandingHeadline
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
