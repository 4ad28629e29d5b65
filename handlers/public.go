package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pliqo-backend/models"
)

// PublicProfileHandler serves the landing-page profile of any user.
// Unauthenticated.
func PublicProfileHandler(c *gin.Context) {
	d, err := st.Read(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	u := d.FindUser(c.Param("id"))
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// PublicPaymentHandler serves a sponsor's payment details with empty
// defaults when nothing is configured, so landings always render.
func PublicPaymentHandler(c *gin.Context) {
	d, err := st.Read(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	p := d.FindPayment(c.Param("id"))
	if p == nil {
		p = &models.PaymentSettings{CurrencyCode: "USD"}
	}
	c.JSON(http.StatusOK, gin.H{
		"paypalEmail":         p.PaypalEmail,
		"binanceId":           p.BinanceID,
		"binancePayLink":      p.BinancePayLink,
		"westernUnionName":    p.WesternUnionName,
		"bankTransferDetails": p.BankTransferDetails,
		"currencyCode":        p.CurrencyCode,
	})
}

// PublicAdminHandler serves the admin's landing configuration.
func PublicAdminHandler(c *gin.Context) {
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
	c.JSON(http.StatusOK, admin.Public())
}
