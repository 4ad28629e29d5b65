package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"

	"pliqo-backend/auth"
	"pliqo-backend/referral"
)

// RegisterHandler creates a new account. The plan is inherited from the
// sponsor when a sponsor reference is given.
func RegisterHandler(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Phone     string `json:"phone"`
		Password  string `json:"password" binding:"required,min=6"`
		Plan      int    `json:"plan" binding:"required"`
		SponsorID string `json:"sponsorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := referrals.Register(c.Request.Context(), referral.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Plan:      req.Plan,
		SponsorID: req.SponsorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokenPair(cfg, user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user": gin.H{
			"id":     user.ID,
			"name":   user.Name,
			"plan":   user.Plan,
			"active": user.Active,
		},
	})
}

// LoginHandler checks credentials and, when 2FA is enabled, the TOTP
// code, then issues a token pair.
func LoginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Code     string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := st.Read(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	user := d.FindUserByEmail(req.Email)
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	for _, t := range d.TwoFA {
		if t.UserID == user.ID && t.Enabled {
			if req.Code == "" {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":        "2fa code required",
					"requires_2fa": true,
				})
				return
			}
			if !totp.Validate(req.Code, t.Secret) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid 2fa code"})
				return
			}
			break
		}
	}

	accessToken, refreshToken, err := auth.GenerateTokenPair(cfg, user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}

// RefreshHandler exchanges a refresh token for a new pair.
func RefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := auth.ValidateRefreshToken(cfg, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokenPair(cfg, claims.UserID, claims.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}
